// internal/models/pitch.go
package models

// PitchStage is one phase of the scripted pitch scenario. The cycle is
// IDLE -> PRESENTING -> DISCUSSING -> PRESENTING -> ..., advanced externally
// one step at a time.
type PitchStage string

const (
	StageIdle       PitchStage = "IDLE"
	StagePresenting PitchStage = "PRESENTING"
	StageDiscussing PitchStage = "DISCUSSING"
)

// Next returns the stage that follows s in the pitch cycle.
func (s PitchStage) Next() PitchStage {
	switch s {
	case StageIdle:
		return StagePresenting
	case StagePresenting:
		return StageDiscussing
	case StageDiscussing:
		return StagePresenting
	default:
		return StageIdle
	}
}
