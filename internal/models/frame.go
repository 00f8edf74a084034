// internal/models/frame.go
package models

import "time"

// Frame is the full render snapshot pushed to the presentation layer once
// per tick, and returned by GET /api/state. In playback mode the characters
// and edges come from a frozen history snapshot rather than the live world.
type Frame struct {
	Timestamp  time.Time         `json:"timestamp"`
	Tick       uint64            `json:"tick"`
	Mode       SimMode           `json:"mode"`
	Stage      PitchStage        `json:"stage"`
	Playback   bool              `json:"playback"`
	Characters []CharacterView   `json:"characters"`
	Circles    []TrapCircle      `json:"circles"`
	Edges      []InteractionEdge `json:"edges"`
}

// WSMessage is the envelope for every WebSocket push.
type WSMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}
