// internal/models/character.go
package models

// CharacterState enumerates every behavioral state a character can occupy.
// WANDERING is the initial state; every other state eventually returns to it.
type CharacterState string

const (
	StateWandering     CharacterState = "WANDERING"
	StateTalking       CharacterState = "TALKING"
	StateSitting       CharacterState = "SITTING"
	StateInteracting   CharacterState = "INTERACTING"
	StateAudience      CharacterState = "AUDIENCE"
	StatePresenting    CharacterState = "PRESENTING"
	StateWalkingToArea CharacterState = "WALKING_TO_AREA"
	StateDiscussing    CharacterState = "DISCUSSING"
	StateConversing    CharacterState = "CONVERSING"
)

// AllCharacterStates lists the closed set of valid states.
var AllCharacterStates = []CharacterState{
	StateWandering,
	StateTalking,
	StateSitting,
	StateInteracting,
	StateAudience,
	StatePresenting,
	StateWalkingToArea,
	StateDiscussing,
	StateConversing,
}

// Valid reports whether s is a member of the defined state set.
func (s CharacterState) Valid() bool {
	for _, known := range AllCharacterStates {
		if s == known {
			return true
		}
	}
	return false
}

// EncounterRole is the relative ranking inside a paired or grouped encounter.
type EncounterRole string

const (
	RoleNone       EncounterRole = ""
	RoleDominant   EncounterRole = "dominant"
	RoleSubmissive EncounterRole = "submissive"
)

// Facing is the sprite direction chosen from the dominant velocity axis.
type Facing string

const (
	FacingUp    Facing = "up"
	FacingDown  Facing = "down"
	FacingLeft  Facing = "left"
	FacingRight Facing = "right"
)

// CharacterView is the read-only rendering snapshot of one character,
// exposed to the presentation layer over HTTP and WebSocket.
type CharacterView struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	X      float64        `json:"x"`
	Y      float64        `json:"y"`
	Z      float64        `json:"z"`
	VX     float64        `json:"vx"`
	VY     float64        `json:"vy"`
	Aura   float64        `json:"aura"`
	State  CharacterState `json:"state"`
	Role   EncounterRole  `json:"role,omitempty"`
	Facing Facing         `json:"facing"`
	Frame  int            `json:"frame"`
	Speech string         `json:"speech,omitempty"`
}
