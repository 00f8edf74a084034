// internal/sim/character.go
package sim

import (
	"math"

	"github.com/voxalab/pitchvillage/internal/models"
)

// Character is one autonomous agent. It is created once per session from a
// persona, mutated every tick by its own transition and step methods, and
// never destroyed — only reset between scenario stages.
type Character struct {
	ID   string
	Name string
	Bio  string

	X, Y, Z    float64
	VX, VY, VZ float64

	// Aura is a fixed random trait in [0,1]. It determines the interaction
	// radius and decides dominance when an encounter forms.
	Aura float64

	State  models.CharacterState
	Role   models.EncounterRole
	Facing models.Facing

	Frame      int
	frameAccum float64

	Speech   string
	speechMS float64

	savedVX, savedVY float64
	hasSavedVelocity bool

	// GroupID indexes into the world's group table. Group membership is
	// shared through the table, not through per-character copies.
	GroupID string

	Walking          bool
	TargetX, TargetY float64

	// Discussion center the character faces while discussing.
	DiscussX, DiscussY float64

	// Conversing partner (abstract mode).
	PartnerID string

	prevX, prevY float64
}

// NewCharacter creates a character at a random position with a random
// heading and a random aura.
func NewCharacter(p models.Persona, cfg Config, rng Rand) *Character {
	c := &Character{
		ID:     p.ID,
		Name:   p.Name,
		Bio:    p.Bio,
		X:      cfg.WorldWidth * rng.Float64(),
		Y:      cfg.WorldHeight * rng.Float64(),
		Aura:   rng.Float64(),
		State:  models.StateWandering,
		Facing: models.FacingDown,
	}
	c.randomHeading(cfg, rng)
	c.prevX, c.prevY = c.X, c.Y
	return c
}

// InteractionRadius is strictly increasing and linear in aura: RadiusMin at
// aura=0, RadiusMax at aura=1.
func (c *Character) InteractionRadius(cfg Config) float64 {
	return cfg.RadiusMin + c.Aura*(cfg.RadiusMax-cfg.RadiusMin)
}

// Eligible reports whether the character may enter a new composite state
// (INTERACTING, DISCUSSING, CONVERSING): it must not already be committed.
func (c *Character) Eligible() bool {
	if c.GroupID != "" || c.PartnerID != "" {
		return false
	}
	return c.State == models.StateWandering || c.State == models.StateSitting
}

// randomHeading assigns a fresh direction at base speed.
func (c *Character) randomHeading(cfg Config, rng Rand) {
	angle := 2 * math.Pi * rng.Float64()
	c.VX = math.Cos(angle) * cfg.BaseSpeed
	c.VY = math.Sin(angle) * cfg.BaseSpeed
}

func (c *Character) saveVelocity() {
	c.savedVX, c.savedVY = c.VX, c.VY
	c.hasSavedVelocity = true
}

// restoreVelocity puts the saved velocity back, or synthesizes a new random
// heading when nothing was saved, so the character never stays motionless.
func (c *Character) restoreVelocity(cfg Config, rng Rand) {
	if c.hasSavedVelocity && (c.savedVX != 0 || c.savedVY != 0) {
		c.VX, c.VY = c.savedVX, c.savedVY
	} else {
		c.randomHeading(cfg, rng)
	}
	c.hasSavedVelocity = false
}

// Say puts speech text on the character for the configured duration. A
// wandering character transitions to TALKING; other states keep their state
// and just show the text.
func (c *Character) Say(text string, durationMS float64) {
	c.Speech = text
	c.speechMS = durationMS
	if c.State == models.StateWandering {
		c.State = models.StateTalking
	}
}

// ToggleSitting flips between WANDERING and SITTING, saving the velocity on
// the way down and restoring it on the way up. Any other state is a no-op.
func (c *Character) ToggleSitting(cfg Config, rng Rand) {
	switch c.State {
	case models.StateWandering:
		c.saveVelocity()
		c.VX, c.VY = 0, 0
		c.State = models.StateSitting
	case models.StateSitting:
		c.State = models.StateWandering
		c.restoreVelocity(cfg, rng)
	}
}

// BeginInteraction commits the character to an encounter group with the
// given role and walk target.
func (c *Character) BeginInteraction(groupID string, role models.EncounterRole, tx, ty float64) {
	c.saveVelocity()
	c.VX, c.VY = 0, 0
	c.State = models.StateInteracting
	c.Role = role
	c.GroupID = groupID
	c.Walking = true
	c.TargetX, c.TargetY = tx, ty
}

// BeginWalkTo sends the character toward a point; on arrival it returns to
// WANDERING with a fresh random heading.
func (c *Character) BeginWalkTo(tx, ty float64) {
	c.State = models.StateWalkingToArea
	c.Walking = true
	c.TargetX, c.TargetY = tx, ty
}

// BeginFormation places the character into an orchestrator formation slot
// (AUDIENCE or PRESENTING). The walking flag is cleared on arrival and the
// facing stays fixed afterwards.
func (c *Character) BeginFormation(state models.CharacterState, tx, ty float64) {
	c.saveVelocity()
	c.VX, c.VY = 0, 0
	c.State = state
	c.Walking = true
	c.TargetX, c.TargetY = tx, ty
}

// BeginDiscussing zeroes the velocity and turns the character toward the
// group centroid.
func (c *Character) BeginDiscussing(groupID string, cx, cy float64) {
	c.saveVelocity()
	c.VX, c.VY = 0, 0
	c.State = models.StateDiscussing
	c.GroupID = groupID
	c.DiscussX, c.DiscussY = cx, cy
	c.faceToward(cx, cy)
}

// BeginConversing starts the lightweight exchange; movement is unchanged.
func (c *Character) BeginConversing(partnerID string) {
	c.State = models.StateConversing
	c.PartnerID = partnerID
}

// EndComposite returns the character to WANDERING from any composite state,
// restoring the saved velocity or picking a new heading. Calling it on a
// character that is already wandering is a no-op.
func (c *Character) EndComposite(cfg Config, rng Rand) {
	if c.State == models.StateWandering {
		return
	}
	c.State = models.StateWandering
	c.Role = models.RoleNone
	c.GroupID = ""
	c.PartnerID = ""
	c.Walking = false
	c.restoreVelocity(cfg, rng)
}

// faceToward points the sprite along the dominant axis toward (x, y).
func (c *Character) faceToward(x, y float64) {
	dx, dy := x-c.X, y-c.Y
	if math.Abs(dx) >= math.Abs(dy) {
		if dx >= 0 {
			c.Facing = models.FacingRight
		} else {
			c.Facing = models.FacingLeft
		}
	} else {
		if dy >= 0 {
			c.Facing = models.FacingDown
		} else {
			c.Facing = models.FacingUp
		}
	}
}

// View extracts the read-only rendering snapshot.
func (c *Character) View() models.CharacterView {
	return models.CharacterView{
		ID:     c.ID,
		Name:   c.Name,
		X:      c.X,
		Y:      c.Y,
		Z:      c.Z,
		VX:     c.VX,
		VY:     c.VY,
		Aura:   c.Aura,
		State:  c.State,
		Role:   c.Role,
		Facing: c.Facing,
		Frame:  c.Frame,
		Speech: c.Speech,
	}
}
