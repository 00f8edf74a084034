// internal/sim/character_test.go
package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxalab/pitchvillage/internal/models"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.HeadingJitterProb = 0
	cfg.PairProb = 0
	cfg.JoinProb = 0
	cfg.DiscussionProb = 0
	cfg.ConverseProb = 0
	cfg.DecayRatePerSecond = 0
	return cfg
}

func testPersonas(n int) []models.Persona {
	out := make([]models.Persona, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, models.Persona{
			ID:   string(rune('a' + i)),
			Name: "Agent " + string(rune('A'+i)),
		})
	}
	return out
}

func newTestCharacter(cfg Config, rng Rand) *Character {
	return NewCharacter(models.Persona{ID: "a", Name: "Agent A"}, cfg, rng)
}

func TestNewCharacterSpawnsWandering(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))

	assert.Equal(t, models.StateWandering, c.State)
	assert.True(t, c.VX != 0 || c.VY != 0)
	assert.GreaterOrEqual(t, c.Aura, 0.0)
	assert.Less(t, c.Aura, 1.0)
	assert.True(t, c.X >= 0 && c.X <= cfg.WorldWidth)
	assert.True(t, c.Y >= 0 && c.Y <= cfg.WorldHeight)
}

func TestInteractionRadiusLinearInAura(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))

	c.Aura = 0
	assert.Equal(t, cfg.RadiusMin, c.InteractionRadius(cfg))

	c.Aura = 1
	assert.Equal(t, cfg.RadiusMax, c.InteractionRadius(cfg))

	c.Aura = 0.5
	assert.InDelta(t, (cfg.RadiusMin+cfg.RadiusMax)/2, c.InteractionRadius(cfg), 1e-9)

	// Strictly increasing.
	prev := -1.0
	for aura := 0.0; aura <= 1.0; aura += 0.1 {
		c.Aura = aura
		r := c.InteractionRadius(cfg)
		assert.Greater(t, r, prev)
		prev = r
	}
}

func TestEligible(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))

	assert.True(t, c.Eligible())

	c.State = models.StateSitting
	assert.True(t, c.Eligible())

	c.State = models.StateTalking
	assert.False(t, c.Eligible())

	c.State = models.StateWandering
	c.GroupID = "g"
	assert.False(t, c.Eligible())

	c.GroupID = ""
	c.PartnerID = "b"
	assert.False(t, c.Eligible())
}

func TestSayTransitionsWanderingToTalking(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))

	c.Say("hello", cfg.SpeechDurationMS)
	assert.Equal(t, models.StateTalking, c.State)
	assert.Equal(t, "hello", c.Speech)

	// A sitting character keeps its state but still shows the text.
	c.State = models.StateSitting
	c.Say("again", cfg.SpeechDurationMS)
	assert.Equal(t, models.StateSitting, c.State)
	assert.Equal(t, "again", c.Speech)
}

func TestToggleSittingSavesAndRestoresVelocity(t *testing.T) {
	cfg := testConfig()
	rng := NewRand(1)
	c := newTestCharacter(cfg, rng)
	c.VX, c.VY = 40, -30

	c.ToggleSitting(cfg, rng)
	assert.Equal(t, models.StateSitting, c.State)
	assert.Zero(t, c.VX)
	assert.Zero(t, c.VY)

	c.ToggleSitting(cfg, rng)
	assert.Equal(t, models.StateWandering, c.State)
	assert.Equal(t, 40.0, c.VX)
	assert.Equal(t, -30.0, c.VY)
}

func TestToggleSittingIgnoresOtherStates(t *testing.T) {
	cfg := testConfig()
	rng := NewRand(1)
	c := newTestCharacter(cfg, rng)
	c.State = models.StateDiscussing

	c.ToggleSitting(cfg, rng)
	assert.Equal(t, models.StateDiscussing, c.State)
}

func TestEndCompositeRestoresSavedVelocity(t *testing.T) {
	cfg := testConfig()
	rng := NewRand(1)
	c := newTestCharacter(cfg, rng)
	c.VX, c.VY = 25, 35

	c.BeginInteraction("g", models.RoleDominant, 100, 100)
	require.Equal(t, models.StateInteracting, c.State)
	require.Zero(t, c.VX)

	c.EndComposite(cfg, rng)
	assert.Equal(t, models.StateWandering, c.State)
	assert.Equal(t, models.RoleNone, c.Role)
	assert.Empty(t, c.GroupID)
	assert.False(t, c.Walking)
	assert.Equal(t, 25.0, c.VX)
	assert.Equal(t, 35.0, c.VY)
}

func TestEndCompositeNeverLeavesCharacterMotionless(t *testing.T) {
	cfg := testConfig()
	rng := NewRand(1)
	c := newTestCharacter(cfg, rng)

	// Force a saved velocity of zero; a fresh heading must be synthesized.
	c.VX, c.VY = 0, 0
	c.BeginDiscussing("g", 200, 200)
	c.EndComposite(cfg, rng)

	assert.True(t, c.VX != 0 || c.VY != 0)
}

func TestBeginFormationZeroesVelocityAndWalks(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))

	c.BeginFormation(models.StateAudience, 300, 400)
	assert.Equal(t, models.StateAudience, c.State)
	assert.True(t, c.Walking)
	assert.Equal(t, 300.0, c.TargetX)
	assert.Equal(t, 400.0, c.TargetY)
	assert.Zero(t, c.VX)
	assert.Zero(t, c.VY)
}

func TestBeginConversingKeepsVelocity(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))
	vx, vy := c.VX, c.VY

	c.BeginConversing("b")
	assert.Equal(t, models.StateConversing, c.State)
	assert.Equal(t, "b", c.PartnerID)
	assert.Equal(t, vx, c.VX)
	assert.Equal(t, vy, c.VY)
}

func TestViewMirrorsCharacter(t *testing.T) {
	cfg := testConfig()
	c := newTestCharacter(cfg, NewRand(1))
	c.Say("hi", cfg.SpeechDurationMS)

	v := c.View()
	assert.Equal(t, c.ID, v.ID)
	assert.Equal(t, c.X, v.X)
	assert.Equal(t, c.State, v.State)
	assert.Equal(t, "hi", v.Speech)
}
