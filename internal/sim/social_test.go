// internal/sim/social_test.go
package sim

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxalab/pitchvillage/internal/models"
)

func TestPairingFormsEncounterWithRoles(t *testing.T) {
	cfg := testConfig()
	cfg.PairProb = 1
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.X, a.Y, a.Aura = 400, 400, 0.9
	b.X, b.Y, b.Aura = 420, 400, 0.1

	w.Tick(33)

	require.Equal(t, models.StateInteracting, a.State)
	require.Equal(t, models.StateInteracting, b.State)
	assert.Equal(t, models.RoleDominant, a.Role)
	assert.Equal(t, models.RoleSubmissive, b.Role)

	require.NotEmpty(t, a.GroupID)
	assert.Equal(t, a.GroupID, b.GroupID)

	g, ok := w.Group(a.GroupID)
	require.True(t, ok)
	assert.Equal(t, GroupEncounter, g.Kind)
	assert.ElementsMatch(t, []string{"a", "b"}, g.Members)

	circles := w.Circles()
	require.Len(t, circles, 1)
	circle := circles[0]
	assert.Equal(t, models.CircleOriginProtocol, circle.Origin)
	assert.Equal(t, g.ID, circle.GroupID)
	assert.Equal(t, cfg.EncounterRadius, circle.Radius)
	assert.InDelta(t, g.CX, circle.X, 1e-9)
	assert.InDelta(t, g.CY, circle.Y, 1e-9)

	// Both walk toward their slots; the dominant heads for the circle edge,
	// the submissive stays closer to the center.
	assert.True(t, a.Walking)
	assert.True(t, b.Walking)
	domDist := math.Hypot(a.TargetX-circle.X, a.TargetY-circle.Y)
	subDist := math.Hypot(b.TargetX-circle.X, b.TargetY-circle.Y)
	assert.InDelta(t, cfg.EncounterRadius-cfg.HitBoxRadius, domDist, 1e-6)
	assert.InDelta(t, cfg.EncounterRadius*0.3, subDist, 1e-6)
}

func TestPairingRequiresRadiusOverlap(t *testing.T) {
	cfg := testConfig()
	cfg.PairProb = 1
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.X, a.Y, a.Aura = 100, 100, 0
	b.X, b.Y, b.Aura = 100+2*cfg.RadiusMax, 100, 0

	w.stepPairing()

	assert.Equal(t, models.StateWandering, a.State)
	assert.Equal(t, models.StateWandering, b.State)
}

func TestEncounterExpiryEndsWholeGroup(t *testing.T) {
	cfg := testConfig()
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.X, a.Y, a.Aura = 400, 400, 0.9
	b.X, b.Y, b.Aura = 420, 400, 0.1
	w.beginEncounter(a, b)
	gid := a.GroupID
	require.NotEmpty(t, gid)

	w.stepEncounterExpiry(cfg.EncounterDurationMS + 1)

	_, ok := w.Group(gid)
	assert.False(t, ok)
	assert.Equal(t, models.StateWandering, a.State)
	assert.Equal(t, models.StateWandering, b.State)
	assert.Equal(t, models.RoleNone, a.Role)
	assert.Empty(t, w.Circles())
}

func TestJoiningAddsSubmissiveMember(t *testing.T) {
	cfg := testConfig()
	cfg.JoinProb = 1
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(3))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	c, _ := w.Character("c")
	a.X, a.Y, a.Aura = 400, 400, 0.9
	b.X, b.Y, b.Aura = 420, 400, 0.1
	w.beginEncounter(a, b)

	g, _ := w.Group(a.GroupID)
	c.X, c.Y = g.CX+20, g.CY
	c.State = models.StateWandering

	w.stepJoining()

	assert.Len(t, g.Members, 3)
	assert.Contains(t, g.Members, "c")
	assert.Equal(t, models.StateInteracting, c.State)
	assert.Equal(t, models.RoleSubmissive, c.Role)
	assert.Equal(t, g.ID, c.GroupID)
	assert.True(t, c.Walking)
}

func TestJoiningIgnoresDistantCharacters(t *testing.T) {
	cfg := testConfig()
	cfg.JoinProb = 1
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(3))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	c, _ := w.Character("c")
	a.X, a.Y = 400, 400
	b.X, b.Y = 420, 400
	w.beginEncounter(a, b)

	g, _ := w.Group(a.GroupID)
	c.X, c.Y = g.CX+cfg.EncounterRadius*2, g.CY

	w.stepJoining()

	assert.Len(t, g.Members, 2)
	assert.Equal(t, models.StateWandering, c.State)
}

func TestDiscussionLifecycle(t *testing.T) {
	cfg := testConfig()
	cfg.DiscussionProb = 1
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(6))

	w.stepDiscussion(33)

	require.NotEmpty(t, w.activeDiscussion)
	g, ok := w.Group(w.activeDiscussion)
	require.True(t, ok)
	assert.Equal(t, GroupDiscussion, g.Kind)
	assert.GreaterOrEqual(t, len(g.Members), 2)
	assert.LessOrEqual(t, len(g.Members), 4)

	// Members face a shared centroid and stand still.
	for _, id := range g.Members {
		c, _ := w.Character(id)
		assert.Equal(t, models.StateDiscussing, c.State)
		assert.Equal(t, g.CX, c.DiscussX)
		assert.Zero(t, c.VX)
	}

	// No second discussion while one is active.
	w.stepDiscussion(33)
	assert.Equal(t, g.ID, w.activeDiscussion)

	// Expiry releases everyone and starts the cooldown.
	w.stepDiscussion(cfg.DiscussionDurationMS + 1)
	assert.Empty(t, w.activeDiscussion)
	assert.Positive(t, w.discussionCooldownMS)
	for _, id := range g.Members {
		c, _ := w.Character(id)
		assert.Equal(t, models.StateWandering, c.State)
	}

	// The cooldown blocks the next roll.
	w.stepDiscussion(33)
	assert.Empty(t, w.activeDiscussion)
}

func TestConversationFeedsGraphAndExpires(t *testing.T) {
	cfg := testConfig()
	cfg.ConverseProb = 1
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))
	w.SetMode(models.ModeAbstract)

	w.stepConversations(33)

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	require.Equal(t, models.StateConversing, a.State)
	require.Equal(t, models.StateConversing, b.State)
	assert.Equal(t, "b", a.PartnerID)
	assert.Equal(t, "a", b.PartnerID)
	require.Len(t, w.conversations, 1)

	conv := w.conversations[KeyFor("a", "b")]
	require.NotNil(t, conv)
	assert.GreaterOrEqual(t, conv.RemainingMS, cfg.ConverseMinMS)
	assert.LessOrEqual(t, conv.RemainingMS, cfg.ConverseMaxMS)

	// Active pairs feed the graph every tick. The starting roll must not
	// create a second pair while both are committed.
	w.stepConversations(33)
	w.stepConversations(33)
	assert.InDelta(t, 66, w.Graph().Weight("a", "b"), 1e-9)
	assert.Len(t, w.conversations, 1)

	// Expiry releases both without touching their velocities.
	avx, avy := a.VX, a.VY
	w.stepConversations(cfg.ConverseMaxMS + 1)
	assert.Equal(t, models.StateWandering, a.State)
	assert.Empty(t, a.PartnerID)
	assert.Equal(t, avx, a.VX)
	assert.Equal(t, avy, a.VY)
}

func TestActivePairIsDecayExemptDuringTick(t *testing.T) {
	cfg := testConfig()
	cfg.DecayRatePerSecond = 150
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))
	w.SetMode(models.ModeAbstract)

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.BeginConversing(b.ID)
	b.BeginConversing(a.ID)
	w.conversations[KeyFor(a.ID, b.ID)] = &conversation{RemainingMS: 1e9}

	prev := 0.0
	for i := 0; i < 100; i++ {
		w.Tick(33)
		weight := w.Graph().Weight(a.ID, b.ID)
		assert.GreaterOrEqual(t, weight, prev, "tick %d", i)
		prev = weight
	}
	assert.InDelta(t, 3300, prev, 1e-6)
}

func TestGravityPullsConnectedPairTogether(t *testing.T) {
	cfg := testConfig()
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.X, a.Y, a.VX, a.VY = 100, 100, 0, 0
	b.X, b.Y, b.VX, b.VY = 500, 100, 0, 0
	w.Graph().RecordInteraction(a.ID, b.ID, cfg.GravityWeightCap)

	w.applyGravity(1000)

	assert.Positive(t, a.VX)
	assert.Negative(t, b.VX)
	assert.InDelta(t, cfg.GravityStrength, a.VX, 1e-9)
}

func TestGravitySkipsCloseAndLightPairs(t *testing.T) {
	cfg := testConfig()
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.X, a.Y, a.VX, a.VY = 100, 100, 0, 0
	b.X, b.Y, b.VX, b.VY = 100+cfg.GravityMinSeparation-1, 100, 0, 0
	w.Graph().RecordInteraction(a.ID, b.ID, cfg.GravityWeightCap)

	w.applyGravity(1000)

	assert.Zero(t, a.VX)
	assert.Zero(t, b.VX)
}

func TestModeGatesCapabilities(t *testing.T) {
	cfg := testConfig()
	cfg.PairProb = 1
	cfg.ConverseProb = 1

	// Normal mode: pairing runs, conversations do not.
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))
	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.X, a.Y = 400, 400
	b.X, b.Y = 420, 400
	w.Tick(33)
	assert.Equal(t, models.StateInteracting, a.State)
	assert.Empty(t, w.conversations)

	// Abstract mode: conversations run, pairing does not.
	w2 := NewWorld(cfg, NewRand(7))
	w2.Populate(testPersonas(2))
	w2.SetMode(models.ModeAbstract)
	a2, _ := w2.Character("a")
	b2, _ := w2.Character("b")
	a2.X, a2.Y = 400, 400
	b2.X, b2.Y = 420, 400
	w2.Tick(33)
	assert.NotEqual(t, models.StateInteracting, a2.State)
	assert.Len(t, w2.conversations, 1)

	// Playback mode: nothing social runs at all.
	w3 := NewWorld(cfg, NewRand(7))
	w3.Populate(testPersonas(2))
	w3.SetMode(models.ModePlayback)
	a3, _ := w3.Character("a")
	b3, _ := w3.Character("b")
	a3.X, a3.Y = 400, 400
	b3.X, b3.Y = 420, 400
	w3.Tick(33)
	assert.Equal(t, models.StateWandering, a3.State)
	assert.Equal(t, models.StateWandering, b3.State)
	assert.Empty(t, w3.conversations)
}

func TestRecordThenDecayToDeletionEndToEnd(t *testing.T) {
	cfg := testConfig()
	cfg.DecayRatePerSecond = 150
	w := NewWorld(cfg, NewRand(7))
	w.Populate(testPersonas(2))
	w.SetMode(models.ModeAbstract)

	a, _ := w.Character("a")
	b, _ := w.Character("b")
	a.BeginConversing(b.ID)
	b.BeginConversing(a.ID)
	w.conversations[KeyFor(a.ID, b.ID)] = &conversation{RemainingMS: 10000}

	// 10 seconds of conversation accumulate 10000ms of weight; the idle
	// decay of 150/s then needs 67 more seconds to erase the edge.
	for i := 0; i < 800; i++ {
		w.Tick(100)
	}
	require.Empty(t, w.conversations)
	require.Equal(t, models.StateWandering, a.State)

	assert.Zero(t, w.Graph().Len())
	assert.Zero(t, w.Graph().Weight(a.ID, b.ID))
}
