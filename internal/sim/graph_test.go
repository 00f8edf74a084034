// internal/sim/graph_test.go
package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyForCanonicalOrder(t *testing.T) {
	assert.Equal(t, KeyFor("a", "b"), KeyFor("b", "a"))
	assert.Equal(t, "a", KeyFor("b", "a").A)
}

func TestRecordInteractionAccumulates(t *testing.T) {
	g := NewInteractionGraph()
	g.RecordInteraction("a", "b", 100)
	g.RecordInteraction("b", "a", 50)

	assert.Equal(t, 150.0, g.Weight("a", "b"))
	assert.Equal(t, 1, g.Len())
}

func TestRecordInteractionIgnoresSelfAndNonPositive(t *testing.T) {
	g := NewInteractionGraph()
	g.RecordInteraction("a", "a", 100)
	g.RecordInteraction("a", "b", 0)
	g.RecordInteraction("a", "b", -10)

	assert.Equal(t, 0, g.Len())
}

func TestDecayExactRateAndDeletion(t *testing.T) {
	g := NewInteractionGraph()
	g.RecordInteraction("a", "b", 10000)

	// Each call removes rate*dms/1000 = 150*1000/1000 = 150 weight.
	for i := 0; i < 66; i++ {
		g.DecayAll(150, 1000, nil)
	}
	require.Equal(t, 1, g.Len())
	assert.InDelta(t, 10000-66*150, g.Weight("a", "b"), 1e-9)

	// 67 more calls push cumulative decay past the recorded weight.
	for i := 0; i < 67; i++ {
		g.DecayAll(150, 1000, nil)
	}
	assert.Equal(t, 0, g.Len())
	assert.Equal(t, 0.0, g.Weight("a", "b"))
}

func TestDecayNeverGoesNegative(t *testing.T) {
	g := NewInteractionGraph()
	g.RecordInteraction("a", "b", 10)
	g.DecayAll(1000, 1000, nil)

	assert.Equal(t, 0, g.Len())
	for _, e := range g.Edges() {
		assert.GreaterOrEqual(t, e.Weight, 0.0)
	}
}

func TestActiveEdgeNeverDecays(t *testing.T) {
	g := NewInteractionGraph()
	g.RecordInteraction("a", "b", 500)
	active := map[PairKey]bool{KeyFor("a", "b"): true}

	for i := 0; i < 100; i++ {
		g.RecordInteraction("a", "b", 33)
		before := g.Weight("a", "b")
		g.DecayAll(150, 33, active)
		assert.GreaterOrEqual(t, g.Weight("a", "b"), before)
	}
}

func TestEdgesSortedCopy(t *testing.T) {
	g := NewInteractionGraph()
	g.RecordInteraction("c", "d", 10)
	g.RecordInteraction("a", "b", 20)
	g.RecordInteraction("a", "c", 30)

	edges := g.Edges()
	require.Len(t, edges, 3)
	assert.Equal(t, "a", edges[0].A)
	assert.Equal(t, "b", edges[0].B)
	assert.Equal(t, "a", edges[1].A)
	assert.Equal(t, "c", edges[1].B)
	assert.Equal(t, "c", edges[2].A)
}
