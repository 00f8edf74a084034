// internal/sim/graph.go
package sim

import (
	"sort"

	"github.com/voxalab/pitchvillage/internal/models"
)

// PairKey identifies an unordered character pair; A and B are canonically
// ordered so (x,y) and (y,x) map to the same edge.
type PairKey struct {
	A, B string
}

// KeyFor builds the canonical key for two character ids.
func KeyFor(a, b string) PairKey {
	if b < a {
		a, b = b, a
	}
	return PairKey{A: a, B: b}
}

// InteractionGraph accumulates time spent conversing per character pair.
// Weights grow while a pair is active and decay linearly while idle; an edge
// whose weight reaches zero is removed.
type InteractionGraph struct {
	edges map[PairKey]float64
}

// NewInteractionGraph returns an empty graph.
func NewInteractionGraph() *InteractionGraph {
	return &InteractionGraph{edges: make(map[PairKey]float64)}
}

// RecordInteraction adds dms milliseconds of conversation to the pair's
// edge, creating it if absent.
func (g *InteractionGraph) RecordInteraction(a, b string, dms float64) {
	if a == b || dms <= 0 {
		return
	}
	g.edges[KeyFor(a, b)] += dms
}

// DecayAll subtracts ratePerSecond*dms/1000 from every edge not present in
// active, deleting edges whose weight reaches zero or below. Growth and
// decay share the same per-tick time basis, so a continuously active edge
// never decays.
func (g *InteractionGraph) DecayAll(ratePerSecond, dms float64, active map[PairKey]bool) {
	loss := ratePerSecond * dms / 1000
	if loss <= 0 {
		return
	}
	for key, weight := range g.edges {
		if active[key] {
			continue
		}
		weight -= loss
		if weight <= 0 {
			delete(g.edges, key)
			continue
		}
		g.edges[key] = weight
	}
}

// Weight returns the current weight of the pair's edge, zero if absent.
func (g *InteractionGraph) Weight(a, b string) float64 {
	return g.edges[KeyFor(a, b)]
}

// Len returns the number of live edges.
func (g *InteractionGraph) Len() int {
	return len(g.edges)
}

// Edges returns a sorted copy of all edges for rendering and snapshots.
func (g *InteractionGraph) Edges() []models.InteractionEdge {
	out := make([]models.InteractionEdge, 0, len(g.edges))
	for key, weight := range g.edges {
		out = append(out, models.InteractionEdge{A: key.A, B: key.B, Weight: weight})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].A != out[j].A {
			return out[i].A < out[j].A
		}
		return out[i].B < out[j].B
	})
	return out
}

// Clear drops every edge.
func (g *InteractionGraph) Clear() {
	g.edges = make(map[PairKey]float64)
}
