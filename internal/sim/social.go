// internal/sim/social.go
package sim

import (
	"math"

	"github.com/google/uuid"
	"github.com/voxalab/pitchvillage/internal/models"
)

// stepSocial runs the interaction protocol for one tick, gated by the
// active mode's capability set.
func (w *World) stepSocial(dtMS float64) {
	caps := models.CapabilitiesFor(w.Mode)

	if caps.Pairing {
		w.stepEncounterExpiry(dtMS)
		w.stepPairing()
		w.stepJoining()
	}
	if caps.Discussing {
		w.stepDiscussion(dtMS)
	}
	if caps.Conversing {
		w.stepConversations(dtMS)
	}
	if caps.Gravity {
		w.applyGravity(dtMS)
	}

	w.graph.DecayAll(w.Cfg.DecayRatePerSecond, dtMS, w.activePairs())
}

// stepPairing scans all eligible pairs; when their interaction radii
// overlap, a per-tick probability roll may start an encounter.
func (w *World) stepPairing() {
	for i := 0; i < len(w.characters); i++ {
		a := w.characters[i]
		if !a.Eligible() {
			continue
		}
		for j := i + 1; j < len(w.characters); j++ {
			b := w.characters[j]
			if !b.Eligible() {
				continue
			}
			reach := a.InteractionRadius(w.Cfg) + b.InteractionRadius(w.Cfg)
			if distSq(a.X, a.Y, b.X, b.Y) > reach*reach {
				continue
			}
			if w.rng.Float64() >= w.Cfg.PairProb {
				continue
			}
			w.beginEncounter(a, b)
			break
		}
	}
}

// beginEncounter forms a dyadic encounter: the higher-aura character becomes
// dominant and stands at the far edge of a fixed-radius circle centered at
// the pair's midpoint; the lower-aura character is seated nearer the center.
// A trap circle is created at the same spot to host and bound the encounter.
func (w *World) beginEncounter(a, b *Character) {
	dominant, submissive := a, b
	if b.Aura > a.Aura {
		dominant, submissive = b, a
	}

	cx := (a.X + b.X) / 2
	cy := (a.Y + b.Y) / 2
	r := w.Cfg.EncounterRadius

	// Axis from the midpoint toward the dominant character; falls back to
	// vertical when the pair spawned on top of each other.
	ax, ay := dominant.X-cx, dominant.Y-cy
	norm := math.Hypot(ax, ay)
	if norm == 0 {
		ax, ay, norm = 0, -1, 1
	}
	ax /= norm
	ay /= norm

	domX := w.clampX(cx + ax*(r-w.Cfg.HitBoxRadius))
	domY := w.clampY(cy + ay*(r-w.Cfg.HitBoxRadius))
	subX := w.clampX(cx - ax*r*0.3)
	subY := w.clampY(cy - ay*r*0.3)

	group := &Group{
		ID:          uuid.NewString(),
		Kind:        GroupEncounter,
		Members:     []string{dominant.ID, submissive.ID},
		CX:          cx,
		CY:          cy,
		RemainingMS: w.Cfg.EncounterDurationMS,
	}
	circle := w.addCircle(cx, cy, r, models.CircleOriginProtocol, group.ID)
	group.CircleID = circle.ID
	w.groups[group.ID] = group

	dominant.BeginInteraction(group.ID, models.RoleDominant, domX, domY)
	submissive.BeginInteraction(group.ID, models.RoleSubmissive, subX, subY)
}

// stepJoining lets wandering characters near an encounter circle join with a
// reduced probability as additional submissive members. Joining mutates the
// group held in the central table, so membership stays shared.
func (w *World) stepJoining() {
	for _, g := range w.groups {
		if g.Kind != GroupEncounter {
			continue
		}
		circle, ok := w.circleByID(g.CircleID)
		if !ok {
			continue
		}
		for _, c := range w.characters {
			if c.State != models.StateWandering || !c.Eligible() {
				continue
			}
			near := circle.Radius * 1.5
			if distSq(c.X, c.Y, circle.X, circle.Y) > near*near {
				continue
			}
			if w.rng.Float64() >= w.Cfg.JoinProb {
				continue
			}
			w.joinEncounter(g, c)
		}
	}
}

// joinEncounter adds c as a submissive member, its target slot offset by its
// rank among the current submissive joiners.
func (w *World) joinEncounter(g *Group, c *Character) {
	rank := 0
	for _, id := range g.Members {
		if m, ok := w.charIndex[id]; ok && m.Role == models.RoleSubmissive {
			rank++
		}
	}
	g.Members = append(g.Members, c.ID)

	angle := math.Pi/2 + float64(rank)*(math.Pi/3)
	r := w.Cfg.EncounterRadius * 0.45
	tx := w.clampX(g.CX + math.Cos(angle)*r)
	ty := w.clampY(g.CY + math.Sin(angle)*r)
	c.BeginInteraction(g.ID, models.RoleSubmissive, tx, ty)
}

// stepEncounterExpiry counts down every encounter and ends expired ones for
// the whole group at once.
func (w *World) stepEncounterExpiry(dtMS float64) {
	for id, g := range w.groups {
		if g.Kind != GroupEncounter {
			continue
		}
		g.RemainingMS -= dtMS
		if g.RemainingMS <= 0 {
			w.EndGroup(id)
		}
	}
}

// stepDiscussion rotates spontaneous discussion groups: after a cooldown, a
// small per-tick probability selects 2-4 wandering characters and gathers
// them around their centroid for a fixed duration.
func (w *World) stepDiscussion(dtMS float64) {
	if w.activeDiscussion != "" {
		g, ok := w.groups[w.activeDiscussion]
		if !ok {
			w.activeDiscussion = ""
			return
		}
		g.RemainingMS -= dtMS
		if g.RemainingMS <= 0 {
			w.EndGroup(g.ID)
			w.discussionCooldownMS = w.Cfg.DiscussionCooldownMS
		}
		return
	}

	if w.discussionCooldownMS > 0 {
		w.discussionCooldownMS -= dtMS
		return
	}
	if w.rng.Float64() >= w.Cfg.DiscussionProb {
		return
	}

	var pool []*Character
	for _, c := range w.characters {
		if c.State == models.StateWandering && c.Eligible() {
			pool = append(pool, c)
		}
	}
	if len(pool) < 2 {
		return
	}

	size := 2 + w.rng.Intn(3)
	if size > len(pool) {
		size = len(pool)
	}
	// Partial Fisher-Yates: the first size entries become the group.
	for i := 0; i < size; i++ {
		j := i + w.rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	picked := pool[:size]

	var cx, cy float64
	for _, c := range picked {
		cx += c.X
		cy += c.Y
	}
	cx /= float64(size)
	cy /= float64(size)

	ids := make([]string, 0, size)
	for _, c := range picked {
		ids = append(ids, c.ID)
	}
	w.activeDiscussion = w.StartDiscussion(ids, cx, cy, w.Cfg.DiscussionDurationMS)
}

// stepConversations advances the lightweight exchanges: active pairs feed
// the interaction graph every tick, expired ones return both characters to
// WANDERING, and a small probability starts a new pair.
func (w *World) stepConversations(dtMS float64) {
	for key, conv := range w.conversations {
		w.graph.RecordInteraction(key.A, key.B, dtMS)
		conv.RemainingMS -= dtMS
		if conv.RemainingMS > 0 {
			continue
		}
		delete(w.conversations, key)
		for _, id := range []string{key.A, key.B} {
			if c, ok := w.charIndex[id]; ok && c.State == models.StateConversing {
				// No velocity change on either end of a conversation.
				c.State = models.StateWandering
				c.PartnerID = ""
			}
		}
	}

	if w.rng.Float64() >= w.Cfg.ConverseProb {
		return
	}
	var pool []*Character
	for _, c := range w.characters {
		if c.State == models.StateWandering && c.Eligible() {
			pool = append(pool, c)
		}
	}
	if len(pool) < 2 {
		return
	}
	i := w.rng.Intn(len(pool))
	j := w.rng.Intn(len(pool) - 1)
	if j >= i {
		j++
	}
	a, b := pool[i], pool[j]

	span := w.Cfg.ConverseMaxMS - w.Cfg.ConverseMinMS
	duration := w.Cfg.ConverseMinMS + w.rng.Float64()*span
	w.conversations[KeyFor(a.ID, b.ID)] = &conversation{RemainingMS: duration}
	a.BeginConversing(b.ID)
	b.BeginConversing(a.ID)
}

// applyGravity nudges each character's velocity toward its graph-connected
// partners, with force proportional to the capped edge weight. Pairs closer
// than the minimum separation are left alone to avoid overlap.
func (w *World) applyGravity(dtMS float64) {
	for _, edge := range w.graph.Edges() {
		a, okA := w.charIndex[edge.A]
		b, okB := w.charIndex[edge.B]
		if !okA || !okB {
			continue
		}
		dx, dy := b.X-a.X, b.Y-a.Y
		dist := math.Hypot(dx, dy)
		if dist <= w.Cfg.GravityMinSeparation {
			continue
		}
		weight := math.Min(edge.Weight, w.Cfg.GravityWeightCap)
		force := w.Cfg.GravityStrength * (weight / w.Cfg.GravityWeightCap) * dtMS / 1000
		nx, ny := dx/dist, dy/dist
		a.VX += nx * force
		a.VY += ny * force
		b.VX -= nx * force
		b.VY -= ny * force
	}
}

// activePairs returns the conversation pairs exempt from decay this tick.
func (w *World) activePairs() map[PairKey]bool {
	if len(w.conversations) == 0 {
		return nil
	}
	active := make(map[PairKey]bool, len(w.conversations))
	for key := range w.conversations {
		active[key] = true
	}
	return active
}
