// internal/sim/world.go
package sim

import (
	"time"

	"github.com/google/uuid"
	"github.com/voxalab/pitchvillage/internal/models"
)

// GroupKind distinguishes protocol encounters from discussion groups.
type GroupKind string

const (
	GroupEncounter  GroupKind = "encounter"
	GroupDiscussion GroupKind = "discussion"
)

// Group is one entry of the central group table. Characters reference a
// group by id so membership is shared through the table rather than through
// per-member copies.
type Group struct {
	ID          string
	Kind        GroupKind
	Members     []string
	CircleID    string
	CX, CY      float64
	RemainingMS float64
}

// conversation is one active lightweight exchange.
type conversation struct {
	RemainingMS float64
}

// World is the explicit simulation context: the roster, trap circles, group
// table, interaction graph, and history. All mutation happens inside the
// owning tick loop; nothing here is safe for concurrent use.
type World struct {
	Cfg  Config
	Mode models.SimMode

	rng Rand

	characters []*Character
	charIndex  map[string]*Character

	circles []*models.TrapCircle

	groups           map[string]*Group
	activeDiscussion string

	conversations        map[PairKey]*conversation
	discussionCooldownMS float64

	graph   *InteractionGraph
	history *History

	tick uint64
}

// NewWorld creates an empty world in normal mode.
func NewWorld(cfg Config, rng Rand) *World {
	return &World{
		Cfg:           cfg,
		Mode:          models.ModeNormal,
		rng:           rng,
		charIndex:     make(map[string]*Character),
		groups:        make(map[string]*Group),
		conversations: make(map[PairKey]*conversation),
		graph:         NewInteractionGraph(),
		history:       NewHistory(cfg.HistoryCap),
	}
}

// Populate builds the roster from persona data, replacing any previous one.
func (w *World) Populate(personas []models.Persona) {
	w.characters = w.characters[:0]
	w.charIndex = make(map[string]*Character, len(personas))
	for _, p := range personas {
		c := NewCharacter(p, w.Cfg, w.rng)
		w.characters = append(w.characters, c)
		w.charIndex[c.ID] = c
	}
	w.groups = make(map[string]*Group)
	w.conversations = make(map[PairKey]*conversation)
	w.activeDiscussion = ""
	w.circles = nil
	w.graph.Clear()
	w.history.Clear()
}

// Tick advances the whole simulation by dtMS: every character first, then
// the social protocol and graph decay, in fixed order.
func (w *World) Tick(dtMS float64) {
	w.tick++
	for _, c := range w.characters {
		w.stepCharacter(c, dtMS)
	}
	w.resolveCollisions()
	for _, c := range w.characters {
		c.advanceAnimation(dtMS)
	}
	w.stepSocial(dtMS)
}

// TickCount returns the number of ticks processed.
func (w *World) TickCount() uint64 {
	return w.tick
}

// Characters returns the live roster. Callers inside the tick loop only.
func (w *World) Characters() []*Character {
	return w.characters
}

// Character looks up one character by id.
func (w *World) Character(id string) (*Character, bool) {
	c, ok := w.charIndex[id]
	return c, ok
}

// Group looks up one group by id.
func (w *World) Group(id string) (*Group, bool) {
	g, ok := w.groups[id]
	return g, ok
}

// Graph exposes the live interaction graph.
func (w *World) Graph() *InteractionGraph {
	return w.graph
}

// History exposes the snapshot buffer.
func (w *World) History() *History {
	return w.history
}

// AddCircle creates a trap circle and returns a copy of it.
func (w *World) AddCircle(x, y, r float64, origin models.CircleOrigin) models.TrapCircle {
	return *w.addCircle(x, y, r, origin, "")
}

func (w *World) addCircle(x, y, r float64, origin models.CircleOrigin, groupID string) *models.TrapCircle {
	circle := &models.TrapCircle{
		ID:      uuid.NewString(),
		X:       x,
		Y:       y,
		Radius:  r,
		Origin:  origin,
		GroupID: groupID,
	}
	w.circles = append(w.circles, circle)
	return circle
}

// RemoveCircle deletes a circle by id; unknown ids are a no-op.
func (w *World) RemoveCircle(id string) bool {
	for i, circle := range w.circles {
		if circle.ID == id {
			w.circles = append(w.circles[:i], w.circles[i+1:]...)
			return true
		}
	}
	return false
}

// ClearCircles removes every circle with one of the given origins, or all
// circles when none are given.
func (w *World) ClearCircles(origins ...models.CircleOrigin) {
	if len(origins) == 0 {
		w.circles = nil
		return
	}
	keep := w.circles[:0]
	for _, circle := range w.circles {
		matched := false
		for _, origin := range origins {
			if circle.Origin == origin {
				matched = true
				break
			}
		}
		if !matched {
			keep = append(keep, circle)
		}
	}
	w.circles = keep
}

func (w *World) circleByID(id string) (*models.TrapCircle, bool) {
	for _, circle := range w.circles {
		if circle.ID == id {
			return circle, true
		}
	}
	return nil, false
}

// Circles returns a copy of all circles for rendering.
func (w *World) Circles() []models.TrapCircle {
	out := make([]models.TrapCircle, 0, len(w.circles))
	for _, circle := range w.circles {
		out = append(out, *circle)
	}
	return out
}

// StartDiscussion gathers the given characters into a discussion group
// centered at (cx, cy). A durationMS <= 0 makes the group persist until it
// is ended explicitly (orchestrator staging). Missing ids are skipped.
func (w *World) StartDiscussion(ids []string, cx, cy, durationMS float64) string {
	g := &Group{
		ID:          uuid.NewString(),
		Kind:        GroupDiscussion,
		CX:          cx,
		CY:          cy,
		RemainingMS: durationMS,
	}
	for _, id := range ids {
		if c, ok := w.charIndex[id]; ok {
			g.Members = append(g.Members, c.ID)
			c.BeginDiscussing(g.ID, cx, cy)
		}
	}
	if len(g.Members) == 0 {
		return ""
	}
	w.groups[g.ID] = g
	return g.ID
}

// EndGroup terminates a group for every member simultaneously, restoring
// each member's saved velocity and removing the associated trap circle.
// Unknown group ids and members missing from the roster are skipped.
func (w *World) EndGroup(id string) {
	g, ok := w.groups[id]
	if !ok {
		return
	}
	for _, memberID := range g.Members {
		if c, ok := w.charIndex[memberID]; ok {
			c.EndComposite(w.Cfg, w.rng)
		}
	}
	if g.CircleID != "" {
		w.RemoveCircle(g.CircleID)
	}
	if w.activeDiscussion == id {
		w.activeDiscussion = ""
		w.discussionCooldownMS = w.Cfg.DiscussionCooldownMS
	}
	delete(w.groups, id)
}

// ResetAll ends every group and conversation, returns every character to
// WANDERING with a fresh heading, and clears protocol and staging circles.
// User circles survive a reset.
func (w *World) ResetAll() {
	for id := range w.groups {
		w.EndGroup(id)
	}
	for key := range w.conversations {
		delete(w.conversations, key)
	}
	for _, c := range w.characters {
		c.EndComposite(w.Cfg, w.rng)
		c.Speech = ""
		c.speechMS = 0
	}
	w.ClearCircles(models.CircleOriginProtocol, models.CircleOriginStaging)
}

// SetMode switches the visualization mode. Switching tears down everything
// owned by the previous mode: user circles, groups, and conversations.
func (w *World) SetMode(mode models.SimMode) {
	if mode == w.Mode {
		return
	}
	w.ResetAll()
	w.ClearCircles(models.CircleOriginUser)
	w.Mode = mode
}

// Ask injects a user question: the addressed character (or everyone when id
// is empty) starts talking for the configured speech duration.
func (w *World) Ask(characterID, text string) {
	if characterID != "" {
		if c, ok := w.charIndex[characterID]; ok {
			c.Say(text, w.Cfg.SpeechDurationMS)
		}
		return
	}
	for _, c := range w.characters {
		c.Say(text, w.Cfg.SpeechDurationMS)
	}
}

// ToggleSit flips a character between WANDERING and SITTING. Unknown ids
// are reported, not mutated.
func (w *World) ToggleSit(id string) bool {
	c, ok := w.charIndex[id]
	if !ok {
		return false
	}
	c.ToggleSitting(w.Cfg, w.rng)
	return true
}

// Snapshot freezes the graph and all positions into the history buffer.
func (w *World) Snapshot(ts time.Time) {
	positions := make(map[string]models.Position, len(w.characters))
	for _, c := range w.characters {
		positions[c.ID] = models.Position{X: c.X, Y: c.Y}
	}
	w.history.Capture(models.GraphSnapshot{
		Timestamp: ts,
		Edges:     w.graph.Edges(),
		Positions: positions,
	})
}

// Views returns the read-only rendering snapshot of the roster.
func (w *World) Views() []models.CharacterView {
	out := make([]models.CharacterView, 0, len(w.characters))
	for _, c := range w.characters {
		out = append(out, c.View())
	}
	return out
}

// AllWalked reports whether every character has finished its walk.
func (w *World) AllWalked() bool {
	for _, c := range w.characters {
		if c.Walking {
			return false
		}
	}
	return true
}

func (w *World) clampX(x float64) float64 {
	return clamp(x, w.Cfg.HitBoxRadius, w.Cfg.WorldWidth-w.Cfg.HitBoxRadius)
}

func (w *World) clampY(y float64) float64 {
	return clamp(y, w.Cfg.HitBoxRadius, w.Cfg.WorldHeight-w.Cfg.HitBoxRadius)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
