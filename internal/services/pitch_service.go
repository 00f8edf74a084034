// internal/services/pitch_service.go
package services

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/voxalab/pitchvillage/internal/models"
	"github.com/voxalab/pitchvillage/internal/scheduler"
	"github.com/voxalab/pitchvillage/internal/sim"
)

// PitchService drives the three-stage pitch scenario:
// IDLE -> PRESENTING -> DISCUSSING -> PRESENTING -> ..., advanced externally
// one step at a time. Each stage owns a scheduler scope; transitions cancel
// the previous scope so stale timers and fetch callbacks never touch the
// superseded stage.
type PitchService struct {
	logger  *zap.Logger
	engine  *SimService
	content ContentClient

	presenterName  string
	contentTimeout time.Duration

	// PollInterval gates the walk-completion check; RevealInterval paces the
	// chunked content reveal. Tests shrink both.
	PollInterval   time.Duration
	RevealInterval time.Duration

	mu          sync.Mutex
	stage       models.PitchStage
	gen         int
	scope       *scheduler.Scope
	plan        string
	script      string
	presenterID string
	userAgentID string
}

// NewPitchService wires the orchestrator to the engine and content service.
func NewPitchService(engine *SimService, content ContentClient, presenterName string, contentTimeout time.Duration, logger *zap.Logger) *PitchService {
	return &PitchService{
		logger:         logger,
		engine:         engine,
		content:        content,
		presenterName:  presenterName,
		contentTimeout: contentTimeout,
		PollInterval:   500 * time.Millisecond,
		RevealInterval: 3 * time.Second,
		stage:          models.StageIdle,
	}
}

// Stage returns the current scenario stage.
func (p *PitchService) Stage() models.PitchStage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// Plan returns the last fetched presentation outline.
func (p *PitchService) Plan() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.plan
}

// Script returns the last fetched presentation script.
func (p *PitchService) Script() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.script
}

// StartSession builds the roster: scenario context goes to the content
// service, which answers with agent personas; the pitcher's background
// registers the user agent. Both calls fall back to fixed placeholders so a
// dead content service never blocks the session.
func (p *PitchService) StartSession(ctx context.Context, scenario, userContext string, fallbackCount int) {
	reqCtx, cancel := context.WithTimeout(ctx, p.contentTimeout)
	defer cancel()

	personas, err := p.content.SetContext(reqCtx, "pitch", scenario)
	if err != nil || len(personas) == 0 {
		p.logger.Warn("content service context failed, using placeholder personas", zap.Error(err))
		personas = PlaceholderPersonas(fallbackCount)
	}

	userID, err := p.content.SetUserContext(reqCtx, userContext)
	if err != nil {
		p.logger.Warn("content service user context failed", zap.Error(err))
		userID = ""
	}

	p.mu.Lock()
	if p.scope != nil {
		p.scope.Cancel()
		p.scope = nil
	}
	p.gen++
	p.stage = models.StageIdle
	p.plan, p.script = "", ""
	p.userAgentID = userID
	p.mu.Unlock()

	p.engine.DoSync(func(w *sim.World) {
		w.Populate(personas)
	})
	p.logger.Info("session started", zap.Int("characters", len(personas)))
}

// Advance moves the scenario one step along the cycle and returns the new
// stage.
func (p *PitchService) Advance() models.PitchStage {
	p.mu.Lock()
	next := p.stage.Next()
	p.stage = next
	gen, scope := p.beginStageLocked()
	p.mu.Unlock()

	switch next {
	case models.StagePresenting:
		p.enterPresenting(gen, scope)
	case models.StageDiscussing:
		p.enterDiscussing(gen, scope)
	}
	p.logger.Info("pitch stage advanced", zap.String("stage", string(next)))
	return next
}

// Reset returns the scenario to IDLE and releases every stage timer.
func (p *PitchService) Reset() {
	p.mu.Lock()
	if p.scope != nil {
		p.scope.Cancel()
		p.scope = nil
	}
	p.gen++
	p.stage = models.StageIdle
	p.plan, p.script = "", ""
	p.mu.Unlock()

	p.engine.Do(func(w *sim.World) {
		w.ResetAll()
	})
}

// ModeChanged cancels the active stage's timers and returns the scenario to
// IDLE after a visualization mode switch, so no polling or reveal callback
// outlives the mode that started it. The switch itself already reset the
// world; nothing is posted to the engine here.
func (p *PitchService) ModeChanged() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.scope != nil {
		p.scope.Cancel()
		p.scope = nil
	}
	p.gen++
	p.stage = models.StageIdle
	p.plan, p.script = "", ""
}

// beginStageLocked cancels the previous stage's scope and opens a fresh one.
// The bumped generation makes in-flight fetch completions recognizably stale.
func (p *PitchService) beginStageLocked() (int, *scheduler.Scope) {
	if p.scope != nil {
		p.scope.Cancel()
	}
	p.gen++
	p.scope = scheduler.NewScope(p.engine)
	return p.gen, p.scope
}

// current reports whether gen is still the live generation.
func (p *PitchService) current(gen int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen == gen
}

// enterPresenting resets everyone to wandering, clears all trap circles,
// designates the presenter, and lays the rest out in a centered grid above
// the presenter. The script fetch waits until everyone has finished walking.
func (p *PitchService) enterPresenting(gen int, scope *scheduler.Scope) {
	p.engine.Do(func(w *sim.World) {
		w.ResetAll()
		w.ClearCircles()

		roster := w.Characters()
		if len(roster) == 0 {
			return
		}
		presenter := p.pickPresenter(roster)
		px := w.Cfg.WorldWidth / 2
		py := w.Cfg.WorldHeight * 0.72
		presenter.BeginFormation(models.StatePresenting, px, py)

		p.mu.Lock()
		p.presenterID = presenter.ID
		p.mu.Unlock()

		var audience []*sim.Character
		for _, c := range roster {
			if c.ID != presenter.ID {
				audience = append(audience, c)
			}
		}
		n := len(audience)
		if n == 0 {
			return
		}
		cols := GridCols(n)
		rows := GridRows(n, cols)

		const sx, sy = 64.0, 56.0
		startX := px - float64(cols-1)*sx/2
		startY := py - 200 - float64(rows-1)*sy
		for i, c := range audience {
			col := i % cols
			row := i / cols
			c.BeginFormation(models.StateAudience, startX+float64(col)*sx, startY+float64(row)*sy)
		}
	})

	go p.fetchPlan(gen)

	// Poll until the formation walk is complete, then fetch the script once.
	fetched := false
	scope.Every(p.PollInterval, func() {
		if fetched {
			return
		}
		if !p.engine.World().AllWalked() {
			return
		}
		fetched = true
		go p.fetchAndRevealScript(gen, scope)
	})
}

// enterDiscussing stages the containment circle in a corner, walks the
// presenter aside and the audience into the circle, and fetches the
// inter-agent conversation once everyone has arrived.
func (p *PitchService) enterDiscussing(gen int, scope *scheduler.Scope) {
	var discussIDs []string
	var cx, cy float64

	p.engine.Do(func(w *sim.World) {
		w.ResetAll()

		cx = w.Cfg.WorldWidth * 0.78
		cy = w.Cfg.WorldHeight * 0.72
		radius := w.Cfg.EncounterRadius * 1.8
		w.AddCircle(cx, cy, radius, models.CircleOriginStaging)

		p.mu.Lock()
		presenterID := p.presenterID
		p.mu.Unlock()

		roster := w.Characters()
		var members []*sim.Character
		for _, c := range roster {
			if c.ID == presenterID {
				c.BeginWalkTo(w.Cfg.WorldWidth*0.12, w.Cfg.WorldHeight*0.8)
				continue
			}
			members = append(members, c)
		}

		for i, c := range members {
			angle := 2 * math.Pi * float64(i) / float64(len(members))
			c.BeginWalkTo(cx+math.Cos(angle)*radius*0.55, cy+math.Sin(angle)*radius*0.55)
			discussIDs = append(discussIDs, c.ID)
		}
	})

	gathered := false
	scope.Every(p.PollInterval, func() {
		if gathered {
			return
		}
		w := p.engine.World()
		if !w.AllWalked() {
			return
		}
		gathered = true
		// Staging persists until the next stage transition ends the group.
		w.StartDiscussion(discussIDs, cx, cy, 0)
		go p.fetchAndRevealConversation(gen, scope, discussIDs)
	})
}

// fetchPlan retrieves the outline; failures become placeholder content.
func (p *PitchService) fetchPlan(gen int) {
	ctx, cancel := context.WithTimeout(context.Background(), p.contentTimeout)
	defer cancel()

	plan, err := p.content.FetchPlan(ctx)
	if err != nil {
		p.logger.Warn("plan fetch failed, using placeholder", zap.Error(err))
		plan = PlaceholderPlan
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.gen != gen {
		return
	}
	p.plan = plan
}

// fetchAndRevealScript retrieves the script and reveals it sentence by
// sentence through the presenter's speech. A stale generation is dropped.
func (p *PitchService) fetchAndRevealScript(gen int, scope *scheduler.Scope) {
	ctx, cancel := context.WithTimeout(context.Background(), p.contentTimeout)
	defer cancel()

	script, err := p.content.FetchScript(ctx)
	if err != nil || script == "" {
		p.logger.Warn("script fetch failed, using placeholder", zap.Error(err))
		script = PlaceholderScript
	}

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		return
	}
	p.script = script
	presenterID := p.presenterID
	p.mu.Unlock()

	chunks := SplitSentences(script)
	i := 0
	scope.Every(p.RevealInterval, func() {
		if i >= len(chunks) {
			return
		}
		p.engine.World().Ask(presenterID, chunks[i])
		i++
	})
}

// fetchAndRevealConversation retrieves the scripted discussion and plays it
// back one line per interval. Lines addressed to ids missing from the
// roster are skipped silently.
func (p *PitchService) fetchAndRevealConversation(gen int, scope *scheduler.Scope, agentIDs []string) {
	ctx, cancel := context.WithTimeout(context.Background(), p.contentTimeout)
	defer cancel()

	lines, err := p.content.FetchConversation(ctx)
	if err != nil || len(lines) == 0 {
		p.logger.Warn("conversation fetch failed, using placeholder", zap.Error(err))
		lines = PlaceholderConversation(agentIDs)
	}

	if !p.current(gen) {
		return
	}

	i := 0
	scope.Every(p.RevealInterval, func() {
		if i >= len(lines) {
			return
		}
		line := lines[i]
		i++
		if line.AgentID == "" {
			return
		}
		p.engine.World().Ask(line.AgentID, line.Message)
	})
}

// pickPresenter prefers a name match, then the registered user agent, then
// the first character.
func (p *PitchService) pickPresenter(roster []*sim.Character) *sim.Character {
	p.mu.Lock()
	name := p.presenterName
	userID := p.userAgentID
	p.mu.Unlock()

	if name != "" {
		for _, c := range roster {
			if strings.EqualFold(c.Name, name) {
				return c
			}
		}
	}
	if userID != "" {
		for _, c := range roster {
			if c.ID == userID {
				return c
			}
		}
	}
	return roster[0]
}

// GridCols computes the audience grid width: min(8, ceil(sqrt(1.5*n))).
func GridCols(n int) int {
	if n <= 0 {
		return 0
	}
	cols := int(math.Ceil(math.Sqrt(1.5 * float64(n))))
	if cols > 8 {
		cols = 8
	}
	return cols
}

// GridRows computes the number of grid rows for n members and cols columns.
func GridRows(n, cols int) int {
	if cols <= 0 {
		return 0
	}
	return (n + cols - 1) / cols
}

// SplitSentences chunks text at sentence boundaries for interval reveal.
func SplitSentences(text string) []string {
	var chunks []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			if chunk := strings.TrimSpace(b.String()); chunk != "" {
				chunks = append(chunks, chunk)
			}
			b.Reset()
		}
	}
	if chunk := strings.TrimSpace(b.String()); chunk != "" {
		chunks = append(chunks, chunk)
	}
	return chunks
}
