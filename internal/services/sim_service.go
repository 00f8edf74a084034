// internal/services/sim_service.go
package services

import (
	"time"

	"go.uber.org/zap"

	apperrors "github.com/voxalab/pitchvillage/internal/errors"
	"github.com/voxalab/pitchvillage/internal/models"
	"github.com/voxalab/pitchvillage/internal/sim"
)

// FrameSink receives the render frame produced after every tick. The
// WebSocket hub implements it; a nil sink disables broadcasting.
type FrameSink interface {
	BroadcastFrame(frame models.Frame)
}

// StageProvider reports the current pitch stage for frame assembly.
type StageProvider func() models.PitchStage

// SimService owns the simulation run loop. One goroutine processes ticks,
// wall-clock snapshot captures, and posted operations, so all world mutation
// is serialized: no two ticks interleave and timers fire between ticks, never
// inside one.
type SimService struct {
	logger *zap.Logger
	world  *sim.World

	ops     chan func(*sim.World)
	quit    chan struct{}
	stopped chan struct{}

	sink  FrameSink
	stage StageProvider

	// onModeChange fires after a successful mode switch, outside the loop
	// closure. The scenario orchestrator hooks it so a mode exit cancels its
	// stage timers.
	onModeChange func(models.SimMode)

	// playbackIdx selects the history snapshot rendered in playback mode;
	// -1 renders live data. Loop-confined.
	playbackIdx int

	tickInterval time.Duration
}

// NewSimService builds the service around a fresh world.
func NewSimService(cfg sim.Config, rng sim.Rand, logger *zap.Logger) *SimService {
	tickRate := cfg.TickRate
	if tickRate <= 0 {
		tickRate = 30
	}
	return &SimService{
		logger:       logger,
		world:        sim.NewWorld(cfg, rng),
		ops:          make(chan func(*sim.World), 256),
		quit:         make(chan struct{}),
		stopped:      make(chan struct{}),
		playbackIdx:  -1,
		tickInterval: time.Second / time.Duration(tickRate),
	}
}

// SetFrameSink wires the broadcast target. Call before Start.
func (s *SimService) SetFrameSink(sink FrameSink) {
	s.sink = sink
}

// SetStageProvider wires the scenario stage for frame assembly. Call before
// Start.
func (s *SimService) SetStageProvider(stage StageProvider) {
	s.stage = stage
}

// SetModeChangeListener wires the mode-switch notification. Call before
// Start.
func (s *SimService) SetModeChangeListener(fn func(models.SimMode)) {
	s.onModeChange = fn
}

// World returns the live world. It must only be touched from closures
// running on the engine loop (Do, DoSync, or scheduler tasks).
func (s *SimService) World() *sim.World {
	return s.world
}

// Start launches the run loop.
func (s *SimService) Start() {
	go s.run()
}

// Stop shuts the loop down and waits for it to drain.
func (s *SimService) Stop() {
	close(s.quit)
	<-s.stopped
}

// Post implements scheduler.Runner: fn runs on the loop between ticks.
func (s *SimService) Post(fn func()) {
	s.Do(func(*sim.World) { fn() })
}

// Do queues an operation for the loop. It never blocks the loop itself.
func (s *SimService) Do(fn func(*sim.World)) {
	select {
	case s.ops <- fn:
	case <-s.quit:
	}
}

// DoSync runs fn on the loop and waits for completion. Used by API handlers
// for consistent reads.
func (s *SimService) DoSync(fn func(*sim.World)) {
	done := make(chan struct{})
	s.Do(func(w *sim.World) {
		fn(w)
		close(done)
	})
	select {
	case <-done:
	case <-s.quit:
	}
}

func (s *SimService) run() {
	defer close(s.stopped)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	snapInterval := s.world.Cfg.SnapshotInterval
	if snapInterval <= 0 {
		snapInterval = 5 * time.Second
	}
	snapTicker := time.NewTicker(snapInterval)
	defer snapTicker.Stop()

	dtMS := float64(s.tickInterval) / float64(time.Millisecond)

	for {
		select {
		case <-s.quit:
			return
		case <-ticker.C:
			s.world.Tick(dtMS)
			if s.sink != nil {
				s.sink.BroadcastFrame(s.buildFrame(time.Now()))
			}
		case <-snapTicker.C:
			s.world.Snapshot(time.Now())
		case fn := <-s.ops:
			fn(s.world)
		}
	}
}

// buildFrame assembles the render snapshot. In playback mode the frozen
// history snapshot replaces live positions and edges; the live world is
// never mutated by playback.
func (s *SimService) buildFrame(now time.Time) models.Frame {
	frame := models.Frame{
		Timestamp: now,
		Tick:      s.world.TickCount(),
		Mode:      s.world.Mode,
	}
	if s.stage != nil {
		frame.Stage = s.stage()
	} else {
		frame.Stage = models.StageIdle
	}

	if s.playbackIdx >= 0 {
		if snap, ok := s.world.History().At(s.playbackIdx); ok {
			frame.Playback = true
			frame.Characters = s.frozenViews(snap)
			frame.Edges = snap.Edges
			return frame
		}
	}

	frame.Characters = s.world.Views()
	frame.Circles = s.world.Circles()
	frame.Edges = s.world.Graph().Edges()
	return frame
}

// frozenViews rebuilds character views from snapshot positions, borrowing
// identity fields from the live roster where it still has the id.
func (s *SimService) frozenViews(snap models.GraphSnapshot) []models.CharacterView {
	views := make([]models.CharacterView, 0, len(snap.Positions))
	for id, pos := range snap.Positions {
		view := models.CharacterView{ID: id, X: pos.X, Y: pos.Y, State: models.StateWandering, Facing: models.FacingDown}
		if c, ok := s.world.Character(id); ok {
			view.Name = c.Name
			view.Aura = c.Aura
		}
		views = append(views, view)
	}
	return views
}

// Frame returns a consistent render snapshot for GET /api/state.
func (s *SimService) Frame() models.Frame {
	var frame models.Frame
	s.DoSync(func(*sim.World) {
		frame = s.buildFrame(time.Now())
	})
	return frame
}

// SetMode switches the visualization mode. Entering playback pins the most
// recent snapshot; leaving it resumes live rendering.
func (s *SimService) SetMode(mode models.SimMode) error {
	if !mode.Valid() {
		return apperrors.NewValidationError("unknown mode: "+string(mode), nil)
	}
	var changed bool
	s.DoSync(func(w *sim.World) {
		changed = w.Mode != mode
		w.SetMode(mode)
		if mode == models.ModePlayback {
			s.playbackIdx = w.History().Len() - 1
		} else {
			s.playbackIdx = -1
		}
	})
	if changed && s.onModeChange != nil {
		s.onModeChange(mode)
	}
	return nil
}

// Mode reports the current mode.
func (s *SimService) Mode() models.SimMode {
	var mode models.SimMode
	s.DoSync(func(w *sim.World) {
		mode = w.Mode
	})
	return mode
}

// SetPlaybackIndex scrubs playback to the given snapshot index.
func (s *SimService) SetPlaybackIndex(index int) error {
	var err error
	s.DoSync(func(w *sim.World) {
		if w.Mode != models.ModePlayback {
			err = apperrors.NewValidationError("not in playback mode", nil)
			return
		}
		if _, ok := w.History().At(index); !ok {
			err = apperrors.NewNotFoundError("no snapshot at requested index", nil)
			return
		}
		s.playbackIdx = index
	})
	return err
}

// Ask injects a user question for one character or for everyone.
func (s *SimService) Ask(characterID, text string) {
	s.Do(func(w *sim.World) {
		w.Ask(characterID, text)
	})
}

// ToggleSit flips a character between wandering and sitting.
func (s *SimService) ToggleSit(characterID string) error {
	var err error
	s.DoSync(func(w *sim.World) {
		if !w.ToggleSit(characterID) {
			err = apperrors.NewNotFoundError("unknown character: "+characterID, nil)
		}
	})
	return err
}

// AddCircle places a user trap circle.
func (s *SimService) AddCircle(x, y, r float64) models.TrapCircle {
	var circle models.TrapCircle
	s.DoSync(func(w *sim.World) {
		circle = w.AddCircle(x, y, r, models.CircleOriginUser)
	})
	return circle
}

// RemoveCircle deletes a circle by id.
func (s *SimService) RemoveCircle(id string) error {
	var removed bool
	s.DoSync(func(w *sim.World) {
		removed = w.RemoveCircle(id)
	})
	if !removed {
		return apperrors.NewNotFoundError("unknown circle: "+id, nil)
	}
	return nil
}

// Edges returns the live interaction graph for the abstract-layer view.
func (s *SimService) Edges() []models.InteractionEdge {
	var edges []models.InteractionEdge
	s.DoSync(func(w *sim.World) {
		edges = w.Graph().Edges()
	})
	return edges
}

// HistoryLen returns the snapshot count for the scrub control.
func (s *SimService) HistoryLen() int {
	var n int
	s.DoSync(func(w *sim.World) {
		n = w.History().Len()
	})
	return n
}

// HistoryAt returns the snapshot at index.
func (s *SimService) HistoryAt(index int) (models.GraphSnapshot, error) {
	var snap models.GraphSnapshot
	var ok bool
	s.DoSync(func(w *sim.World) {
		snap, ok = w.History().At(index)
	})
	if !ok {
		return models.GraphSnapshot{}, apperrors.NewNotFoundError("no snapshot at requested index", nil)
	}
	return snap, nil
}

// HistoryNearest returns the snapshot closest to ts.
func (s *SimService) HistoryNearest(ts time.Time) (models.GraphSnapshot, error) {
	var snap models.GraphSnapshot
	var ok bool
	s.DoSync(func(w *sim.World) {
		snap, ok = w.History().Nearest(ts)
	})
	if !ok {
		return models.GraphSnapshot{}, apperrors.NewNotFoundError("history is empty", nil)
	}
	return snap, nil
}
