// internal/app/app.go
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/voxalab/pitchvillage/internal/api"
	"github.com/voxalab/pitchvillage/internal/config"
	"github.com/voxalab/pitchvillage/internal/di"
	"github.com/voxalab/pitchvillage/internal/models"
	"github.com/voxalab/pitchvillage/internal/services"
	"github.com/voxalab/pitchvillage/internal/sim"
)

// App holds the assembled application.
type App struct {
	Container *di.Container
	Sim       *services.SimService
	Pitch     *services.PitchService
	Hub       *api.Hub
}

// InitServices builds every service in dependency order, registers them in
// the container, starts the engine loop, and boots the first session.
func InitServices(cfg *config.Config, logger *zap.Logger) (*App, error) {
	container := di.NewContainer()

	rng := sim.NewRand(time.Now().UnixNano())
	simService := services.NewSimService(cfg.Sim, rng, logger)

	var content services.ContentClient = services.NewHTTPContentClient(cfg.ContentServiceURL, cfg.ContentTimeout)
	pitchService := services.NewPitchService(simService, content, cfg.PresenterName, cfg.ContentTimeout, logger)

	hub := api.NewHub(logger)
	go hub.Run()

	simService.SetFrameSink(hub)
	simService.SetStageProvider(pitchService.Stage)
	simService.SetModeChangeListener(func(models.SimMode) {
		pitchService.ModeChanged()
	})
	simService.Start()

	// Boot the default session; a dead content service falls back to
	// placeholder personas inside StartSession.
	pitchService.StartSession(context.Background(), "pitch session", "", cfg.CharacterCount)

	container.Register("sim", simService)
	container.Register("pitch", pitchService)
	container.Register("content", content)
	container.Register("hub", hub)

	return &App{
		Container: container,
		Sim:       simService,
		Pitch:     pitchService,
		Hub:       hub,
	}, nil
}

// Shutdown stops the engine loop.
func (a *App) Shutdown() {
	a.Sim.Stop()
}
