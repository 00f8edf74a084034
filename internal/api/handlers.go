// internal/api/handlers.go
package api

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voxalab/pitchvillage/internal/models"
	"github.com/voxalab/pitchvillage/internal/services"
)

// Handler exposes the simulation to the presentation layer.
type Handler struct {
	logger *zap.Logger
	sim    *services.SimService
	pitch  *services.PitchService
}

// NewHandler wires the API handlers to their services.
func NewHandler(simService *services.SimService, pitchService *services.PitchService, logger *zap.Logger) *Handler {
	return &Handler{
		logger: logger,
		sim:    simService,
		pitch:  pitchService,
	}
}

// GetHealth reports liveness.
func (h *Handler) GetHealth(c *gin.Context) {
	respondOK(c, gin.H{"status": "ok"})
}

// GetState returns the full render snapshot.
func (h *Handler) GetState(c *gin.Context) {
	respondOK(c, h.sim.Frame())
}

// GetGraph returns the live interaction graph edge list.
func (h *Handler) GetGraph(c *gin.Context) {
	respondOK(c, h.sim.Edges())
}

// GetHistory returns the snapshot count for the scrub control.
func (h *Handler) GetHistory(c *gin.Context) {
	respondOK(c, gin.H{"count": h.sim.HistoryLen()})
}

// GetHistorySnapshot returns one snapshot, selected either by scrub index
// (?index=N) or by nearest unix-millisecond timestamp (?ts=MS).
func (h *Handler) GetHistorySnapshot(c *gin.Context) {
	if raw := c.Query("index"); raw != "" {
		index, err := strconv.Atoi(raw)
		if err != nil {
			respondBadRequest(c, "index must be an integer")
			return
		}
		snap, err := h.sim.HistoryAt(index)
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, snap)
		return
	}

	if raw := c.Query("ts"); raw != "" {
		ms, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondBadRequest(c, "ts must be unix milliseconds")
			return
		}
		snap, err := h.sim.HistoryNearest(time.UnixMilli(ms))
		if err != nil {
			respondError(c, err)
			return
		}
		respondOK(c, snap)
		return
	}

	respondBadRequest(c, "index or ts query parameter is required")
}

type askRequest struct {
	CharacterID string `json:"character_id"`
	Text        string `json:"text" binding:"required"`
}

// PostAsk injects a user question; without a character id everyone answers.
func (h *Handler) PostAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "text is required")
		return
	}
	h.sim.Ask(req.CharacterID, req.Text)
	respondOK(c, gin.H{"asked": true})
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// PostMode switches the visualization mode.
func (h *Handler) PostMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "mode is required")
		return
	}
	if err := h.sim.SetMode(models.SimMode(req.Mode)); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"mode": req.Mode})
}

type playbackRequest struct {
	Index int `json:"index"`
}

// PostPlayback scrubs playback to a snapshot index.
func (h *Handler) PostPlayback(c *gin.Context) {
	var req playbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "index is required")
		return
	}
	if err := h.sim.SetPlaybackIndex(req.Index); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"index": req.Index})
}

// PostPitchAdvance moves the scenario one stage forward.
func (h *Handler) PostPitchAdvance(c *gin.Context) {
	stage := h.pitch.Advance()
	respondOK(c, gin.H{"stage": stage})
}

// PostPitchReset returns the scenario to IDLE.
func (h *Handler) PostPitchReset(c *gin.Context) {
	h.pitch.Reset()
	respondOK(c, gin.H{"stage": h.pitch.Stage()})
}

// GetPitch reports the scenario status.
func (h *Handler) GetPitch(c *gin.Context) {
	respondOK(c, gin.H{
		"stage":  h.pitch.Stage(),
		"plan":   h.pitch.Plan(),
		"script": h.pitch.Script(),
	})
}

type sessionRequest struct {
	Scenario    string `json:"scenario" binding:"required"`
	UserContext string `json:"user_context"`
	Characters  int    `json:"characters"`
}

// PostSession rebuilds the roster for a new simulated session.
func (h *Handler) PostSession(c *gin.Context) {
	var req sessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "scenario is required")
		return
	}
	count := req.Characters
	if count <= 0 {
		count = 20
	}
	h.pitch.StartSession(context.Background(), req.Scenario, req.UserContext, count)
	respondCreated(c, gin.H{"characters": count})
}

type circleRequest struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Radius float64 `json:"radius" binding:"required,gt=0"`
}

// PostCircle places a user trap circle.
func (h *Handler) PostCircle(c *gin.Context) {
	var req circleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "radius must be positive")
		return
	}
	respondCreated(c, h.sim.AddCircle(req.X, req.Y, req.Radius))
}

// DeleteCircle removes a trap circle by id.
func (h *Handler) DeleteCircle(c *gin.Context) {
	if err := h.sim.RemoveCircle(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"removed": true})
}

// PostSit toggles a character between wandering and sitting.
func (h *Handler) PostSit(c *gin.Context) {
	if err := h.sim.ToggleSit(c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, gin.H{"toggled": true})
}
