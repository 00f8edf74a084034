// internal/sim/physics.go
package sim

import (
	"math"
	"sort"

	"github.com/voxalab/pitchvillage/internal/models"
)

// stepCharacter advances one character by dtMS: speech timer first, then the
// movement rule for its current state, then trap-circle containment. Pairwise
// collisions and animation run in separate passes over the whole roster.
func (w *World) stepCharacter(c *Character, dtMS float64) {
	c.prevX, c.prevY = c.X, c.Y

	if c.speechMS > 0 {
		c.speechMS -= dtMS
		if c.speechMS <= 0 {
			c.Speech = ""
			c.speechMS = 0
			if c.State == models.StateTalking {
				c.State = models.StateWandering
			}
		}
	}

	switch c.State {
	case models.StateWandering, models.StateTalking, models.StateConversing:
		w.stepFreeRoam(c, dtMS)
	case models.StateSitting, models.StateDiscussing:
		// Stationary.
	case models.StateInteracting, models.StateAudience, models.StatePresenting, models.StateWalkingToArea:
		w.stepWalking(c, dtMS)
	}

	w.applyContainment(c)
}

// stepFreeRoam integrates velocity, reflects off the world boundary, and
// occasionally randomizes the heading.
func (w *World) stepFreeRoam(c *Character, dtMS float64) {
	dt := dtMS / 1000
	c.X += c.VX * dt
	c.Y += c.VY * dt

	if c.X < 0 {
		c.X = 0
		c.VX = -c.VX
	} else if c.X > w.Cfg.WorldWidth {
		c.X = w.Cfg.WorldWidth
		c.VX = -c.VX
	}
	if c.Y < 0 {
		c.Y = 0
		c.VY = -c.VY
	} else if c.Y > w.Cfg.WorldHeight {
		c.Y = w.Cfg.WorldHeight
		c.VY = -c.VY
	}

	if w.rng.Float64() < w.Cfg.HeadingJitterProb {
		c.randomHeading(w.Cfg, w.rng)
	}

	c.faceToward(c.X+c.VX, c.Y+c.VY)
}

// stepWalking moves the character linearly toward its target at 1.5x base
// speed, snapping and clearing the walking flag inside the arrival threshold.
func (w *World) stepWalking(c *Character, dtMS float64) {
	if !c.Walking {
		return
	}
	dx, dy := c.TargetX-c.X, c.TargetY-c.Y
	dist := math.Hypot(dx, dy)
	step := w.Cfg.BaseSpeed * w.Cfg.WalkSpeedFactor * dtMS / 1000

	if dist <= w.Cfg.ArriveThreshold || dist <= step {
		c.X, c.Y = c.TargetX, c.TargetY
		c.Walking = false
		w.onArrival(c)
		return
	}

	c.X += dx / dist * step
	c.Y += dy / dist * step
	c.faceToward(c.TargetX, c.TargetY)
}

// onArrival applies the per-state arrival side effect.
func (w *World) onArrival(c *Character) {
	switch c.State {
	case models.StateWalkingToArea:
		c.State = models.StateWandering
		c.randomHeading(w.Cfg, w.rng)
	case models.StateAudience:
		c.Facing = models.FacingDown
	case models.StatePresenting:
		c.Facing = models.FacingUp
	case models.StateInteracting:
		if g, ok := w.groups[c.GroupID]; ok {
			c.faceToward(g.CX, g.CY)
		}
	}
}

// applyContainment bounces the character off trap-circle boundaries. The
// previous and current distance to each center decide whether the boundary
// was crossed; crossing in either direction pushes the character back across
// it by a fixed offset and negates both velocity components.
//
// When several circles overlap, the nearest circle wins: candidates are
// checked in ascending current-distance order and the first correction ends
// the scan for this tick.
func (w *World) applyContainment(c *Character) {
	// Characters being walked by the protocol or orchestrator, and members
	// of the encounter a circle hosts, cross boundaries legitimately.
	if c.Walking {
		return
	}
	if len(w.circles) == 0 {
		return
	}

	order := make([]*models.TrapCircle, 0, len(w.circles))
	for _, circle := range w.circles {
		if circle.GroupID != "" && circle.GroupID == c.GroupID {
			continue
		}
		order = append(order, circle)
	}
	sort.Slice(order, func(i, j int) bool {
		return distSq(c.X, c.Y, order[i].X, order[i].Y) < distSq(c.X, c.Y, order[j].X, order[j].Y)
	})

	for _, circle := range order {
		prev := math.Hypot(c.prevX-circle.X, c.prevY-circle.Y)
		cur := math.Hypot(c.X-circle.X, c.Y-circle.Y)

		var corrected float64
		switch {
		case prev < circle.Radius && cur >= circle.Radius:
			corrected = circle.Radius - w.Cfg.TrapPushback
		case prev >= circle.Radius && cur < circle.Radius:
			corrected = circle.Radius + w.Cfg.TrapPushback
		default:
			continue
		}

		if cur == 0 {
			cur = 1e-9
		}
		c.X = circle.X + (c.X-circle.X)/cur*corrected
		c.Y = circle.Y + (c.Y-circle.Y)/cur*corrected
		c.VX = -c.VX
		c.VY = -c.VY
		return
	}
}

// resolveCollisions applies a soft proportional push to both velocities of
// every overlapping pair. Velocities, not positions, are corrected so that
// repeated overlaps do not jitter.
func (w *World) resolveCollisions() {
	minDist := 2 * w.Cfg.HitBoxRadius
	for i := 0; i < len(w.characters); i++ {
		for j := i + 1; j < len(w.characters); j++ {
			a, b := w.characters[i], w.characters[j]
			dx, dy := b.X-a.X, b.Y-a.Y
			dist := math.Hypot(dx, dy)
			if dist >= minDist {
				continue
			}
			if dist == 0 {
				dx, dy, dist = 1, 0, 1
			}
			push := (minDist - dist) * w.Cfg.CollisionPush
			nx, ny := dx/dist, dy/dist
			a.VX -= nx * push
			a.VY -= ny * push
			b.VX += nx * push
			b.VY += ny * push
		}
	}
}

// advanceAnimation cycles the sprite frame while the character is moving.
func (c *Character) advanceAnimation(dtMS float64) {
	moving := c.Walking || c.VX != 0 || c.VY != 0
	if !moving {
		c.Frame = 0
		c.frameAccum = 0
		return
	}
	c.frameAccum += dtMS
	const framePeriodMS = 150
	for c.frameAccum >= framePeriodMS {
		c.frameAccum -= framePeriodMS
		c.Frame = (c.Frame + 1) % 4
	}
}

func distSq(x1, y1, x2, y2 float64) float64 {
	dx, dy := x2-x1, y2-y1
	return dx*dx + dy*dy
}
