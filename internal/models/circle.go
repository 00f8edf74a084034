// internal/models/circle.go
package models

// CircleOrigin records which subsystem created a trap circle, so a mode
// switch can clear user circles without tearing down protocol encounters.
type CircleOrigin string

const (
	CircleOriginUser     CircleOrigin = "user"
	CircleOriginProtocol CircleOrigin = "protocol"
	CircleOriginStaging  CircleOrigin = "staging"
)

// TrapCircle is a circular containment region. Characters crossing its
// boundary in either direction are bounced back (see sim physics).
type TrapCircle struct {
	ID      string       `json:"id"`
	X       float64      `json:"x"`
	Y       float64      `json:"y"`
	Radius  float64      `json:"radius"`
	Origin  CircleOrigin `json:"origin"`
	GroupID string       `json:"group_id,omitempty"`
}

// Contains reports whether the point (x, y) lies strictly inside the circle.
func (c TrapCircle) Contains(x, y float64) bool {
	dx, dy := x-c.X, y-c.Y
	return dx*dx+dy*dy < c.Radius*c.Radius
}
