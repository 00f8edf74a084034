// internal/models/mode.go
package models

// SimMode selects the active visualization mode of the simulation.
type SimMode string

const (
	// ModeNormal renders individual characters with full physics.
	ModeNormal SimMode = "normal"
	// ModeAbstract renders the interaction graph; lightweight conversing
	// and graph gravity are enabled in this mode.
	ModeAbstract SimMode = "abstract"
	// ModePlayback renders a frozen history snapshot instead of live data.
	ModePlayback SimMode = "playback"
)

// Capabilities is the per-mode feature flag set.
type Capabilities struct {
	Pairing    bool // dyadic encounters with trap circles
	Discussing bool // cooldown-gated discussion groups
	Conversing bool // lightweight exchanges feeding the graph
	Gravity    bool // graph-weighted attraction between partners
}

// modeCapabilities is keyed by every defined SimMode; ModeFor falls back to
// ModeNormal for anything unknown.
var modeCapabilities = map[SimMode]Capabilities{
	ModeNormal:   {Pairing: true, Discussing: true},
	ModeAbstract: {Conversing: true, Gravity: true},
	ModePlayback: {},
}

// CapabilitiesFor returns the capability set for the given mode.
func CapabilitiesFor(mode SimMode) Capabilities {
	caps, ok := modeCapabilities[mode]
	if !ok {
		return modeCapabilities[ModeNormal]
	}
	return caps
}

// Valid reports whether the mode is one of the defined modes.
func (m SimMode) Valid() bool {
	_, ok := modeCapabilities[m]
	return ok
}
