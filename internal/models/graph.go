// internal/models/graph.go
package models

import "time"

// InteractionEdge is an undirected weighted edge between two characters.
// A and B are canonically ordered (A < B); weight is cumulative milliseconds
// of recorded conversation.
type InteractionEdge struct {
	A      string  `json:"a"`
	B      string  `json:"b"`
	Weight float64 `json:"weight"`
}

// Position is a character location frozen at snapshot time.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GraphSnapshot freezes the interaction graph plus all character positions
// at one instant, for history scrubbing and playback.
type GraphSnapshot struct {
	Timestamp time.Time           `json:"timestamp"`
	Edges     []InteractionEdge   `json:"edges"`
	Positions map[string]Position `json:"positions"`
}
