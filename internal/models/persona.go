// internal/models/persona.go
package models

// Persona is the identity data a character is created from. Personas come
// from the content service; placeholders are used when the fetch fails.
type Persona struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bio  string `json:"bio,omitempty"`
}

// ConversationLine is one ordered utterance of a scripted inter-agent
// conversation returned by the content service.
type ConversationLine struct {
	AgentID string `json:"agent_id"`
	Message string `json:"message"`
}
