// internal/services/content_service.go
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "github.com/voxalab/pitchvillage/internal/errors"
	"github.com/voxalab/pitchvillage/internal/models"
)

// ContentClient is the interface to the remote content-generation service.
// Every call may fail; callers substitute placeholder content and continue,
// never block the scenario.
type ContentClient interface {
	// SetContext submits the scenario context and returns the agent personas.
	SetContext(ctx context.Context, mode, scenario string) ([]models.Persona, error)
	// SetUserContext submits the pitcher's background and returns the id of
	// the user's agent.
	SetUserContext(ctx context.Context, userContext string) (string, error)
	// FetchPlan returns the presentation outline as plain text.
	FetchPlan(ctx context.Context) (string, error)
	// FetchScript returns the full presentation script as plain text.
	FetchScript(ctx context.Context) (string, error)
	// FetchConversation returns the scripted inter-agent discussion.
	FetchConversation(ctx context.Context) ([]models.ConversationLine, error)
}

// HTTPContentClient talks to the content service over plain JSON-over-HTTP.
type HTTPContentClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPContentClient builds a client for the service at baseURL.
func NewHTTPContentClient(baseURL string, timeout time.Duration) *HTTPContentClient {
	return &HTTPContentClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type contextRequest struct {
	Mode    string `json:"mode"`
	Context string `json:"context"`
}

type userContextRequest struct {
	UserContext string `json:"user_context"`
}

type planResponse struct {
	Plan string `json:"plan"`
}

type scriptResponse struct {
	Script string `json:"script"`
}

// SetContext implements ContentClient.
func (c *HTTPContentClient) SetContext(ctx context.Context, mode, scenario string) ([]models.Persona, error) {
	var personas []models.Persona
	err := c.postJSON(ctx, "/api/context", contextRequest{Mode: mode, Context: scenario}, &personas)
	if err != nil {
		return nil, err
	}
	return personas, nil
}

// SetUserContext implements ContentClient.
func (c *HTTPContentClient) SetUserContext(ctx context.Context, userContext string) (string, error) {
	var id string
	err := c.postJSON(ctx, "/api/userContext", userContextRequest{UserContext: userContext}, &id)
	if err != nil {
		return "", err
	}
	return id, nil
}

// FetchPlan implements ContentClient.
func (c *HTTPContentClient) FetchPlan(ctx context.Context) (string, error) {
	var resp planResponse
	if err := c.postJSON(ctx, "/api/get_plan", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Plan, nil
}

// FetchScript implements ContentClient.
func (c *HTTPContentClient) FetchScript(ctx context.Context) (string, error) {
	var resp scriptResponse
	if err := c.postJSON(ctx, "/api/get_transcript", struct{}{}, &resp); err != nil {
		return "", err
	}
	return resp.Script, nil
}

// FetchConversation implements ContentClient.
func (c *HTTPContentClient) FetchConversation(ctx context.Context) ([]models.ConversationLine, error) {
	var lines []models.ConversationLine
	if err := c.postJSON(ctx, "/api/get_conversation", struct{}{}, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// postJSON performs one request/response round trip.
func (c *HTTPContentClient) postJSON(ctx context.Context, path string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperrors.NewUnavailableError("content service unreachable", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return apperrors.NewUnavailableError(
			fmt.Sprintf("content service returned %d for %s", resp.StatusCode, path), nil)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUnavailableError("reading content service response", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return apperrors.NewUnavailableError("parsing content service response", err)
	}
	return nil
}

// --- Placeholder content used whenever a fetch fails. ---

var placeholderNames = []string{
	"Ada", "Linus", "Grace", "Alan", "Margaret", "Dennis", "Barbara", "Ken",
	"Radia", "Edsger", "Frances", "John", "Katherine", "Claude", "Hedy",
	"Tim", "Annie", "Gordon", "Jean", "Vint",
}

// PlaceholderPersonas builds n fixed personas for offline operation.
func PlaceholderPersonas(n int) []models.Persona {
	personas := make([]models.Persona, 0, n)
	for i := 0; i < n; i++ {
		name := placeholderNames[i%len(placeholderNames)]
		personas = append(personas, models.Persona{
			ID:   fmt.Sprintf("agent_%03d", i+1),
			Name: name,
			Bio:  fmt.Sprintf("%s is attending the pitch session.", name),
		})
	}
	return personas
}

// PlaceholderPlan is shown when the outline fetch fails.
const PlaceholderPlan = "1. Introduce the idea. 2. Explain the market. 3. Make the ask."

// PlaceholderScript is presented when the script fetch fails.
const PlaceholderScript = "Today I want to pitch my idea for a new company. " +
	"It solves a real problem for real people. We have early traction and a clear plan. " +
	"Thank you for listening!"

// PlaceholderConversation stands in for a failed discussion fetch.
func PlaceholderConversation(agentIDs []string) []models.ConversationLine {
	canned := []string{
		"I think it's a promising idea.",
		"The market timing worries me a little.",
		"The demo was convincing.",
		"I'd want to see the numbers first.",
	}
	lines := make([]models.ConversationLine, 0, len(canned))
	for i, msg := range canned {
		id := ""
		if len(agentIDs) > 0 {
			id = agentIDs[i%len(agentIDs)]
		}
		lines = append(lines, models.ConversationLine{AgentID: id, Message: msg})
	}
	return lines
}
