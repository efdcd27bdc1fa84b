package gateway

import (
	"net/http"
)

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string `json:"status"` // "ok" or "degraded"
	MaxTokens int    `json:"max_tokens,omitempty"`
}

// handleHealth returns an http.HandlerFunc for GET /health.
// Returns 503 until the bot is wired.
func (g *Gateway) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if g.bot == nil {
			writeJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "degraded"})
			return
		}
		writeJSON(w, http.StatusOK, HealthResponse{
			Status:    "ok",
			MaxTokens: g.bot.Memory().MaxTokens(),
		})
	}
}
