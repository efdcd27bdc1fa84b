package gateway

import (
	"net/http"
	"time"
)

// StatusResponse is the JSON response for GET /status.
type StatusResponse struct {
	Uptime    int64           `json:"uptime_seconds"`
	Metrics   MetricsSnapshot `json:"metrics"`
	MaxTokens int             `json:"max_tokens"`
	Auth      bool            `json:"auth"`
}

// handleStatus returns an http.HandlerFunc for GET /status.
func (g *Gateway) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		resp := StatusResponse{
			Uptime:  int64(time.Since(g.startedAt).Seconds()),
			Metrics: g.metrics.Snapshot(),
			Auth:    g.config.Auth.IsConfigured(),
		}
		if g.bot != nil {
			resp.MaxTokens = g.bot.Memory().MaxTokens()
		}
		writeJSON(w, http.StatusOK, resp)
	}
}
