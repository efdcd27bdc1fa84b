package gateway

import (
	"context"
	"errors"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/flemzord/chefbot/internal/chat"
	"github.com/flemzord/chefbot/internal/core"
	"github.com/flemzord/chefbot/internal/memory"
	"github.com/flemzord/chefbot/internal/provider"
	"github.com/flemzord/chefbot/internal/security"
)

// conversationIDPattern bounds the IDs clients may pick.
var conversationIDPattern = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// requireConversationID rejects requests whose {id} is not a usable
// conversation ID.
func requireConversationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !conversationIDPattern.MatchString(chi.URLParam(r, "id")) {
			writeError(w, http.StatusBadRequest, "invalid conversation id")
			return
		}
		next.ServeHTTP(w, r)
	})
}

type createConversationJSON struct {
	ID       string `json:"id"`
	Greeting string `json:"greeting"`
}

// handleCreateConversation allocates a fresh conversation ID. Nothing is
// stored until the first message.
func (g *Gateway) handleCreateConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := uuid.NewString()
		g.audit.Log(security.AuditEvent{
			Type:           security.EventConversationCreate,
			ConversationID: id,
			RemoteAddr:     r.RemoteAddr,
			Transport:      "http",
		})
		writeJSON(w, http.StatusCreated, createConversationJSON{ID: id, Greeting: g.bot.Greeting()})
	}
}

type postMessageJSON struct {
	Content string `json:"content"`
}

// handlePostMessage runs one user turn and returns the parsed reply.
func (g *Gateway) handlePostMessage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		body, err := io.ReadAll(io.LimitReader(r.Body, int64(g.config.MaxBodyBytes)+1))
		if err != nil {
			writeError(w, http.StatusBadRequest, "reading body failed")
			return
		}
		var req postMessageJSON
		if err := security.DecodeJSON(body, &req, g.config.MaxBodyBytes); err != nil {
			code := http.StatusBadRequest
			if errors.Is(err, security.ErrMessageTooLarge) {
				code = http.StatusRequestEntityTooLarge
			}
			writeError(w, code, err.Error())
			return
		}

		resp, code, err := g.turn(r.Context(), id, req.Content, r.RemoteAddr, "http")
		if err != nil {
			writeError(w, code, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// errRateLimited is reported to clients in place of security.ErrRateLimited.
var errRateLimited = errors.New("too many messages, slow down")

// turn runs one user turn shared by the HTTP and WebSocket transports. On
// failure it returns the HTTP status that describes it and an error safe to
// show to the client.
func (g *Gateway) turn(ctx context.Context, conversationID, content, remoteAddr, transport string) (chat.Response, int, error) {
	if err := security.ValidateText(content, g.config.MaxTextRunes); err != nil {
		return chat.Response{}, http.StatusBadRequest, err
	}
	if err := g.limiter.Allow(security.KindMessage); err != nil {
		g.metrics.RecordRateLimited()
		g.audit.Log(security.AuditEvent{
			Type:           security.EventRateLimit,
			ConversationID: conversationID,
			RemoteAddr:     remoteAddr,
			Transport:      transport,
			Detail:         "messages",
		})
		return chat.Response{}, http.StatusTooManyRequests, errRateLimited
	}

	g.metrics.RecordMessage()
	g.audit.Log(security.AuditEvent{
		Type:           security.EventMessage,
		ConversationID: conversationID,
		RemoteAddr:     remoteAddr,
		Transport:      transport,
	})

	start := time.Now()
	resp, err := g.bot.Reply(ctx, conversationID, content)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyInput) {
			return chat.Response{}, http.StatusBadRequest, err
		}
		g.metrics.RecordError()
		g.logger.Error("reply failed", "conversation", conversationID, "transport", transport, "error", err)
		code := http.StatusBadGateway
		if errors.Is(err, provider.ErrRateLimit) {
			code = http.StatusServiceUnavailable
		}
		return chat.Response{}, code, errors.New(chat.Apology)
	}
	g.metrics.RecordReply(time.Since(start))
	return resp, http.StatusOK, nil
}

type messageJSON struct {
	Role    provider.MessageRole `json:"role"`
	Content string               `json:"content"`
	Name    string               `json:"name,omitempty"`
}

type historyJSON struct {
	ID        string        `json:"id"`
	Messages  []messageJSON `json:"messages"`
	Tokens    int           `json:"tokens"`
	MaxTokens int           `json:"max_tokens"`
}

// handleGetMessages returns the budget-enforced history of a conversation.
func (g *Gateway) handleGetMessages() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		history, err := g.bot.History(r.Context(), id)
		if err != nil {
			g.logger.Error("reading history failed", "conversation", id, "error", err)
			writeError(w, http.StatusInternalServerError, "reading history failed")
			return
		}

		mem := g.bot.Memory()
		out := historyJSON{
			ID:        id,
			Messages:  make([]messageJSON, 0, len(history)),
			Tokens:    mem.Count(history),
			MaxTokens: mem.MaxTokens(),
		}
		for _, msg := range history {
			out.Messages = append(out.Messages, messageJSON{Role: msg.Role, Content: msg.Content, Name: msg.Name})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// handleDeleteConversation forgets a conversation. Unknown IDs succeed.
func (g *Gateway) handleDeleteConversation() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := g.bot.Reset(r.Context(), id); err != nil {
			g.logger.Error("reset failed", "conversation", id, "error", err)
			writeError(w, http.StatusInternalServerError, "reset failed")
			return
		}
		g.audit.Log(security.AuditEvent{
			Type:           security.EventConversationReset,
			ConversationID: id,
			RemoteAddr:     r.RemoteAddr,
			Transport:      "http",
		})
		w.WriteHeader(http.StatusNoContent)
	}
}

type compactJSON struct {
	Compacted bool `json:"compacted"`
	Tokens    int  `json:"tokens"`
}

// handleCompact enforces the token budget on a stored conversation now,
// rather than on its next turn.
func (g *Gateway) handleCompact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		mem := g.bot.Memory()
		changed, err := mem.Compact(r.Context(), id)
		if err != nil {
			g.logger.Error("compaction failed", "conversation", id, "error", err)
			code := http.StatusInternalServerError
			if errors.Is(err, memory.ErrSummarization) {
				code = http.StatusBadGateway
			}
			writeError(w, code, "compaction failed")
			return
		}
		history, err := mem.Messages(r.Context(), id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "reading history failed")
			return
		}
		writeJSON(w, http.StatusOK, compactJSON{Compacted: changed, Tokens: mem.Count(history)})
	}
}

// moduleJSON is a serializable module info snapshot.
type moduleJSON struct {
	ID        string `json:"id"`
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
}

// handleListModules lists the compiled modules, optionally restricted to one
// namespace with ?namespace=provider.
func (g *Gateway) handleListModules() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mods := core.GetModules()
		if ns := r.URL.Query().Get("namespace"); ns != "" {
			mods = core.GetModulesByNamespace(ns)
		}
		out := make([]moduleJSON, 0, len(mods))
		for _, m := range mods {
			out = append(out, moduleJSON{
				ID:        string(m.ID),
				Namespace: m.ID.Namespace(),
				Name:      m.ID.Name(),
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}
