package gateway

import (
	"errors"
	"net/http"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	"github.com/flemzord/chefbot/internal/chat"
)

// wsFrame is the JSON frame sent for every user turn received on the socket.
type wsFrame struct {
	Reply *chat.Response `json:"reply,omitempty"`
	Error string         `json:"error,omitempty"`
}

// handleChatWS upgrades to a WebSocket bound to one conversation. Each text
// frame is a user turn; each turn is answered with one JSON frame.
func (g *Gateway) handleChatWS() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			OriginPatterns: g.config.AllowOrigins,
		})
		if err != nil {
			g.logger.Warn("websocket accept failed", "error", err)
			return
		}
		conn.SetReadLimit(int64(g.config.MaxBodyBytes))

		g.metrics.wsOpened()
		g.logger.Debug("websocket chat opened", "conversation", id, "remote", r.RemoteAddr)
		defer func() {
			g.metrics.wsClosed()
			_ = conn.Close(websocket.StatusNormalClosure, chat.Goodbye)
		}()

		ctx := r.Context()
		for {
			typ, data, err := conn.Read(ctx)
			if err != nil {
				if status := websocket.CloseStatus(err); status != websocket.StatusNormalClosure && status != websocket.StatusGoingAway {
					g.logger.Debug("websocket read ended", "conversation", id, "error", err)
				}
				return
			}
			if typ != websocket.MessageText {
				_ = conn.Close(websocket.StatusUnsupportedData, "text frames only")
				return
			}

			var frame wsFrame
			resp, _, err := g.turn(ctx, id, string(data), r.RemoteAddr, "websocket")
			if err != nil {
				frame.Error = err.Error()
			} else {
				frame.Reply = &resp
			}
			if err := wsjson.Write(ctx, conn, frame); err != nil {
				if !errors.Is(err, ctx.Err()) {
					g.logger.Warn("websocket write failed", "conversation", id, "error", err)
				}
				return
			}
		}
	}
}
