package httpapi

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bnema/gptgame/internal/domain"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = pongWait * 9 / 10
	maxClientMessage = 512
)

// watch streams the game view over a WebSocket, one message per change. The
// socket closes once the game ends or the session goes away.
func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	token, err := gameToken(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	game, changed, err := h.games.Observe(token)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "websocket upgrade", "token", token.String(), "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	gone := make(chan struct{})
	go drain(conn, gone)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		if err := push(conn, gameEnvelope(game)); err != nil {
			h.logger.DebugContext(r.Context(), "websocket write", "token", token.String(), "err", err)
			return
		}
		if game.Ended {
			closeSocket(conn, websocket.CloseNormalClosure, "game ended")
			return
		}

	wait:
		for {
			select {
			case <-gone:
				return
			case <-h.closing:
				closeSocket(conn, websocket.CloseGoingAway, "server shutting down")
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					return
				}
			case <-changed:
				break wait
			}
		}

		game, changed, err = h.games.Observe(token)
		if err != nil {
			_, env := errorResponse(err)
			_ = push(conn, env)
			closeSocket(conn, websocket.CloseNormalClosure, "game closed")
			return
		}
	}
}

func gameEnvelope(game domain.Game) envelope {
	env := okEnvelope(game)
	if game.IsPending() {
		env.Status = statusPending
	}

	return env
}

func push(conn *websocket.Conn, env envelope) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}

	return conn.WriteJSON(env)
}

func closeSocket(conn *websocket.Conn, code int, reason string) {
	message := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(writeWait))
}

// drain reads and discards client frames so pongs and close frames are
// processed. gone is closed when the client disconnects.
func drain(conn *websocket.Conn, gone chan<- struct{}) {
	defer close(gone)

	conn.SetReadLimit(maxClientMessage)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
