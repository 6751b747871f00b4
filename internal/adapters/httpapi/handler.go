// Package httpapi exposes the game service over HTTP and WebSocket.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/bnema/gptgame/internal/application"
	"github.com/bnema/gptgame/internal/domain"
)

const (
	maxQuestionBody = 4 << 10
	maxCustomBody   = 4 << 10
)

// Games is the part of the game service the HTTP layer drives.
type Games interface {
	NewGame(ctx context.Context, language domain.Language) (domain.Token, error)
	NewCustomGame(ctx context.Context, identity string, language domain.Language) (domain.Token, error)
	NewAnswerToken() domain.Token
	Ask(ctx context.Context, token domain.Token, text string) error
	State(ctx context.Context, token domain.Token, opts application.StateOptions) (application.StateResult, error)
	Observe(token domain.Token) (domain.Game, <-chan struct{}, error)
	Delete(ctx context.Context, token domain.Token) error
	Stats(ctx context.Context) application.ServiceStats
}

var _ Games = (*application.GameService)(nil)

type Handler struct {
	games    Games
	logger   *slog.Logger
	upgrader websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

func NewHandler(games Games, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Handler{
		games:  games,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		closing: make(chan struct{}),
	}
}

// Close ends every open WebSocket stream. http.Server.Shutdown does not
// track hijacked connections.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/token", h.answerToken)
	mux.HandleFunc("GET /api/game/new", h.newGame)
	mux.HandleFunc("POST /api/game/new", h.newGame)
	mux.HandleFunc("POST /api/game/new/custom", h.newCustomGame)
	mux.HandleFunc("POST /api/game/{token}/ask", h.ask)
	mux.HandleFunc("GET /api/game/{token}", h.state)
	mux.HandleFunc("DELETE /api/game/{token}", h.delete)
	mux.HandleFunc("GET /api/game/{token}/ws", h.watch)
	mux.HandleFunc("GET /api/stats", h.stats)
	mux.HandleFunc("GET /healthz", h.health)

	return h.recoverer(h.requestID(h.accessLog(mux)))
}

func (h *Handler) answerToken(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, okEnvelope(h.games.NewAnswerToken().String()))
}

func (h *Handler) newGame(w http.ResponseWriter, r *http.Request) {
	language, err := domain.ParseLanguage(r.URL.Query().Get("lang"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	token, err := h.games.NewGame(r.Context(), language)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, okEnvelope(token.String()))
}

type customGameRequest struct {
	Identity string `json:"identity"`
	Language string `json:"lang,omitempty"`
}

func (h *Handler) newCustomGame(w http.ResponseWriter, r *http.Request) {
	var req customGameRequest
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCustomBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		h.respondError(w, r, fmt.Errorf("decode custom game: %v: %w", err, domain.ErrInvalidInput))
		return
	}

	language, err := domain.ParseLanguage(req.Language)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	token, err := h.games.NewCustomGame(r.Context(), req.Identity, language)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, okEnvelope(token.String()))
}

func (h *Handler) ask(w http.ResponseWriter, r *http.Request) {
	token, err := gameToken(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxQuestionBody))
	if err != nil {
		h.respondError(w, r, fmt.Errorf("read question: %v: %w", err, domain.ErrInvalidInput))
		return
	}

	if err := h.games.Ask(r.Context(), token, string(body)); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, envelope{Status: statusOK})
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	token, err := gameToken(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	query := r.URL.Query()
	wait, err := parseFlag(query.Get("wait"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	quiet, err := parseFlag(query.Get("quiet"))
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.games.State(r.Context(), token, application.StateOptions{Wait: wait, Quiet: quiet})
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	env := envelope{Status: statusOK}
	if result.Status == application.StateStatusPending {
		env.Status = statusPending
	}
	if result.Game != nil {
		env.Content = result.Game
	}

	h.respond(w, r, http.StatusOK, env)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	token, err := gameToken(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	if err := h.games.Delete(r.Context(), token); err != nil {
		h.respondError(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, envelope{Status: statusOK})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, okEnvelope(h.games.Stats(r.Context())))
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, envelope{Status: statusOK})
}

func gameToken(r *http.Request) (domain.Token, error) {
	return domain.ParseTokenOfType(r.PathValue("token"), domain.TokenTypeGame)
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, code int, env envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		h.logger.DebugContext(r.Context(), "write response", "err", err)
	}
}
