package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/bnema/gptgame/internal/application"
	"github.com/bnema/gptgame/internal/domain"
)

// statusClientClosedRequest marks requests whose caller went away first.
const statusClientClosedRequest = 499

// errorResponse maps service errors to a status code and envelope. Busy and
// timeout are retryable and stay 200.
func errorResponse(err error) (int, envelope) {
	switch {
	case errors.Is(err, domain.ErrBusy):
		return http.StatusOK, envelope{Status: statusPending}
	case errors.Is(err, domain.ErrTimeout):
		return http.StatusOK, envelope{Status: statusTimeout}
	case errors.Is(err, domain.ErrInvalidToken):
		return http.StatusBadRequest, envelope{Status: statusError, Message: "invalid token", InvalidToken: true}
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, envelope{Status: statusError, Message: err.Error()}
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound, envelope{Status: statusError, Message: "game not found"}
	case errors.Is(err, domain.ErrGameEnded):
		return http.StatusConflict, envelope{Status: statusError, Message: "game has ended"}
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest, envelope{Status: statusError, Message: "request canceled"}
	case errors.Is(err, application.ErrShuttingDown):
		return http.StatusServiceUnavailable, envelope{Status: statusError, Message: "server is shutting down"}
	default:
		return http.StatusInternalServerError, envelope{Status: statusError, Message: "internal server error"}
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code, env := errorResponse(err)
	if code >= http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		h.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	} else {
		h.logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "status", code, "err", err)
	}

	h.respond(w, r, code, env)
}
