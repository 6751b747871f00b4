package httpapi

import (
	"fmt"
	"strings"

	"github.com/bnema/gptgame/internal/domain"
)

type status string

const (
	statusOK      status = "ok"
	statusPending status = "pending"
	statusTimeout status = "timeout"
	statusError   status = "error"
)

// envelope wraps every JSON response.
type envelope struct {
	Status       status `json:"status"`
	Content      any    `json:"content,omitempty"`
	Message      string `json:"message,omitempty"`
	InvalidToken bool   `json:"invalid_token,omitempty"`
}

func okEnvelope(content any) envelope {
	return envelope{Status: statusOK, Content: content}
}

// parseFlag reads a boolean query flag. Absent means false.
func parseFlag(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "0", "false", "off", "no":
		return false, nil
	case "1", "true", "on", "yes":
		return true, nil
	default:
		return false, fmt.Errorf("flag value %q: %w", value, domain.ErrInvalidInput)
	}
}
