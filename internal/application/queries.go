package application

import (
	"github.com/bnema/gptgame/internal/clientpool"
	"github.com/bnema/gptgame/internal/domain"
)

type StateStatus string

const (
	StateStatusOK      StateStatus = "ok"
	StateStatusPending StateStatus = "pending"
)

type StateResult struct {
	Status StateStatus
	// Game is nil for a quiet query on a pending session.
	Game *domain.Game
}

type ServiceStats struct {
	Sessions int                            `json:"sessions"`
	Clients  clientpool.Stats               `json:"clients"`
	Events   map[domain.GameEventKind]int64 `json:"events,omitempty"`
}
