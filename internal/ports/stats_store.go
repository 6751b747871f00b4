package ports

import (
	"context"

	"github.com/bnema/gptgame/internal/domain"
)

type StatsStore interface {
	Record(ctx context.Context, event domain.GameEvent) error
	Snapshot(ctx context.Context) (map[domain.GameEventKind]int64, error)
}
