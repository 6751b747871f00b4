package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

// Store counts game events in process. Counters reset on restart.
type Store struct {
	mu     sync.Mutex
	counts map[domain.GameEventKind]int64
}

var _ ports.StatsStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{counts: make(map[domain.GameEventKind]int64)}
}

func (s *Store) Record(ctx context.Context, event domain.GameEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.counts[event.Kind]++
	s.mu.Unlock()

	return nil
}

func (s *Store) Snapshot(ctx context.Context) (map[domain.GameEventKind]int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return maps.Clone(s.counts), nil
}
