package session

import (
	"context"
	"time"

	"github.com/bnema/gptgame/internal/domain"
)

// Waiter blocks callers until a session changes, bounded by a wait budget.
type Waiter struct {
	store *Store
}

func NewWaiter(store *Store) *Waiter {
	return &Waiter{store: store}
}

// Wait blocks until the next change to the session. It returns
// ErrSessionNotFound when the session was deleted while waiting and
// ErrTimeout once budget elapses.
func (w *Waiter) Wait(ctx context.Context, token domain.Token, budget time.Duration) error {
	changed, _, err := w.store.Watch(token)
	if err != nil {
		return err
	}
	if budget <= 0 {
		return domain.ErrTimeout
	}

	timer := time.NewTimer(budget)
	defer timer.Stop()

	select {
	case <-changed:
		if !w.store.Exists(token) {
			return domain.ErrSessionNotFound
		}
		return nil
	case <-timer.C:
		return domain.ErrTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitWhilePending returns as soon as the session has no pending question.
func (w *Waiter) WaitWhilePending(ctx context.Context, token domain.Token, budget time.Duration) error {
	timer := time.NewTimer(max(budget, 0))
	defer timer.Stop()

	for {
		changed, pending, err := w.store.Watch(token)
		if err != nil {
			return err
		}
		if !pending {
			return nil
		}

		select {
		case <-changed:
		case <-timer.C:
			return domain.ErrTimeout
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
