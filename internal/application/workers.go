package application

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
)

// workerRegistry tracks background goroutines so shutdown can wait for them.
type workerRegistry struct {
	logger *slog.Logger

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// Go starts fn unless the registry is closing. A panic in fn is logged and
// does not take the process down.
func (r *workerRegistry) Go(fn func()) bool {
	r.mu.Lock()
	if r.closing {
		r.mu.Unlock()
		return false
	}
	r.wg.Add(1)
	r.mu.Unlock()

	go func() {
		defer r.wg.Done()
		defer func() {
			if recovered := recover(); recovered != nil {
				r.logger.Error("background worker panicked", "panic", fmt.Sprint(recovered), "stack", string(debug.Stack()))
			}
		}()
		fn()
	}()

	return true
}

func (r *workerRegistry) CloseAndWait(ctx context.Context) error {
	r.mu.Lock()
	r.closing = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("drain background workers: %w", ctx.Err())
	}
}
