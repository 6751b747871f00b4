package clientpool

import "context"

// Guard is a claim on at most one pooled client. A guard is owned by a single
// goroutine and is not safe for concurrent use.
type Guard[C any] struct {
	pool     *Pool[C]
	client   C
	held     bool
	released bool
}

func (g *Guard[C]) Held() bool {
	return g.held
}

// Client returns the held client. It is the zero value until Ready succeeds.
func (g *Guard[C]) Client() C {
	return g.client
}

// Ready blocks until the guard holds a client or ctx ends. It returns at once
// when a client is already held.
func (g *Guard[C]) Ready(ctx context.Context) error {
	if g.held {
		return nil
	}
	if g.released {
		return ErrGuardReleased
	}

	g.pool.addWaiting(1)
	defer g.pool.addWaiting(-1)

	// A consumed signal that ends in no client must go to the next waiter.
	woken := false
	defer func() {
		if woken && !g.held {
			g.pool.notify()
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := g.fill(ctx); err != nil {
			return err
		}
		if g.held {
			return nil
		}
		woken = false

		select {
		case <-g.pool.signal:
			woken = true
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Release hands the client back and wakes one waiter. Calling it on an empty
// or already released guard does nothing.
func (g *Guard[C]) Release() {
	if g.released {
		return
	}
	g.released = true
	if !g.held {
		return
	}

	client := g.client
	var zero C
	g.client = zero
	g.held = false
	g.pool.put(client)
}

func (g *Guard[C]) fill(ctx context.Context) error {
	client, ok, reserved := g.pool.take()
	switch {
	case ok:
	case reserved:
		built, err := g.pool.build(ctx)
		if err != nil {
			return err
		}
		client = built
	default:
		return nil
	}

	g.client = client
	g.held = true
	return nil
}
