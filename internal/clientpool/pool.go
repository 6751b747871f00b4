// Package clientpool rations a small set of expensive clients among many
// concurrent callers. Clients are built lazily up to a hard cap, reused while
// idle, and handed back through a Guard whose Release is meant to be deferred.
package clientpool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

var (
	ErrInvalidConfig = errors.New("invalid client pool config")
	ErrGuardReleased = errors.New("guard already released")
)

type Factory[C any] interface {
	Build(ctx context.Context) (C, error)
}

type FactoryFunc[C any] func(ctx context.Context) (C, error)

func (f FactoryFunc[C]) Build(ctx context.Context) (C, error) {
	return f(ctx)
}

// FailurePolicy decides what happens to a construction slot whose build
// failed.
type FailurePolicy string

const (
	// FailurePolicyRelease gives the slot back and wakes a waiter, which may
	// retry the build.
	FailurePolicyRelease FailurePolicy = "release"
	// FailurePolicyConsume keeps the slot counted, permanently shrinking the
	// pool by one.
	FailurePolicyConsume FailurePolicy = "consume"
)

func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", FailurePolicyRelease:
		return FailurePolicyRelease, nil
	case FailurePolicyConsume:
		return FailurePolicyConsume, nil
	default:
		return "", fmt.Errorf("unknown failure policy %q: %w", s, ErrInvalidConfig)
	}
}

type Config struct {
	MaxClients    int
	FailurePolicy FailurePolicy
}

func (c Config) Validate() error {
	if c.MaxClients < 1 {
		return fmt.Errorf("max clients must be positive, got %d: %w", c.MaxClients, ErrInvalidConfig)
	}
	if _, err := ParseFailurePolicy(string(c.FailurePolicy)); err != nil {
		return err
	}

	return nil
}

type Stats struct {
	Max          int `json:"max"`
	Constructed  int `json:"constructed"`
	Idle         int `json:"idle"`
	InUse        int `json:"in_use"`
	Waiting      int `json:"waiting"`
	FailedBuilds int `json:"failed_builds"`
}

type Pool[C any] struct {
	factory Factory[C]
	max     int
	policy  FailurePolicy
	logger  *slog.Logger

	mu           sync.Mutex
	idle         []C
	constructed  int
	waiting      int
	failedBuilds int

	// signal holds at most one pending wakeup. Release and freed slots send
	// without blocking; a waiter that takes a client while more are idle
	// passes the signal on.
	signal chan struct{}
}

func New[C any](factory Factory[C], cfg Config, logger *slog.Logger) (*Pool[C], error) {
	if factory == nil {
		return nil, fmt.Errorf("factory is required: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	policy, _ := ParseFailurePolicy(string(cfg.FailurePolicy))
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Pool[C]{
		factory: factory,
		max:     cfg.MaxClients,
		policy:  policy,
		logger:  logger,
		signal:  make(chan struct{}, 1),
	}, nil
}

// Get makes one attempt at obtaining a client. When none is idle and the cap
// is reached the returned guard is empty; call Ready to wait for one.
func (p *Pool[C]) Get(ctx context.Context) (*Guard[C], error) {
	guard := &Guard[C]{pool: p}
	if err := guard.fill(ctx); err != nil {
		guard.released = true
		return nil, err
	}

	return guard, nil
}

// Acquire returns a guard that holds a client, waiting as long as ctx allows.
func (p *Pool[C]) Acquire(ctx context.Context) (*Guard[C], error) {
	guard, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	if err := guard.Ready(ctx); err != nil {
		guard.Release()
		return nil, err
	}

	return guard, nil
}

// With runs fn with a pooled client. The client goes back to the pool when fn
// returns or panics.
func (p *Pool[C]) With(ctx context.Context, fn func(ctx context.Context, client C) error) error {
	guard, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer guard.Release()

	return fn(ctx, guard.Client())
}

func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return Stats{
		Max:          p.max,
		Constructed:  p.constructed,
		Idle:         len(p.idle),
		InUse:        p.constructed - len(p.idle),
		Waiting:      p.waiting,
		FailedBuilds: p.failedBuilds,
	}
}

// take pops an idle client, or reserves a construction slot when the cap
// allows one. Neither is possible when both results are false.
func (p *Pool[C]) take() (client C, ok bool, reserved bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.idle); n > 0 {
		client = p.idle[n-1]
		var zero C
		p.idle[n-1] = zero
		p.idle = p.idle[:n-1]
		if len(p.idle) > 0 {
			p.notify()
		}
		return client, true, false
	}

	if p.constructed < p.max {
		p.constructed++
		return client, false, true
	}

	return client, false, false
}

// build runs the factory for a slot reserved by take. The pool lock is not
// held while building.
func (p *Pool[C]) build(ctx context.Context) (C, error) {
	client, err := p.factory.Build(ctx)
	if err == nil {
		return client, nil
	}

	p.mu.Lock()
	p.failedBuilds++
	if p.policy == FailurePolicyRelease {
		p.constructed--
	}
	constructed := p.constructed
	p.mu.Unlock()

	p.logger.Warn("client build failed", "err", err, "policy", string(p.policy), "constructed", constructed, "max", p.max)
	if p.policy == FailurePolicyRelease {
		p.notify()
	}

	var zero C
	return zero, fmt.Errorf("build client: %w", err)
}

func (p *Pool[C]) put(client C) {
	p.mu.Lock()
	p.idle = append(p.idle, client)
	p.mu.Unlock()

	p.notify()
}

func (p *Pool[C]) notify() {
	select {
	case p.signal <- struct{}{}:
	default:
	}
}

func (p *Pool[C]) addWaiting(delta int) {
	p.mu.Lock()
	p.waiting += delta
	p.mu.Unlock()
}
