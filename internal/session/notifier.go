package session

import "sync"

// Notifier wakes every current waiter at once. Waiters grab Changed() and
// block on it; Broadcast closes that channel and installs a fresh one.
type Notifier struct {
	mu     sync.Mutex
	ch     chan struct{}
	closed bool
}

func NewNotifier() *Notifier {
	return &Notifier{ch: make(chan struct{})}
}

// Changed returns a channel that is closed on the next Broadcast or Close.
func (n *Notifier) Changed() <-chan struct{} {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.ch
}

func (n *Notifier) Broadcast() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	close(n.ch)
	n.ch = make(chan struct{})
}

// Close wakes all waiters and leaves the channel closed, so later waits
// return immediately.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return
	}
	n.closed = true
	close(n.ch)
}
