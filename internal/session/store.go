// Package session keeps the in-memory game sessions and lets callers wait for
// them to change.
package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

const maxTokenAttempts = 8

type entry struct {
	mu         sync.Mutex
	game       domain.Game
	removed    bool
	lastActive time.Time
	notifier   *Notifier
}

// Store maps tokens to sessions. The map lock only guards membership; each
// session has its own lock, so work on one session never blocks another.
// Notifications are sent after the session lock is dropped.
type Store struct {
	mu      sync.RWMutex
	entries map[domain.Token]*entry
	clock   ports.Clock
}

func NewStore(clock ports.Clock) *Store {
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &Store{
		entries: make(map[domain.Token]*entry),
		clock:   clock,
	}
}

func (s *Store) Create(identity string, language domain.Language) (domain.Token, error) {
	e := &entry{
		game:       domain.NewGame(identity, language),
		lastActive: s.clock.Now(),
		notifier:   NewNotifier(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for range maxTokenAttempts {
		token := domain.NewToken(domain.TokenTypeGame)
		if _, exists := s.entries[token]; exists {
			continue
		}
		s.entries[token] = e
		return token, nil
	}

	return domain.Token{}, fmt.Errorf("create session: no unused token after %d attempts: %w", maxTokenAttempts, domain.ErrInternal)
}

func (s *Store) SetPending(token domain.Token, question string) error {
	return s.update(token, func(game *domain.Game) error {
		return game.SetPending(question)
	})
}

func (s *Store) CommitAnswer(token domain.Token, answer domain.Answer) error {
	return s.update(token, func(game *domain.Game) error {
		return game.CommitAnswer(answer)
	})
}

// Fail records an external failure and frees the pending slot. The session
// stays playable.
func (s *Store) Fail(token domain.Token, message string) error {
	return s.update(token, func(game *domain.Game) error {
		game.Fail(message)
		return nil
	})
}

// Subject returns the secret identity and language of a session.
func (s *Store) Subject(token domain.Token) (string, domain.Language, error) {
	var (
		identity string
		language domain.Language
	)
	err := s.read(token, func(e *entry) {
		identity = e.game.Identity
		language = e.game.Language
	})

	return identity, language, err
}

// Snapshot returns the player view of a session, redacted while the game is
// still running.
func (s *Store) Snapshot(token domain.Token) (domain.Game, error) {
	var game domain.Game
	err := s.read(token, func(e *entry) {
		game = e.game.Redacted()
	})

	return game, err
}

// Watch subscribes to the next change of a session and reports whether a
// question is pending, both under the session lock. A caller that sees
// pending and then waits on changed cannot miss the commit.
func (s *Store) Watch(token domain.Token) (<-chan struct{}, bool, error) {
	var (
		changed <-chan struct{}
		pending bool
	)
	err := s.read(token, func(e *entry) {
		changed = e.notifier.Changed()
		pending = e.game.IsPending()
	})

	return changed, pending, err
}

func (s *Store) Exists(token domain.Token) bool {
	return s.read(token, func(*entry) {}) == nil
}

// Delete removes a session and wakes everyone waiting on it.
func (s *Store) Delete(token domain.Token) error {
	e, err := s.lookup(token)
	if err != nil {
		return err
	}
	if !s.removeIf(token, e, func(*entry) bool { return true }) {
		return domain.ErrSessionNotFound
	}

	return nil
}

// Sweep deletes sessions that have not been touched for idleTTL and returns
// the removed tokens.
func (s *Store) Sweep(idleTTL time.Duration) []domain.Token {
	if idleTTL <= 0 {
		return nil
	}
	cutoff := s.clock.Now().Add(-idleTTL)

	s.mu.RLock()
	candidates := make(map[domain.Token]*entry, len(s.entries))
	for token, e := range s.entries {
		candidates[token] = e
	}
	s.mu.RUnlock()

	var expired []domain.Token
	for token, e := range candidates {
		if s.removeIf(token, e, idleSince(cutoff)) {
			expired = append(expired, token)
		}
	}

	return expired
}

func idleSince(cutoff time.Time) func(e *entry) bool {
	return func(e *entry) bool {
		return e.lastActive.Before(cutoff)
	}
}

// removeIf marks e removed when match holds under the entry lock, then drops
// it from the map and closes its notifier.
func (s *Store) removeIf(token domain.Token, e *entry, match func(e *entry) bool) bool {
	e.mu.Lock()
	if e.removed || !match(e) {
		e.mu.Unlock()
		return false
	}
	e.removed = true
	e.mu.Unlock()

	s.mu.Lock()
	if s.entries[token] == e {
		delete(s.entries, token)
	}
	s.mu.Unlock()

	e.notifier.Close()
	return true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}

func (s *Store) lookup(token domain.Token) (*entry, error) {
	s.mu.RLock()
	e, ok := s.entries[token]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	return e, nil
}

func (s *Store) read(token domain.Token, fn func(e *entry)) error {
	e, err := s.lookup(token)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.removed {
		return domain.ErrSessionNotFound
	}
	e.lastActive = s.clock.Now()
	fn(e)
	return nil
}

// update applies fn under the session lock and, when it succeeds, notifies
// waiters once the lock is released.
func (s *Store) update(token domain.Token, fn func(game *domain.Game) error) error {
	e, err := s.lookup(token)
	if err != nil {
		return err
	}

	e.mu.Lock()
	if e.removed {
		e.mu.Unlock()
		return domain.ErrSessionNotFound
	}
	if err := fn(&e.game); err != nil {
		e.mu.Unlock()
		return err
	}
	e.lastActive = s.clock.Now()
	e.mu.Unlock()

	e.notifier.Broadcast()
	return nil
}
