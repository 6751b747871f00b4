package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"github.com/bnema/gptgame/internal/clientpool"
	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
	"github.com/bnema/gptgame/internal/session"
)

const (
	maxIdentityBytes = 80
	statsTimeout     = 2 * time.Second
)

var ErrShuttingDown = errors.New("game service is shutting down")

// GameService is the entry point for every game operation. It owns the
// session store and the oracle client pool and resolves questions in the
// background, so a player request never waits on the AI service.
type GameService struct {
	sessions *session.Store
	waiter   *session.Waiter
	oracles  *clientpool.Pool[ports.Oracle]
	catalog  ports.Catalog
	stats    ports.StatsStore
	clock    ports.Clock
	logger   *slog.Logger
	cfg      GameConfig

	workers   *workerRegistry
	closing   chan struct{}
	closeOnce sync.Once
	halt      context.Context
	haltNow   context.CancelFunc
}

func NewGameService(
	sessions *session.Store,
	oracles *clientpool.Pool[ports.Oracle],
	catalog ports.Catalog,
	stats ports.StatsStore,
	clock ports.Clock,
	logger *slog.Logger,
	cfg GameConfig,
) *GameService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	halt, haltNow := context.WithCancel(context.Background())

	return &GameService{
		sessions: sessions,
		waiter:   session.NewWaiter(sessions),
		oracles:  oracles,
		catalog:  catalog,
		stats:    stats,
		clock:    clock,
		logger:   logger,
		cfg:      cfg.withDefaults(),
		workers:  &workerRegistry{logger: logger},
		closing:  make(chan struct{}),
		halt:     halt,
		haltNow:  haltNow,
	}
}

func (s *GameService) NewGame(ctx context.Context, language domain.Language) (domain.Token, error) {
	identities, err := s.catalog.Identities(ctx, language)
	if err != nil {
		return domain.Token{}, fmt.Errorf("load identities: %w", err)
	}
	if len(identities) == 0 {
		return domain.Token{}, fmt.Errorf("no identities for language %q: %w", language, domain.ErrInternal)
	}

	return s.createGame(ctx, identities[rand.IntN(len(identities))], language)
}

func (s *GameService) NewCustomGame(ctx context.Context, identity string, language domain.Language) (domain.Token, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return domain.Token{}, fmt.Errorf("identity is required: %w", domain.ErrInvalidInput)
	}
	if len(identity) > maxIdentityBytes {
		return domain.Token{}, fmt.Errorf("identity longer than %d bytes: %w", maxIdentityBytes, domain.ErrInvalidInput)
	}

	return s.createGame(ctx, identity, language)
}

// NewAnswerToken issues a token for an answer slot that is not bound to any
// session.
func (s *GameService) NewAnswerToken() domain.Token {
	return domain.NewToken(domain.TokenTypeAnswer)
}

// Ask validates the question, claims the session's single pending slot and
// hands the question to a background resolution. It returns ErrBusy while an
// earlier question is still unanswered.
func (s *GameService) Ask(ctx context.Context, token domain.Token, text string) error {
	question := strings.TrimSpace(text)
	if err := domain.ValidateQuestion(question); err != nil {
		return err
	}

	identity, language, err := s.sessions.Subject(token)
	if err != nil {
		return err
	}

	if language.IsGiveUp(question) {
		return s.giveUp(ctx, token, question, identity, language)
	}

	template, err := s.catalog.Instructions(ctx)
	if err != nil {
		return fmt.Errorf("load instructions: %w", err)
	}
	req := buildOracleRequest(template, identity, language, question)

	if err := s.claim(ctx, token, question, language); err != nil {
		return err
	}
	s.record(ctx, domain.GameEventAsked, language)

	detached := context.WithoutCancel(ctx)
	if !s.workers.Go(func() { s.resolve(detached, token, language, req) }) {
		if err := s.sessions.Fail(token, "server is shutting down"); err != nil {
			s.logger.DebugContext(ctx, "fail pending question", "token", token.String(), "err", err)
		}
		return ErrShuttingDown
	}

	return nil
}

// State returns the player view of a session. With Wait set it first blocks
// while a question is pending, up to the configured wait budget; running out
// of budget is not an error and yields a pending result.
func (s *GameService) State(ctx context.Context, token domain.Token, opts StateOptions) (StateResult, error) {
	if opts.Wait {
		err := s.waiter.WaitWhilePending(ctx, token, s.cfg.WaitBudget)
		if err != nil && !errors.Is(err, domain.ErrTimeout) {
			return StateResult{}, err
		}
	}

	game, err := s.sessions.Snapshot(token)
	if err != nil {
		return StateResult{}, err
	}

	result := StateResult{Status: StateStatusOK, Game: &game}
	if game.IsPending() {
		result.Status = StateStatusPending
		if opts.Quiet {
			result.Game = nil
		}
	}

	return result, nil
}

// Observe returns the current player view together with a channel that is
// closed on the next change. The channel is subscribed first, so a change
// between the two calls is never missed.
func (s *GameService) Observe(token domain.Token) (domain.Game, <-chan struct{}, error) {
	changed, _, err := s.sessions.Watch(token)
	if err != nil {
		return domain.Game{}, nil, err
	}
	game, err := s.sessions.Snapshot(token)
	if err != nil {
		return domain.Game{}, nil, err
	}

	return game, changed, nil
}

func (s *GameService) Delete(ctx context.Context, token domain.Token) error {
	_, language, err := s.sessions.Subject(token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(token); err != nil {
		return err
	}
	s.record(ctx, domain.GameEventDeleted, language)

	return nil
}

func (s *GameService) Stats(ctx context.Context) ServiceStats {
	stats := ServiceStats{
		Sessions: s.sessions.Len(),
		Clients:  s.oracles.Stats(),
	}
	if s.stats == nil {
		return stats
	}

	events, err := s.stats.Snapshot(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "load game event counters", "err", err)
		return stats
	}
	stats.Events = events

	return stats
}

// StartJanitor launches the idle session sweep. It reports false when the
// sweep is disabled or the service is already shutting down.
func (s *GameService) StartJanitor() bool {
	if s.cfg.SessionTTL <= 0 || s.cfg.JanitorInterval <= 0 {
		return false
	}

	return s.workers.Go(func() {
		ticker := time.NewTicker(s.cfg.JanitorInterval)
		defer ticker.Stop()

		for {
			select {
			case <-s.closing:
				return
			case <-ticker.C:
				s.SweepIdle(s.halt)
			}
		}
	})
}

// SweepIdle deletes sessions idle for longer than the session TTL. Waiters on
// those sessions are woken with ErrSessionNotFound.
func (s *GameService) SweepIdle(ctx context.Context) int {
	expired := s.sessions.Sweep(s.cfg.SessionTTL)
	for range expired {
		s.record(ctx, domain.GameEventExpired, "")
	}
	if len(expired) > 0 {
		s.logger.InfoContext(ctx, "expired idle sessions", "count", len(expired), "remaining", s.sessions.Len())
	}

	return len(expired)
}

// Shutdown stops accepting questions and waits for background work. When ctx
// ends first, in-flight resolutions are cancelled.
func (s *GameService) Shutdown(ctx context.Context) error {
	s.closeOnce.Do(func() { close(s.closing) })

	if err := s.workers.CloseAndWait(ctx); err != nil {
		s.haltNow()
		return err
	}
	s.haltNow()

	return nil
}

func (s *GameService) createGame(ctx context.Context, identity string, language domain.Language) (domain.Token, error) {
	token, err := s.sessions.Create(identity, language)
	if err != nil {
		return domain.Token{}, err
	}
	s.record(ctx, domain.GameEventCreated, language)
	s.logger.InfoContext(ctx, "game created", "token", token.String(), "language", string(language))

	return token, nil
}

func (s *GameService) claim(ctx context.Context, token domain.Token, question string, language domain.Language) error {
	err := s.sessions.SetPending(token, question)
	if errors.Is(err, domain.ErrBusy) {
		s.record(ctx, domain.GameEventBusy, language)
	}

	return err
}

// giveUp ends the game without consulting the oracle.
func (s *GameService) giveUp(ctx context.Context, token domain.Token, question, identity string, language domain.Language) error {
	if err := s.claim(ctx, token, question, language); err != nil {
		return err
	}

	answer := domain.NewAnswer(domain.VerdictFinal, language.FinalAnswer(identity), s.clock.Now())
	if err := s.sessions.CommitAnswer(token, answer); err != nil {
		return fmt.Errorf("commit give-up answer: %w", err)
	}
	s.record(ctx, domain.GameEventGaveUp, language)
	s.record(ctx, domain.GameEventEnded, language)

	return nil
}

func (s *GameService) resolve(ctx context.Context, token domain.Token, language domain.Language, req ports.OracleRequest) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.ResolveTimeout)
	defer cancel()
	stop := context.AfterFunc(s.halt, cancel)
	defer stop()

	defer func() {
		if recovered := recover(); recovered != nil {
			s.logger.ErrorContext(ctx, "resolve question panicked", "token", token.String(), "panic", fmt.Sprint(recovered))
			s.fail(ctx, token, language, "internal error")
		}
	}()

	started := s.clock.Now()
	var reply string
	err := s.oracles.With(ctx, func(ctx context.Context, oracle ports.Oracle) error {
		var askErr error
		reply, askErr = oracle.Ask(ctx, req)
		return askErr
	})
	if err != nil {
		s.logger.WarnContext(ctx, "resolve question failed", "token", token.String(), "err", err)
		s.fail(ctx, token, language, failureMessage(err))
		return
	}

	answer := domain.ParseAnswer(reply, s.clock.Now())
	if err := s.sessions.CommitAnswer(token, answer); err != nil {
		s.logger.InfoContext(ctx, "drop answer", "token", token.String(), "err", err)
		return
	}

	s.record(ctx, domain.GameEventAnswered, language)
	if answer.Verdict == domain.VerdictFinal {
		s.record(ctx, domain.GameEventEnded, language)
	}
	s.logger.DebugContext(ctx, "question resolved",
		"token", token.String(),
		"verdict", string(answer.Verdict),
		"elapsed", s.clock.Now().Sub(started),
	)
}

func (s *GameService) fail(ctx context.Context, token domain.Token, language domain.Language, message string) {
	if err := s.sessions.Fail(token, message); err != nil {
		s.logger.InfoContext(ctx, "record failure", "token", token.String(), "err", err)
		return
	}
	s.record(ctx, domain.GameEventFailed, language)
}

// record counts a game event. Counters are best effort and never fail the
// caller.
func (s *GameService) record(ctx context.Context, kind domain.GameEventKind, language domain.Language) {
	if s.stats == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statsTimeout)
	defer cancel()

	event := domain.GameEvent{Kind: kind, Language: language, At: s.clock.Now()}
	if err := s.stats.Record(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record game event", "kind", string(kind), "err", err)
	}
}

func failureMessage(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "the answer service did not respond in time"
	case errors.Is(err, context.Canceled):
		return "the question was cancelled"
	default:
		return "the answer service is unavailable"
	}
}
