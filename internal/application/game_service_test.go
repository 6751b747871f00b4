package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gptgame/internal/clientpool"
	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
	"github.com/bnema/gptgame/internal/ports/mocks"
	"github.com/bnema/gptgame/internal/session"
)

const testInstructions = "You are {target}. Reply in {language} as VERDICT; comment."

type gameFixture struct {
	service  *GameService
	sessions *session.Store
	oracle   *mocks.MockOracle
	catalog  *mocks.MockCatalog
	builds   *atomic.Int32
}

func newGameFixture(t *testing.T, cfg GameConfig, maxClients int) *gameFixture {
	t.Helper()

	oracle := mocks.NewMockOracle(t)
	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().Identities(mockAnyContext(), domain.LanguageEnglish).Return([]string{"Whale"}, nil).Maybe()
	catalog.EXPECT().Instructions(mockAnyContext()).Return(testInstructions, nil).Maybe()

	builds := &atomic.Int32{}
	factory := clientpool.FactoryFunc[ports.Oracle](func(context.Context) (ports.Oracle, error) {
		builds.Add(1)
		return oracle, nil
	})
	pool, err := clientpool.New[ports.Oracle](factory, clientpool.Config{MaxClients: maxClients}, nil)
	require.NoError(t, err)

	sessions := session.NewStore(nil)
	service := NewGameService(sessions, pool, catalog, nil, nil, nil, cfg)
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, service.Shutdown(ctx))
	})

	return &gameFixture{service: service, sessions: sessions, oracle: oracle, catalog: catalog, builds: builds}
}

func waitConfig(budget time.Duration) GameConfig {
	cfg := DefaultGameConfig()
	cfg.WaitBudget = budget
	cfg.ResolveTimeout = 5 * time.Second
	return cfg
}

func TestGameServicePlaysWhaleGame(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(2*time.Second), 1)
	ctx := context.Background()

	f.oracle.EXPECT().Ask(mockAnyContext(), ports.OracleRequest{
		Instructions: "You are Whale. Reply in English as VERDICT; comment.",
		Input:        "question: [Do you live in water?]",
	}).Return("YES; I live in the ocean", nil).Once()
	f.oracle.EXPECT().Ask(mockAnyContext(), mock.MatchedBy(func(req ports.OracleRequest) bool {
		return req.Input == "question: [Are you a whale?]"
	})).Return("FINAL; you got me", nil).Once()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, domain.TokenTypeGame, token.Type())

	require.NoError(t, f.service.Ask(ctx, token, "  Do you live in water?  "))

	result, err := f.service.State(ctx, token, StateOptions{Wait: true})
	require.NoError(t, err)
	require.Equal(t, StateStatusOK, result.Status)
	require.Len(t, result.Game.Records, 1)
	assert.Equal(t, "Do you live in water?", result.Game.Records[0].Question.Text)
	assert.Equal(t, domain.VerdictYes, result.Game.Records[0].Answer.Verdict)
	assert.Empty(t, result.Game.Records[0].Answer.Comment)
	assert.Empty(t, result.Game.Identity)

	require.NoError(t, f.service.Ask(ctx, token, "Are you a whale?"))

	result, err = f.service.State(ctx, token, StateOptions{Wait: true})
	require.NoError(t, err)
	assert.True(t, result.Game.Ended)
	assert.Equal(t, "Whale", result.Game.Identity)
	assert.Equal(t, "I live in the ocean", result.Game.Records[0].Answer.Comment)
	assert.ErrorIs(t, f.service.Ask(ctx, token, "Anything else?"), domain.ErrGameEnded)
}

func TestGameServiceAskIsSingleFlight(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(2*time.Second), 3)
	ctx := context.Background()

	gate := make(chan struct{})
	f.oracle.EXPECT().Ask(mockAnyContext(), mock.Anything).RunAndReturn(func(ctx context.Context, _ ports.OracleRequest) (string, error) {
		<-gate
		return "NO; not at all", nil
	}).Once()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)

	const callers = 32
	var (
		accepted atomic.Int32
		busy     atomic.Int32
		wg       sync.WaitGroup
	)
	for range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.service.Ask(ctx, token, "Can you fly?")
			switch {
			case err == nil:
				accepted.Add(1)
			case errors.Is(err, domain.ErrBusy):
				busy.Add(1)
			default:
				t.Errorf("unexpected ask error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, accepted.Load())
	assert.EqualValues(t, callers-1, busy.Load())

	close(gate)
	result, err := f.service.State(ctx, token, StateOptions{Wait: true})
	require.NoError(t, err)
	assert.Equal(t, StateStatusOK, result.Status)
	assert.Len(t, result.Game.Records, 1)
}

func TestGameServiceAskRejectsBadInput(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(time.Second), 1)
	ctx := context.Background()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)

	assert.ErrorIs(t, f.service.Ask(ctx, token, "hm?"), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.service.Ask(ctx, token, string(make([]byte, domain.MaxQuestionBytes+1))), domain.ErrInvalidInput)
	assert.ErrorIs(t, f.service.Ask(ctx, domain.NewToken(domain.TokenTypeGame), "Are you big?"), domain.ErrSessionNotFound)

	result, err := f.service.State(ctx, token, StateOptions{})
	require.NoError(t, err)
	assert.Equal(t, StateStatusOK, result.Status)
	assert.Empty(t, result.Game.Records)
}

func TestGameServiceOracleFailureKeepsSessionPlayable(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(2*time.Second), 1)
	ctx := context.Background()

	f.oracle.EXPECT().Ask(mockAnyContext(), mock.Anything).Return("", errors.New("status 503")).Once()
	f.oracle.EXPECT().Ask(mockAnyContext(), mock.Anything).Return("YES; sure", nil).Once()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, f.service.Ask(ctx, token, "Are you an animal?"))

	result, err := f.service.State(ctx, token, StateOptions{Wait: true})
	require.NoError(t, err)
	assert.Equal(t, StateStatusOK, result.Status)
	assert.Equal(t, "the answer service is unavailable", result.Game.Error)
	assert.Empty(t, result.Game.Records)

	require.NoError(t, f.service.Ask(ctx, token, "Are you an animal?"))
	result, err = f.service.State(ctx, token, StateOptions{Wait: true})
	require.NoError(t, err)
	assert.Empty(t, result.Game.Error)
	assert.Len(t, result.Game.Records, 1)
}

func TestGameServiceGiveUpEndsGameWithoutOracle(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(time.Second), 1)
	ctx := context.Background()

	token, err := f.service.NewCustomGame(ctx, "Velryba", domain.LanguageCzech)
	require.NoError(t, err)

	require.NoError(t, f.service.Ask(ctx, token, "jsem poražený"))

	result, err := f.service.State(ctx, token, StateOptions{})
	require.NoError(t, err)
	assert.True(t, result.Game.Ended)
	assert.Equal(t, "Velryba", result.Game.Identity)
	require.Len(t, result.Game.Records, 1)
	assert.Equal(t, domain.VerdictFinal, result.Game.Records[0].Answer.Verdict)
	assert.Equal(t, "Jsem Velryba", result.Game.Records[0].Answer.Comment)
	assert.Zero(t, f.builds.Load())
}

func TestGameServiceStatePendingVariants(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(20*time.Millisecond), 1)
	ctx := context.Background()

	gate := make(chan struct{})
	f.oracle.EXPECT().Ask(mockAnyContext(), mock.Anything).RunAndReturn(func(context.Context, ports.OracleRequest) (string, error) {
		<-gate
		return "UNABLE; hard to say", nil
	}).Once()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, f.service.Ask(ctx, token, "Are you happy?"))

	quiet, err := f.service.State(ctx, token, StateOptions{Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, StateStatusPending, quiet.Status)
	assert.Nil(t, quiet.Game)

	loud, err := f.service.State(ctx, token, StateOptions{})
	require.NoError(t, err)
	assert.Equal(t, StateStatusPending, loud.Status)
	require.NotNil(t, loud.Game)
	assert.Equal(t, "Are you happy?", loud.Game.Pending.Text)

	started := time.Now()
	waited, err := f.service.State(ctx, token, StateOptions{Wait: true, Quiet: true})
	require.NoError(t, err)
	assert.Equal(t, StateStatusPending, waited.Status)
	assert.GreaterOrEqual(t, time.Since(started), 20*time.Millisecond)

	close(gate)
	require.Eventually(t, func() bool {
		result, err := f.service.State(ctx, token, StateOptions{Quiet: true})
		return err == nil && result.Status == StateStatusOK
	}, 2*time.Second, 5*time.Millisecond)
}

func TestGameServiceDeleteWakesWaiters(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(5*time.Second), 1)
	ctx := context.Background()

	gate := make(chan struct{})
	f.oracle.EXPECT().Ask(mockAnyContext(), mock.Anything).RunAndReturn(func(context.Context, ports.OracleRequest) (string, error) {
		<-gate
		return "YES; indeed", nil
	}).Once()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, f.service.Ask(ctx, token, "Are you large?"))

	const waiters = 8
	errs := make(chan error, waiters)
	for range waiters {
		go func() {
			_, err := f.service.State(ctx, token, StateOptions{Wait: true})
			errs <- err
		}()
	}

	time.Sleep(20 * time.Millisecond)
	started := time.Now()
	require.NoError(t, f.service.Delete(ctx, token))
	for range waiters {
		assert.ErrorIs(t, <-errs, domain.ErrSessionNotFound)
	}
	assert.Less(t, time.Since(started), time.Second)

	close(gate)
	assert.ErrorIs(t, f.service.Delete(ctx, token), domain.ErrSessionNotFound)
}

func TestGameServicePoolBoundsConcurrentOracleCalls(t *testing.T) {
	t.Parallel()

	const maxClients = 2
	f := newGameFixture(t, waitConfig(5*time.Second), maxClients)
	ctx := context.Background()

	var inFlight, peak atomic.Int32
	f.oracle.EXPECT().Ask(mockAnyContext(), mock.Anything).RunAndReturn(func(context.Context, ports.OracleRequest) (string, error) {
		now := inFlight.Add(1)
		defer inFlight.Add(-1)
		for {
			old := peak.Load()
			if now <= old || peak.CompareAndSwap(old, now) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		return "NO; nope", nil
	})

	const games = 10
	tokens := make([]domain.Token, 0, games)
	for range games {
		token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
		require.NoError(t, err)
		require.NoError(t, f.service.Ask(ctx, token, "Are you a plant?"))
		tokens = append(tokens, token)
	}

	for _, token := range tokens {
		result, err := f.service.State(ctx, token, StateOptions{Wait: true})
		require.NoError(t, err)
		assert.Equal(t, StateStatusOK, result.Status)
		assert.Len(t, result.Game.Records, 1)
	}

	assert.LessOrEqual(t, peak.Load(), int32(maxClients))
	assert.LessOrEqual(t, f.builds.Load(), int32(maxClients))
}

func TestGameServiceNewCustomGameValidatesIdentity(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(time.Second), 1)
	ctx := context.Background()

	_, err := f.service.NewCustomGame(ctx, "   ", domain.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.service.NewCustomGame(ctx, string(make([]byte, maxIdentityBytes+1)), domain.LanguageEnglish)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGameServiceNewGameNeedsIdentities(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(time.Second), 1)
	f.catalog.EXPECT().Identities(mockAnyContext(), domain.LanguageCzech).Return(nil, nil).Once()

	_, err := f.service.NewGame(context.Background(), domain.LanguageCzech)
	assert.ErrorIs(t, err, domain.ErrInternal)
}

func TestGameServiceShutdownRejectsNewQuestions(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(time.Second), 1)
	ctx := context.Background()

	token, err := f.service.NewGame(ctx, domain.LanguageEnglish)
	require.NoError(t, err)
	require.NoError(t, f.service.Shutdown(ctx))

	assert.ErrorIs(t, f.service.Ask(ctx, token, "Are you a bird?"), ErrShuttingDown)

	result, err := f.service.State(ctx, token, StateOptions{})
	require.NoError(t, err)
	assert.Equal(t, StateStatusOK, result.Status)
	assert.Equal(t, "server is shutting down", result.Game.Error)
}

func TestGameServiceRecordsEventsBestEffort(t *testing.T) {
	t.Parallel()

	catalog := mocks.NewMockCatalog(t)
	catalog.EXPECT().Identities(mockAnyContext(), domain.LanguageEnglish).Return([]string{"Whale"}, nil).Once()
	stats := mocks.NewMockStatsStore(t)
	stats.EXPECT().Record(mockAnyContext(), mock.MatchedBy(func(event domain.GameEvent) bool {
		return event.Kind == domain.GameEventCreated && event.Language == domain.LanguageEnglish
	})).Return(errors.New("redis down")).Once()
	stats.EXPECT().Snapshot(mockAnyContext()).Return(map[domain.GameEventKind]int64{domain.GameEventCreated: 1}, nil).Once()

	pool, err := clientpool.New[ports.Oracle](clientpool.FactoryFunc[ports.Oracle](func(context.Context) (ports.Oracle, error) {
		return mocks.NewMockOracle(t), nil
	}), clientpool.Config{MaxClients: 4}, nil)
	require.NoError(t, err)

	service := NewGameService(session.NewStore(nil), pool, catalog, stats, nil, nil, DefaultGameConfig())

	_, err = service.NewGame(context.Background(), domain.LanguageEnglish)
	require.NoError(t, err)

	snapshot := service.Stats(context.Background())
	assert.Equal(t, 1, snapshot.Sessions)
	assert.Equal(t, 4, snapshot.Clients.Max)
	assert.EqualValues(t, 1, snapshot.Events[domain.GameEventCreated])
}

func TestGameServiceSweepIdleExpiresSessions(t *testing.T) {
	t.Parallel()

	clock := mocks.NewMockClock(t)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	var now atomic.Pointer[time.Time]
	now.Store(&start)
	clock.EXPECT().Now().RunAndReturn(func() time.Time { return *now.Load() })

	catalog := mocks.NewMockCatalog(t)
	pool, err := clientpool.New[ports.Oracle](clientpool.FactoryFunc[ports.Oracle](func(context.Context) (ports.Oracle, error) {
		return mocks.NewMockOracle(t), nil
	}), clientpool.Config{MaxClients: 1}, nil)
	require.NoError(t, err)

	cfg := DefaultGameConfig()
	cfg.SessionTTL = time.Hour
	service := NewGameService(session.NewStore(clock), pool, catalog, nil, clock, nil, cfg)

	token, err := service.NewCustomGame(context.Background(), "Whale", domain.LanguageEnglish)
	require.NoError(t, err)

	later := start.Add(2 * time.Hour)
	now.Store(&later)

	assert.Equal(t, 1, service.SweepIdle(context.Background()))
	_, err = service.State(context.Background(), token, StateOptions{})
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestGameServiceNewAnswerToken(t *testing.T) {
	t.Parallel()

	f := newGameFixture(t, waitConfig(time.Second), 1)

	token := f.service.NewAnswerToken()
	assert.Equal(t, domain.TokenTypeAnswer, token.Type())
}

func mockAnyContext() interface{} {
	return mock.Anything
}
