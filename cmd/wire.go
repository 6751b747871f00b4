package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"

	"github.com/bnema/gptgame/internal/adapters/gameapi"
	"github.com/bnema/gptgame/internal/adapters/httpapi"
	"github.com/bnema/gptgame/internal/adapters/openai"
	tomlrepo "github.com/bnema/gptgame/internal/adapters/repo/toml"
	"github.com/bnema/gptgame/internal/adapters/secrets/chain"
	memorystats "github.com/bnema/gptgame/internal/adapters/stats/memory"
	redisstats "github.com/bnema/gptgame/internal/adapters/stats/redis"
	"github.com/bnema/gptgame/internal/application"
	"github.com/bnema/gptgame/internal/clientpool"
	"github.com/bnema/gptgame/internal/logging"
	"github.com/bnema/gptgame/internal/ports"
	"github.com/bnema/gptgame/internal/session"
	"github.com/bnema/gptgame/internal/version"
)

const redisPingTimeout = 3 * time.Second

type app struct {
	config   *viper.Viper
	settings settings
	logger   *slog.Logger
}

func wireApp() *app {
	return &app{
		config: newConfig(),
		logger: slog.New(slog.DiscardHandler),
	}
}

func (a *app) load(configFile string, logOutput io.Writer) error {
	if err := readConfig(a.config, configFile); err != nil {
		return err
	}

	loaded, err := loadSettings(a.config)
	if err != nil {
		return err
	}

	logger, err := logging.New(loaded.Log.Level, loaded.Log.Format, logOutput)
	if err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}

	a.settings = loaded
	a.logger = logger

	return nil
}

func (a *app) secretStore() (ports.SecretStore, error) {
	store, err := chain.NewNamed(a.settings.Secrets.Backends, chain.Backends{
		EnvVars:  map[string]string{a.settings.OpenAI.KeyRef: a.settings.Secrets.KeyEnv},
		FileRoot: a.settings.Secrets.Dir,
		PassDir:  a.settings.Secrets.PassDir,
	})
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	return store, nil
}

func (a *app) gameClient() *gameapi.Client {
	return &gameapi.Client{BaseURL: a.settings.Play.Server}
}

type gameServer struct {
	http            *http.Server
	service         *application.GameService
	handler         *httpapi.Handler
	closers         []func() error
	logger          *slog.Logger
	shutdownTimeout time.Duration
}

func wireServer(ctx context.Context, a *app) (*gameServer, error) {
	cfg := a.settings

	secrets, err := a.secretStore()
	if err != nil {
		return nil, err
	}

	factory := &openai.Factory{
		Secrets:        secrets,
		KeyRef:         cfg.OpenAI.KeyRef,
		BaseURL:        cfg.OpenAI.BaseURL,
		Model:          cfg.OpenAI.Model,
		Verbosity:      cfg.OpenAI.Verbosity,
		RequestTimeout: cfg.OpenAI.RequestTimeout,
	}
	pool, err := clientpool.New[ports.Oracle](factory, clientpool.Config{
		MaxClients:    cfg.OpenAI.MaxClients,
		FailurePolicy: cfg.OpenAI.FailurePolicy,
	}, a.logger)
	if err != nil {
		return nil, fmt.Errorf("wire oracle pool: %w", err)
	}

	catalog, err := tomlrepo.NewCatalogRepository(a.config)
	if err != nil {
		return nil, fmt.Errorf("wire catalog: %w", err)
	}

	stats, closers := wireStats(ctx, cfg.Stats, a.logger)

	service := application.NewGameService(
		session.NewStore(ports.SystemClock{}),
		pool,
		catalog,
		stats,
		ports.SystemClock{},
		a.logger,
		cfg.Game,
	)
	handler := httpapi.NewHandler(service, a.logger)

	return &gameServer{
		http: &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           handler.Routes(),
			ReadHeaderTimeout: cfg.Server.ReadTimeout,
			ReadTimeout:       cfg.Server.ReadTimeout,
			WriteTimeout:      cfg.Server.WriteTimeout,
			ErrorLog:          slog.NewLogLogger(a.logger.Handler(), slog.LevelWarn),
		},
		service:         service,
		handler:         handler,
		closers:         closers,
		logger:          a.logger,
		shutdownTimeout: cfg.Server.ShutdownTimeout,
	}, nil
}

// wireStats uses Redis when an address is configured and in-process counters
// otherwise. An unreachable Redis only logs, since counters are best effort.
func wireStats(ctx context.Context, cfg statsSettings, logger *slog.Logger) (ports.StatsStore, []func() error) {
	if cfg.RedisAddr == "" {
		return memorystats.NewStore(), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.WarnContext(ctx, "redis stats store unreachable", "addr", cfg.RedisAddr, "err", err)
	}

	store := redisstats.NewStore(client, redisstats.WithPrefix(cfg.Prefix), redisstats.WithTTL(cfg.TTL))
	return store, []func() error{client.Close}
}

// run serves until ctx ends, then shuts down within the shutdown timeout.
func (s *gameServer) run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.http.Addr, err)
	}

	s.service.StartJanitor()

	serveErr := make(chan error, 1)
	go func() { serveErr <- s.http.Serve(listener) }()
	s.logger.InfoContext(ctx, "game server listening", "addr", listener.Addr().String(), "version", version.Version)

	select {
	case err := <-serveErr:
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		defer cancel()
		return errors.Join(fmt.Errorf("serve http: %w", err), s.shutdown(shutdownCtx))
	case <-ctx.Done():
	}

	s.logger.InfoContext(ctx, "shutting down game server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.shutdownTimeout)
	defer cancel()

	return s.shutdown(shutdownCtx)
}

func (s *gameServer) shutdown(ctx context.Context) error {
	s.handler.Close()

	var errs []error
	if err := s.http.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if err := s.service.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown game service: %w", err))
	}
	for _, closer := range s.closers {
		if err := closer(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
