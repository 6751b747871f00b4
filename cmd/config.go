package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/bnema/gptgame/internal/adapters/openai"
	"github.com/bnema/gptgame/internal/adapters/secrets/chain"
	"github.com/bnema/gptgame/internal/application"
	"github.com/bnema/gptgame/internal/clientpool"
)

const (
	envPrefix      = "GPTGAME"
	configName     = "gptgame"
	configType     = "toml"
	appDirName     = "gptgame"
	defaultKeyEnv  = "OPENAI_API_KEY"
	defaultAddress = "127.0.0.1:8080"
)

type settings struct {
	Server  serverSettings
	Game    application.GameConfig
	Catalog string
	OpenAI  openAISettings
	Secrets secretSettings
	Stats   statsSettings
	Log     logSettings
	Play    playSettings
}

type serverSettings struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type openAISettings struct {
	BaseURL        string
	Model          string
	Verbosity      string
	KeyRef         string
	MaxClients     int
	RequestTimeout time.Duration
	FailurePolicy  clientpool.FailurePolicy
}

type secretSettings struct {
	Backends []string
	Dir      string
	PassDir  string
	KeyEnv   string
}

type statsSettings struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Prefix        string
	TTL           time.Duration
}

type logSettings struct {
	Level  string
	Format string
}

type playSettings struct {
	Server string
}

func newConfig() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func setDefaults(v *viper.Viper) {
	game := application.DefaultGameConfig()

	v.SetDefault("server.addr", defaultAddress)
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("game.wait_budget", game.WaitBudget)
	v.SetDefault("game.session_ttl", game.SessionTTL)
	v.SetDefault("game.janitor_interval", game.JanitorInterval)
	v.SetDefault("game.catalog_path", "")

	v.SetDefault("openai.base_url", openai.DefaultBaseURL)
	v.SetDefault("openai.model", openai.DefaultModel)
	v.SetDefault("openai.verbosity", openai.DefaultVerbosity)
	v.SetDefault("openai.key_ref", openai.DefaultKeyRef)
	v.SetDefault("openai.max_clients", 5)
	v.SetDefault("openai.request_timeout", 30*time.Second)
	v.SetDefault("openai.resolve_timeout", game.ResolveTimeout)
	v.SetDefault("openai.failure_policy", string(clientpool.FailurePolicyRelease))

	v.SetDefault("secrets.backends", chain.DefaultBackends)
	v.SetDefault("secrets.dir", "")
	v.SetDefault("secrets.pass_dir", "")
	v.SetDefault("secrets.key_env", defaultKeyEnv)

	v.SetDefault("stats.redis_addr", "")
	v.SetDefault("stats.redis_password", "")
	v.SetDefault("stats.redis_db", 0)
	v.SetDefault("stats.prefix", "gptgame:stats")
	v.SetDefault("stats.ttl", 7*24*time.Hour)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("play.server", "http://"+defaultAddress)
}

// readConfig loads path, or gptgame.toml from the search path. A missing
// file is only an error when path was given explicitly.
func readConfig(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}

	return nil
}

func loadSettings(v *viper.Viper) (settings, error) {
	policy, err := clientpool.ParseFailurePolicy(v.GetString("openai.failure_policy"))
	if err != nil {
		return settings{}, fmt.Errorf("openai.failure_policy: %w", err)
	}

	maxClients := v.GetInt("openai.max_clients")
	if maxClients <= 0 {
		return settings{}, fmt.Errorf("openai.max_clients must be positive, got %d", maxClients)
	}

	secretsDir := strings.TrimSpace(v.GetString("secrets.dir"))
	if secretsDir == "" {
		dir, err := configDir()
		if err != nil {
			return settings{}, err
		}
		secretsDir = filepath.Join(dir, "secrets")
	}

	return settings{
		Server: serverSettings{
			Addr:            v.GetString("server.addr"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			WriteTimeout:    v.GetDuration("server.write_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
		},
		Game: application.GameConfig{
			WaitBudget:      v.GetDuration("game.wait_budget"),
			ResolveTimeout:  v.GetDuration("openai.resolve_timeout"),
			SessionTTL:      v.GetDuration("game.session_ttl"),
			JanitorInterval: v.GetDuration("game.janitor_interval"),
		},
		Catalog: v.GetString("game.catalog_path"),
		OpenAI: openAISettings{
			BaseURL:        v.GetString("openai.base_url"),
			Model:          v.GetString("openai.model"),
			Verbosity:      v.GetString("openai.verbosity"),
			KeyRef:         v.GetString("openai.key_ref"),
			MaxClients:     maxClients,
			RequestTimeout: v.GetDuration("openai.request_timeout"),
			FailurePolicy:  policy,
		},
		Secrets: secretSettings{
			Backends: stringList(v.GetStringSlice("secrets.backends")),
			Dir:      secretsDir,
			PassDir:  strings.TrimSpace(v.GetString("secrets.pass_dir")),
			KeyEnv:   v.GetString("secrets.key_env"),
		},
		Stats: statsSettings{
			RedisAddr:     v.GetString("stats.redis_addr"),
			RedisPassword: v.GetString("stats.redis_password"),
			RedisDB:       v.GetInt("stats.redis_db"),
			Prefix:        v.GetString("stats.prefix"),
			TTL:           v.GetDuration("stats.ttl"),
		},
		Log: logSettings{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Play: playSettings{
			Server: v.GetString("play.server"),
		},
	}, nil
}

// stringList accepts TOML arrays as well as comma separated env values.
func stringList(values []string) []string {
	list := make([]string, 0, len(values))
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if item = strings.TrimSpace(item); item != "" {
				list = append(list, item)
			}
		}
	}

	return list
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}

	return filepath.Join(dir, appDirName), nil
}
