package cmd

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gptgame/internal/adapters/httpapi"
	tomlrepo "github.com/bnema/gptgame/internal/adapters/repo/toml"
	"github.com/bnema/gptgame/internal/adapters/stats/memory"
	"github.com/bnema/gptgame/internal/application"
	"github.com/bnema/gptgame/internal/clientpool"
	"github.com/bnema/gptgame/internal/ports"
	"github.com/bnema/gptgame/internal/session"
	"github.com/bnema/gptgame/internal/version"
)

func TestVersionPrintsBuildVersion(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "gptgame "+version.Version), stdout)
}

func TestKeySetThenRemoveUsesFileBackend(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "key", "set", "--value", "sk-test-123")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stored api key as")

	entries, err := os.ReadDir(filepath.Join(home, ".config", appDirName, "secrets"))
	require.NoError(t, err)
	assert.NotEmpty(t, entries)

	stdout, _, err = executeCLI(t, home, "key", "remove")
	require.NoError(t, err)
	assert.Contains(t, stdout, "removed api key")

	_, _, err = executeCLI(t, home, "key", "remove")
	require.NoError(t, err, "removing a missing key is a no-op")
}

func TestKeySetReadsStdin(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLIWithInput(t, home, "sk-from-stdin\n", "key", "set", "--stdin")
	require.NoError(t, err)
	assert.Contains(t, stdout, "stored api key as")
}

func TestKeySetRequiresValueOrStdin(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "key", "set")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one of the flags in the group [value stdin] is required")
}

func TestKeySetRejectsBlankValue(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "key", "set", "--value", "   ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "api key is empty")
}

func TestCatalogInitThenShow(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "catalog.toml")

	stdout, _, err := executeCLI(t, home, "catalog", "init", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "wrote catalog to "+path)
	assert.FileExists(t, path)

	_, _, err = executeCLI(t, home, "catalog", "init", "--path", path)
	require.Error(t, err)

	_, _, err = executeCLI(t, home, "catalog", "init", "--path", path, "--force")
	require.NoError(t, err)

	t.Setenv("GPTGAME_GAME_CATALOG_PATH", path)
	stdout, _, err = executeCLI(t, home, "catalog", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "catalog: "+path)
	assert.Contains(t, stdout, "English: ")
	assert.Contains(t, stdout, "Czech: ")
}

func TestCatalogShowWithoutFileUsesDefaults(t *testing.T) {
	home := t.TempDir()

	stdout, _, err := executeCLI(t, home, "catalog", "show")
	require.NoError(t, err)
	assert.Contains(t, stdout, "catalog: built-in defaults")
}

func TestInvalidFailurePolicyFailsEveryCommand(t *testing.T) {
	home := t.TempDir()
	writeConfigFixture(t, home, "[openai]\nfailure_policy = \"retry\"\n")

	_, _, err := executeCLI(t, home, "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "openai.failure_policy")
}

func TestExplicitConfigFileMustExist(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "--config", filepath.Join(home, "missing.toml"), "version")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config")
}

func TestPlayCustomGameUntilFinalAnswer(t *testing.T) {
	home := t.TempDir()

	var asked atomic.Int32
	oracle := oracleFunc(func(_ context.Context, req ports.OracleRequest) (string, error) {
		if asked.Add(1) == 1 {
			return "YES; I live in the sea", nil
		}
		return "FINAL; you got me", nil
	})
	server := newGameServerFixture(t, oracle)

	input := "hi\nDo you live in the sea?\nAre you a whale?\nnever asked\n"
	stdout, _, err := executeCLIWithInput(t, home, input,
		"play", "--server", server.URL, "--identity", "Whale", "--plain",
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "New game in English.")
	assert.Contains(t, stdout, "invalid question:")
	assert.Contains(t, stdout, "Do you live in the sea?")
	assert.Contains(t, stdout, "Game over. I was Whale.")
	assert.Equal(t, int32(2), asked.Load())
}

func TestPlayStopsOnQuit(t *testing.T) {
	home := t.TempDir()

	oracle := oracleFunc(func(context.Context, ports.OracleRequest) (string, error) {
		t.Error("oracle should not be called")
		return "", nil
	})
	server := newGameServerFixture(t, oracle)

	stdout, _, err := executeCLIWithInput(t, home, "\nquit\nIs it a whale?\n",
		"play", "--server", server.URL, "--plain",
	)
	require.NoError(t, err)
	assert.Contains(t, stdout, "New game in English.")
	assert.NotContains(t, stdout, "Game over.")
}

func TestPlayRejectsUnknownLanguage(t *testing.T) {
	home := t.TempDir()

	_, _, err := executeCLI(t, home, "play", "--lang", "de", "--server", "http://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported language")
}

func TestLoadSettingsValidation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{name: "defaults", wantErr: ""},
		{name: "consume policy", key: "openai.failure_policy", value: "consume", wantErr: ""},
		{name: "unknown policy", key: "openai.failure_policy", value: "retry", wantErr: "openai.failure_policy"},
		{name: "zero clients", key: "openai.max_clients", value: 0, wantErr: "openai.max_clients must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := newConfig()
			v.Set("secrets.dir", t.TempDir())
			if tt.key != "" {
				v.Set(tt.key, tt.value)
			}

			loaded, err := loadSettings(v)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 5, loaded.OpenAI.MaxClients)
			assert.Equal(t, defaultAddress, loaded.Server.Addr)
			assert.Equal(t, 5*time.Second, loaded.Game.WaitBudget)
		})
	}
}

func TestStringList(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "toml array", in: []string{"env", "file"}, want: []string{"env", "file"}},
		{name: "comma separated env", in: []string{"env,pass, file"}, want: []string{"env", "pass", "file"}},
		{name: "blanks dropped", in: []string{" ", "env,,"}, want: []string{"env"}},
		{name: "empty", in: nil, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stringList(tt.in))
		})
	}
}

type oracleFunc func(ctx context.Context, req ports.OracleRequest) (string, error)

func (f oracleFunc) Ask(ctx context.Context, req ports.OracleRequest) (string, error) {
	return f(ctx, req)
}

func newGameServerFixture(t *testing.T, oracle ports.Oracle) *httptest.Server {
	t.Helper()

	factory := clientpool.FactoryFunc[ports.Oracle](func(context.Context) (ports.Oracle, error) {
		return oracle, nil
	})
	pool, err := clientpool.New[ports.Oracle](factory, clientpool.Config{MaxClients: 1}, nil)
	require.NoError(t, err)

	catalog, err := tomlrepo.NewCatalogRepository(nil)
	require.NoError(t, err)

	cfg := application.DefaultGameConfig()
	cfg.WaitBudget = time.Second
	service := application.NewGameService(session.NewStore(nil), pool, catalog, memory.NewStore(), nil, nil, cfg)

	handler := httpapi.NewHandler(service, nil)
	server := httptest.NewServer(handler.Routes())
	t.Cleanup(func() {
		handler.Close()
		server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		assert.NoError(t, service.Shutdown(ctx))
	})

	return server
}

func executeCLI(t *testing.T, home string, args ...string) (string, string, error) {
	t.Helper()
	return executeCLIWithInput(t, home, "", args...)
}

func executeCLIWithInput(t *testing.T, home, input string, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("GPTGAME_SECRETS_BACKENDS", "env,file")

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetIn(strings.NewReader(input))
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeConfigFixture(t *testing.T, home, content string) {
	t.Helper()

	dir := filepath.Join(home, ".config", appDirName)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, configName+".toml"), []byte(content), 0o644))
}
