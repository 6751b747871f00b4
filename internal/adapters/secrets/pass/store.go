package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

const (
	storeDirEnv     = "PASSWORD_STORE_DIR"
	missingEntryMsg = "is not in the password store"
)

var ErrUnavailable = errors.New("pass command unavailable")

// invocation is one pass call. env entries are appended to the process
// environment.
type invocation struct {
	args  []string
	input string
	env   []string
}

type runFunc func(ctx context.Context, call invocation) (stdout string, stderr string, err error)

// Store keeps the API key in the pass password manager.
type Store struct {
	run      runFunc
	storeDir string
}

var _ ports.SecretStore = (*Store)(nil)

type Option func(*Store)

// WithStoreDir points pass at a dedicated password store instead of the
// user's default one.
func WithStoreDir(dir string) Option {
	return func(s *Store) {
		s.storeDir = strings.TrimSpace(dir)
	}
}

func NewStore(opts ...Option) *Store {
	s := &Store{run: runPass}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.exec(ctx, value+"\n", "insert", "--multiline", "--force", key)
	if err != nil {
		return commandError("put", key, err, stderr)
	}

	return nil
}

// Get returns the first line of the entry. pass keeps metadata on the
// following lines.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	stdout, stderr, err := s.exec(ctx, "", "show", key)
	switch {
	case err == nil:
	case strings.Contains(stderr, missingEntryMsg):
		return "", fmt.Errorf("pass entry %q: %w", key, domain.ErrSecretNotFound)
	default:
		return "", commandError("get", key, err, stderr)
	}

	first, _, _ := strings.Cut(stdout, "\n")
	return strings.TrimSpace(first), nil
}

// Delete removes the entry. A missing entry is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	_, stderr, err := s.exec(ctx, "", "rm", "--force", key)
	if err != nil && !strings.Contains(stderr, missingEntryMsg) {
		return commandError("delete", key, err, stderr)
	}

	return nil
}

func (s *Store) exec(ctx context.Context, input string, args ...string) (string, string, error) {
	call := invocation{args: args, input: input}
	if s.storeDir != "" {
		call.env = []string{storeDirEnv + "=" + s.storeDir}
	}

	return s.run(ctx, call)
}

func runPass(ctx context.Context, call invocation) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, call.args...)
	if len(call.env) > 0 {
		cmd.Env = append(os.Environ(), call.env...)
	}
	if call.input != "" {
		cmd.Stdin = strings.NewReader(call.input)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func commandError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
