package chain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	envstore "github.com/bnema/gptgame/internal/adapters/secrets/env"
	filestore "github.com/bnema/gptgame/internal/adapters/secrets/file"
	passstore "github.com/bnema/gptgame/internal/adapters/secrets/pass"
	"github.com/bnema/gptgame/internal/ports"
)

// Store tries each backend in order and returns the first success.
type Store struct {
	backends []ports.SecretStore
}

var _ ports.SecretStore = (*Store)(nil)

var (
	errNoBackends        = errors.New("secret store chain has no backends")
	errNoWritableBackend = errors.New("no writable secret backend")
)

func NewStore(backends ...ports.SecretStore) (*Store, error) {
	if len(backends) == 0 {
		return nil, errNoBackends
	}
	for i, backend := range backends {
		if backend == nil {
			return nil, fmt.Errorf("secret store backend %d is nil", i)
		}
	}

	return &Store{backends: backends}, nil
}

// DefaultBackends reads the API key from the environment first, then pass,
// then plain files. Writes go to pass, falling back to files.
var DefaultBackends = []string{"env", "pass", "file"}

// Backends holds the settings the named backends need.
type Backends struct {
	// EnvVars maps secret keys to environment variable names.
	EnvVars map[string]string
	// FileRoot is the directory of the file backend.
	FileRoot string
	// PassDir overrides PASSWORD_STORE_DIR for the pass backend.
	PassDir string
}

// NewNamed builds a chain from backend names in lookup order.
func NewNamed(names []string, cfg Backends) (*Store, error) {
	backends := make([]ports.SecretStore, 0, len(names))
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "env":
			backends = append(backends, envstore.NewStore(cfg.EnvVars))
		case "pass":
			backends = append(backends, passstore.NewStore(passstore.WithStoreDir(cfg.PassDir)))
		case "file":
			if strings.TrimSpace(cfg.FileRoot) == "" {
				return nil, errors.New("file secret backend needs a directory")
			}
			backends = append(backends, filestore.NewStore(cfg.FileRoot))
		default:
			return nil, fmt.Errorf("unknown secret backend %q", name)
		}
	}

	return NewStore(backends...)
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	return s.each("put", func(backend ports.SecretStore) error {
		return backend.Put(ctx, key, value)
	})
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.each("get", func(backend ports.SecretStore) error {
		v, err := backend.Get(ctx, key)
		if err == nil {
			value = v
		}
		return err
	})

	return value, err
}

// Delete removes the key from every writable backend.
func (s *Store) Delete(ctx context.Context, key string) error {
	var errs []error
	deleted := false
	for _, backend := range s.backends {
		err := backend.Delete(ctx, key)
		switch {
		case err == nil:
			deleted = true
		case shouldStop(err):
			return err
		case errors.Is(err, envstore.ErrReadOnly):
		default:
			errs = append(errs, err)
		}
	}
	if deleted {
		return nil
	}
	if len(errs) == 0 {
		return fmt.Errorf("delete secret %q: %w", key, errNoWritableBackend)
	}

	return fmt.Errorf("delete secret %q: %w", key, errors.Join(errs...))
}

// each runs fn against the backends in order until one succeeds. A context
// error stops the walk; read-only backends are skipped for writes.
func (s *Store) each(op string, fn func(backend ports.SecretStore) error) error {
	var errs []error
	for i, backend := range s.backends {
		err := fn(backend)
		if err == nil {
			return nil
		}
		if shouldStop(err) {
			return err
		}
		if errors.Is(err, envstore.ErrReadOnly) {
			continue
		}
		errs = append(errs, fmt.Errorf("backend %d %s failed: %w", i, op, err))
	}
	if len(errs) == 0 {
		return fmt.Errorf("%s secret: %w", op, errNoWritableBackend)
	}

	return errors.Join(errs...)
}

func shouldStop(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
