package env

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
)

var ErrReadOnly = errors.New("environment secret store is read-only")

// Store resolves secret keys to environment variables. It never writes.
type Store struct {
	vars   map[string]string
	lookup func(string) (string, bool)
}

var _ ports.SecretStore = (*Store)(nil)

// NewStore maps secret keys to variable names, e.g.
// {"gptgame/openai/api_key": "OPENAI_API_KEY"}.
func NewStore(vars map[string]string) *Store {
	return &Store{vars: vars, lookup: os.LookupEnv}
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, ok := s.vars[key]
	if !ok {
		return "", fmt.Errorf("no environment variable for %q: %w", key, domain.ErrSecretNotFound)
	}
	value, ok := s.lookup(name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("environment variable %s: %w", name, domain.ErrSecretNotFound)
	}

	return strings.TrimSpace(value), nil
}

func (s *Store) Put(context.Context, string, string) error {
	return ErrReadOnly
}

func (s *Store) Delete(context.Context, string) error {
	return ErrReadOnly
}
