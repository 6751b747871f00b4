package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bnema/gptgame/internal/clientpool"
	"github.com/bnema/gptgame/internal/ports"
)

const DefaultKeyRef = "gptgame/openai/api_key"

var ErrMissingAPIKey = errors.New("openai api key is empty")

// Factory builds pooled clients. The API key is read from the secret store on
// every build, so a rotated key is picked up by the next client.
type Factory struct {
	Secrets        ports.SecretStore
	KeyRef         string
	BaseURL        string
	Model          string
	Verbosity      string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ clientpool.Factory[ports.Oracle] = (*Factory)(nil)

func (f *Factory) Build(ctx context.Context) (ports.Oracle, error) {
	keyRef := f.KeyRef
	if keyRef == "" {
		keyRef = DefaultKeyRef
	}

	key, err := f.Secrets.Get(ctx, keyRef)
	if err != nil {
		return nil, fmt.Errorf("read openai api key: %w", err)
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrMissingAPIKey
	}

	return &Client{
		BaseURL:        f.BaseURL,
		Model:          f.Model,
		Verbosity:      f.Verbosity,
		APIKey:         key,
		HTTPClient:     f.HTTPClient,
		RequestTimeout: f.RequestTimeout,
	}, nil
}
