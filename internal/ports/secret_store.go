package ports

import "context"

// SecretStore holds credentials such as the OpenAI API key. Get wraps
// domain.ErrSecretNotFound when the key has no value.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key string, value string) error
	// Delete on a writable store succeeds when the key is already absent.
	Delete(ctx context.Context, key string) error
}
