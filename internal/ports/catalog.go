package ports

import (
	"context"

	"github.com/bnema/gptgame/internal/domain"
)

type Catalog interface {
	Identities(ctx context.Context, language domain.Language) ([]string, error)
	Instructions(ctx context.Context) (string, error)
}
