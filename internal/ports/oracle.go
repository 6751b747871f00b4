package ports

import "context"

// OracleRequest is one question put to the AI service. Instructions carry the
// secret identity and must never be shown to players.
type OracleRequest struct {
	Instructions string
	Input        string
}

type Oracle interface {
	Ask(ctx context.Context, req OracleRequest) (string, error)
}
