package domain

import "errors"

var (
	ErrBusy            = errors.New("question already pending")
	ErrTimeout         = errors.New("wait budget exceeded")
	ErrSessionNotFound = errors.New("session not found")
	ErrInvalidInput    = errors.New("invalid input")
	ErrInvalidToken    = errors.New("invalid token")
	ErrGameEnded       = errors.New("game already ended")
	ErrInternal        = errors.New("internal error")
	ErrSecretNotFound  = errors.New("secret not found")
)
