package domain

import (
	"crypto/rand"
	"fmt"
)

const TokenLength = 20

const tokenCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// tokenByteLimit is the largest multiple of len(tokenCharset) that fits in a
// byte; random bytes at or above it are rejected to keep the draw uniform.
const tokenByteLimit = 256 - 256%len(tokenCharset)

type TokenType byte

const (
	TokenTypeAnswer TokenType = 'a'
	TokenTypeGame   TokenType = 'g'
)

func (t TokenType) Valid() bool {
	return t == TokenTypeAnswer || t == TokenTypeGame
}

func (t TokenType) String() string {
	switch t {
	case TokenTypeAnswer:
		return "answer"
	case TokenTypeGame:
		return "game"
	default:
		return fmt.Sprintf("unknown(%q)", byte(t))
	}
}

// Token is a fixed-size opaque session identifier. The first byte carries the
// TokenType, the rest is drawn from [a-z0-9].
type Token [TokenLength]byte

func NewToken(tokenType TokenType) Token {
	var token Token
	token[0] = byte(tokenType)

	var buf [32]byte
	filled := 1
	for filled < TokenLength {
		_, _ = rand.Read(buf[:])
		for _, b := range buf {
			if int(b) >= tokenByteLimit {
				continue
			}
			token[filled] = tokenCharset[int(b)%len(tokenCharset)]
			filled++
			if filled == TokenLength {
				break
			}
		}
	}

	return token
}

func ParseToken(s string) (Token, error) {
	var token Token
	if len(s) != TokenLength {
		return token, fmt.Errorf("parse token: length %d: %w", len(s), ErrInvalidToken)
	}
	if !TokenType(s[0]).Valid() {
		return token, fmt.Errorf("parse token: unknown type %q: %w", s[0], ErrInvalidToken)
	}
	for i := 1; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return token, fmt.Errorf("parse token: unexpected character at %d: %w", i, ErrInvalidToken)
		}
	}

	copy(token[:], s)
	return token, nil
}

func ParseTokenOfType(s string, want TokenType) (Token, error) {
	token, err := ParseToken(s)
	if err != nil {
		return token, err
	}
	if token.Type() != want {
		return Token{}, fmt.Errorf("parse token: want %s token, got %s: %w", want, token.Type(), ErrInvalidToken)
	}

	return token, nil
}

func (t Token) Type() TokenType {
	return TokenType(t[0])
}

func (t Token) String() string {
	return string(t[:])
}

func (t Token) IsZero() bool {
	return t == Token{}
}

func isTokenChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
