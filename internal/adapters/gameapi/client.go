// Package gameapi is a client for the game server HTTP API.
package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bnema/gptgame/internal/domain"
)

const (
	DefaultBaseURL = "http://127.0.0.1:8080"

	maxResponseBytes = 1 << 20
)

type Status string

const (
	StatusOK      Status = "ok"
	StatusPending Status = "pending"
	StatusTimeout Status = "timeout"
	StatusError   Status = "error"
)

// State is one game state response. Game is nil for a quiet query on a
// pending game.
type State struct {
	Status Status
	Game   *domain.Game
}

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// RequestTimeout bounds calls made without a context deadline. Waiting
	// state queries get the server wait budget on top.
	RequestTimeout time.Duration
}

type envelope struct {
	Status       Status          `json:"status"`
	Content      json.RawMessage `json:"content,omitempty"`
	Message      string          `json:"message,omitempty"`
	InvalidToken bool            `json:"invalid_token,omitempty"`
}

func (c *Client) NewGame(ctx context.Context, language domain.Language) (domain.Token, error) {
	query := url.Values{}
	query.Set("lang", string(language))

	env, err := c.do(ctx, http.MethodPost, "/api/game/new", query, nil, "")
	if err != nil {
		return domain.Token{}, err
	}

	return env.token(domain.TokenTypeGame)
}

func (c *Client) NewCustomGame(ctx context.Context, identity string, language domain.Language) (domain.Token, error) {
	payload, err := json.Marshal(struct {
		Identity string `json:"identity"`
		Language string `json:"lang,omitempty"`
	}{Identity: identity, Language: string(language)})
	if err != nil {
		return domain.Token{}, fmt.Errorf("encode custom game: %w", err)
	}

	env, err := c.do(ctx, http.MethodPost, "/api/game/new/custom", nil, payload, "application/json")
	if err != nil {
		return domain.Token{}, err
	}

	return env.token(domain.TokenTypeGame)
}

// Ask submits a question. It returns domain.ErrBusy while an earlier question
// is still unanswered.
func (c *Client) Ask(ctx context.Context, token domain.Token, text string) error {
	env, err := c.do(ctx, http.MethodPost, gamePath(token)+"/ask", nil, []byte(text), "text/plain; charset=utf-8")
	if err != nil {
		return err
	}
	if env.Status == StatusPending {
		return domain.ErrBusy
	}

	return nil
}

func (c *Client) State(ctx context.Context, token domain.Token, wait, quiet bool) (State, error) {
	query := url.Values{}
	if wait {
		query.Set("wait", "1")
	}
	if quiet {
		query.Set("quiet", "1")
	}

	env, err := c.do(ctx, http.MethodGet, gamePath(token), query, nil, "")
	if err != nil {
		return State{}, err
	}

	state := State{Status: env.Status}
	if len(env.Content) > 0 {
		var game domain.Game
		if err := json.Unmarshal(env.Content, &game); err != nil {
			return State{}, fmt.Errorf("decode game: %w", err)
		}
		state.Game = &game
	}

	return state, nil
}

func (c *Client) Delete(ctx context.Context, token domain.Token) error {
	_, err := c.do(ctx, http.MethodDelete, gamePath(token), nil, nil, "")
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte, contentType string) (envelope, error) {
	endpoint, err := buildURL(c.baseURL(), path, query)
	if err != nil {
		return envelope{}, err
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	req, err := http.NewRequestWithContext(requestCtx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return envelope{}, fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&env); err != nil {
		return envelope{}, fmt.Errorf("%s %s: status %d: decode response: %w", method, path, resp.StatusCode, err)
	}
	if err := responseError(resp.StatusCode, env); err != nil {
		return envelope{}, fmt.Errorf("%s %s: %w", method, path, err)
	}

	return env, nil
}

// responseError turns an error envelope back into the domain error the server
// mapped it from.
func responseError(code int, env envelope) error {
	if code == http.StatusOK && env.Status != StatusError {
		if env.Status == StatusTimeout {
			return domain.ErrTimeout
		}
		return nil
	}

	message := env.Message
	if message == "" {
		message = fmt.Sprintf("status %d", code)
	}

	switch {
	case env.InvalidToken:
		return fmt.Errorf("%s: %w", message, domain.ErrInvalidToken)
	case code == http.StatusBadRequest:
		return fmt.Errorf("%s: %w", message, domain.ErrInvalidInput)
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, domain.ErrSessionNotFound)
	case code == http.StatusConflict:
		return fmt.Errorf("%s: %w", message, domain.ErrGameEnded)
	default:
		return fmt.Errorf("server error: %s", message)
	}
}

func (e envelope) token(want domain.TokenType) (domain.Token, error) {
	var raw string
	if err := json.Unmarshal(e.Content, &raw); err != nil {
		return domain.Token{}, fmt.Errorf("decode token: %w", err)
	}

	return domain.ParseTokenOfType(raw, want)
}

func gamePath(token domain.Token) string {
	return "/api/game/" + token.String()
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, hasDeadline := ctx.Deadline(); hasDeadline {
		return ctx, func() {}
	}

	requestTimeout := c.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}

	return context.WithTimeout(ctx, requestTimeout)
}

func (c *Client) baseURL() string {
	if c.BaseURL == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

func buildURL(baseURL, path string, query url.Values) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse server url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("server url must use http or https")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	parsed.RawQuery = query.Encode()

	return parsed.String(), nil
}
