package openai

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

	"github.com/bnema/gptgame/internal/ports"
)

const (
	DefaultBaseURL   = "https://api.openai.com/v1"
	DefaultModel     = "gpt-5-nano"
	DefaultVerbosity = "medium"

	responsesPath    = "/responses"
	maxResponseBytes = 4 << 20
	maxErrorBytes    = 2 << 10
)

var ErrEmptyReply = errors.New("response contains no output text")

// Client talks to the Responses API with a fixed API key.
type Client struct {
	BaseURL        string
	Model          string
	Verbosity      string
	APIKey         string
	HTTPClient     *http.Client
	RequestTimeout time.Duration
}

var _ ports.Oracle = (*Client)(nil)

type requestBody struct {
	Model        string      `json:"model"`
	Input        string      `json:"input"`
	Instructions string      `json:"instructions,omitempty"`
	Text         textOptions `json:"text"`
}

type textOptions struct {
	Verbosity string `json:"verbosity"`
}

type responseBody struct {
	Output []outputItem `json:"output"`
}

type outputItem struct {
	Type    string        `json:"type"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) Ask(ctx context.Context, req ports.OracleRequest) (string, error) {
	endpoint, err := buildAPIURL(c.baseURL(), responsesPath)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(requestBody{
		Model:        c.model(),
		Input:        req.Input,
		Instructions: req.Instructions,
		Text:         textOptions{Verbosity: c.verbosity()},
	})
	if err != nil {
		return "", fmt.Errorf("encode responses request: %w", err)
	}

	requestCtx, cancel := c.requestContext(ctx)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(requestCtx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create responses request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient().Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("request responses api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("request responses api: %s", decodeAPIError(resp))
	}

	var body responseBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&body); err != nil {
		return "", fmt.Errorf("decode responses reply: %w", err)
	}

	text, ok := body.firstOutputText()
	if !ok {
		return "", ErrEmptyReply
	}

	return text, nil
}

// firstOutputText returns the first output_text part of the first message.
// Reasoning items and other part types are skipped.
func (r responseBody) firstOutputText() (string, bool) {
	for _, item := range r.Output {
		if item.Type != "message" {
			continue
		}
		for _, part := range item.Content {
			if part.Type == "output_text" {
				return part.Text, true
			}
		}
	}

	return "", false
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// requestContext bounds one call by RequestTimeout. An earlier caller
// deadline still wins.
func (c *Client) requestContext(ctx context.Context) (context.Context, context.CancelFunc) {
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

func (c *Client) model() string {
	if c.Model == "" {
		return DefaultModel
	}
	return c.Model
}

func (c *Client) verbosity() string {
	if c.Verbosity == "" {
		return DefaultVerbosity
	}
	return c.Verbosity
}

func decodeAPIError(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBytes))

	var apiErr apiErrorBody
	if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.Error.Message == "" {
		return fmt.Sprintf("status %d", resp.StatusCode)
	}
	if apiErr.Error.Type != "" {
		return fmt.Sprintf("status %d: %s: %s", resp.StatusCode, apiErr.Error.Type, apiErr.Error.Message)
	}

	return fmt.Sprintf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
}

func buildAPIURL(baseURL string, path string) (string, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("parse api base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", errors.New("api base url must use http or https")
	}
	if parsed.Host == "" {
		return "", errors.New("api base url host is required")
	}

	parsed.Path = strings.TrimRight(parsed.Path, "/") + path
	return parsed.String(), nil
}
