package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/bnema/gptgame/internal/domain"
	"github.com/bnema/gptgame/internal/ports"
	"github.com/bnema/gptgame/internal/ports/mocks"
)

func TestClientAskSendsRequestAndParsesFirstOutputText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/responses", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-5-nano", body["model"])
		assert.Equal(t, "question: [Do you live in water?]", body["input"])
		assert.Equal(t, "You are Whale.", body["instructions"])
		assert.Equal(t, map[string]any{"verbosity": "low"}, body["text"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"output":[
			{"type":"reasoning","summary":[]},
			{"type":"message","content":[{"type":"refusal","refusal":"no"},{"type":"output_text","text":"YES; I live in the ocean"},{"type":"output_text","text":"ignored"}]}
		]}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL + "/v1/", APIKey: "sk-test", Verbosity: "low", HTTPClient: server.Client()}

	reply, err := client.Ask(context.Background(), ports.OracleRequest{
		Instructions: "You are Whale.",
		Input:        "question: [Do you live in water?]",
	})
	require.NoError(t, err)
	assert.Equal(t, "YES; I live in the ocean", reply)
}

func TestClientAskReportsAPIError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"Rate limit reached","type":"requests"}}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL, APIKey: "sk-test", HTTPClient: server.Client()}

	_, err := client.Ask(context.Background(), ports.OracleRequest{Input: "question: [x]"})
	require.Error(t, err)
	assert.ErrorContains(t, err, "status 429")
	assert.ErrorContains(t, err, "Rate limit reached")
}

func TestClientAskWithoutOutputText(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"output":[{"type":"reasoning"}]}`))
	}))
	t.Cleanup(server.Close)

	client := &Client{BaseURL: server.URL, APIKey: "sk-test", HTTPClient: server.Client()}

	_, err := client.Ask(context.Background(), ports.OracleRequest{Input: "question: [x]"})
	assert.ErrorIs(t, err, ErrEmptyReply)
}

func TestClientAskAppliesRequestTimeout(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		callerDeadline time.Duration
	}{
		{name: "no caller deadline"},
		{name: "longer caller deadline", callerDeadline: time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-time.After(time.Second):
				case <-r.Context().Done():
				}
			}))
			t.Cleanup(server.Close)

			client := &Client{BaseURL: server.URL, APIKey: "sk-test", HTTPClient: server.Client(), RequestTimeout: 20 * time.Millisecond}

			ctx := context.Background()
			if tt.callerDeadline > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, tt.callerDeadline)
				defer cancel()
			}

			started := time.Now()
			_, err := client.Ask(ctx, ports.OracleRequest{Input: "question: [x]"})
			assert.ErrorIs(t, err, context.DeadlineExceeded)
			assert.Less(t, time.Since(started), 500*time.Millisecond)
		})
	}
}

func TestBuildAPIURL(t *testing.T) {
	t.Parallel()

	got, err := buildAPIURL("https://api.openai.com/v1", responsesPath)
	require.NoError(t, err)
	assert.Equal(t, "https://api.openai.com/v1/responses", got)

	_, err = buildAPIURL("ftp://example.com", responsesPath)
	assert.ErrorContains(t, err, "http or https")

	_, err = buildAPIURL("https://", responsesPath)
	assert.ErrorContains(t, err, "host is required")
}

func TestFactoryBuildReadsKeyFromSecretStore(t *testing.T) {
	t.Parallel()

	secrets := mocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, DefaultKeyRef).Return("sk-test\n", nil).Once()

	factory := &Factory{Secrets: secrets, Model: "gpt-5-mini"}
	oracle, err := factory.Build(context.Background())
	require.NoError(t, err)

	client, ok := oracle.(*Client)
	require.True(t, ok)
	assert.Equal(t, "sk-test", client.APIKey)
	assert.Equal(t, "gpt-5-mini", client.Model)
}

func TestFactoryBuildFailsWithoutKey(t *testing.T) {
	t.Parallel()

	secrets := mocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, "custom/key").Return("", domain.ErrSecretNotFound).Once()
	secrets.EXPECT().Get(mock.Anything, "blank/key").Return("  ", nil).Once()

	_, err := (&Factory{Secrets: secrets, KeyRef: "custom/key"}).Build(context.Background())
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)

	_, err = (&Factory{Secrets: secrets, KeyRef: "blank/key"}).Build(context.Background())
	assert.ErrorIs(t, err, ErrMissingAPIKey)
}
