package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient mocks HTTP requests and records the last one
type mockHTTPClient struct {
	response *http.Response
	err      error
	lastReq  *http.Request
	lastBody []byte
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	m.lastReq = req
	if req.Body != nil {
		m.lastBody, _ = io.ReadAll(req.Body)
	}
	return m.response, m.err
}

func createMockAPIResponse(blocks ...map[string]interface{}) *http.Response {
	body, _ := json.Marshal(map[string]interface{}{"content": blocks})
	return &http.Response{
		StatusCode: 200,
		Body:       io.NopCloser(bytes.NewReader(body)),
		Header:     make(http.Header),
	}
}

func textBlock(text string) map[string]interface{} {
	return map[string]interface{}{"type": "text", "text": text}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		envKey  string
		opts    []ClientOption
		wantErr bool
	}{
		{name: "key from environment", envKey: "env-key"},
		{name: "key from option", opts: []ClientOption{WithAPIKey("opt-key")}},
		{name: "missing key", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(APIKeyEnv, tt.envKey)

			c, err := NewClient(&mockHTTPClient{}, quietLogger(), tt.opts...)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrNoAPIKey)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, c)
		})
	}
}

func TestClient_Generate(t *testing.T) {
	mock := &mockHTTPClient{response: createMockAPIResponse(textBlock("All on track."))}
	c, err := NewClient(mock, quietLogger(),
		WithAPIKey("secret"),
		WithModel("claude-test"),
		WithMaxTokens(512),
		WithURL("http://model.local/v1/messages"),
	)
	require.NoError(t, err)

	got, err := c.Generate(context.Background(), "summarize this")
	require.NoError(t, err)
	assert.Equal(t, "All on track.", got)

	require.NotNil(t, mock.lastReq)
	assert.Equal(t, http.MethodPost, mock.lastReq.Method)
	assert.Equal(t, "http://model.local/v1/messages", mock.lastReq.URL.String())
	assert.Equal(t, "secret", mock.lastReq.Header.Get("x-api-key"))
	assert.Equal(t, anthropicVersion, mock.lastReq.Header.Get("anthropic-version"))

	var sent anthropicRequest
	require.NoError(t, json.Unmarshal(mock.lastBody, &sent))
	assert.Equal(t, "claude-test", sent.Model)
	assert.Equal(t, 512, sent.MaxTokens)
	require.Len(t, sent.Messages, 1)
	assert.Equal(t, "user", sent.Messages[0].Role)
	assert.Equal(t, "summarize this", sent.Messages[0].Content)
}

func TestClient_GenerateErrors(t *testing.T) {
	tests := []struct {
		name     string
		response *http.Response
		httpErr  error
		wantMsg  string
	}{
		{
			name:    "transport error",
			httpErr: errors.New("connection refused"),
			wantMsg: "API request failed",
		},
		{
			name: "non-2xx status",
			response: &http.Response{
				StatusCode: 429,
				Body:       io.NopCloser(bytes.NewReader([]byte(`{"error":"rate limited"}`))),
			},
			wantMsg: "status 429",
		},
		{
			name: "malformed body",
			response: &http.Response{
				StatusCode: 200,
				Body:       io.NopCloser(bytes.NewReader([]byte(`not json`))),
			},
			wantMsg: "failed to decode response",
		},
		{
			name:     "no text block",
			response: createMockAPIResponse(map[string]interface{}{"type": "tool_use"}),
			wantMsg:  "no text content",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockHTTPClient{response: tt.response, err: tt.httpErr}
			c, err := NewClient(mock, quietLogger(), WithAPIKey("k"))
			require.NoError(t, err)

			_, err = c.Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestClient_SkipsNonTextBlocks(t *testing.T) {
	mock := &mockHTTPClient{response: createMockAPIResponse(
		map[string]interface{}{"type": "thinking"},
		textBlock("second block"),
	)}
	c, err := NewClient(mock, quietLogger(), WithAPIKey("k"))
	require.NoError(t, err)

	got, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "second block", got)
}
