package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockHandler struct{ mock.Mock }

func (m *mockHandler) HandleUserMessage(ctx context.Context, text string) (string, error) {
	args := m.Called(ctx, text)
	return args.String(0), args.Error(1)
}

func post(t *testing.T, h http.Handler, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/api/agent", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))

	return rec.Code, out
}

func TestHandleAgent_Response(t *testing.T) {
	mh := &mockHandler{}
	mh.On("HandleUserMessage", mock.Anything, "hello").Return("hi there", nil)

	code, out := post(t, NewServer(":0", mh).Handler(), `{"userMessage":"hello"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"response": "hi there"}, out)
	mh.AssertExpectations(t)
}

func TestHandleAgent_EmptyReply(t *testing.T) {
	mh := &mockHandler{}
	mh.On("HandleUserMessage", mock.Anything, "hello").Return("", nil)

	_, out := post(t, NewServer(":0", mh).Handler(), `{"userMessage":"hello"}`)
	assert.Equal(t, map[string]any{"response": ""}, out)
}

func TestHandleAgent_Failure(t *testing.T) {
	mh := &mockHandler{}
	mh.On("HandleUserMessage", mock.Anything, "hello").Return("", errors.New("no API key"))

	code, out := post(t, NewServer(":0", mh).Handler(), `{"userMessage":"hello"}`)

	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, map[string]any{"error": "no API key"}, out)
}

func TestHandleAgent_MalformedBody(t *testing.T) {
	mh := &mockHandler{}

	code, out := post(t, NewServer(":0", mh).Handler(), `{"userMessage":`)

	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["error"])
	assert.NotContains(t, out, "response")
	mh.AssertNotCalled(t, "HandleUserMessage", mock.Anything, mock.Anything)
}

func TestHandleAgent_WrongMethodKeepsEnvelope(t *testing.T) {
	mh := &mockHandler{}
	rec := httptest.NewRecorder()

	NewServer(":0", mh).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/agent", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"error":"method GET not allowed, use POST"}`, rec.Body.String())
	mh.AssertNotCalled(t, "HandleUserMessage", mock.Anything, mock.Anything)
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewServer(":0", &mockHandler{}).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestCORS(t *testing.T) {
	h := NewServer(":0", &mockHandler{}, func(o *Options) {
		o.CORSOrigins = []string{"https://app.example.com"}
	}).Handler()

	req := httptest.NewRequest(http.MethodOptions, "/api/agent", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, req)

	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}
