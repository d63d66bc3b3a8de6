package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqarat-core-poc/server/internal/agent/model"
	"github.com/aqarat-core-poc/server/internal/agent/repo"
	errx "github.com/aqarat-core-poc/server/internal/core/error"
)

type fakeRunner struct {
	answer string
	err    error
	lastIn model.TurnInput
}

func (f *fakeRunner) Invoke(_ context.Context, in model.TurnInput) (string, error) {
	f.lastIn = in
	return f.answer, f.err
}

func newTestServer(runner *fakeRunner) *httptest.Server {
	h := NewHandler(runner, repo.NewMemorySessionRepository())
	return httptest.NewServer(h.Router())
}

func postChat(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	resp, err := http.Post(url+"/api/chat", "application/json", bytes.NewReader(b))
	require.NoError(t, err)
	return resp
}

func TestChat_ReturnsAnswer(t *testing.T) {
	runner := &fakeRunner{answer: "اهلا بيك"}
	srv := newTestServer(runner)
	defer srv.Close()

	resp := postChat(t, srv.URL, ChatRequest{SessionID: "s1", Message: "اهلا"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, "s1", out.SessionID)
	assert.Equal(t, "اهلا بيك", out.Answer)
	assert.Equal(t, "s1", runner.lastIn.SessionID)
	assert.Equal(t, "اهلا", runner.lastIn.Query)
}

func TestChat_GeneratesSessionIDWhenMissing(t *testing.T) {
	runner := &fakeRunner{answer: "اهلا"}
	srv := newTestServer(runner)
	defer srv.Close()

	resp := postChat(t, srv.URL, ChatRequest{Message: "اهلا"})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out ChatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.NotEmpty(t, out.SessionID)
}

func TestChat_EmptyMessageRejected(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	resp := postChat(t, srv.URL, ChatRequest{SessionID: "s1"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_InvalidBodyRejected(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	resp, err := http.Post(srv.URL+"/api/chat", "application/json", bytes.NewReader([]byte("{")))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestChat_AppErrorStatusPropagates(t *testing.T) {
	runner := &fakeRunner{err: errx.New(assertErr{}, http.StatusBadGateway, errx.RedisErrorMessage)}
	srv := newTestServer(runner)
	defer srv.Close()

	resp := postChat(t, srv.URL, ChatRequest{SessionID: "s1", Message: "اهلا"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

type assertErr struct{}

func (assertErr) Error() string { return "boom" }

func TestReset_ClearsSession(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	req, err := http.NewRequest(http.MethodDelete, srv.URL+"/api/chat/s1", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(&fakeRunner{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
