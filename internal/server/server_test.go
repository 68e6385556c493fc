package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aide/internal/assistant"
	"aide/internal/reminder"
	"aide/pkg/api"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	a := assistant.New(assistant.Options{
		Store:       reminder.Open(filepath.Join(t.TempDir(), "reminders.json")),
		DefaultCity: "Navi Mumbai",
		Timezone:    "UTC",
	})
	return New(a, Config{Addr: "127.0.0.1:0"})
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestProcessSuccess(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/process", `{"query": "hello"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep api.CommandReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "Hello there! How can I assist you?", rep.Reply)
	assert.Empty(t, rep.Error)
}

func TestProcessEmptyQuery(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/process", `{"query": ""}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var rep api.CommandReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "No command received.", rep.Reply)
}

func TestProcessInvalidJSON(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/process", `not json`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var rep api.CommandReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "Invalid request format. Expected JSON.", rep.Error)
}

func TestProcessMissingQueryField(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodPost, "/process", `{"text": "hello"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var rep api.CommandReply
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rep))
	assert.Equal(t, "Missing 'query' field in request JSON.", rep.Error)
}

func TestHome(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Aide Backend")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	rec := doJSON(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestWebsocketCommandChannel(t *testing.T) {
	s := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.WriteJSON(api.CommandRequest{Query: "hello"}))
	var rep api.CommandReply
	require.NoError(t, conn.ReadJSON(&rep))
	assert.Equal(t, "Hello there! How can I assist you?", rep.Reply)

	require.NoError(t, conn.WriteJSON(api.CommandRequest{Query: "remind me to buy milk"}))
	require.NoError(t, conn.ReadJSON(&rep))
	assert.Equal(t, "Okay, I will remember: 'buy milk'.", rep.Reply)
}

func TestCORSHeadersPresent(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/process", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
