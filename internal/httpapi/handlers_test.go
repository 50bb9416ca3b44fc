package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DoyleJ11/hexagon-backend/internal/engine"
	"github.com/DoyleJ11/hexagon-backend/internal/hub"
	"github.com/DoyleJ11/hexagon-backend/internal/lobby"
	"github.com/DoyleJ11/hexagon-backend/internal/types"
	"github.com/DoyleJ11/hexagon-backend/internal/ws"
)

func newRouter(h *hub.Hub) http.Handler {
	return SetupRoutes(h, Options{SignalingURL: "wss://signal.example.com", WS: ws.Config{OutboxSize: 8}}, zap.NewNop())
}

func get(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newRouter(hub.NewHub(zap.NewNop(), 5)), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListLobbies(t *testing.T) {
	h := hub.NewHub(zap.NewNop(), 5, hub.WithCodeGenerator(func() (string, error) { return "ROOM1", nil }))
	router := newRouter(h)

	rec := get(t, router, "/lobbies")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	p := lobby.NewServerPlayer("u1", "Ada", "s1", lobby.NewOutbox(8))
	_, err := h.CreateLobby(p)
	require.NoError(t, err)

	rec = get(t, router, "/lobbies")
	require.Equal(t, http.StatusOK, rec.Code)
	var got []hub.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []hub.Summary{{ID: "ROOM1", Players: 1, State: types.StateLobby}}, got)
}

func TestGetLobby(t *testing.T) {
	h := hub.NewHub(zap.NewNop(), 5, hub.WithCodeGenerator(func() (string, error) { return "ROOM2", nil }))
	router := newRouter(h)

	assert.Equal(t, http.StatusNotFound, get(t, router, "/lobbies/ROOM2").Code)

	p := lobby.NewServerPlayer("u1", "Ada", "s1", lobby.NewOutbox(8))
	_, err := h.CreateLobby(p)
	require.NoError(t, err)

	rec := get(t, router, "/lobbies/ROOM2")
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.Lobby
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "ROOM2", got.ID)
	assert.Equal(t, types.State{Kind: types.StateLobby, Leader: "u1"}, got.State)
	assert.Equal(t, "Ada", got.Players["u1"].Name)
}

func TestWriteJSON_LogsEncodeFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	rec := httptest.NewRecorder()

	writeJSON(rec, zap.New(core), http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, logs.FilterMessage("encode response").Len())
}

func TestClientConfig(t *testing.T) {
	rec := get(t, newRouter(hub.NewHub(zap.NewNop(), 5)), "/config")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"signaling_url":"wss://signal.example.com"}`, rec.Body.String())
}

func TestBackdrop(t *testing.T) {
	router := newRouter(hub.NewHub(zap.NewNop(), 5))

	rec := get(t, router, "/backdrop?width=3&height=3&pieces=4&steps=10&seed=7")
	require.Equal(t, http.StatusOK, rec.Code)

	var b engine.Board
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	assert.Len(t, b.Cells(), 25)
	assert.NotEmpty(t, b.Pieces())
	for a := range b.Pieces() {
		assert.True(t, b.Has(a))
	}

	again := get(t, router, "/backdrop?width=3&height=3&pieces=4&steps=10&seed=7")
	assert.JSONEq(t, rec.Body.String(), again.Body.String(), "same seed, same board")
}

func TestBackdrop_BadParams(t *testing.T) {
	router := newRouter(hub.NewHub(zap.NewNop(), 5))
	for _, target := range []string{
		"/backdrop?width=0",
		"/backdrop?height=x",
		"/backdrop?steps=-1",
		"/backdrop?pieces=1000",
		"/backdrop?seed=-3",
	} {
		t.Run(target, func(t *testing.T) {
			assert.Equal(t, http.StatusBadRequest, get(t, router, target).Code)
		})
	}
}

func TestWSRouteRequiresUpgrade(t *testing.T) {
	rec := get(t, newRouter(hub.NewHub(zap.NewNop(), 5)), "/ws")
	assert.NotEqual(t, http.StatusOK, rec.Code)
}
