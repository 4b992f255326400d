package websocket

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rocketscienceinc/connectfour-backend/internal/entity"
	"github.com/rocketscienceinc/connectfour-backend/internal/matchmaker"
	"github.com/rocketscienceinc/connectfour-backend/internal/registry"
	"github.com/rocketscienceinc/connectfour-backend/internal/repository"
	"github.com/rocketscienceinc/connectfour-backend/internal/usecase"
)

const readTimeout = 2 * time.Second

type frame struct {
	Type      string `json:"type"`
	Color     string `json:"color,omitempty"`
	TileIndex *int   `json:"tileIndex,omitempty"`
	Win       *bool  `json:"win"`
}

func startServer(t *testing.T) string {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewSessionManager(logger, registry.New(), matchmaker.New(entity.DefaultBoardSize, true),
		repository.NewMemoryStatisticsRepository(), quartz.NewReal(), 10*time.Millisecond)

	srv := httptest.NewServer(New(logger, manager).Handler(ctx))
	t.Cleanup(srv.Close)

	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(readTimeout)))

	msgType, data, err := conn.ReadMessage()
	require.NoError(t, err)
	require.Equal(t, websocket.TextMessage, msgType)

	var f frame
	require.NoError(t, json.Unmarshal(data, &f))

	return f
}

func TestServer_Game(t *testing.T) {
	url := startServer(t)

	// Given: two players connected to the socket
	first := dial(t, url+"/ws")
	second := dial(t, url+"/")

	// Then: each is initialized with a distinct color
	firstInit := readFrame(t, first)
	secondInit := readFrame(t, second)
	require.Equal(t, "initialize", firstInit.Type)
	require.Equal(t, "initialize", secondInit.Type)
	require.ElementsMatch(t, []string{"blue", "red"}, []string{firstInit.Color, secondInit.Color})

	blue, red := first, second
	if firstInit.Color == "red" {
		blue, red = second, first
	}

	// When: blue sends garbage, then a real move
	require.NoError(t, blue.WriteMessage(websocket.TextMessage, []byte(`{"type":`)))
	require.NoError(t, blue.WriteMessage(websocket.TextMessage, []byte(`{"type":"placeTile","index":44,"color":"blue"}`)))

	// Then: red receives the relay followed by the turn
	relay := readFrame(t, red)
	assert.Equal(t, "placeTile", relay.Type)
	assert.Equal(t, "blue", relay.Color)
	require.NotNil(t, relay.TileIndex)
	assert.Equal(t, 44, *relay.TileIndex)

	assert.Equal(t, frame{Type: "giveTurn"}, readFrame(t, red))

	// When: blue leaves
	require.NoError(t, blue.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))

	// Then: red is told its opponent left and the server closes the socket
	terminate := readFrame(t, red)
	assert.Equal(t, "terminate", terminate.Type)
	assert.Nil(t, terminate.Win)

	require.NoError(t, red.SetReadDeadline(time.Now().Add(readTimeout)))
	_, _, err := red.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseNormalClosure), "unexpected error: %v", err)
}

func TestServer_NonUpgradeRequest(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	manager := usecase.NewSessionManager(logger, registry.New(), matchmaker.New(entity.DefaultBoardSize, true),
		repository.NewMemoryStatisticsRepository(), quartz.NewReal(), time.Millisecond)

	srv := httptest.NewServer(New(logger, manager).Handler(ctx))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL + "/ws")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, 400, resp.StatusCode)
	assert.Zero(t, manager.ActiveGames())
}
