package net

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarkupBoard/internal/export"
	"MarkupBoard/internal/state"
)

func testDoc(text string) export.Document {
	a := state.Annotation{ID: "t1", Style: state.DefaultStyle(), Shape: state.Text{X: 1, Y: 2, Text: text, FontSize: 16}}
	return export.NewDocument(export.MediaInfo{Name: "a.png", Type: "image"}, []state.Annotation{a}, export.Dimensions{}, time.Unix(0, 0))
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var m Message
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

func TestHub_ViewerGetsLatestThenUpdates(t *testing.T) {
	hub := NewHub("session-1")
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	require.NoError(t, hub.Publish(1, testDoc("first")))
	conn := dial(t, srv)

	m := readMessage(t, conn)
	assert.Equal(t, "session-1", m.Session)
	assert.Equal(t, uint64(1), m.Revision)
	require.Len(t, m.Document.Annotations, 1)
	assert.Equal(t, "first", m.Document.Annotations[0].Shape.(state.Text).Text)
	assert.Equal(t, 1, hub.Len())

	require.NoError(t, hub.Publish(2, testDoc("second")))
	m = readMessage(t, conn)
	assert.Equal(t, uint64(2), m.Revision)
	assert.Equal(t, "second", m.Document.Annotations[0].Shape.(state.Text).Text)
}

func TestHub_DisconnectRemovesViewer(t *testing.T) {
	hub := NewHub("s")
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	require.NoError(t, hub.Publish(1, testDoc("x")))
	conn := dial(t, srv)
	readMessage(t, conn)
	require.Equal(t, 1, hub.Len())

	require.NoError(t, conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")))
	conn.Close()
	assert.Eventually(t, func() bool { return hub.Len() == 0 }, 5*time.Second, 10*time.Millisecond)
}

func TestHub_CloseDisconnectsViewers(t *testing.T) {
	hub := NewHub("s")
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	require.NoError(t, hub.Publish(1, testDoc("x")))
	conn := dial(t, srv)
	readMessage(t, conn)

	hub.Close()
	assert.Equal(t, 0, hub.Len())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	_, _, err := conn.ReadMessage()
	assert.Error(t, err)
}

func TestServer_BoardJSON(t *testing.T) {
	hub := NewHub("s")
	srv := httptest.NewServer(NewServer(hub).Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/board.json")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	require.NoError(t, hub.Publish(7, testDoc("x")))
	resp, err = http.Get(srv.URL + "/board.json")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var m Message
	require.NoError(t, json.Unmarshal(body, &m))
	assert.Equal(t, uint64(7), m.Revision)
}

func TestServer_ListenPicksPort(t *testing.T) {
	s := NewServer(NewHub("s"))
	assert.Zero(t, s.Port())

	port, err := s.Listen(0)
	require.NoError(t, err)
	assert.NotZero(t, port)
	assert.Equal(t, port, s.Port())

	link, err := s.ShareLink()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "ws://"))
	assert.True(t, strings.HasSuffix(link, "/ws"))

	errc := make(chan error, 1)
	go func() { errc <- s.Serve() }()
	require.NoError(t, s.Shutdown(t.Context()))
	assert.NoError(t, <-errc)
}

func TestBoard_URL(t *testing.T) {
	assert.Equal(t, "ws://10.0.0.2:8765/ws", Board{Addr: "10.0.0.2:8765"}.URL())
}
