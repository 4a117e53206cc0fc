package websocket

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRegistry captures what a Client reports back
type recordingRegistry struct {
	mu           sync.Mutex
	frames       []string
	unregistered chan struct{}
}

func newRecordingRegistry() *recordingRegistry {
	return &recordingRegistry{unregistered: make(chan struct{})}
}

func (r *recordingRegistry) Unregister(ClientInterface) { close(r.unregistered) }

func (r *recordingRegistry) Dispatch(_ ClientInterface, data []byte) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, string(data))
}

func (r *recordingRegistry) Frames() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.frames...)
}

// serveClient upgrades one connection into a Client and dials it
func serveClient(t *testing.T, registry connRegistry) (*Client, *websocket.Conn) {
	t.Helper()
	clients := make(chan *Client, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := newClient(conn, "alice", registry)
		go c.WritePump()
		go c.ReadPump()
		clients <- c
	}))
	t.Cleanup(srv.Close)

	peer, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { peer.Close() })

	select {
	case c := <-clients:
		return c, peer
	case <-time.After(2 * time.Second):
		t.Fatal("client was not created")
		return nil, nil
	}
}

func TestClient_WritesQueuedEvents(t *testing.T) {
	c, peer := serveClient(t, newRecordingRegistry())

	require.NoError(t, c.Send([]byte(`{"type":"ledger.saved"}`)))

	require.NoError(t, peer.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, data, err := peer.ReadMessage()
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"ledger.saved"}`, string(data))
}

func TestClient_DispatchesInboundFrames(t *testing.T) {
	registry := newRecordingRegistry()
	_, peer := serveClient(t, registry)

	require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{"type":"flush"}`)))
	require.NoError(t, peer.WriteMessage(websocket.BinaryMessage, []byte{0x1}))
	require.NoError(t, peer.WriteMessage(websocket.TextMessage, []byte(`{"type":"status"}`)))

	require.Eventually(t, func() bool { return len(registry.Frames()) == 2 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{`{"type":"flush"}`, `{"type":"status"}`}, registry.Frames())
}

func TestClient_PeerCloseUnregisters(t *testing.T) {
	registry := newRecordingRegistry()
	c, peer := serveClient(t, registry)

	require.NoError(t, peer.Close())

	select {
	case <-registry.unregistered:
	case <-time.After(2 * time.Second):
		t.Fatal("client did not unregister")
	}
	require.Eventually(t, c.IsClosed, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, c.Send([]byte("late")), ErrClientClosed)
}

func TestClient_CloseIsIdempotent(t *testing.T) {
	c, _ := serveClient(t, newRecordingRegistry())

	first := c.Close()
	assert.Equal(t, first, c.Close())
	assert.True(t, c.IsClosed())
}
