package ws

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type echoProcessor struct {
	mu       sync.Mutex
	clients  []string
	greeting []byte
}

func (p *echoProcessor) Greeting(context.Context) ([]byte, error) {
	return p.greeting, nil
}

func (p *echoProcessor) Process(_ context.Context, clientID string, raw []byte) ([]byte, error) {
	p.mu.Lock()
	p.clients = append(p.clients, clientID)
	p.mu.Unlock()
	if string(raw) == "bad" {
		return nil, errors.New("bad message")
	}
	return append([]byte("echo:"), raw...), nil
}

func newTestServer(t *testing.T, processor MessageProcessor) (*Manager, string) {
	t.Helper()
	manager := NewManager(time.Hour)
	srv := NewServer(manager, processor, time.Second, zap.NewNop())
	ts := httptest.NewServer(http.HandlerFunc(srv.HandleWS))
	t.Cleanup(ts.Close)
	return manager, "ws" + strings.TrimPrefix(ts.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readText(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(msg)
}

func TestServerSendsGreetingAndReplies(t *testing.T) {
	processor := &echoProcessor{greeting: []byte("hello")}
	manager, url := newTestServer(t, processor)

	conn := dial(t, url)
	require.Equal(t, "hello", readText(t, conn))
	require.Eventually(t, func() bool { return manager.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("bad")))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("ping")))
	require.Equal(t, "echo:ping", readText(t, conn))

	processor.mu.Lock()
	defer processor.mu.Unlock()
	require.Len(t, processor.clients, 2)
	require.Equal(t, processor.clients[0], processor.clients[1])
	require.NotEmpty(t, processor.clients[0])
}

func TestManagerBroadcastReachesAllClients(t *testing.T) {
	manager, url := newTestServer(t, &echoProcessor{})

	first := dial(t, url)
	second := dial(t, url)
	require.Eventually(t, func() bool { return manager.Count() == 2 }, time.Second, 10*time.Millisecond)

	manager.Broadcast([]byte("update"))
	require.Equal(t, "update", readText(t, first))
	require.Equal(t, "update", readText(t, second))
}

func TestManagerForgetsClosedClients(t *testing.T) {
	manager, url := newTestServer(t, &echoProcessor{})

	conn := dial(t, url)
	require.Eventually(t, func() bool { return manager.Count() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return manager.Count() == 0 }, 2*time.Second, 10*time.Millisecond)

	manager.Broadcast([]byte("nobody listens"))
}

func TestManagerStartStopsWithContext(t *testing.T) {
	manager := NewManager(5 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("ping loop did not stop")
	}
}
