package ws

import (
	"context"
	"sync"
	"time"

	"siteviewer/backend/services/site-viewer/internal/observability/metrics"
)

// Manager tracks browser connections.
type Manager struct {
	mu           sync.RWMutex
	connections  map[string]*Connection
	pingInterval time.Duration
}

// NewManager builds connection manager.
func NewManager(pingInterval time.Duration) *Manager {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &Manager{
		connections:  make(map[string]*Connection),
		pingInterval: pingInterval,
	}
}

// Add registers new connection.
func (m *Manager) Add(conn *Connection) {
	m.mu.Lock()
	m.connections[conn.ClientID()] = conn
	n := len(m.connections)
	m.mu.Unlock()
	metrics.SetWSClients(n)
}

// Remove removes connection.
func (m *Manager) Remove(clientID string) {
	m.mu.Lock()
	delete(m.connections, clientID)
	n := len(m.connections)
	m.mu.Unlock()
	metrics.SetWSClients(n)
}

// Count returns the number of open connections.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.connections)
}

// Broadcast queues msg on every open connection.
func (m *Manager) Broadcast(msg []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, conn := range m.connections {
		conn.Send(msg)
	}
}

// Start runs the ping loop until ctx is done.
func (m *Manager) Start(ctx context.Context) {
	ticker := time.NewTicker(m.pingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.mu.RLock()
			for _, conn := range m.connections {
				_ = conn.Ping()
			}
			m.mu.RUnlock()
		}
	}
}
