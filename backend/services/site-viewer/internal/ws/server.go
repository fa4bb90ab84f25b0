package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server upgrades HTTP connections to WebSockets for live status updates.
type Server struct {
	manager      *Manager
	processor    MessageProcessor
	logger       *zap.Logger
	writeTimeout time.Duration
	upgrader     websocket.Upgrader
}

// NewServer builds ws server.
func NewServer(manager *Manager, processor MessageProcessor, writeTimeout time.Duration, logger *zap.Logger) *Server {
	if writeTimeout <= 0 {
		writeTimeout = 10 * time.Second
	}
	return &Server{
		manager:      manager,
		processor:    processor,
		logger:       logger,
		writeTimeout: writeTimeout,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
		},
	}
}

// HandleWS is HTTP handler for /ws endpoint.
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("websocket upgrade failed", zap.Error(err))
		return
	}

	clientID := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	connection := NewConnection(clientID, conn, s.processor, s.writeTimeout, s.logger, func(id string) {
		s.manager.Remove(id)
		cancel()
	})
	s.manager.Add(connection)

	go connection.Start(ctx)
	s.logger.Info("client connected", zap.String("client_id", clientID))

	greeting, err := s.processor.Greeting(ctx)
	if err != nil {
		s.logger.Warn("failed to build greeting", zap.String("client_id", clientID), zap.Error(err))
		return
	}
	if greeting != nil {
		connection.Send(greeting)
	}
}
