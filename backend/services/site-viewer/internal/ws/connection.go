package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	readLimit   = 64 * 1024
	readTimeout = 90 * time.Second
	sendBuffer  = 16
)

// MessageProcessor handles messages from browser clients.
type MessageProcessor interface {
	// Greeting is sent once right after a client connects. nil sends nothing.
	Greeting(ctx context.Context) ([]byte, error)
	Process(ctx context.Context, clientID string, raw []byte) ([]byte, error)
}

// Connection represents an active browser WebSocket connection.
type Connection struct {
	clientID     string
	ws           *websocket.Conn
	send         chan []byte
	done         chan struct{}
	closeOnce    sync.Once
	logger       *zap.Logger
	processor    MessageProcessor
	writeTimeout time.Duration
	onClose      func(clientID string)
}

// NewConnection builds connection wrapper.
func NewConnection(clientID string, ws *websocket.Conn, processor MessageProcessor, writeTimeout time.Duration, logger *zap.Logger, onClose func(string)) *Connection {
	return &Connection{
		clientID:     clientID,
		ws:           ws,
		send:         make(chan []byte, sendBuffer),
		done:         make(chan struct{}),
		logger:       logger,
		processor:    processor,
		writeTimeout: writeTimeout,
		onClose:      onClose,
	}
}

// ClientID returns identifier.
func (c *Connection) ClientID() string {
	return c.clientID
}

// Start launches read/write pumps and blocks until the client goes away.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.cleanup()
	c.ws.SetReadLimit(readLimit)
	_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Info("connection read closed", zap.String("client_id", c.clientID), zap.Error(err))
			return
		}
		_ = c.ws.SetReadDeadline(time.Now().Add(readTimeout))

		response, err := c.processor.Process(ctx, c.clientID, message)
		if err != nil {
			c.logger.Warn("failed to process message", zap.String("client_id", c.clientID), zap.Error(err))
			continue
		}
		if response != nil {
			c.Send(response)
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = c.ws.Close()
			return
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.write(websocket.TextMessage, msg); err != nil {
				c.logger.Info("connection write failed", zap.String("client_id", c.clientID), zap.Error(err))
				_ = c.ws.Close()
				return
			}
		}
	}
}

// Send enqueues a message for writing. Messages to a closed or slow client are dropped.
func (c *Connection) Send(msg []byte) {
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.send <- msg:
	case <-c.done:
	default:
		c.logger.Warn("dropping outgoing message, buffer full", zap.String("client_id", c.clientID))
	}
}

// Ping sends ping. Safe to call alongside the write pump.
func (c *Connection) Ping() error {
	return c.ws.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(c.writeTimeout))
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *Connection) cleanup() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.ws.Close()
		if c.onClose != nil {
			c.onClose(c.clientID)
		}
	})
}
