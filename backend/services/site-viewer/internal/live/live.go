// Package live connects the battery status service with WebSocket clients.
package live

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"siteviewer/backend/services/site-viewer/internal/models"
	"siteviewer/backend/services/site-viewer/internal/presenter"
	"siteviewer/backend/services/site-viewer/internal/service"
)

// Client request types.
const (
	RequestRefresh = "refresh"
)

// Request is a message sent by the page.
type Request struct {
	Type string `json:"type"`
}

// StatusSource is the part of the battery status service live clients need.
type StatusSource interface {
	State() service.State
	Refresh(ctx context.Context) (*models.Snapshot, error)
}

// Sender pushes a message to every connected client.
type Sender interface {
	Broadcast(msg []byte)
}

// Broadcaster forwards refresh outcomes to connected clients.
type Broadcaster struct {
	sender Sender
	state  func() service.State
	logger *zap.Logger
}

// NewBroadcaster returns a notifier that pushes to sender.
func NewBroadcaster(sender Sender, logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{sender: sender, logger: logger}
}

// Bind sets where the current state is read from after each refresh.
func (b *Broadcaster) Bind(state func() service.State) {
	b.state = state
}

// SnapshotUpdated implements service.Notifier.
func (b *Broadcaster) SnapshotUpdated(snapshot *models.Snapshot) {
	st := service.State{Snapshot: snapshot}
	if b.state != nil {
		st = b.state()
	}
	b.push(presenter.StatusMessage(presenter.NewStatusView(st)))
}

// RefreshFailed implements service.Notifier.
func (b *Broadcaster) RefreshFailed(err error) {
	b.push(presenter.ErrorMessage(err))
}

func (b *Broadcaster) push(msg presenter.Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		b.logger.Error("failed to encode live message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	b.sender.Broadcast(raw)
}

// Processor answers messages from connected clients.
type Processor struct {
	source StatusSource
	logger *zap.Logger
}

// NewProcessor returns processor instance.
func NewProcessor(source StatusSource, logger *zap.Logger) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{source: source, logger: logger}
}

// Greeting sends the current status to a new client, if there is one.
func (p *Processor) Greeting(context.Context) ([]byte, error) {
	st := p.source.State()
	if st.Snapshot == nil {
		return nil, nil
	}
	return json.Marshal(presenter.StatusMessage(presenter.NewStatusView(st)))
}

// Process handles a client request. A refresh outcome reaches the client through
// the broadcaster, so a successful refresh has no direct reply.
func (p *Processor) Process(ctx context.Context, clientID string, raw []byte) ([]byte, error) {
	var req Request
	if err := json.Unmarshal(raw, &req); err != nil {
		return nil, fmt.Errorf("decode request: %w", err)
	}

	switch req.Type {
	case RequestRefresh:
		p.logger.Info("refresh requested", zap.String("client_id", clientID))
		_, _ = p.source.Refresh(ctx)
		return nil, nil
	default:
		return json.Marshal(presenter.ErrorMessage(fmt.Errorf("unknown request type %q", req.Type)))
	}
}
