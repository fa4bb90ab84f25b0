package presenter

import (
	"time"

	"siteviewer/backend/services/site-viewer/internal/models"
	"siteviewer/backend/services/site-viewer/internal/service"
)

// Live message types.
const (
	MessageStatus = "status"
	MessageError  = "error"
)

// StatusView is the document the page renders.
type StatusView struct {
	Snapshot    *models.Snapshot        `json:"snapshot"`
	Counts      map[models.Category]int `json:"counts"`
	Figure      Figure                  `json:"figure"`
	Stale       bool                    `json:"stale"`
	LastError   string                  `json:"last_error,omitempty"`
	LastAttempt *time.Time              `json:"last_attempt,omitempty"`
}

// NewStatusView builds the view of a service state.
func NewStatusView(st service.State) *StatusView {
	view := &StatusView{
		Snapshot: st.Snapshot,
		Counts:   st.Snapshot.CountByCategory(),
		Figure:   BuildFigure(st.Snapshot),
		Stale:    st.Stale(),
	}
	if st.LastError != nil {
		view.LastError = st.LastError.Error()
	}
	if !st.LastAttempt.IsZero() {
		attempt := st.LastAttempt
		view.LastAttempt = &attempt
	}
	return view
}

// Message is pushed to live clients.
type Message struct {
	Type string `json:"type"`
	*StatusView
	Error string `json:"error,omitempty"`
}

// StatusMessage wraps a view for live clients.
func StatusMessage(view *StatusView) Message {
	return Message{Type: MessageStatus, StatusView: view}
}

// ErrorMessage reports a failed refresh to live clients.
func ErrorMessage(err error) Message {
	return Message{Type: MessageError, Error: err.Error()}
}
