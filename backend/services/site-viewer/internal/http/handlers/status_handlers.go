package handlers

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"siteviewer/backend/services/site-viewer/internal/models"
	"siteviewer/backend/services/site-viewer/internal/presenter"
	"siteviewer/backend/services/site-viewer/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// StatusService is the battery status service as seen by HTTP handlers.
type StatusService interface {
	State() service.State
	Ensure(ctx context.Context) (service.State, error)
	Refresh(ctx context.Context) (*models.Snapshot, error)
}

// StatusHandlers serves battery status endpoints.
type StatusHandlers struct {
	service StatusService
	logger  *zap.Logger
}

// NewStatusHandlers returns handler.
func NewStatusHandlers(svc StatusService, logger *zap.Logger) *StatusHandlers {
	return &StatusHandlers{service: svc, logger: logger}
}

// Get handles GET /api/battery-status.
func (h *StatusHandlers) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Ensure(r.Context())
	if err != nil {
		h.logger.Warn("battery status unavailable", zap.Error(err))
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewStatusView(st))
}

// Refresh handles POST /api/refresh. A failed refresh leaves the current data in place
// and reports it together with the error.
func (h *StatusHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.Refresh(r.Context()); err != nil {
		msg := presenter.ErrorMessage(err)
		if st := h.service.State(); st.Snapshot != nil {
			msg.StatusView = presenter.NewStatusView(st)
		}
		writeJSON(w, http.StatusBadGateway, msg)
		return
	}
	writeJSON(w, http.StatusOK, presenter.NewStatusView(h.service.State()))
}

// Export handles GET /api/battery-status.xlsx.
func (h *StatusHandlers) Export(w http.ResponseWriter, r *http.Request) {
	st, err := h.service.Ensure(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	data, err := presenter.BuildXLSX(st.Snapshot)
	if err != nil {
		h.logger.Error("xlsx export failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "export failed")
		return
	}

	filename := fmt.Sprintf("battery-status-%s.xlsx", st.Snapshot.Window.From.Format("2006-01-02"))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
