package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"go.uber.org/zap"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

const plotlyURL = "https://cdn.plot.ly/plotly-2.35.2.min.js"

type pageData struct {
	Title     string
	Heading   string
	PlotlyURL string
}

// PageHandler renders the dashboard page.
type PageHandler struct {
	logger *zap.Logger
}

// NewPageHandler returns handler.
func NewPageHandler(logger *zap.Logger) *PageHandler {
	return &PageHandler{logger: logger}
}

// ServeHTTP handles GET /.
func (h *PageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	var buf bytes.Buffer
	err := pageTemplate.Execute(&buf, pageData{
		Title:     "Site Viewer",
		Heading:   "Battery Voltage Status of Sites",
		PlotlyURL: plotlyURL,
	})
	if err != nil {
		h.logger.Error("render page", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
