// Package site serves the HTML dashboard page.
package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"

	service "github.com/rizwanaperveen/covid/internal/app"
	"github.com/rizwanaperveen/covid/pkg/logger"
)

// Page text.
const (
	Title   = "COVID-19 Tracker Dashboard"
	Caption = "Data sourced from disease.sh API"
)

// Error constants
var (
	ErrTemplate = errors.New("dashboard template failed")
	ErrServe    = errors.New("dashboard serve failed")
)

//go:embed static/dashboard.html.tmpl
var staticFS embed.FS

var pageTemplate = template.Must(template.ParseFS(staticFS, "static/dashboard.html.tmpl"))

// Dependencies required by the dashboard page.
type Dependencies interface {
	Dashboard(ctx context.Context, selected string) (service.View, error)
}

type pageData struct {
	Title   string
	Caption string
	View    service.View
	Error   string
}

// Register attaches the dashboard page at / to mux.
func Register(_ context.Context, mux *http.ServeMux, deps Dependencies) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("/", NewRootHandler(deps))
}

// RootHandler renders the dashboard for the ?country= selection.
type RootHandler struct {
	deps   Dependencies
	logger logger.Logger
}

// NewRootHandler creates a new root handler
func NewRootHandler(deps Dependencies) *RootHandler {
	return &RootHandler{deps: deps, logger: logger.Named("site")}
}

// ServeHTTP handles GET / requests. Every request reruns the whole pipeline.
func (h *RootHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()
	view, err := h.deps.Dashboard(ctx, r.URL.Query().Get("country"))
	if err != nil {
		status := http.StatusBadGateway
		msg := "Could not load data from disease.sh. Please try again later."
		if errors.Is(err, service.ErrUnknownCountry) {
			status = http.StatusNotFound
			msg = "Unknown country."
		}
		h.logger.Warn(ctx, "dashboard failed", logger.Int("status", status), logger.Error(err))
		h.write(ctx, w, status, pageData{Title: Title, Caption: Caption, Error: msg})
		return
	}
	h.write(ctx, w, http.StatusOK, pageData{Title: Title, Caption: Caption, View: view})
}

func (h *RootHandler) write(ctx context.Context, w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error(ctx, "render page", logger.Error(errors.Join(ErrTemplate, err)))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		h.logger.Debug(ctx, "write page", logger.Error(errors.Join(ErrServe, err)))
	}
}
