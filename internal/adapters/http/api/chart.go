package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rizwanaperveen/covid/internal/render"
)

// ChartDependencies defines the interface for chart rendering.
type ChartDependencies interface {
	Chart(ctx context.Context, w io.Writer, country string, f render.Format) error
}

// ChartHandler serves rendered daily-cases charts.
type ChartHandler struct {
	deps ChartDependencies
}

// NewChartHandler creates a new chart handler.
func NewChartHandler(deps ChartDependencies) *ChartHandler {
	return &ChartHandler{deps: deps}
}

// HandlePNG handles GET /chart.png?country= requests.
func (h *ChartHandler) HandlePNG(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, render.PNG)
}

// HandleSVG handles GET /chart.svg?country= requests.
func (h *ChartHandler) HandleSVG(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, render.SVG)
}

func (h *ChartHandler) serve(w http.ResponseWriter, r *http.Request, f render.Format) {
	const op = "api.chart"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	country := strings.TrimSpace(r.URL.Query().Get("country"))
	if country == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	// Render fully before writing so failures still get a JSON error.
	var buf bytes.Buffer
	if err := h.deps.Chart(r.Context(), &buf, country, f); err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
