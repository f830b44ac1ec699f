// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	service "github.com/rizwanaperveen/covid/internal/app"
	"github.com/rizwanaperveen/covid/internal/domain/model"
	"github.com/rizwanaperveen/covid/internal/domain/series"
	"github.com/rizwanaperveen/covid/internal/render"
	"github.com/rizwanaperveen/covid/pkg/logger"
)

// Dependencies required by HTTP handlers.
type Dependencies interface {
	Countries(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, country string) (model.CountryStats, error)
	History(ctx context.Context, country string) (series.Series, error)
	Chart(ctx context.Context, w io.Writer, country string, f render.Format) error
}

// Server wires HTTP routes for the JSON API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	countriesHandler *CountriesHandler
	historyHandler   *HistoryHandler
	chartHandler     *ChartHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
		countriesHandler: NewCountriesHandler(deps),
		historyHandler:   NewHistoryHandler(deps),
		chartHandler:     NewChartHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", Chain(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/api/countries", Chain(s.countriesHandler.HandleList, "countries"))
	mux.HandleFunc("/api/countries/", Chain(s.countriesHandler.HandleGet, "country"))
	mux.HandleFunc("/api/history/", Chain(s.historyHandler.HandleGet, "history"))
	mux.HandleFunc("/chart.png", Chain(s.chartHandler.HandlePNG, "chart_png"))
	mux.HandleFunc("/chart.svg", Chain(s.chartHandler.HandleSVG, "chart_svg"))
}

// Chain applies the request id and metrics middleware to a handler.
func Chain(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(next, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// classify maps an error to its HTTP status and error code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, ErrNotFound),
		errors.Is(err, diseasesh.ErrNotFound),
		errors.Is(err, service.ErrUnknownCountry),
		errors.Is(err, service.ErrNoHistory):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrUpstream),
		errors.Is(err, diseasesh.ErrUpstream),
		errors.Is(err, diseasesh.ErrDecode),
		errors.Is(err, diseasesh.ErrMalformedResponse):
		return http.StatusBadGateway, "upstream_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// fail classifies err, logs server-side failures and writes the error body.
func fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		logger.Get().Warn(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("code", code),
			logger.Error(err),
		)
	}
	writeError(w, status, code, err)
}
