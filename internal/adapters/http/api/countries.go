package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/rizwanaperveen/covid/internal/domain/model"
)

// CountriesDependencies defines the interface for country operations.
type CountriesDependencies interface {
	Countries(ctx context.Context) ([]string, error)
	Stats(ctx context.Context, country string) (model.CountryStats, error)
}

// CountriesHandler handles the country list and per-country stats.
type CountriesHandler struct {
	deps CountriesDependencies
}

// NewCountriesHandler creates a new countries handler.
func NewCountriesHandler(deps CountriesDependencies) *CountriesHandler {
	return &CountriesHandler{deps: deps}
}

// HandleList handles GET /api/countries requests.
func (h *CountriesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.countries.list"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	countries, err := h.deps.Countries(r.Context())
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, countries)
}

// HandleGet handles GET /api/countries/{country} requests.
func (h *CountriesHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.countries.get"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	country, ok := pathParam(r, "/api/countries/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	stats, err := h.deps.Stats(r.Context(), country)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// pathParam returns the single path segment after prefix.
func pathParam(r *http.Request, prefix string) (string, bool) {
	v := strings.TrimPrefix(r.URL.Path, prefix)
	if strings.TrimSpace(v) == "" || strings.Contains(v, "/") {
		return "", false
	}
	return v, true
}
