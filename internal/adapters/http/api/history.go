package api

import (
	"context"
	"net/http"

	"github.com/rizwanaperveen/covid/internal/domain/series"
)

// HistoryDependencies defines the interface for history operations.
type HistoryDependencies interface {
	History(ctx context.Context, country string) (series.Series, error)
}

// HistoryHandler handles daily history requests.
type HistoryHandler struct {
	deps HistoryDependencies
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(deps HistoryDependencies) *HistoryHandler {
	return &HistoryHandler{deps: deps}
}

type historyPoint struct {
	Date  string `json:"date"`
	Cases int64  `json:"cases"`
	Daily int64  `json:"daily"`
}

type historyResponse struct {
	Country string         `json:"country"`
	Points  []historyPoint `json:"points"`
}

// HandleGet handles GET /api/history/{country} requests. A country without
// history answers 200 with no points.
func (h *HistoryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.history.get"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	country, ok := pathParam(r, "/api/history/")
	if !ok {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	s, err := h.deps.History(r.Context(), country)
	if err != nil {
		fail(w, r, Wrap(op, err))
		return
	}
	resp := historyResponse{Country: country, Points: make([]historyPoint, 0, len(s))}
	for _, p := range s {
		resp.Points = append(resp.Points, historyPoint{
			Date:  p.Date.Format("2006-01-02"),
			Cases: p.Cumulative,
			Daily: p.Daily,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
