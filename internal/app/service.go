// Package service provides the dashboard pipeline that backs the HTTP
// handlers: country catalog, current stats, history and chart rendering.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	"github.com/rizwanaperveen/covid/internal/domain/catalog"
	"github.com/rizwanaperveen/covid/internal/domain/model"
	"github.com/rizwanaperveen/covid/internal/domain/series"
	"github.com/rizwanaperveen/covid/internal/render"
	"github.com/rizwanaperveen/covid/pkg/logger"
	"github.com/rizwanaperveen/covid/pkg/metrics"
)

// Errors returned by the service.
var (
	ErrUnknownCountry = errors.New("country not in catalog")
	ErrNoHistory      = errors.New("historical data not available")
)

// Upstream is the statistics source.
type Upstream interface {
	Countries(ctx context.Context) ([]string, error)
	CountryStats(ctx context.Context, country string) (model.CountryStats, error)
	Historical(ctx context.Context, country string, days int) (model.Timeline, error)
}

// View is everything the dashboard page renders for one selection.
type View struct {
	Countries   []string
	Selected    string
	Stats       model.CountryStats
	Metrics     []render.Metric
	Series      series.Series
	Chart       render.ChartView
	HistoryDays int
}

// Service runs the fetch, reshape and render pipeline.
type Service struct {
	upstream       Upstream
	catalog        catalog.Catalog
	plotter        render.Plotter
	defaultCountry string
	historyDays    int
	logger         logger.Logger

	renders        atomic.Int64
	warnings       atomic.Int64
	upstreamErrors atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithUpstream sets the statistics source.
func WithUpstream(u Upstream) Option {
	return func(s *Service) {
		if u != nil {
			s.upstream = u
		}
	}
}

// WithCatalog overrides the memoized catalog built from the upstream.
func WithCatalog(c catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithPlotter sets the chart renderer.
func WithPlotter(p render.Plotter) Option {
	return func(s *Service) {
		if p != nil {
			s.plotter = p
		}
	}
}

// WithDefaultCountry sets the preselected country.
func WithDefaultCountry(country string) Option {
	return func(s *Service) {
		if country != "" {
			s.defaultCountry = country
		}
	}
}

// WithHistoryDays sets the trailing history window.
func WithHistoryDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.historyDays = days
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Without options it talks to the public API.
func New(opts ...Option) *Service {
	s := &Service{
		defaultCountry: "India",
		historyDays:    30,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	if s.upstream == nil {
		s.upstream = diseasesh.New()
	}
	if s.catalog == nil {
		s.catalog = catalog.NewMemo(s.upstream)
	}
	if s.plotter == nil {
		s.plotter = render.NewChartPlotter(0, 0)
	}
	return s
}

// DefaultCountry returns the preselected country.
func (s *Service) DefaultCountry() string { return s.defaultCountry }

// HistoryDays returns the trailing history window.
func (s *Service) HistoryDays() int { return s.historyDays }

// Countries returns the memoized, sorted country list.
func (s *Service) Countries(ctx context.Context) ([]string, error) {
	countries, err := s.catalog.Countries(ctx)
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, fmt.Errorf("countries: %w", err)
	}
	return countries, nil
}

// Stats fetches the current stats for country. Never cached.
func (s *Service) Stats(ctx context.Context, country string) (model.CountryStats, error) {
	stats, err := s.upstream.CountryStats(ctx, country)
	if err != nil {
		s.upstreamErrors.Add(1)
		return model.CountryStats{}, fmt.Errorf("stats %q: %w", country, err)
	}
	return stats, nil
}

// History fetches and reshapes the trailing history for country. A missing
// timeline gives an empty series.
func (s *Service) History(ctx context.Context, country string) (series.Series, error) {
	tl, err := s.upstream.Historical(ctx, country, s.historyDays)
	if err != nil {
		s.upstreamErrors.Add(1)
		return nil, fmt.Errorf("history %q: %w", country, err)
	}
	ser, err := series.FromTimeline(tl)
	if err != nil {
		return nil, fmt.Errorf("history %q: %w", country, err)
	}
	return ser, nil
}

// Resolve maps an empty selection to the default country and checks the
// result against the catalog.
func (s *Service) Resolve(ctx context.Context, selected string) (string, []string, error) {
	countries, err := s.Countries(ctx)
	if err != nil {
		return "", nil, err
	}
	if selected == "" {
		selected = s.defaultCountry
	}
	if catalog.Index(countries, selected) < 0 {
		return "", countries, fmt.Errorf("%w: %q", ErrUnknownCountry, selected)
	}
	return selected, countries, nil
}

// Dashboard runs the whole pipeline for one selection: list, stats,
// history, reshape, chart. Each call issues one stats and one history fetch.
func (s *Service) Dashboard(ctx context.Context, selected string) (View, error) {
	country, countries, err := s.Resolve(ctx, selected)
	if err != nil {
		metrics.RecordDashboardRender("error")
		return View{}, err
	}

	stats, err := s.Stats(ctx, country)
	if err != nil {
		metrics.RecordDashboardRender("error")
		return View{}, err
	}

	hist, err := s.History(ctx, country)
	if err != nil {
		metrics.RecordDashboardRender("error")
		return View{}, err
	}

	chartView, err := render.BuildChart(hist, s.plotter)
	if err != nil {
		metrics.RecordDashboardRender("error")
		return View{}, fmt.Errorf("chart %q: %w", country, err)
	}

	s.renders.Add(1)
	outcome := "chart"
	if !chartView.HasChart() {
		outcome = "warning"
		s.warnings.Add(1)
	}
	metrics.RecordDashboardRender(outcome)
	s.logger.Debug(ctx, "dashboard rendered",
		logger.String("country", country),
		logger.Int("points", len(hist)),
		logger.String("outcome", outcome),
	)

	return View{
		Countries:   countries,
		Selected:    country,
		Stats:       stats,
		Metrics:     render.Metrics(stats),
		Series:      hist,
		Chart:       chartView,
		HistoryDays: s.historyDays,
	}, nil
}

// Chart writes the daily-cases chart for country in format f.
// ErrNoHistory is returned, and nothing written, when there is no data.
func (s *Service) Chart(ctx context.Context, w io.Writer, country string, f render.Format) error {
	hist, err := s.History(ctx, country)
	if err != nil {
		return err
	}
	if hist.Empty() {
		return fmt.Errorf("%w: %q", ErrNoHistory, country)
	}
	return s.plotter.Plot(w, hist, f)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	return map[string]interface{}{
		"countriesCached":  s.catalog.Size(),
		"dashboardRenders": s.renders.Load(),
		"warningRenders":   s.warnings.Load(),
		"upstreamErrors":   s.upstreamErrors.Load(),
		"defaultCountry":   s.defaultCountry,
		"historyDays":      s.historyDays,
	}
}
