// Package diseasesh is a client for the disease.sh COVID-19 REST API.
package diseasesh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rizwanaperveen/covid/internal/domain/model"
	"github.com/rizwanaperveen/covid/pkg/logger"
	"github.com/rizwanaperveen/covid/pkg/metrics"
)

// DefaultBaseURL is the public disease.sh origin.
const DefaultBaseURL = "https://disease.sh"

// API paths.
const (
	countriesPath  = "/v3/covid-19/countries"
	historicalPath = "/v3/covid-19/historical"
)

// Endpoint labels used for metrics and logs.
const (
	endpointCountries  = "countries"
	endpointCountry    = "country"
	endpointHistorical = "historical"
)

// maxErrorBody caps how much of a non-2xx body is kept in error messages.
const maxErrorBody = 512

// Client issues one blocking GET per call. It holds no cache.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  logger.Logger
}

// New creates a client for the public API unless overridden by options.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logger.Named("diseasesh")
	}
	return c
}

// BaseURL returns the configured origin.
func (c *Client) BaseURL() string { return c.baseURL }

type countryRecord struct {
	Country string `json:"country"`
}

// Countries fetches every country record and returns the names sorted.
func (c *Client) Countries(ctx context.Context) ([]string, error) {
	var records []countryRecord
	if err := c.getJSON(ctx, endpointCountries, countriesPath, nil, &records); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		names = append(names, r.Country)
	}
	sort.Strings(names)
	return names, nil
}

// statsRecord uses pointers so absent fields can be told apart from zeros.
type statsRecord struct {
	Country   string `json:"country"`
	Cases     *int64 `json:"cases"`
	Recovered *int64 `json:"recovered"`
	Deaths    *int64 `json:"deaths"`
}

// CountryStats fetches the current record for an exact country name.
// A record missing cases, recovered or deaths is ErrMalformedResponse.
func (c *Client) CountryStats(ctx context.Context, country string) (model.CountryStats, error) {
	var rec statsRecord
	path := countriesPath + "/" + url.PathEscape(country)
	q := url.Values{"strict": {"true"}}
	if err := c.getJSON(ctx, endpointCountry, path, q, &rec); err != nil {
		return model.CountryStats{}, err
	}

	var missing []string
	if rec.Cases == nil {
		missing = append(missing, "cases")
	}
	if rec.Recovered == nil {
		missing = append(missing, "recovered")
	}
	if rec.Deaths == nil {
		missing = append(missing, "deaths")
	}
	if len(missing) > 0 {
		return model.CountryStats{}, fmt.Errorf("%w: %s: missing %v", ErrMalformedResponse, country, missing)
	}

	name := rec.Country
	if name == "" {
		name = country
	}
	return model.CountryStats{
		Country:   name,
		Cases:     *rec.Cases,
		Recovered: *rec.Recovered,
		Deaths:    *rec.Deaths,
	}, nil
}

type historicalRecord struct {
	Timeline *struct {
		Cases model.Timeline `json:"cases"`
	} `json:"timeline"`
}

// Historical fetches the trailing days of cumulative cases. A response
// without a timeline, or a 404, yields an empty non-nil Timeline.
func (c *Client) Historical(ctx context.Context, country string, days int) (model.Timeline, error) {
	if days < 1 {
		days = 30
	}
	var rec historicalRecord
	path := historicalPath + "/" + url.PathEscape(country)
	q := url.Values{"lastdays": {strconv.Itoa(days)}}
	err := c.getJSON(ctx, endpointHistorical, path, q, &rec)
	switch {
	case errors.Is(err, ErrNotFound):
		c.logger.Debug(ctx, "no historical data", logger.String("country", country))
		return model.Timeline{}, nil
	case err != nil:
		return nil, err
	}
	if rec.Timeline == nil || rec.Timeline.Cases == nil {
		return model.Timeline{}, nil
	}
	return rec.Timeline.Cases, nil
}

// getJSON performs a GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, q url.Values, out any) error {
	start := time.Now()
	outcome := "ok"
	defer func() {
		metrics.RecordUpstreamRequest(endpoint, outcome, float64(time.Since(start).Milliseconds()))
	}()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		outcome = "error"
		return fmt.Errorf("%w: build request: %w", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		outcome = "error"
		c.logger.Warn(ctx, "upstream request failed", logger.String("endpoint", endpoint), logger.Error(err))
		return fmt.Errorf("%w: %s: %w", ErrUpstream, endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	c.logger.Debug(ctx, "upstream response",
		logger.String("endpoint", endpoint),
		logger.String("url", u),
		logger.Int("status", resp.StatusCode),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		outcome = "not_found"
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s", ErrNotFound, path)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		outcome = "error"
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fmt.Errorf("%w: %s: status %d: %s", ErrUpstream, endpoint, resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		outcome = "decode_error"
		return fmt.Errorf("%w: %s: %w", ErrDecode, endpoint, err)
	}
	return nil
}
