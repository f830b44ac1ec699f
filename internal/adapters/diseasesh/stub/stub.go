// Package stub simulates the disease.sh API from embedded fixtures, for
// tests and for running the dashboard without network access.
//
// Supported paths:
//
//	GET /v3/covid-19/countries
//	GET /v3/covid-19/countries/{country}?strict=true
//	GET /v3/covid-19/historical/{country}?lastdays=N
//
// Countries listed without a historical fixture answer the historical path
// with a body that has no timeline.
package stub

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"net"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rizwanaperveen/covid/internal/domain/series"
)

//go:embed fixtures
var fixturesFS embed.FS

const (
	countriesPath  = "/v3/covid-19/countries"
	historicalPath = "/v3/covid-19/historical/"

	notFoundCases   = `{"message":"Country not found or doesn't have any cases"}`
	notFoundHistory = `{"message":"Country not found or doesn't have any historical data"}`
)

// Stub is an http.Handler that records how often each path was requested.
type Stub struct {
	mu   sync.Mutex
	hits map[string]int

	// Failing makes every request answer 503, to exercise upstream errors.
	failing bool
}

// New returns a stub serving the embedded fixtures.
func New() *Stub {
	return &Stub{hits: make(map[string]int)}
}

// SetFailing toggles 503 responses for every path.
func (s *Stub) SetFailing(failing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing = failing
}

// Hits returns the number of requests seen for a decoded URL path.
func (s *Stub) Hits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

// TotalHits returns the number of requests seen on any path.
func (s *Stub) TotalHits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, v := range s.hits {
		n += v
	}
	return n
}

func (s *Stub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	failing := s.failing
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if failing {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"message":"stub unavailable"}`))
		return
	}
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	path := r.URL.Path
	switch {
	case path == countriesPath || path == countriesPath+"/":
		s.serveFile(w, "fixtures/countries.json", notFoundCases)
	case strings.HasPrefix(path, countriesPath+"/"):
		name := strings.TrimPrefix(path, countriesPath+"/")
		s.serveFile(w, "fixtures/country/"+slug(name)+".json", notFoundCases)
	case strings.HasPrefix(path, historicalPath):
		name := strings.TrimPrefix(path, historicalPath)
		s.serveHistorical(w, name, r.URL.Query().Get("lastdays"))
	default:
		http.Error(w, "Not a recognized path for stubbing", http.StatusNotImplemented)
	}
}

func (s *Stub) serveFile(w http.ResponseWriter, name, notFound string) {
	data, err := fixturesFS.ReadFile(name)
	if err != nil {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFound))
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

type historicalFixture struct {
	Country  string                      `json:"country"`
	Province []string                    `json:"province"`
	Timeline map[string]map[string]int64 `json:"timeline"`
}

func (s *Stub) serveHistorical(w http.ResponseWriter, name, lastdays string) {
	data, err := fixturesFS.ReadFile("fixtures/historical/" + slug(name) + ".json")
	if errors.Is(err, fs.ErrNotExist) {
		if _, cerr := fixturesFS.ReadFile("fixtures/country/" + slug(name) + ".json"); cerr == nil {
			// Known country without history: no timeline key at all.
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"country":` + strconv.Quote(name) + `,"message":"no timeline"}`))
			return
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(notFoundHistory))
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	var fx historicalFixture
	if err := json.Unmarshal(data, &fx); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if n, err := strconv.Atoi(lastdays); err == nil && n > 0 {
		for k, tl := range fx.Timeline {
			fx.Timeline[k] = trimLastDays(tl, n)
		}
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(fx)
}

// trimLastDays keeps the n most recent dates of tl.
func trimLastDays(tl map[string]int64, n int) map[string]int64 {
	if len(tl) <= n {
		return tl
	}
	type kv struct {
		key string
		at  time.Time
	}
	keys := make([]kv, 0, len(tl))
	for k := range tl {
		at, err := series.ParseDate(k)
		if err != nil {
			continue
		}
		keys = append(keys, kv{key: k, at: at})
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].at.Before(keys[j].at) })
	if len(keys) > n {
		keys = keys[len(keys)-n:]
	}
	out := make(map[string]int64, len(keys))
	for _, k := range keys {
		out[k.key] = tl[k.key]
	}
	return out
}

func slug(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), " ", "-")
}

// Server runs a Stub on a local listener.
type Server struct {
	*Stub
	URL string
	srv *http.Server
}

// Start listens on addr (e.g. "127.0.0.1:0") and serves the stub until Close.
func Start(addr string) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	st := New()
	s := &Server{
		Stub: st,
		URL:  "http://" + ln.Addr().String(),
		srv:  &http.Server{Handler: st, ReadHeaderTimeout: 5 * time.Second},
	}
	go func() { _ = s.srv.Serve(ln) }()
	return s, nil
}

// Close shuts the listener down.
func (s *Server) Close(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
