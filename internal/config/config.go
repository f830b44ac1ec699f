// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers defaults, an optional YAML file and env vars using koanf.
// - External errors are wrapped with this package's sentinel errors.
package config

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8501".
	Addr string `koanf:"addr"`

	// UpstreamBaseURL is the disease.sh base URL, without the /v3 path.
	UpstreamBaseURL string `koanf:"upstream_base_url"`

	// UpstreamTimeoutMS bounds each upstream request. 0 disables the timeout.
	UpstreamTimeoutMS int `koanf:"upstream_timeout_ms"`

	// DefaultCountry is preselected when no country is requested.
	DefaultCountry string `koanf:"default_country"`

	// HistoryDays is the trailing window requested from the historical endpoint.
	HistoryDays int `koanf:"history_days"`

	// ChartWidth and ChartHeight size the rendered chart in pixels.
	ChartWidth  int `koanf:"chart_width"`
	ChartHeight int `koanf:"chart_height"`

	// StubUpstream serves embedded fixtures instead of calling disease.sh.
	StubUpstream bool `koanf:"stub_upstream"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":8501",
		UpstreamBaseURL:   "https://disease.sh",
		UpstreamTimeoutMS: 0,
		DefaultCountry:    "India",
		HistoryDays:       30,
		ChartWidth:        1000,
		ChartHeight:       400,
		StubUpstream:      false,
	}
}
