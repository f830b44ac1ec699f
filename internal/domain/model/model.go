// Package model holds the data shapes shared between the upstream client,
// the dashboard service and the HTTP layer.
package model

// CountryStats is the current snapshot for one country.
type CountryStats struct {
	Country   string `json:"country"`
	Cases     int64  `json:"cases"`
	Recovered int64  `json:"recovered"`
	Deaths    int64  `json:"deaths"`
}

// Timeline maps an upstream date key (e.g. "1/2/21") to the cumulative
// case count reported for that day.
type Timeline map[string]int64
