// Package render turns dashboard data into display values and charts.
package render

import (
	"github.com/dustin/go-humanize"

	"github.com/rizwanaperveen/covid/internal/domain/model"
)

// Metric is one labeled summary number.
type Metric struct {
	Icon  string
	Label string
	Value string
}

// FormatCount formats n with comma thousands separators.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// Metrics returns the three summary displays in page order.
func Metrics(s model.CountryStats) []Metric {
	return []Metric{
		{Icon: "✅", Label: "Total Cases", Value: FormatCount(s.Cases)},
		{Icon: "💚", Label: "Recovered", Value: FormatCount(s.Recovered)},
		{Icon: "❌", Label: "Deaths", Value: FormatCount(s.Deaths)},
	}
}
