// Package series reshapes an upstream cumulative timeline into a
// date-ordered series with day-over-day deltas.
package series

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rizwanaperveen/covid/internal/domain/model"
)

// ErrBadDate is returned when a timeline key is not a recognised date.
var ErrBadDate = errors.New("unrecognised timeline date")

// Date layouts accepted for timeline keys. disease.sh serves M/D/YY.
var dateLayouts = []string{"1/2/06", "2006-01-02"}

// Point is one day of the series.
type Point struct {
	Date       time.Time `json:"date"`
	Cumulative int64     `json:"cases"`
	Daily      int64     `json:"daily"`
}

// Series is ordered by Date ascending.
type Series []Point

// ParseDate parses a timeline key into a UTC date.
func ParseDate(key string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, key); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrBadDate, key)
}

// FromTimeline sorts the timeline by date and fills in daily deltas.
// The first point's delta is 0. Negative deltas are kept as reported.
func FromTimeline(tl model.Timeline) (Series, error) {
	s := make(Series, 0, len(tl))
	for key, cum := range tl {
		d, err := ParseDate(key)
		if err != nil {
			return nil, err
		}
		s = append(s, Point{Date: d, Cumulative: cum})
	}
	sort.Slice(s, func(i, j int) bool { return s[i].Date.Before(s[j].Date) })
	fillDaily(s)
	return s, nil
}

// DailyDeltas returns cumulative[i] - cumulative[i-1] with a leading 0.
func DailyDeltas(cumulative []int64) []int64 {
	out := make([]int64, len(cumulative))
	for i := 1; i < len(cumulative); i++ {
		out[i] = cumulative[i] - cumulative[i-1]
	}
	return out
}

func fillDaily(s Series) {
	for i := range s {
		if i == 0 {
			s[i].Daily = 0
			continue
		}
		s[i].Daily = s[i].Cumulative - s[i-1].Cumulative
	}
}

// Dates returns the point dates in order.
func (s Series) Dates() []time.Time {
	out := make([]time.Time, len(s))
	for i, p := range s {
		out[i] = p.Date
	}
	return out
}

// Daily returns the daily deltas in order.
func (s Series) Daily() []int64 {
	out := make([]int64, len(s))
	for i, p := range s {
		out[i] = p.Daily
	}
	return out
}

// Cumulative returns the cumulative counts in order.
func (s Series) Cumulative() []int64 {
	out := make([]int64, len(s))
	for i, p := range s {
		out[i] = p.Cumulative
	}
	return out
}

// Empty reports whether the series has no points.
func (s Series) Empty() bool { return len(s) == 0 }
