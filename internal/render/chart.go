package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/rizwanaperveen/covid/internal/domain/series"
)

// NoHistoryWarning is shown in place of the chart when there is no data.
const NoHistoryWarning = "Historical data not available for this country."

// ErrEmptySeries is returned by a Plotter asked to draw nothing.
var ErrEmptySeries = errors.New("empty series")

// Format selects the chart encoding.
type Format int

// Supported chart encodings.
const (
	SVG Format = iota
	PNG
)

// ContentType returns the HTTP media type for f.
func (f Format) ContentType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Plotter draws the daily-cases line for a non-empty series.
type Plotter interface {
	Plot(w io.Writer, s series.Series, f Format) error
}

// ChartView is what the page shows in the chart slot: either a chart or a warning.
type ChartView struct {
	SVG     template.HTML
	Warning string
}

// HasChart reports whether a chart was drawn.
func (v ChartView) HasChart() bool { return v.Warning == "" && v.SVG != "" }

// BuildChart plots s as SVG, or returns the warning without calling p when
// s is empty.
func BuildChart(s series.Series, p Plotter) (ChartView, error) {
	if s.Empty() {
		return ChartView{Warning: NoHistoryWarning}, nil
	}
	var buf bytes.Buffer
	if err := p.Plot(&buf, s, SVG); err != nil {
		return ChartView{}, err
	}
	// Output comes from our own renderer, not from user input.
	return ChartView{SVG: template.HTML(buf.String())}, nil //nolint:gosec // trusted renderer output
}

// Chart colours.
var (
	lineColor = drawing.ColorFromHex("FFA500")
	gridColor = drawing.ColorFromHex("DDDDDD")
)

// ChartPlotter renders with go-chart.
type ChartPlotter struct {
	width  int
	height int
}

// NewChartPlotter returns a plotter producing width x height images.
func NewChartPlotter(width, height int) *ChartPlotter {
	if width <= 0 {
		width = 1000
	}
	if height <= 0 {
		height = 400
	}
	return &ChartPlotter{width: width, height: height}
}

// Plot draws the daily deltas of s against its dates: an orange line with
// dot markers, labeled axes and major grid lines.
func (p *ChartPlotter) Plot(w io.Writer, s series.Series, f Format) error {
	if s.Empty() {
		return ErrEmptySeries
	}

	dates := s.Dates()
	ys := make([]float64, len(s))
	minY, maxY := math.MaxFloat64, -math.MaxFloat64
	for i, d := range s.Daily() {
		v := float64(d)
		ys[i] = v
		minY = math.Min(minY, v)
		maxY = math.Max(maxY, v)
	}

	grid := chart.Style{StrokeColor: gridColor, StrokeWidth: 1.0}
	ch := chart.Chart{
		Width:      p.width,
		Height:     p.height,
		Background: chart.Style{Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20}},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("Jan 02"),
			GridMajorStyle: grid,
			Range:          xRange(dates),
		},
		YAxis: chart.YAxis{
			Name:           "Daily Cases",
			ValueFormatter: countFormatter,
			GridMajorStyle: grid,
			Range:          yRange(minY, maxY),
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Daily Cases",
				XValues: dates,
				YValues: ys,
				Style: chart.Style{
					StrokeColor: lineColor,
					StrokeWidth: 2,
					DotColor:    lineColor,
					DotWidth:    4,
				},
			},
		},
	}

	var err error
	switch f {
	case PNG:
		err = ch.Render(chart.PNG, w)
	default:
		err = ch.Render(chart.SVG, w)
	}
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

// xRange spans the dates, padded by half a day on each side so a single
// day still has a non-zero range.
func xRange(dates []time.Time) *chart.ContinuousRange {
	first, last := dates[0], dates[len(dates)-1]
	pad := 12 * time.Hour
	return &chart.ContinuousRange{
		Min: chart.TimeToFloat64(first.Add(-pad)),
		Max: chart.TimeToFloat64(last.Add(pad)),
	}
}

// yRange includes zero and guarantees a non-zero height.
func yRange(minY, maxY float64) *chart.ContinuousRange {
	lo := math.Min(0, minY)
	hi := math.Max(0, maxY)
	if hi <= lo {
		hi = lo + 1
	}
	return &chart.ContinuousRange{Min: lo, Max: hi + (hi-lo)*0.05}
}

func countFormatter(v interface{}) string {
	if f, ok := v.(float64); ok {
		return humanize.Comma(int64(math.Round(f)))
	}
	return fmt.Sprintf("%v", v)
}
