package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	service "github.com/rizwanaperveen/covid/internal/app"
	"github.com/rizwanaperveen/covid/internal/domain/series"
	"github.com/rizwanaperveen/covid/internal/render"
	"github.com/rizwanaperveen/covid/pkg/logger"
)

// Run executes one report and writes it to out.
func Run(ctx context.Context, cfg *Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	opts := []diseasesh.Option{diseasesh.WithBaseURL(cfg.BaseURL)}
	if cfg.Timeout > 0 {
		opts = append(opts, diseasesh.WithTimeout(cfg.Timeout))
	}
	svc := service.New(
		service.WithUpstream(diseasesh.New(opts...)),
		service.WithHistoryDays(cfg.Days),
		service.WithDefaultCountry(cfg.Country),
	)

	if cfg.List {
		countries, err := svc.Countries(ctx)
		if err != nil {
			return err
		}
		writeCountries(out, countries)
		return nil
	}

	country, _, err := svc.Resolve(ctx, cfg.Country)
	if err != nil {
		return err
	}
	stats, err := svc.Stats(ctx, country)
	if err != nil {
		return err
	}
	hist, err := svc.History(ctx, country)
	if err != nil {
		return err
	}
	logger.Get().Debug(ctx, "report fetched", logger.String("country", country), logger.Int("points", len(hist)))

	_, _ = fmt.Fprintf(out, "Current Stats for %s\n", country)
	writeMetrics(out, render.Metrics(stats))
	_, _ = fmt.Fprintf(out, "\nDaily New Cases (Last %d Days)\n", svc.HistoryDays())
	if hist.Empty() {
		_, _ = fmt.Fprintln(out, render.NoHistoryWarning)
		return nil
	}
	writeHistory(out, hist)
	return nil
}

func writeMetrics(out io.Writer, metrics []render.Metric) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Metric", "Value"})
	for _, m := range metrics {
		t.AppendRow(table.Row{m.Icon + " " + m.Label, m.Value})
	}
	t.Render()
}

func writeHistory(out io.Writer, s series.Series) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"Date", "Cumulative", "Daily"})
	rows := make([]table.Row, 0, len(s))
	var total int64
	for _, p := range s {
		rows = append(rows, table.Row{
			p.Date.Format("2006-01-02"),
			render.FormatCount(p.Cumulative),
			render.FormatCount(p.Daily),
		})
		total += p.Daily
	}
	t.AppendRows(rows)
	t.AppendFooter(table.Row{"", "Total", render.FormatCount(total)})
	t.Render()
}

func writeCountries(out io.Writer, countries []string) {
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.AppendHeader(table.Row{"#", "Country"})
	for i, c := range countries {
		t.AppendRow(table.Row{i + 1, c})
	}
	t.Render()
}
