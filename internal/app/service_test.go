package service_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh/stub"
	service "github.com/rizwanaperveen/covid/internal/app"
	"github.com/rizwanaperveen/covid/internal/domain/series"
	"github.com/rizwanaperveen/covid/internal/render"
	"github.com/rizwanaperveen/covid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

// recordingPlotter counts Plot calls and writes a fixed marker.
type recordingPlotter struct {
	mu    sync.Mutex
	calls int
	last  series.Series
}

func (p *recordingPlotter) Plot(w io.Writer, s series.Series, f render.Format) error {
	p.mu.Lock()
	p.calls++
	p.last = s
	p.mu.Unlock()
	_, err := io.WriteString(w, "<svg>plot</svg>")
	return err
}

func (p *recordingPlotter) Calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func newStubService(opts ...service.Option) (*service.Service, *stub.Stub, *recordingPlotter, func()) {
	st := stub.New()
	srv := httptest.NewServer(st)
	plotter := &recordingPlotter{}
	base := []service.Option{
		service.WithUpstream(diseasesh.New(diseasesh.WithBaseURL(srv.URL))),
		service.WithPlotter(plotter),
	}
	return service.New(append(base, opts...)...), st, plotter, srv.Close
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.DefaultCountry(), ShouldEqual, "India")
			So(svc.HistoryDays(), ShouldEqual, 30)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDefaultCountry("Brazil"),
			service.WithHistoryDays(7),
			service.WithHistoryDays(0),
			service.WithDefaultCountry(""),
		)

		Convey("Then valid options should apply and zero values be ignored", func() {
			So(svc.DefaultCountry(), ShouldEqual, "Brazil")
			So(svc.HistoryDays(), ShouldEqual, 7)
		})
	})
}

func TestService_Dashboard(t *testing.T) {
	Convey("Given a service backed by the stub upstream", t, func() {
		svc, st, plotter, done := newStubService()
		defer done()
		ctx := context.Background()

		Convey("When rendering with no selection", func() {
			view, err := svc.Dashboard(ctx, "")

			Convey("Then the default country should be shown", func() {
				So(err, ShouldBeNil)
				So(view.Selected, ShouldEqual, "India")
				So(view.Countries, ShouldResemble, []string{"Brazil", "Diamond Princess", "India", "USA", "Zimbabwe"})
				So(view.Stats.Cases, ShouldEqual, 45035393)
				So(view.HistoryDays, ShouldEqual, 30)
			})

			Convey("And the metrics should be formatted in order", func() {
				So(view.Metrics, ShouldHaveLength, 3)
				So(view.Metrics[0].Label, ShouldEqual, "Total Cases")
				So(view.Metrics[0].Value, ShouldEqual, "45,035,393")
				So(view.Metrics[1].Value, ShouldEqual, "0")
				So(view.Metrics[2].Value, ShouldEqual, "533,570")
			})

			Convey("And the chart should be plotted from 30 sorted points", func() {
				So(view.Chart.HasChart(), ShouldBeTrue)
				So(plotter.Calls(), ShouldEqual, 1)
				So(view.Series, ShouldHaveLength, 30)
				So(view.Series[0].Daily, ShouldEqual, 0)
				for i := 1; i < len(view.Series); i++ {
					So(view.Series[i].Date.After(view.Series[i-1].Date), ShouldBeTrue)
				}
			})

			Convey("And exactly one stats and one history fetch should be issued", func() {
				So(st.Hits("/v3/covid-19/countries/India"), ShouldEqual, 1)
				So(st.Hits("/v3/covid-19/historical/India"), ShouldEqual, 1)
			})
		})

		Convey("When rendering several times", func() {
			for i := 0; i < 3; i++ {
				_, err := svc.Dashboard(ctx, "Brazil")
				So(err, ShouldBeNil)
			}

			Convey("Then the country list should be fetched once", func() {
				So(st.Hits("/v3/covid-19/countries"), ShouldEqual, 1)
			})

			Convey("And stats should be fetched on every render", func() {
				So(st.Hits("/v3/covid-19/countries/Brazil"), ShouldEqual, 3)
			})
		})

		Convey("When the selected country has no historical data", func() {
			view, err := svc.Dashboard(ctx, "Diamond Princess")

			Convey("Then a warning should replace the chart without plotting", func() {
				So(err, ShouldBeNil)
				So(view.Chart.HasChart(), ShouldBeFalse)
				So(view.Chart.Warning, ShouldEqual, render.NoHistoryWarning)
				So(plotter.Calls(), ShouldEqual, 0)
			})

			Convey("And the stats should still be shown", func() {
				So(view.Stats.Cases, ShouldEqual, 712)
			})
		})

		Convey("When the selection is not in the catalog", func() {
			_, err := svc.Dashboard(ctx, "Atlantis")

			Convey("Then ErrUnknownCountry should be returned before any stats fetch", func() {
				So(errors.Is(err, service.ErrUnknownCountry), ShouldBeTrue)
				So(st.Hits("/v3/covid-19/countries/Atlantis"), ShouldEqual, 0)
			})
		})

		Convey("When the upstream fails", func() {
			st.SetFailing(true)
			_, err := svc.Dashboard(ctx, "")

			Convey("Then the upstream error should surface", func() {
				So(errors.Is(err, diseasesh.ErrUpstream), ShouldBeTrue)
				So(svc.GetStats()["upstreamErrors"], ShouldEqual, int64(1))
			})
		})
	})

	Convey("Given a default country absent from the list", t, func() {
		svc, _, _, done := newStubService(service.WithDefaultCountry("Narnia"))
		defer done()

		Convey("Then rendering with no selection should fail", func() {
			_, err := svc.Dashboard(context.Background(), "")
			So(errors.Is(err, service.ErrUnknownCountry), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "Narnia")
		})
	})
}

func TestService_History(t *testing.T) {
	Convey("Given a service with a shorter window", t, func() {
		svc, _, _, done := newStubService(service.WithHistoryDays(5))
		defer done()

		Convey("When fetching history", func() {
			s, err := svc.History(context.Background(), "Zimbabwe")

			Convey("Then only the trailing days should be returned", func() {
				So(err, ShouldBeNil)
				So(s, ShouldHaveLength, 5)
			})
		})
	})
}

func TestService_Chart(t *testing.T) {
	Convey("Given a service backed by the stub upstream", t, func() {
		svc, _, plotter, done := newStubService()
		defer done()
		ctx := context.Background()

		Convey("When charting a country with history", func() {
			var buf bytes.Buffer
			err := svc.Chart(ctx, &buf, "USA", render.PNG)

			Convey("Then the plotter output should be written", func() {
				So(err, ShouldBeNil)
				So(buf.String(), ShouldEqual, "<svg>plot</svg>")
				So(plotter.Calls(), ShouldEqual, 1)
			})
		})

		Convey("When charting a country without history", func() {
			var buf bytes.Buffer
			err := svc.Chart(ctx, &buf, "Diamond Princess", render.PNG)

			Convey("Then ErrNoHistory should be returned and nothing written", func() {
				So(errors.Is(err, service.ErrNoHistory), ShouldBeTrue)
				So(buf.Len(), ShouldEqual, 0)
				So(plotter.Calls(), ShouldEqual, 0)
			})
		})
	})
}

func TestService_GetStats(t *testing.T) {
	Convey("Given a service that rendered once", t, func() {
		svc, _, _, done := newStubService()
		defer done()
		_, err := svc.Dashboard(context.Background(), "India")
		So(err, ShouldBeNil)

		Convey("Then stats should reflect the render", func() {
			stats := svc.GetStats()
			So(stats["countriesCached"], ShouldEqual, 5)
			So(stats["dashboardRenders"], ShouldEqual, int64(1))
			So(stats["warningRenders"], ShouldEqual, int64(0))
			So(stats["defaultCountry"], ShouldEqual, "India")
			So(stats["historyDays"], ShouldEqual, 30)
		})
	})
}
