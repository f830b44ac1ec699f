package cli

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh"
	"github.com/rizwanaperveen/covid/internal/adapters/diseasesh/stub"
	service "github.com/rizwanaperveen/covid/internal/app"
	"github.com/rizwanaperveen/covid/internal/render"
	"github.com/rizwanaperveen/covid/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func TestRun(t *testing.T) {
	Convey("Given the CLI pointed at the stub upstream", t, func() {
		st := stub.New()
		srv := httptest.NewServer(st)
		defer srv.Close()
		ctx := context.Background()
		var out bytes.Buffer

		cfg := &Config{BaseURL: srv.URL, Country: "India", Days: 30}

		Convey("When reporting on a country with history", func() {
			err := Run(ctx, cfg, &out)
			report := out.String()

			Convey("Then the metrics and history table should be printed", func() {
				So(err, ShouldBeNil)
				So(report, ShouldContainSubstring, "Current Stats for India")
				So(report, ShouldContainSubstring, "Total Cases")
				So(report, ShouldContainSubstring, "45,035,393")
				So(report, ShouldContainSubstring, "Daily New Cases (Last 30 Days)")
				So(report, ShouldContainSubstring, "2023-02-08")
				So(report, ShouldContainSubstring, "2023-03-09")
				So(report, ShouldNotContainSubstring, render.NoHistoryWarning)
			})

			Convey("And one stats fetch should be issued", func() {
				So(st.Hits("/v3/covid-19/countries/India"), ShouldEqual, 1)
			})
		})

		Convey("When the window is shorter", func() {
			cfg.Days = 3
			err := Run(ctx, cfg, &out)

			So(err, ShouldBeNil)
			So(out.String(), ShouldContainSubstring, "Daily New Cases (Last 3 Days)")
			So(out.String(), ShouldNotContainSubstring, "2023-02-08")
		})

		Convey("When reporting on a country without history", func() {
			cfg.Country = "Diamond Princess"
			err := Run(ctx, cfg, &out)

			Convey("Then the warning should be printed instead of a table", func() {
				So(err, ShouldBeNil)
				So(out.String(), ShouldContainSubstring, render.NoHistoryWarning)
			})
		})

		Convey("When listing countries", func() {
			cfg.List = true
			err := Run(ctx, cfg, &out)

			Convey("Then every country should be printed in order", func() {
				So(err, ShouldBeNil)
				report := out.String()
				So(strings.Index(report, "Brazil"), ShouldBeLessThan, strings.Index(report, "Zimbabwe"))
				So(report, ShouldContainSubstring, "Diamond Princess")
				So(st.Hits("/v3/covid-19/countries/India"), ShouldEqual, 0)
			})
		})

		Convey("When the country is unknown", func() {
			cfg.Country = "Atlantis"
			err := Run(ctx, cfg, &out)

			So(errors.Is(err, service.ErrUnknownCountry), ShouldBeTrue)
		})

		Convey("When the upstream is failing", func() {
			st.SetFailing(true)
			err := Run(ctx, cfg, &out)

			So(errors.Is(err, diseasesh.ErrUpstream), ShouldBeTrue)
		})
	})
}

func TestConfigValidate(t *testing.T) {
	Convey("Given CLI configurations", t, func() {
		So((&Config{BaseURL: "http://x", Days: 1}).Validate(), ShouldBeNil)
		So(errors.Is((&Config{Days: 1}).Validate(), ErrInvalidConfig), ShouldBeTrue)
		So(errors.Is((&Config{BaseURL: "http://x"}).Validate(), ErrInvalidConfig), ShouldBeTrue)
		So(errors.Is((&Config{BaseURL: "http://x", Days: 1, Timeout: -1}).Validate(), ErrInvalidConfig), ShouldBeTrue)
	})
}

func TestShowHelp(t *testing.T) {
	Convey("Given the help text", t, func() {
		var out bytes.Buffer
		ShowHelp(&out)

		Convey("Then every flag should be documented", func() {
			for _, flag := range []string{"-country", "-days", "-url", "-timeout", "-list", "-stub", "-verbose", "-help"} {
				So(out.String(), ShouldContainSubstring, flag)
			}
		})
	})
}
