package model_test

import (
	"encoding/json"
	"testing"

	"github.com/rizwanaperveen/covid/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCountryStatsJSON(t *testing.T) {
	Convey("Given country stats", t, func() {
		stats := model.CountryStats{Country: "India", Cases: 45035393, Recovered: 0, Deaths: 533570}

		Convey("When encoded as JSON", func() {
			b, err := json.Marshal(stats)

			Convey("Then it should use lowercase field names", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"country":"India","cases":45035393,"recovered":0,"deaths":533570}`)
			})
		})
	})
}
