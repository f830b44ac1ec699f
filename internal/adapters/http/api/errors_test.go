package api

import (
	"errors"
	"net/http"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestErrorHelpers(t *testing.T) {
	Convey("Given an underlying cause", t, func() {
		cause := errors.New("dial tcp: refused")

		Convey("When wrapping with a kind", func() {
			err := WrapKind("api.test", ErrUpstream, cause)

			Convey("Then both kind and cause should match", func() {
				So(errors.Is(err, ErrUpstream), ShouldBeTrue)
				So(errors.Is(err, cause), ShouldBeTrue)
				So(err.Error(), ShouldEqual, "api.test: upstream unavailable: dial tcp: refused")
			})
		})

		Convey("When wrapping without a kind", func() {
			err := Wrap("api.test", cause)

			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.test: dial tcp: refused")
		})

		Convey("When wrapping nil", func() {
			So(Wrap("api.test", nil), ShouldBeNil)
			So(errors.Is(WrapKind("api.test", ErrBadRequest, nil), ErrBadRequest), ShouldBeTrue)
		})

		Convey("When creating a bare kind", func() {
			err := NewKind("api.test", ErrBadRequest)

			So(err.Error(), ShouldEqual, "api.test: bad request")
			status, code := classify(err)
			So(status, ShouldEqual, http.StatusBadRequest)
			So(code, ShouldEqual, "bad_request")
		})
	})
}

func TestErrorClassification(t *testing.T) {
	Convey("Given API error kinds", t, func() {
		status, code := classify(NewKind("op", ErrNotFound))
		So(status, ShouldEqual, http.StatusNotFound)
		So(code, ShouldEqual, "not_found")

		status, code = classify(NewKind("op", ErrUpstream))
		So(status, ShouldEqual, http.StatusBadGateway)
		So(code, ShouldEqual, "upstream_error")
	})
}

func TestGetErrorType(t *testing.T) {
	Convey("Given HTTP error statuses", t, func() {
		So(getErrorType(http.StatusBadGateway), ShouldEqual, "upstream_error")
		So(getErrorType(http.StatusInternalServerError), ShouldEqual, "server_error")
		So(getErrorType(http.StatusNotFound), ShouldEqual, "not_found")
		So(getErrorType(http.StatusBadRequest), ShouldEqual, "client_error")
		So(getErrorSeverity(http.StatusBadGateway), ShouldEqual, "high")
		So(getErrorSeverity(http.StatusNotFound), ShouldEqual, "medium")
		So(getErrorSeverity(http.StatusOK), ShouldEqual, "low")
	})
}
