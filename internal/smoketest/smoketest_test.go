package smoketest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/skinsight/internal/adapters/blob"
	"github.com/okian/skinsight/internal/adapters/http/api"
	"github.com/okian/skinsight/internal/adapters/repository"
	service "github.com/okian/skinsight/internal/app"
	"github.com/okian/skinsight/internal/domain/auth"
	"github.com/okian/skinsight/internal/smoketest"
)

func newServer() *httptest.Server {
	key, err := auth.NewStaticKey(smoketest.DefaultAPIKey)
	So(err, ShouldBeNil)
	return newServerWith(key)
}

func newServerWith(v auth.Verifier) *httptest.Server {
	store, err := repository.NewImageStore(blob.NewMemoryStore())
	So(err, ShouldBeNil)
	gate, err := auth.NewGate(v)
	So(err, ShouldBeNil)
	svc, err := service.New(service.WithAuthorizer(gate), service.WithStore(store))
	So(err, ShouldBeNil)
	return httptest.NewServer(api.NewServer(svc, svc).Handler())
}

func TestRun(t *testing.T) {
	Convey("Given a running server", t, func() {
		srv := newServer()
		defer srv.Close()
		ctx := context.Background()

		Convey("When running the smoke checks", func() {
			report, err := smoketest.Run(ctx, &smoketest.Config{
				BaseURL: srv.URL,
				Uploads: 20,
				Workers: 4,
				Timeout: 10 * time.Second,
			})

			Convey("Then every check should pass", func() {
				So(err, ShouldBeNil)
				So(report.Failed(), ShouldBeEmpty)
				So(len(report.Results), ShouldEqual, 7)
			})
		})

		Convey("When running with the wrong key", func() {
			report, err := smoketest.Run(ctx, &smoketest.Config{BaseURL: srv.URL, APIKey: "not-the-key"})

			Convey("Then the authenticated checks should fail", func() {
				So(errors.Is(err, smoketest.ErrChecksFailed), ShouldBeTrue)
				So(report.Failed(), ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given a server in jwt auth mode", t, func() {
		verifier, err := auth.NewJWT("smoke-secret", "skinsight")
		So(err, ShouldBeNil)
		srv := newServerWith(verifier)
		defer srv.Close()

		Convey("When running with the signing secret", func() {
			report, err := smoketest.Run(context.Background(), &smoketest.Config{
				BaseURL:   srv.URL,
				JWTSecret: "smoke-secret",
				JWTIssuer: "skinsight",
				Timeout:   10 * time.Second,
			})

			Convey("Then every check should pass with the issued token", func() {
				So(err, ShouldBeNil)
				So(report.Failed(), ShouldBeEmpty)
			})
		})

		Convey("When running with a different secret", func() {
			report, err := smoketest.Run(context.Background(), &smoketest.Config{
				BaseURL:   srv.URL,
				JWTSecret: "other-secret",
				JWTIssuer: "skinsight",
				Timeout:   10 * time.Second,
			})

			Convey("Then the authenticated checks should fail", func() {
				So(errors.Is(err, smoketest.ErrChecksFailed), ShouldBeTrue)
				So(report.Failed(), ShouldNotBeEmpty)
			})
		})
	})

	Convey("Given no server", t, func() {
		srv := httptest.NewServer(http.NotFoundHandler())
		srv.Close()

		_, err := smoketest.Run(context.Background(), &smoketest.Config{BaseURL: srv.URL, Timeout: time.Second})

		Convey("Then the run should report the service as unreachable", func() {
			So(errors.Is(err, smoketest.ErrUnreachable), ShouldBeTrue)
		})
	})
}
