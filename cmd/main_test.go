package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/clientes/internal/config"
	"github.com/okian/clientes/pkg/logger"
)

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given configuration selecting the memory backend", t, func() {
		_ = os.Setenv("CLIENTES_ADDR", ":8080")
		_ = os.Setenv("CLIENTES_STORE_BACKEND", config.BackendMemory)
		defer func() {
			_ = os.Unsetenv("CLIENTES_ADDR")
			_ = os.Unsetenv("CLIENTES_STORE_BACKEND")
		}()

		ctx := context.Background()
		cfg, err := config.Load(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(cfg.Addr, convey.ShouldEqual, ":8080")

		convey.Convey("When the handler is built", func() {
			svc, handler, err := newHandler(ctx, cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			defer func() { _ = svc.Stop(ctx) }()

			srv := httptest.NewServer(handler)
			defer srv.Close()

			get := func(path string) (int, string) {
				resp, err := http.Get(srv.URL + path)
				convey.So(err, convey.ShouldBeNil)
				defer func() { _ = resp.Body.Close() }()
				body, _ := io.ReadAll(resp.Body)
				return resp.StatusCode, string(body)
			}

			convey.Convey("Then the status route answers", func() {
				code, body := get("/status")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				convey.So(body, convey.ShouldContainSubstring, "funcionando")
			})

			convey.Convey("Then a created cliente shows up in the listing", func() {
				resp, err := http.Post(srv.URL+"/clientes", "application/json", strings.NewReader(`{"nome":"Ana"}`))
				convey.So(err, convey.ShouldBeNil)
				_ = resp.Body.Close()
				convey.So(resp.StatusCode, convey.ShouldEqual, http.StatusOK)

				code, body := get("/clientes")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				convey.So(body, convey.ShouldContainSubstring, `"nome":"Ana"`)
			})

			convey.Convey("Then docs and metrics are mounted", func() {
				code, _ := get("/api-docs")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				code, _ = get("/openapi.yaml")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
				code, _ = get("/metrics")
				convey.So(code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then unknown routes are answered by the router", func() {
				code, body := get("/nope")
				convey.So(code, convey.ShouldEqual, http.StatusNotFound)
				convey.So(body, convey.ShouldEqual, `"404 Not Found"`)
			})
		})
	})
}

func TestMainApplicationErrorHandling(t *testing.T) {
	convey.Convey("Given an empty listen address", t, func() {
		_ = os.Setenv("CLIENTES_ADDR", "")
		defer func() { _ = os.Unsetenv("CLIENTES_ADDR") }()

		convey.Convey("Then configuration loading should fail", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldNotBeNil)
			convey.So(cfg, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given a config with an unknown backend", t, func() {
		cfg := config.New()
		cfg.StoreBackend = "cassandra"

		convey.Convey("Then building the handler fails", func() {
			_, _, err := newHandler(context.Background(), cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}
