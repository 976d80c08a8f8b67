package seeder

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clientes/internal/adapters/http/api"
	service "github.com/okian/clientes/internal/app"
	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

func newTestServer() *httptest.Server {
	return httptest.NewServer(api.NewServer(service.New()))
}

func TestGenerate(t *testing.T) {
	Convey("Given the generator", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)
		ctx := context.Background()

		Convey("When generating with a fixed seed", func() {
			a := Generate(ctx, 5, 42)
			b := Generate(ctx, 5, 42)

			Convey("Then the output is reproducible", func() {
				So(a, ShouldHaveLength, 5)
				for i := range a {
					So(a[i].Equal(b[i]), ShouldBeTrue)
				}
			})

			Convey("Then every cliente carries the expected fields", func() {
				So(a[0].Keys(), ShouldResemble, []string{"nome", "email", "telefone", "cidade", "idade", "saldo", "ativo"})
				_, hasID := a[0].Get(record.IDField)
				So(hasID, ShouldBeFalse)
				idade, _ := a[0].Get("idade")
				n, ok := idade.(record.Number)
				So(ok, ShouldBeTrue)
				So(n.IsInteger(), ShouldBeTrue)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running clientes service", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)
		srv := newTestServer()
		defer srv.Close()
		ctx := context.Background()

		Convey("When seeding twenty clientes", func() {
			out := filepath.Join(t.TempDir(), "dump", "clientes.json")
			stats, err := Run(ctx, &Config{
				BaseURL:    srv.URL,
				Count:      20,
				Workers:    4,
				Timeout:    5 * time.Second,
				Seed:       7,
				OutputFile: out,
			})

			Convey("Then every create succeeds and the collection grows", func() {
				So(err, ShouldBeNil)
				So(stats.Generated, ShouldEqual, 20)
				So(stats.Successful, ShouldEqual, 20)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.CountBefore, ShouldEqual, 0)
				So(stats.CountAfter, ShouldEqual, 20)
			})

			Convey("Then the generated clientes are dumped as a JSON list", func() {
				data, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				v, err := record.ParseValue(data)
				So(err, ShouldBeNil)
				list, ok := v.(record.List)
				So(ok, ShouldBeTrue)
				So(list, ShouldHaveLength, 20)
			})
		})

		Convey("When the config is invalid", func() {
			_, err := Run(ctx, &Config{BaseURL: srv.URL, Count: 0, Workers: 1})
			So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a service whose status check fails", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("Then the run stops before submitting", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, Count: 3, Workers: 1, Timeout: time.Second})
			So(stats, ShouldBeNil)
			So(errors.Is(err, ErrUnexpectedStatus), ShouldBeTrue)
		})
	})

	Convey("Given a service that rejects creates", t, func() {
		So(logger.Init(logger.WithWriter(io.Discard)), ShouldBeNil)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch {
			case r.Method == http.MethodGet && r.URL.Path == "/status":
				_, _ = io.WriteString(w, `"ok"`)
			case r.Method == http.MethodGet && r.URL.Path == "/clientes":
				_, _ = io.WriteString(w, `{"clientes":[]}`)
			default:
				w.WriteHeader(http.StatusBadRequest)
			}
		}))
		defer srv.Close()

		Convey("Then verification reports the failed creates", func() {
			stats, err := Run(context.Background(), &Config{BaseURL: srv.URL, Count: 3, Workers: 2, Timeout: time.Second})
			So(errors.Is(err, ErrVerification), ShouldBeTrue)
			So(stats.Failed, ShouldEqual, 3)
			So(stats.Successful, ShouldEqual, 0)
		})
	})
}

func TestNewCommand(t *testing.T) {
	Convey("Given the seed command", t, func() {
		cmd := NewCommand()

		Convey("Then it exposes its flags with defaults", func() {
			So(cmd.Use, ShouldEqual, "seed")
			count, err := cmd.Flags().GetInt("count")
			So(err, ShouldBeNil)
			So(count, ShouldEqual, defaultCount)
			url, err := cmd.Flags().GetString("url")
			So(err, ShouldBeNil)
			So(url, ShouldEqual, defaultBaseURL)
		})

		Convey("When run against a live service", func() {
			srv := newTestServer()
			defer srv.Close()
			cmd.SetArgs([]string{"--url", srv.URL, "--count", "3", "--workers", "2", "--seed", "1"})
			cmd.SetOut(io.Discard)

			Convey("Then it completes", func() {
				So(cmd.Execute(), ShouldBeNil)
			})
		})
	})
}
