package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/adapters/source"
	service "github.com/okian/clientes/internal/app"
	"github.com/okian/clientes/internal/config"
	"github.com/okian/clientes/internal/domain/ingest"
	"github.com/okian/clientes/internal/domain/record"
	"github.com/okian/clientes/pkg/logger"
)

// stubSource answers Fetch with a canned response.
type stubSource struct {
	resp source.Response
	err  error
}

func (s stubSource) Fetch(context.Context) (source.Response, error) { return s.resp, s.err }

// flakyStore fails Put for the records whose position is listed in failAt.
type flakyStore struct {
	*repository.MemoryStore
	failAt map[int]bool
	puts   int
}

func (f *flakyStore) Put(ctx context.Context, r *record.Record) error {
	n := f.puts
	f.puts++
	if f.failAt[n] {
		return &repository.StoreError{Op: repository.OpPut, Code: "ProvisionedThroughputExceededException", Message: "throttled"}
	}
	return f.MemoryStore.Put(ctx, r)
}

func mustParse(s string) *record.Record {
	r, err := record.Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return r
}

func TestService_CRUD(t *testing.T) {
	Convey("Given a service over a memory store", t, func() {
		ctx := context.Background()
		svc := service.New(service.WithStore(repository.NewMemoryStore()))

		Convey("When a record is created with a caller-supplied id", func() {
			created, err := svc.Create(ctx, mustParse(`{"nome":"Ana","clientesId":"mine"}`))
			So(err, ShouldBeNil)

			Convey("Then a fresh UUID replaces it and Get returns the record", func() {
				id, _ := created.ID()
				So(id, ShouldNotEqual, "mine")
				_, err := uuid.Parse(id)
				So(err, ShouldBeNil)

				got, err := svc.Get(ctx, id)
				So(err, ShouldBeNil)
				So(got.Equal(created), ShouldBeTrue)
			})

			Convey("Then updating a field leaves the others unchanged", func() {
				id, _ := created.ID()
				res, err := svc.UpdateField(ctx, id, "nome", record.String("Bia"))
				So(err, ShouldBeNil)
				v, _ := res.Attributes.Get("nome")
				So(v, ShouldEqual, record.String("Bia"))

				got, _ := svc.Get(ctx, id)
				So(got.Keys(), ShouldResemble, []string{"nome", record.IDField})
			})

			Convey("Then deleting twice succeeds", func() {
				id, _ := created.ID()
				_, err := svc.Delete(ctx, id)
				So(err, ShouldBeNil)
				_, err = svc.Delete(ctx, id)
				So(err, ShouldBeNil)
				got, _ := svc.Get(ctx, id)
				So(got, ShouldBeNil)
			})
		})

		Convey("When nome is updated on a record with several fields", func() {
			created, err := svc.Create(ctx, mustParse(`{"nome":"Zé","email":"ze@example.com","idade":30,"ativo":true,"end":{"cidade":"Recife"}}`))
			So(err, ShouldBeNil)
			id, _ := created.ID()

			_, err = svc.UpdateField(ctx, id, "nome", record.String("Ana"))
			So(err, ShouldBeNil)

			Convey("Then a later Get shows the new nome and every other field as created", func() {
				got, err := svc.Get(ctx, id)
				So(err, ShouldBeNil)
				nome, _ := got.Get("nome")
				So(nome, ShouldEqual, record.String("Ana"))
				So(got.Keys(), ShouldResemble, created.Keys())
				for _, k := range created.Keys() {
					if k == "nome" {
						continue
					}
					want, _ := created.Get(k)
					have, ok := got.Get(k)
					So(ok, ShouldBeTrue)
					So(record.FromPairs(record.Field{Name: k, Value: have}).Equal(
						record.FromPairs(record.Field{Name: k, Value: want})), ShouldBeTrue)
				}
			})
		})

		Convey("When ids are empty", func() {
			_, err := svc.Get(ctx, "")
			So(errors.Is(err, service.ErrMissingID), ShouldBeTrue)
			_, err = svc.UpdateField(ctx, "", "a", record.Null{})
			So(errors.Is(err, service.ErrMissingID), ShouldBeTrue)
			_, err = svc.Delete(ctx, "")
			So(errors.Is(err, service.ErrMissingID), ShouldBeTrue)
		})
	})
}

func TestService_List(t *testing.T) {
	Convey("Given five records served two per page", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore(repository.WithPageSize(2))
		for i := 0; i < 5; i++ {
			So(store.Put(ctx, mustParse(fmt.Sprintf(`{"clientesId":"id-%d"}`, i))), ShouldBeNil)
		}

		Convey("When listing without a page cap", func() {
			items, err := service.New(service.WithStore(store)).List(ctx)

			Convey("Then all five records are returned", func() {
				So(err, ShouldBeNil)
				So(len(items), ShouldEqual, 5)
			})
		})

		Convey("When the page cap is smaller than the collection", func() {
			_, err := service.New(service.WithStore(store), service.WithMaxScanPages(2)).List(ctx)
			So(errors.Is(err, service.ErrScanLimit), ShouldBeTrue)
		})

		Convey("When the page cap fits exactly", func() {
			items, err := service.New(service.WithStore(store), service.WithMaxScanPages(3)).List(ctx)
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 5)
		})
	})

	Convey("Given an empty store", t, func() {
		items, err := service.New().List(context.Background())
		So(err, ShouldBeNil)
		So(items, ShouldNotBeNil)
		So(items, ShouldBeEmpty)
	})
}

func TestService_Import(t *testing.T) {
	payload := []byte(`{"statusCode":200,"body":"{\"clientes\":[{\"nome\":\"A\"},{\"nome\":\"B\"}]}"}`)

	Convey("Given a remote list of two clientes in a string body", t, func() {
		ctx := context.Background()
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithStore(store),
			service.WithSource(stubSource{resp: source.Response{StatusCode: 200, Body: payload}}),
		)

		res, err := svc.Import(ctx)

		Convey("Then both are stored under distinct fresh ids", func() {
			So(err, ShouldBeNil)
			So(res.Imported, ShouldEqual, 2)
			items, _ := svc.List(ctx)
			So(len(items), ShouldEqual, 2)
			a, _ := items[0].ID()
			b, _ := items[1].ID()
			So(a, ShouldNotEqual, b)
		})
	})

	Convey("Given a store that rejects the second of three records", t, func() {
		body := []byte(`{"body":{"clientes":[{"n":1},{"n":2},{"n":3}]}}`)
		store := &flakyStore{MemoryStore: repository.NewMemoryStore(), failAt: map[int]bool{1: true}}
		svc := service.New(
			service.WithStore(store),
			service.WithSource(stubSource{resp: source.Response{StatusCode: 200, Body: body}}),
		)

		res, err := svc.Import(context.Background())

		Convey("Then the batch continues and counts two", func() {
			So(err, ShouldBeNil)
			So(res.Imported, ShouldEqual, 2)
			So(res.Failed, ShouldEqual, 1)
			So(store.Len(), ShouldEqual, 2)
		})
	})

	Convey("Given the remote answers 500", t, func() {
		svc := service.New(service.WithSource(stubSource{resp: source.Response{StatusCode: 500}}))
		res, err := svc.Import(context.Background())
		So(err, ShouldBeNil)
		So(res.RemoteOK(), ShouldBeFalse)
		So(res.RemoteStatus, ShouldEqual, 500)
	})

	Convey("Given clientes is not a list", t, func() {
		svc := service.New(service.WithSource(stubSource{resp: source.Response{StatusCode: 200, Body: []byte(`{"body":{"clientes":"x"}}`)}}))
		_, err := svc.Import(context.Background())
		So(errors.Is(err, ingest.ErrInvalidClientes), ShouldBeTrue)
	})

	Convey("Given an element that is not an object", t, func() {
		store := repository.NewMemoryStore()
		svc := service.New(
			service.WithStore(store),
			service.WithSource(stubSource{resp: source.Response{StatusCode: 200, Body: []byte(`{"body":{"clientes":[{"n":1},"x",{"n":3}]}}`)}}),
		)
		_, err := svc.Import(context.Background())

		Convey("Then the batch stops there and earlier writes stay", func() {
			So(errors.Is(err, ingest.ErrElementNotObject), ShouldBeTrue)
			So(store.Len(), ShouldEqual, 1)
		})
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		svc := service.New(service.WithSource(stubSource{resp: source.Response{StatusCode: 200, Body: payload}}))
		_, err := svc.Import(ctx)
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given a fetch failure or no source", t, func() {
		_, err := service.New(service.WithSource(stubSource{err: errors.New("dial")})).Import(context.Background())
		So(err, ShouldNotBeNil)
		_, err = service.New().Import(context.Background())
		So(errors.Is(err, service.ErrNoSource), ShouldBeTrue)
	})
}

func TestBuild(t *testing.T) {
	Convey("Given a memory backend configuration", t, func() {
		cfg := config.New()
		cfg.StoreBackend = config.BackendMemory
		closed := false

		svc, err := service.Build(context.Background(), cfg, logger.Nop(),
			service.WithCloser(func(context.Context) error { closed = true; return nil }))

		Convey("Then a working service is built", func() {
			So(err, ShouldBeNil)
			created, err := svc.Create(context.Background(), record.New())
			So(err, ShouldBeNil)
			So(created.Len(), ShouldEqual, 1)
			So(svc.Stop(context.Background()), ShouldBeNil)
			So(closed, ShouldBeTrue)
		})
	})

	Convey("Given an unknown backend", t, func() {
		cfg := config.New()
		cfg.StoreBackend = "cassandra"
		_, err := service.Build(context.Background(), cfg, logger.Nop())
		So(errors.Is(err, service.ErrUnknownBackend), ShouldBeTrue)
	})
}
