package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/clientes/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func newRecord(id, nome string) *record.Record {
	return record.FromPairs(
		record.Field{Name: record.IDField, Value: record.String(id)},
		record.Field{Name: "nome", Value: record.String(nome)},
	)
}

func TestMemoryStore_CRUD(t *testing.T) {
	Convey("Given an empty memory store", t, func() {
		ctx := context.Background()
		store := NewMemoryStore()

		Convey("When a record is put", func() {
			So(store.Put(ctx, newRecord("a", "Ana")), ShouldBeNil)

			Convey("Then it can be read back", func() {
				got, err := store.Get(ctx, "a")
				So(err, ShouldBeNil)
				So(got.Equal(newRecord("a", "Ana")), ShouldBeTrue)
			})

			Convey("Then a missing id reads as nil", func() {
				got, err := store.Get(ctx, "missing")
				So(err, ShouldBeNil)
				So(got, ShouldBeNil)
			})

			Convey("Then a field update returns the new value and leaves the rest", func() {
				res, err := store.UpdateField(ctx, "a", "idade", record.NumberFromInt(30))
				So(err, ShouldBeNil)
				So(res.Attributes.Keys(), ShouldResemble, []string{"idade"})
				So(res.ResponseMetadata.HTTPStatusCode, ShouldEqual, 200)
				So(res.ResponseMetadata.RequestID, ShouldNotBeEmpty)

				got, _ := store.Get(ctx, "a")
				So(got.Keys(), ShouldResemble, []string{record.IDField, "nome", "idade"})
			})

			Convey("Then the key attribute cannot be updated", func() {
				_, err := store.UpdateField(ctx, "a", record.IDField, record.String("b"))
				se, ok := AsStoreError(err)
				So(ok, ShouldBeTrue)
				So(se.Message, ShouldEqual, "Cannot update attribute clientesId. This attribute is part of the key")
			})

			Convey("Then delete removes it and deleting again still succeeds", func() {
				_, err := store.Delete(ctx, "a")
				So(err, ShouldBeNil)
				_, err = store.Delete(ctx, "a")
				So(err, ShouldBeNil)
				So(store.Len(), ShouldEqual, 0)
			})
		})

		Convey("When an absent id is updated", func() {
			_, err := store.UpdateField(ctx, "new", "nome", record.String("Bia"))
			So(err, ShouldBeNil)

			Convey("Then the record is created", func() {
				got, _ := store.Get(ctx, "new")
				id, _ := got.ID()
				So(id, ShouldEqual, "new")
			})
		})

		Convey("When a record without id is put", func() {
			err := store.Put(ctx, record.New())
			So(errors.Is(err, ErrMissingID), ShouldBeTrue)
		})

		Convey("When the stored copy is mutated by the caller", func() {
			r := newRecord("c", "Caio")
			So(store.Put(ctx, r), ShouldBeNil)
			r.Set("nome", record.String("changed"))

			got, _ := store.Get(ctx, "c")
			v, _ := got.Get("nome")
			So(v, ShouldEqual, record.String("Caio"))
		})
	})
}

func TestMemoryStore_Scan(t *testing.T) {
	Convey("Given five records and a page size of two", t, func() {
		ctx := context.Background()
		store := NewMemoryStore(WithPageSize(2))
		for i := 0; i < 5; i++ {
			So(store.Put(ctx, newRecord(fmt.Sprintf("id-%d", i), "x")), ShouldBeNil)
		}

		Convey("When pages are followed to the end", func() {
			var sizes []int
			token := ""
			for {
				page, err := store.Scan(ctx, token)
				So(err, ShouldBeNil)
				sizes = append(sizes, len(page.Items))
				if page.Next == "" {
					break
				}
				token = page.Next
			}

			Convey("Then the pages hold 2, 2 and 1 items", func() {
				So(sizes, ShouldResemble, []int{2, 2, 1})
			})
		})
	})

	Convey("Given an injected failure", t, func() {
		boom := &StoreError{Op: OpScan, Code: "InternalServerError", Message: "boom"}
		store := NewMemoryStore(WithFailure(OpScan, boom))

		_, err := store.Scan(context.Background(), "")
		So(err, ShouldEqual, boom)
		So(err.Error(), ShouldEqual, "store scan: InternalServerError: boom")
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewMemoryStore().Scan(ctx, "")
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})
}

func TestInstrumented(t *testing.T) {
	Convey("Given an instrumented memory store", t, func() {
		ctx := context.Background()
		store := Instrument(NewMemoryStore(), "memory")

		Convey("Then calls pass through unchanged", func() {
			So(store.Put(ctx, newRecord("a", "Ana")), ShouldBeNil)
			got, err := store.Get(ctx, "a")
			So(err, ShouldBeNil)
			So(got, ShouldNotBeNil)
			_, err = store.UpdateField(ctx, "a", record.IDField, record.String("x"))
			So(err, ShouldNotBeNil)
			page, err := store.Scan(ctx, "")
			So(err, ShouldBeNil)
			So(len(page.Items), ShouldEqual, 1)
			_, err = store.Delete(ctx, "a")
			So(err, ShouldBeNil)
		})
	})
}
