package ingest

import (
	"errors"
	"testing"

	"github.com/okian/clientes/internal/domain/record"
	. "github.com/smartystreets/goconvey/convey"
)

func TestExtractClientes(t *testing.T) {
	Convey("Given a payload whose body is a JSON string", t, func() {
		payload := []byte(`{"statusCode":200,"body":"{\"clientes\":[{\"nome\":\"A\"},{\"nome\":\"B\"}]}"}`)

		items, err := ExtractClientes(payload)

		Convey("Then both elements are returned in order", func() {
			So(err, ShouldBeNil)
			So(len(items), ShouldEqual, 2)
			first, err := AsRecord(items[0])
			So(err, ShouldBeNil)
			v, _ := first.Get("nome")
			So(v, ShouldEqual, record.String("A"))
		})
	})

	Convey("Given a payload whose body is already an object", t, func() {
		items, err := ExtractClientes([]byte(`{"body":{"clientes":[{"nome":"A"}]}}`))
		So(err, ShouldBeNil)
		So(len(items), ShouldEqual, 1)
	})

	Convey("Given a body without clientes", t, func() {
		items, err := ExtractClientes([]byte(`{"body":"{}"}`))
		So(err, ShouldBeNil)
		So(items, ShouldBeEmpty)
	})

	Convey("Given clientes that is not a list", t, func() {
		_, err := ExtractClientes([]byte(`{"body":{"clientes":{"nome":"A"}}}`))
		So(errors.Is(err, ErrInvalidClientes), ShouldBeTrue)
	})

	Convey("Given malformed payloads", t, func() {
		_, err := ExtractClientes([]byte(`not json`))
		So(errors.Is(err, ErrMalformedPayload), ShouldBeTrue)

		_, err = ExtractClientes([]byte(`{"statusCode":200}`))
		So(errors.Is(err, ErrMissingBody), ShouldBeTrue)

		_, err = ExtractClientes([]byte(`{"body":null}`))
		So(errors.Is(err, ErrMissingBody), ShouldBeTrue)

		_, err = ExtractClientes([]byte(`{"body":"plain text"}`))
		So(errors.Is(err, ErrBodyNotObject), ShouldBeTrue)

		_, err = ExtractClientes([]byte(`{"body":"[1,2]"}`))
		So(errors.Is(err, ErrBodyNotObject), ShouldBeTrue)

		_, err = ExtractClientes([]byte(`{"body":42}`))
		So(errors.Is(err, ErrBodyNotObject), ShouldBeTrue)
	})

	Convey("Given a non-object element", t, func() {
		_, err := AsRecord(record.String("x"))
		So(errors.Is(err, ErrElementNotObject), ShouldBeTrue)
	})
}
