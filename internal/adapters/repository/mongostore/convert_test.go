package mongostore

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/okian/clientes/internal/adapters/repository"
	"github.com/okian/clientes/internal/domain/record"
)

func TestDocumentConversion(t *testing.T) {
	Convey("Given a record with every value kind", t, func() {
		r, err := record.Parse([]byte(`{"clientesId":"a","nome":"Ana","saldo":12.50,"ativo":false,"extra":null,"tags":[1,"x"],"end":{"rua":"X"}}`))
		So(err, ShouldBeNil)

		Convey("When it is converted to a document", func() {
			doc, err := toDocument("a", r)
			So(err, ShouldBeNil)

			Convey("Then _id leads and numbers are Decimal128", func() {
				So(doc[0].Key, ShouldEqual, "_id")
				So(doc[0].Value, ShouldEqual, "a")
				_, ok := doc.Map()["saldo"].(primitive.Decimal128)
				So(ok, ShouldBeTrue)
			})

			Convey("Then converting back restores the record without _id", func() {
				back, err := fromDocument(doc)
				So(err, ShouldBeNil)
				So(back.Equal(r), ShouldBeTrue)
				out, _ := record.Encode(back)
				So(string(out), ShouldEqual, `{"clientesId":"a","nome":"Ana","saldo":12.5,"ativo":false,"extra":null,"tags":[1,"x"],"end":{"rua":"X"}}`)
			})
		})
	})

	Convey("Given native BSON numbers written by other clients", t, func() {
		doc := bson.D{{Key: "i", Value: int32(7)}, {Key: "l", Value: int64(8)}, {Key: "f", Value: 1.5}}
		r, err := fromDocument(doc)
		So(err, ShouldBeNil)
		out, _ := record.Encode(r)
		So(string(out), ShouldEqual, `{"i":7,"l":8,"f":1.5}`)
	})

	Convey("Given an unsupported BSON type", t, func() {
		_, err := fromDocument(bson.D{{Key: "oid", Value: primitive.NewObjectID()}})
		So(errors.Is(err, record.ErrUnsupportedValue), ShouldBeTrue)
	})
}

func TestClassify(t *testing.T) {
	Convey("Given a server command error", t, func() {
		err := classify(repository.OpPut, mongo.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"})
		se, ok := repository.AsStoreError(err)
		So(ok, ShouldBeTrue)
		So(se.Code, ShouldEqual, "Unauthorized")
		So(se.Op, ShouldEqual, "put")
	})

	Convey("Given a client-side error", t, func() {
		err := classify(repository.OpGet, mongo.ErrClientDisconnected)
		_, ok := repository.AsStoreError(err)
		So(ok, ShouldBeFalse)
	})
}
