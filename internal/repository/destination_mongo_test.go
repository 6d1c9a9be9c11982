package repository

import (
	"context"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"kanto-ml/internal/model"
)

func TestMongoInsert(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("success", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		repo := NewMongoDestinationRepository(mt.Coll)

		d := model.Destination{Name: "Gili Labak", City: "Sumenep", Facilities: []string{"Perahu"}, Price: 25000}
		if err := repo.Insert(context.Background(), d); err != nil {
			mt.Fatalf("Insert() error = %v", err)
		}
		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "insert" {
			mt.Fatalf("started event = %+v, want insert", evt)
		}
		doc := evt.Command.Lookup("documents").Array().Index(0).Value().Document()
		if name := doc.Lookup("name").StringValue(); name != "Gili Labak" {
			mt.Errorf("inserted name = %q", name)
		}
		if price := doc.Lookup("price").Double(); price != 25000 {
			mt.Errorf("inserted price = %v", price)
		}
	})

	mt.Run("write error", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))
		repo := NewMongoDestinationRepository(mt.Coll)

		if err := repo.Insert(context.Background(), model.Destination{Name: "Gili Labak"}); err == nil {
			mt.Errorf("Insert() error = nil, want write error")
		}
	})
}

func TestMongoFind(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("filter and legacy documents", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "name", Value: "Pantai Camplong"},
				{Key: "city", Value: "Sampang"},
				{Key: "category", Value: "Beach"},
				{Key: "facilities", Value: bson.A{"Parkir"}},
				{Key: "price", Value: 10000.0},
			},
			// 旧文档缺少大部分字段
			bson.D{
				{Key: "city", Value: "Sampang"},
				{Key: "category", Value: "Beach"},
			},
		))
		repo := NewMongoDestinationRepository(mt.Coll)

		got, err := repo.Find(context.Background(), model.DestinationFilter{City: "Sampang", Category: "Beach", Limit: 5})
		if err != nil {
			mt.Fatalf("Find() error = %v", err)
		}
		if len(got) != 2 {
			mt.Fatalf("len(Find()) = %d, want 2", len(got))
		}
		if got[0].Name != "Pantai Camplong" || got[0].Price != 10000 || !reflect.DeepEqual(got[0].Facilities, []string{"Parkir"}) {
			mt.Errorf("first document = %+v", got[0])
		}
		legacy := got[1]
		if legacy.Name != model.DefaultText || legacy.Description != model.DefaultText || legacy.Facilities == nil || len(legacy.Facilities) != 0 {
			mt.Errorf("legacy document not normalized: %+v", legacy)
		}

		evt := mt.GetStartedEvent()
		if evt == nil || evt.CommandName != "find" {
			mt.Fatalf("started event = %+v, want find", evt)
		}
		filter := evt.Command.Lookup("filter").Document()
		if city := filter.Lookup("city").StringValue(); city != "Sampang" {
			mt.Errorf("filter city = %q", city)
		}
		if cat := filter.Lookup("category").StringValue(); cat != "Beach" {
			mt.Errorf("filter category = %q", cat)
		}
		if limit := evt.Command.Lookup("limit").Int64(); limit != 5 {
			mt.Errorf("limit = %d, want 5", limit)
		}
	})

	mt.Run("default limit and empty filter", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))
		repo := NewMongoDestinationRepository(mt.Coll)

		got, err := repo.Find(context.Background(), model.DestinationFilter{})
		if err != nil {
			mt.Fatalf("Find() error = %v", err)
		}
		if got == nil || len(got) != 0 {
			mt.Errorf("Find() = %#v, want empty slice", got)
		}
		evt := mt.GetStartedEvent()
		if elems, err := evt.Command.Lookup("filter").Document().Elements(); err != nil || len(elems) != 0 {
			mt.Errorf("filter = %v, want empty document", evt.Command.Lookup("filter"))
		}
		if limit := evt.Command.Lookup("limit").Int64(); limit != DefaultFindLimit {
			mt.Errorf("limit = %d, want %d", limit, DefaultFindLimit)
		}
	})
}
