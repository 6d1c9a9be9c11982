package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"kanto-ml/internal/model"
)

type mongoDestinationRepository struct {
	coll *mongo.Collection
}

// NewMongoDestinationRepository 创建基于 MongoDB 集合的 DestinationRepository。
func NewMongoDestinationRepository(coll *mongo.Collection) DestinationRepository {
	return &mongoDestinationRepository{coll: coll}
}

// Insert 插入一个景点文档。
func (r *mongoDestinationRepository) Insert(ctx context.Context, d model.Destination) error {
	if _, err := r.coll.InsertOne(ctx, d); err != nil {
		return fmt.Errorf("mongo insert destination %q: %w", d.Name, err)
	}
	return nil
}

// Find 按城市和类别过滤景点文档，按插入顺序返回。
func (r *mongoDestinationRepository) Find(ctx context.Context, filter model.DestinationFilter) ([]model.Destination, error) {
	query := bson.M{}
	if filter.City != "" {
		query["city"] = filter.City
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}

	opts := options.Find().
		SetLimit(int64(normalizeLimit(filter.Limit))).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := r.coll.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo find destinations: %w", err)
	}
	defer cur.Close(ctx)

	out := []model.Destination{}
	for cur.Next(ctx) {
		var d model.Destination
		if err := cur.Decode(&d); err != nil {
			return nil, fmt.Errorf("mongo decode destination: %w", err)
		}
		out = append(out, normalizeFound(d))
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("mongo iterate destinations: %w", err)
	}
	return out, nil
}
