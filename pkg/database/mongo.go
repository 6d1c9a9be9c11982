// Package database 初始化景点存储和缓存所用的数据库客户端。
package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"kanto-ml/internal/config"
	"kanto-ml/pkg/log"
)

// InitMongo 连接 MongoDB 并返回景点集合。
func InitMongo(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, *mongo.Collection, error) {
	if cfg.URI == "" {
		return nil, nil, fmt.Errorf("mongo uri is empty, set MONGODB_URI")
	}

	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect mongo: %w", err)
	}
	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	log.Infof("MongoDB connected successfully, database: %s, collection: %s", cfg.Database, cfg.Collection)
	return client, client.Database(cfg.Database).Collection(cfg.Collection), nil
}
