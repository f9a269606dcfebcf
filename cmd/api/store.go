package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/harentsoaR/esannidhi-api/internal/config"
	"github.com/harentsoaR/esannidhi-api/internal/kv"
)

// openStore connects the configured backend and returns a close func.
func openStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (kv.Store, func(), error) {
	switch cfg.StoreBackend {
	case "", "memory":
		logger.Warn("using in-memory store; data is lost on restart")
		return kv.NewMemoryStore(), func() {}, nil

	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		store := kv.NewRedisStore(client, cfg.RedisPrefix)
		if err := store.Ping(ctx); err != nil {
			client.Close()
			return nil, nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info("Successfully connected to Redis!", zap.String("addr", cfg.RedisAddr))
		return store, func() { client.Close() }, nil

	case "mongo":
		if cfg.MongoURI == "" {
			return nil, nil, fmt.Errorf("MONGO_URI is required for the mongo store")
		}
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		store := kv.NewMongoStore(client.Database(cfg.MongoDatabase), cfg.MongoCollection)
		if err := store.Ping(ctx); err != nil {
			client.Disconnect(context.Background())
			return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
		}
		logger.Info("Successfully connected to MongoDB!", zap.String("database", cfg.MongoDatabase))
		return store, func() { client.Disconnect(context.Background()) }, nil
	}
	return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
}
