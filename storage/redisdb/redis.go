package redisdb

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"proxedu/config"
	"proxedu/pkg/logger"
)

func NewClient(ctx context.Context, cfg config.Config, log logger.ILogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		log.Error("failed to connect Redis", logger.Error(err))
		_ = client.Close()
		return nil, err
	}

	log.Info("Redis connected", logger.String("addr", cfg.RedisAddr()))
	return client, nil
}
