package tasks

import (
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

// TaskClient owns the redis connection shared by task enqueueing and the
// request rate limiter.
type TaskClient struct {
	client      *asynq.Client
	redisClient *redis.Client
}

// GetRedisClient exposes the underlying redis client for consumers that need
// direct redis access (rate limiting shares the task redis).
func (c *TaskClient) GetRedisClient() *redis.Client {
	return c.redisClient
}

// NewTaskClient creates a new TaskClient with the given Redis configuration
func NewTaskClient(redisAddr, username, password string, db int) *TaskClient {
	redisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Username: username,
		Password: password,
		DB:       db,
	}

	redisClient := redis.NewClient(
		&redis.Options{
			Addr:     redisAddr,
			Username: username,
			Password: password,
			DB:       db,
		},
	)

	return &TaskClient{
		client:      asynq.NewClient(redisOpt),
		redisClient: redisClient,
	}
}

// Close closes the underlying asynq client
func (c *TaskClient) Close() error {
	return c.client.Close()
}
