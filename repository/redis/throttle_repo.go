package redis

import (
	"context"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/eventhub/repository"
)

type attemptCounter struct {
	client *redislib.Client
	prefix string
	window time.Duration
}

// NewAttemptCounter creates a Redis-backed fixed-window attempt counter.
func NewAttemptCounter(client *redislib.Client, window time.Duration) repository.AttemptCounter {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &attemptCounter{
		client: client,
		prefix: "login:attempts:",
		window: window,
	}
}

func (r *attemptCounter) Hit(ctx context.Context, key string) (int64, error) {
	count, err := r.client.Incr(ctx, r.key(key)).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, r.key(key), r.window).Err(); err != nil {
			return count, err
		}
	}
	return count, nil
}

func (r *attemptCounter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *attemptCounter) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
