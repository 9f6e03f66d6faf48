package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Redis is a Queue on a redis list: LPUSH to enqueue, BRPOP to dequeue.
type Redis struct {
	rdb          *goredis.Client
	key          string
	blockTimeout time.Duration
}

func NewRedis(ctx context.Context, addr, password string, db int, key string, blockTimeout time.Duration) (*Redis, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{rdb: rdb, key: key, blockTimeout: blockTimeout}, nil
}

func (r *Redis) Push(ctx context.Context, body []byte) error {
	return r.rdb.LPush(ctx, r.key, body).Err()
}

func (r *Redis) Pop(ctx context.Context) ([]byte, error) {
	res, err := r.rdb.BRPop(ctx, r.blockTimeout, r.key).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, ErrEmpty
		}
		return nil, err
	}
	// BRPOP replies with [key, value].
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of %d elements", len(res))
	}
	return []byte(res[1]), nil
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}
