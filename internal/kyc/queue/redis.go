package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the sorted set holding pending verification tasks.
const DefaultRedisKey = "spectra:kyc:verification"

// RedisQueue stores tasks in a sorted set scored by due time in unix
// milliseconds. Several processes may poll the same key; a task is claimed
// by whichever ZREM removes it.
type RedisQueue struct {
	client redis.UniversalClient
	key    string
}

func NewRedis(client redis.UniversalClient, key string) *RedisQueue {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisQueue{client: client, key: key}
}

func (q *RedisQueue) Enqueue(ctx context.Context, task Task) error {
	member, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("encode task: %w", err)
	}
	if err := q.client.ZAdd(ctx, q.key, redis.Z{
		Score:  float64(task.DueAt.UnixMilli()),
		Member: string(member),
	}).Err(); err != nil {
		return fmt.Errorf("enqueue task: %w", err)
	}
	return nil
}

func (q *RedisQueue) Due(ctx context.Context, now time.Time, limit int) ([]Task, error) {
	opt := &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}
	if limit > 0 {
		opt.Count = int64(limit)
	}
	members, err := q.client.ZRangeByScore(ctx, q.key, opt).Result()
	if err != nil {
		return nil, fmt.Errorf("list due tasks: %w", err)
	}

	out := make([]Task, 0, len(members))
	for _, m := range members {
		removed, err := q.client.ZRem(ctx, q.key, m).Result()
		if err != nil {
			return out, fmt.Errorf("claim task: %w", err)
		}
		if removed == 0 {
			continue
		}
		var task Task
		if err := json.Unmarshal([]byte(m), &task); err != nil {
			// Undecodable members are dropped once claimed.
			continue
		}
		out = append(out, task)
	}
	return out, nil
}

func (q *RedisQueue) Len(ctx context.Context) (int, error) {
	n, err := q.client.ZCard(ctx, q.key).Result()
	if err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return int(n), nil
}
