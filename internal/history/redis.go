package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const (
	recordsKey = "interview:history"
	profileKey = "interview:profile"
)

// RedisStore persists records in a Redis list, newest first.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Append(ctx context.Context, rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	return s.client.LPush(ctx, recordsKey, data).Err()
}

func (s *RedisStore) ListAll(ctx context.Context) ([]Record, error) {
	items, err := s.client.LRange(ctx, recordsKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		var rec Record
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) ClearAll(ctx context.Context) error {
	return s.client.Del(ctx, recordsKey).Err()
}

func (s *RedisStore) SaveProfile(ctx context.Context, p Profile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	return s.client.Set(ctx, profileKey, data, 0).Err()
}

func (s *RedisStore) LoadProfile(ctx context.Context) (Profile, error) {
	data, err := s.client.Get(ctx, profileKey).Result()
	if errors.Is(err, redis.Nil) {
		return Profile{}, ErrNoProfile
	}
	if err != nil {
		return Profile{}, fmt.Errorf("load profile: %w", err)
	}
	var p Profile
	if err := json.Unmarshal([]byte(data), &p); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

func (s *RedisStore) ClearProfile(ctx context.Context) error {
	return s.client.Del(ctx, profileKey).Err()
}

var _ Store = (*RedisStore)(nil)
