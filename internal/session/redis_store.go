package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"gosshub/client/internal/state"
)

// DefaultTTL applies to tokens that carry no expiry.
const DefaultTTL = 30 * 24 * time.Hour

// RedisStore keeps one token per profile, so several terminals or machines
// can share a login.
type RedisStore struct {
	client  *redis.Client
	prefix  string
	profile string
}

// NewRedisStore connects to redisURL and checks the connection.
func NewRedisStore(redisURL, profile string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisStoreWithClient(client, profile), nil
}

func NewRedisStoreWithClient(client *redis.Client, profile string) *RedisStore {
	if profile == "" {
		profile = "default"
	}
	return &RedisStore{
		client:  client,
		prefix:  "gosshub:token:",
		profile: profile,
	}
}

func (s *RedisStore) key() string {
	return s.prefix + s.profile
}

func (s *RedisStore) Save(ctx context.Context, token string, expiresAt time.Time) error {
	data, err := encode(token, expiresAt)
	if err != nil {
		return err
	}

	ttl := DefaultTTL
	if !expiresAt.IsZero() {
		ttl = time.Until(expiresAt)
		if ttl <= 0 {
			return s.Clear(ctx)
		}
	}

	if err := s.client.Set(ctx, s.key(), data, ttl).Err(); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context) (string, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if errors.Is(err, redis.Nil) {
		return "", state.ErrNoToken
	}
	if err != nil {
		return "", fmt.Errorf("load token: %w", err)
	}
	return decode(data, time.Now())
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key()).Err(); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
