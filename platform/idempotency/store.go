// Package idempotency records processed delivery ids so retried webhooks
// are handled once.
// This is part of the platform layer and contains no business logic.
package idempotency

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a claimed key blocks redelivery.
const DefaultTTL = 24 * time.Hour

// Store claims keys in Redis with SET NX.
type Store struct {
	client redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// New wraps an existing Redis client. Keys are stored under prefix.
func New(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix = strings.TrimSuffix(prefix, ":")
	return &Store{client: client, prefix: prefix, ttl: ttl}
}

// NewFromURL connects to the Redis instance at redisURL.
func NewFromURL(ctx context.Context, redisURL string, tlsInsecure bool, prefix string) (*Store, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if tlsInsecure {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(client, prefix, DefaultTTL), nil
}

// Claim returns true the first time key is seen within the TTL window.
func (s *Store) Claim(ctx context.Context, key string) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.key(key), time.Now().UTC().Format(time.RFC3339), s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

// Release forgets a claim so the delivery can be retried.
func (s *Store) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying client.
func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return s.prefix + ":" + key
}
