package redisclient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const otpKeyPrefix = "otp:"

// consumeScript deletes KEYS[1] only while it still holds ARGV[1]
var consumeScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Client is the Redis-backed OTP code store
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Ping checks that Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SaveOTP stores a code hash for phone, replacing any previous one. Redis
// drops the key once ttl elapses.
func (c *Client) SaveOTP(ctx context.Context, phone, hash string, ttl time.Duration) error {
	if err := c.rdb.Set(ctx, otpKey(phone), hash, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set otp key: %w", err)
	}
	return nil
}

// GetOTP returns the stored hash for phone; ok is false when none is live.
func (c *Client) GetOTP(ctx context.Context, phone string) (string, bool, error) {
	hash, err := c.rdb.Get(ctx, otpKey(phone)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get otp key: %w", err)
	}
	return hash, true, nil
}

// ConsumeOTP atomically deletes the code for phone if it still equals hash.
func (c *Client) ConsumeOTP(ctx context.Context, phone, hash string) (bool, error) {
	n, err := consumeScript.Run(ctx, c.rdb, []string{otpKey(phone)}, hash).Int()
	if err != nil {
		return false, fmt.Errorf("failed to consume otp key: %w", err)
	}
	return n == 1, nil
}

func otpKey(phone string) string {
	return otpKeyPrefix + phone
}
