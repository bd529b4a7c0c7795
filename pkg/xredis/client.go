package xredis

import (
	"context"
	"time"

	"github.com/fatih/structs"
	"github.com/pickstudio/chat-backend/pkg/pubsub"
	"github.com/pickstudio/chat-backend/pkg/xcontext"
	"github.com/redis/go-redis/v9"
)

// ErrNil reports a missing key or hash field.
var ErrNil = redis.Nil

// Client wraps the key-value state store: hash maps for user/channel records,
// sets for channel and token lists, and a topic-keyed publish/subscribe
// primitive. It satisfies pubsub.Broker.
type Client interface {
	Exist(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, key ...string) error

	// Hash map
	HSet(ctx context.Context, key, field, value string) error
	HSetObj(ctx context.Context, key string, obj any) error
	HGet(ctx context.Context, key, field string) (string, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetObj(ctx context.Context, key string, obj any) (bool, error)
	HKeys(ctx context.Context, key string) ([]string, error)

	// Set
	SAdd(ctx context.Context, key string, members ...string) error
	SRem(ctx context.Context, key string, members ...string) error
	SMembers(ctx context.Context, key string) ([]string, error)

	// Publish/subscribe keyed by topic
	Publish(ctx context.Context, topic string, payload []byte) error
	Subscribe(ctx context.Context, topic string) (pubsub.Subscription, error)

	Close() error
}

type client struct {
	redisClient *redis.Client
}

func NewClient(ctx context.Context) (*client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:            xcontext.Configs(ctx).Redis.Addr,
		Password:        xcontext.Configs(ctx).Redis.Password,
		MaxRetries:      5,
		MinRetryBackoff: 8 * time.Millisecond,
		MaxRetryBackoff: 512 * time.Millisecond,
		DialTimeout:     5 * time.Second,
		ReadTimeout:     5 * time.Second,
		WriteTimeout:    5 * time.Second,
		PoolFIFO:        false,
		PoolSize:        10,
	})

	if err := redisClient.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &client{redisClient: redisClient}, nil
}

func (c *client) Exist(ctx context.Context, key string) (bool, error) {
	n, err := c.redisClient.Exists(ctx, key).Uint64()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}

func (c *client) Del(ctx context.Context, key ...string) error {
	err := c.redisClient.Del(ctx, key...).Err()
	if err == nil || err == redis.Nil {
		return nil
	}

	return err
}

// /// HASH MAP
func (c *client) HSet(ctx context.Context, key, field, value string) error {
	return c.redisClient.HSet(ctx, key, field, value).Err()
}

func (c *client) HSetObj(ctx context.Context, key string, obj any) error {
	s := structs.New(obj)
	s.TagName = "redis"
	return c.redisClient.HSet(ctx, key, s.Map()).Err()
}

func (c *client) HGet(ctx context.Context, key, field string) (string, error) {
	return c.redisClient.HGet(ctx, key, field).Result()
}

func (c *client) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	return c.redisClient.HGetAll(ctx, key).Result()
}

// HGetObj scans the hash at key into obj using its redis field tags. The
// boolean result reports whether the hash exists at all.
func (c *client) HGetObj(ctx context.Context, key string, obj any) (bool, error) {
	cmd := c.redisClient.HGetAll(ctx, key)
	if err := cmd.Err(); err != nil {
		return false, err
	}

	if len(cmd.Val()) == 0 {
		return false, nil
	}

	if err := cmd.Scan(obj); err != nil {
		return false, err
	}

	return true, nil
}

func (c *client) HKeys(ctx context.Context, key string) ([]string, error) {
	return c.redisClient.HKeys(ctx, key).Result()
}

// /// SET
func (c *client) SAdd(ctx context.Context, key string, members ...string) error {
	return c.redisClient.SAdd(ctx, key, members).Err()
}

func (c *client) SRem(ctx context.Context, key string, members ...string) error {
	return c.redisClient.SRem(ctx, key, members).Err()
}

func (c *client) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.redisClient.SMembers(ctx, key).Result()
}

// /// PUBLISH/SUBSCRIBE
func (c *client) Publish(ctx context.Context, topic string, payload []byte) error {
	return c.redisClient.Publish(ctx, topic, payload).Err()
}

func (c *client) Subscribe(ctx context.Context, topic string) (pubsub.Subscription, error) {
	ps := c.redisClient.Subscribe(ctx, topic)

	// Wait for the subscribe confirmation so no publish that happens after
	// this call returns can be missed.
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, err
	}

	s := &subscription{
		ps:   ps,
		ch:   make(chan []byte, 128),
		done: make(chan struct{}),
	}

	go s.drain()
	return s, nil
}

func (c *client) Close() error {
	return c.redisClient.Close()
}
