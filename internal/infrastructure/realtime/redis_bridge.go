package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sangkips/quotecrm/internal/config"
)

// NewRedisClient connects to Redis and verifies the connection.
func NewRedisClient(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// RedisBridge carries change notices between instances over Redis pub/sub
// so a write on one instance refreshes subscribers on every other.
type RedisBridge struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisBridge creates a bridge on the channel "<namespace>:changes".
func NewRedisBridge(client *redis.Client, namespace string, logger *slog.Logger) *RedisBridge {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisBridge{
		client:  client,
		channel: ChannelName(namespace),
		logger:  logger,
	}
}

// ChannelName is the pub/sub channel used for a namespace.
func ChannelName(namespace string) string {
	return namespace + ":changes"
}

func (b *RedisBridge) Publish(ctx context.Context, notice Notice) error {
	payload, err := json.Marshal(notice)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", b.channel, err)
	}
	return nil
}

// Run relays notices from other instances into hub until ctx is done.
func (b *RedisBridge) Run(ctx context.Context, hub *Hub) error {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.logger.Info("realtime bridge subscribed", "channel", b.channel, "instance", hub.Instance())

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			notice, err := DecodeNotice([]byte(msg.Payload))
			if err != nil {
				b.logger.Warn("dropping malformed change notice", "error", err)
				continue
			}
			hub.HandleNotice(ctx, notice)
		}
	}
}

// DecodeNotice parses a published notice.
func DecodeNotice(data []byte) (Notice, error) {
	var notice Notice
	if err := json.Unmarshal(data, &notice); err != nil {
		return Notice{}, fmt.Errorf("decode notice: %w", err)
	}
	if !notice.Collection.Valid() {
		return Notice{}, fmt.Errorf("unknown collection %q", notice.Collection)
	}
	return notice, nil
}
