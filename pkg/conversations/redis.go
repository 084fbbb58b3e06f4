// Package conversations keeps chat history and dashboard events in Redis so
// several glance processes share them.
package conversations

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/retailjet/glance/components/dashboard"
	"github.com/retailjet/glance/components/glance"
)

const (
	DefaultTTL   = 24 * time.Hour
	DefaultLimit = 100
	keyPrefix    = "glance:conversation:"
)

var errMissingConversation = errors.New("conversations: conversation id is required")

// RedisStore implements glance.ConversationStore with one Redis list per
// conversation, trimmed to the newest Limit messages.
type RedisStore struct {
	client redis.UniversalClient
	ttl    time.Duration
	limit  int
}

var _ glance.ConversationStore = (*RedisStore)(nil)

// NewRedisStore applies DefaultTTL and DefaultLimit for non-positive values.
func NewRedisStore(client redis.UniversalClient, ttl time.Duration, limit int) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &RedisStore{client: client, ttl: ttl, limit: limit}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("conversations: ping redis: %w", err)
	}
	return nil
}

// Append implements glance.ConversationStore.
func (s *RedisStore) Append(ctx context.Context, conversationID string, messages ...glance.Message) error {
	if conversationID == "" {
		return errMissingConversation
	}
	if len(messages) == 0 {
		return nil
	}
	values, err := encodeMessages(messages)
	if err != nil {
		return err
	}
	key := conversationKey(conversationID)
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, values...)
	pipe.LTrim(ctx, key, int64(-s.limit), -1)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("conversations: append %s: %w", conversationID, err)
	}
	return nil
}

// Messages implements glance.ConversationStore.
func (s *RedisStore) Messages(ctx context.Context, conversationID string) ([]glance.Message, error) {
	raw, err := s.client.LRange(ctx, conversationKey(conversationID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("conversations: read %s: %w", conversationID, err)
	}
	if len(raw) == 0 {
		return nil, glance.ErrConversationNotFound
	}
	return decodeMessages(raw)
}

func conversationKey(id string) string {
	return keyPrefix + id
}

func encodeMessages(messages []glance.Message) ([]any, error) {
	values := make([]any, len(messages))
	for i, msg := range messages {
		data, err := json.Marshal(msg)
		if err != nil {
			return nil, fmt.Errorf("conversations: encode message %s: %w", msg.ID, err)
		}
		values[i] = data
	}
	return values, nil
}

func decodeMessages(raw []string) ([]glance.Message, error) {
	out := make([]glance.Message, 0, len(raw))
	for _, item := range raw {
		var msg glance.Message
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("conversations: decode message: %w", err)
		}
		out = append(out, msg)
	}
	return out, nil
}

// Publisher implements dashboard.EventPublisher over Redis pub/sub.
type Publisher struct {
	client redis.UniversalClient
}

var _ dashboard.EventPublisher = (*Publisher)(nil)

// NewPublisher wraps client.
func NewPublisher(client redis.UniversalClient) *Publisher {
	return &Publisher{client: client}
}

// Publish implements dashboard.EventPublisher.
func (p *Publisher) Publish(ctx context.Context, channel string, payload []byte) error {
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("conversations: publish %s: %w", channel, err)
	}
	return nil
}

// Relay forwards widget events published on channel into hook until ctx is
// cancelled. Payloads that fail to decode are logged and skipped.
func Relay(ctx context.Context, client redis.UniversalClient, channel string, hook dashboard.RefreshHook, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if channel == "" {
		channel = dashboard.DefaultEventsChannel
	}
	sub := client.Subscribe(ctx, channel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("conversations: subscribe %s: %w", channel, err)
	}
	messages := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			forward(ctx, msg.Payload, hook, logger)
		}
	}
}

func forward(ctx context.Context, payload string, hook dashboard.RefreshHook, logger *slog.Logger) {
	event, err := dashboard.DecodeWidgetEvent([]byte(payload))
	if err != nil {
		logger.WarnContext(ctx, "dropping widget event", slog.Any("error", err))
		return
	}
	if err := hook.WidgetUpdated(ctx, event); err != nil {
		logger.WarnContext(ctx, "widget event relay failed",
			slog.String("tenant_id", event.TenantID),
			slog.Any("error", err),
		)
	}
}
