package pubsub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Billy-Davies-2/draft-assistant/internal/logger"
)

const redisStreamMaxLen = 10000

// RedisStreamPubSub mirrors events through a Redis stream so every instance
// sharing the stream sees them
type RedisStreamPubSub struct {
	client *redis.Client
	stream string
	local  *fanout
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRedisStreamPubSub connects to redisURL and starts tailing stream from
// its current end
func NewRedisStreamPubSub(redisURL, stream string) (*RedisStreamPubSub, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return newRedisStream(client, stream), nil
}

func newRedisStream(client *redis.Client, stream string) *RedisStreamPubSub {
	ctx, cancel := context.WithCancel(context.Background())
	p := &RedisStreamPubSub{
		client: client,
		stream: stream,
		local:  newFanout("redis-stream", 100),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go p.tail(ctx)
	logger.Info("Redis stream pub/sub started", "stream", stream)
	return p
}

// Publish appends the event to the stream
func (p *RedisStreamPubSub) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal event", "error", err, "event_type", event.Type)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: redisStreamMaxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
	if err != nil {
		logger.Error("Failed to publish to redis stream", "error", err, "stream", p.stream, "event_type", event.Type)
	}
}

func (p *RedisStreamPubSub) tail(ctx context.Context) {
	defer close(p.done)
	lastID := "$"
	for {
		streams, err := p.client.XRead(ctx, &redis.XReadArgs{
			Streams: []string{p.stream, lastID},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				logger.Warn("Redis stream read failed", "error", err, "stream", p.stream)
				select {
				case <-time.After(time.Second):
				case <-ctx.Done():
					return
				}
			}
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				lastID = msg.ID
				raw, ok := msg.Values["data"].(string)
				if !ok {
					continue
				}
				var event Event
				if err := json.Unmarshal([]byte(raw), &event); err != nil {
					logger.Error("Failed to unmarshal event from redis stream", "error", err, "message_id", msg.ID)
					continue
				}
				p.local.broadcast(event)
			}
		}
	}
}

func (p *RedisStreamPubSub) Subscribe() chan Event {
	return p.local.subscribe()
}

func (p *RedisStreamPubSub) Unsubscribe(ch chan Event) {
	p.local.unsubscribe(ch)
}

// Close stops tailing and closes the client
func (p *RedisStreamPubSub) Close() {
	p.cancel()
	<-p.done
	p.local.closeAll()
	_ = p.client.Close()
}
