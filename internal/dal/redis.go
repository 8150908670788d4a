package dal

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Billy-Davies-2/draft-assistant/internal/models"
)

const (
	redisSessionPrefix = "draft:session:"
	redisSessionsSet   = "draft:sessions"
	redisOpTimeout     = 5 * time.Second
)

// RedisDAL implements DraftDAL with one hash per session
type RedisDAL struct {
	client *redis.Client
}

// NewRedisDAL connects to the Redis instance at url (redis://host:port/db)
func NewRedisDAL(url string) (*RedisDAL, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return &RedisDAL{client: client}, nil
}

func sessionKey(sessionID string) string {
	return redisSessionPrefix + sessionID
}

func (r *RedisDAL) GetState(sessionID string) (*models.DraftState, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	fields, err := r.client.HGetAll(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, ErrSessionNotFound
	}

	values := make(map[string][]byte, len(fields))
	for k, v := range fields {
		values[k] = []byte(v)
	}
	return decodeState(values)
}

func (r *RedisDAL) SaveState(sessionID string, state *models.DraftState) error {
	values, err := encodeState(state)
	if err != nil {
		return err
	}
	fields := make(map[string]any, len(values))
	for k, v := range values {
		fields[k] = string(v)
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, sessionKey(sessionID), fields)
		pipe.SAdd(ctx, redisSessionsSet, sessionID)
		return nil
	})
	return err
}

func (r *RedisDAL) DeleteSession(sessionID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	var del *redis.IntCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, sessionKey(sessionID))
		pipe.SRem(ctx, redisSessionsSet, sessionID)
		return nil
	})
	if err != nil {
		return err
	}
	if del.Val() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

func (r *RedisDAL) ListSessions() ([]string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	ids, err := r.client.SMembers(ctx, redisSessionsSet).Result()
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *RedisDAL) Close() error {
	return r.client.Close()
}
