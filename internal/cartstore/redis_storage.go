package cartstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/farmavida/farmavida-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// keyVersion is part of the durable key name. Bump it when the Line shape
// changes; entries under an older version are simply treated as absent.
const keyVersion = "v2"

// RedisStorage keeps one cart's durable copy in a Redis string and announces
// writes on a pub/sub channel so other holders of the same session converge.
type RedisStorage struct {
	client  *redis.Client
	session string
	origin  string
	ttl     time.Duration
	sub     *redis.PubSub
}

// changeEnvelope is the pub/sub message: the written payload tagged with the
// origin so a storage can drop its own announcements.
type changeEnvelope struct {
	Origin string          `json:"origin"`
	Data   json.RawMessage `json:"data"`
}

func NewRedisStorage(client *redis.Client, sessionID string, ttl time.Duration) *RedisStorage {
	return &RedisStorage{
		client:  client,
		session: sessionID,
		origin:  uuid.NewString(),
		ttl:     ttl,
	}
}

func (s *RedisStorage) key() string {
	return fmt.Sprintf("cart:%s:%s", keyVersion, s.session)
}

func (s *RedisStorage) channel() string {
	return fmt.Sprintf("cart:%s:changed:%s", keyVersion, s.session)
}

func (s *RedisStorage) Read(ctx context.Context) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key()).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStorage) Write(ctx context.Context, data []byte) error {
	if err := s.client.Set(ctx, s.key(), data, s.ttl).Err(); err != nil {
		return err
	}

	msg, err := json.Marshal(changeEnvelope{Origin: s.origin, Data: data})
	if err != nil {
		return err
	}
	if err := s.client.Publish(ctx, s.channel(), msg).Err(); err != nil {
		// The write itself landed; peers will still converge on their next
		// read. Not worth failing the caller over.
		logger.Warn("Failed to publish cart change notification", map[string]interface{}{
			"session": s.session,
			"error":   err.Error(),
		})
	}
	return nil
}

func (s *RedisStorage) Watch(ctx context.Context) (<-chan []byte, error) {
	s.sub = s.client.Subscribe(ctx, s.channel())
	if _, err := s.sub.Receive(ctx); err != nil {
		return nil, err
	}

	out := make(chan []byte, 8)
	go func() {
		defer close(out)
		for msg := range s.sub.Channel() {
			var env changeEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				logger.Warn("Dropping malformed cart change notification", map[string]interface{}{
					"session": s.session,
					"error":   err.Error(),
				})
				continue
			}
			if env.Origin == s.origin {
				continue
			}
			select {
			case out <- []byte(env.Data):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

func (s *RedisStorage) Close() error {
	if s.sub != nil {
		return s.sub.Close()
	}
	return nil
}
