package redis_session

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/veritas-health/medresearch/internal/session"
	"github.com/veritas-health/medresearch/models"
)

type Store struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSessionStore(addr, password string, db int, ttl time.Duration) (session.Store, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed (%s): %w", addr, err)
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{client: rdb, ttl: ttl}, nil
}

func historyKey(id string) string { return fmt.Sprintf("session:%s:history", id) }

func (store *Store) Ensure(id string) (session.Session, error) {
	ctx := context.Background()
	if id != "" {
		exists, err := store.client.Exists(ctx, historyKey(id)).Result()
		if err == nil && exists == 1 {
			_ = store.client.Expire(ctx, historyKey(id), store.ttl).Err()
			return &Session{client: store.client, id: id, ttl: store.ttl}, nil
		}
	}
	if id == "" {
		id = uuid.NewString()
	}
	// Initialize with an empty history list so Ensure/Get agree on existence.
	if err := store.client.Set(ctx, historyKey(id), "[]", store.ttl).Err(); err != nil {
		return nil, err
	}
	return &Session{client: store.client, id: id, ttl: store.ttl}, nil
}

func (store *Store) Get(id string) (session.Session, error) {
	ctx := context.Background()
	exists, err := store.client.Exists(ctx, historyKey(id)).Result()
	if err != nil || exists == 0 {
		return nil, err
	}
	return &Session{client: store.client, id: id, ttl: store.ttl}, nil
}

type Session struct {
	client *redis.Client
	id     string
	ttl    time.Duration
}

func (s *Session) ID() string { return s.id }

// Append adds one exchange under an optimistic WATCH transaction so two
// concurrent appends to the same session cannot drop each other's write.
func (s *Session) Append(exchange models.Exchange) error {
	ctx := context.Background()
	key := historyKey(s.id)

	txn := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil && err != redis.Nil {
			return err
		}
		var history []models.Exchange
		if err == nil && val != "" {
			if err := json.Unmarshal([]byte(val), &history); err != nil {
				return err
			}
		}
		history = append(history, exchange)
		data, err := json.Marshal(history)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		return err
	}

	for attempt := 0; attempt < 32; attempt++ {
		err := s.client.Watch(ctx, txn, key)
		if err != redis.TxFailedErr {
			return err
		}
	}
	return fmt.Errorf("appending to session %s: too much contention", s.id)
}

func (s *Session) History() ([]models.Exchange, error) {
	ctx := context.Background()
	val, err := s.client.Get(ctx, historyKey(s.id)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var history []models.Exchange
	if err := json.Unmarshal([]byte(val), &history); err != nil {
		return nil, err
	}
	return history, nil
}
