package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"proofwall/internal/content/models"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
)

const redisContentKeyPrefix = "proofwall:content:"

// maxWatchRetries bounds optimistic-lock retries in MarkVerified.
const maxWatchRetries = 5

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// RedisStore keeps each record as a JSON document under its own key. Records never expire.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Create(ctx context.Context, record *models.Record) error {
	if record == nil {
		return fmt.Errorf("content record is required")
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	ok, err := s.client.SetNX(ctx, contentKey(record.ID), payload, 0).Result()
	if err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) FindByID(ctx context.Context, id domain.ContentID) (*models.Record, error) {
	return s.load(ctx, s.client, id)
}

// MarkVerified uses WATCH/MULTI so the check and the write are atomic against other writers.
func (s *RedisStore) MarkVerified(ctx context.Context, id domain.ContentID, result json.RawMessage, at time.Time) (*models.Record, error) {
	key := contentKey(id)
	var updated *models.Record

	txf := func(tx *redis.Tx) error {
		record, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if !record.MarkVerified(result, at) {
			return sentinel.ErrInvalidState
		}
		payload, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("encode content: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		if err == nil {
			updated = record
		}
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("mark content verified: %w", redis.TxFailedErr)
}

func (s *RedisStore) load(ctx context.Context, c getter, id domain.ContentID) (*models.Record, error) {
	data, err := c.Get(ctx, contentKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find content: %w", err)
	}
	var record models.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("decode content: %w", err)
	}
	return &record, nil
}

func contentKey(id domain.ContentID) string {
	return redisContentKeyPrefix + id.String()
}
