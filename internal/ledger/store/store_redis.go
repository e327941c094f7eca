package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"proofwall/internal/ledger/models"
	"proofwall/pkg/domain"
	"proofwall/pkg/platform/sentinel"
)

const (
	redisGrantsKeyPrefix = "proofwall:grants:"
	redisGrantIDsKey     = "proofwall:grant-ids"
)

// RedisStore appends grants to one list per content id. RPUSH is atomic, so
// concurrent appends interleave without loss.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// appendScript claims the grant id and pushes the entry in one step.
var appendScript = redis.NewScript(`
if redis.call("SADD", KEYS[1], ARGV[1]) == 0 then
	return 0
end
redis.call("RPUSH", KEYS[2], ARGV[2])
return 1
`)

func (s *RedisStore) Append(ctx context.Context, grant *models.Grant) error {
	if grant == nil {
		return fmt.Errorf("grant is required")
	}
	payload, err := json.Marshal(grant)
	if err != nil {
		return fmt.Errorf("encode grant: %w", err)
	}
	added, err := appendScript.Run(ctx, s.client,
		[]string{redisGrantIDsKey, grantsKey(grant.ContentID)},
		grant.ID.String(), payload,
	).Int()
	if err != nil {
		return fmt.Errorf("append grant: %w", err)
	}
	if added == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) ListFor(ctx context.Context, contentID domain.ContentID) ([]models.Grant, error) {
	entries, err := s.client.LRange(ctx, grantsKey(contentID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list grants: %w", err)
	}
	grants := make([]models.Grant, 0, len(entries))
	for _, entry := range entries {
		var g models.Grant
		if err := json.Unmarshal([]byte(entry), &g); err != nil {
			return nil, fmt.Errorf("decode grant: %w", err)
		}
		grants = append(grants, g)
	}
	return grants, nil
}

func grantsKey(id domain.ContentID) string {
	return redisGrantsKeyPrefix + id.String()
}
