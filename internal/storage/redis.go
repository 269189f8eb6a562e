package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const seenKeyPrefix = "scraper:seen:"

// SeenStore deduplicates creative ids across runs using Redis keys with a
// TTL. It is optional; when not configured the pipeline writes every record.
type SeenStore struct {
	client *redis.Client
}

func NewSeenStore(client *redis.Client) *SeenStore {
	return &SeenStore{client: client}
}

// MarkSeen records a creative id with the given expiry.
func (s *SeenStore) MarkSeen(ctx context.Context, creativeID string, expiry time.Duration) error {
	return s.client.Set(ctx, seenKeyPrefix+creativeID, 1, expiry).Err()
}

// IsSeen reports whether a creative id was recorded within its expiry window.
func (s *SeenStore) IsSeen(ctx context.Context, creativeID string) (bool, error) {
	n, err := s.client.Exists(ctx, seenKeyPrefix+creativeID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
