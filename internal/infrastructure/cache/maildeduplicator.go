package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// mailKeyPrefix is the prefix for all mail deduplication keys
const mailKeyPrefix = "licensing:mail:"

// MailDeduplicator suppresses repeated notification mails across instances.
type MailDeduplicator struct {
	client *redis.Client
	ttl    time.Duration
}

// NewMailDeduplicator creates a new MailDeduplicator instance
func NewMailDeduplicator(client *redis.Client, ttl time.Duration) *MailDeduplicator {
	return &MailDeduplicator{client: client, ttl: ttl}
}

// buildKey builds the Redis key for mail deduplication
// Format: licensing:mail:{kind}:{reference}:{recipient}
func (d *MailDeduplicator) buildKey(kind, reference string, recipientID uint) string {
	return fmt.Sprintf("%s%s:%s:%d", mailKeyPrefix, kind, reference, recipientID)
}

// TryAcquire atomically claims a mail using SetNX. It returns false when the
// same mail was already sent within the TTL.
func (d *MailDeduplicator) TryAcquire(ctx context.Context, kind, reference string, recipientID uint) (bool, error) {
	key := d.buildKey(kind, reference, recipientID)

	acquired, err := d.client.SetNX(ctx, key, "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire mail lock: %w", err)
	}
	return acquired, nil
}

// Release forgets a claim so a failed send can be retried.
func (d *MailDeduplicator) Release(ctx context.Context, kind, reference string, recipientID uint) error {
	if err := d.client.Del(ctx, d.buildKey(kind, reference, recipientID)).Err(); err != nil {
		return fmt.Errorf("failed to release mail lock: %w", err)
	}
	return nil
}
