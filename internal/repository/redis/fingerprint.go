package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"finsentiment/internal/domain/sentiment"
	"finsentiment/pkg/errors"
)

// Compile-time check
var _ sentiment.FingerprintStore = (*FingerprintRepository)(nil)

const fingerprintPrefix = "sentiment:fp:"

// FingerprintRepository implements sentiment.FingerprintStore using Redis
type FingerprintRepository struct {
	client *redis.Client
}

// NewFingerprintRepository creates a new fingerprint repository
func NewFingerprintRepository(client *redis.Client) *FingerprintRepository {
	return &FingerprintRepository{
		client: client,
	}
}

// MarkSeen stores the fingerprint with ttl and reports whether it was new.
// SETNX keeps concurrent scorers from claiming the same article twice.
func (r *FingerprintRepository) MarkSeen(ctx context.Context, fingerprint string, ttl time.Duration) (bool, error) {
	if fingerprint == "" {
		return false, errors.Wrap(errors.ErrInvalidInput, "empty fingerprint")
	}

	created, err := r.client.SetNX(ctx, r.getKey(fingerprint), time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "failed to mark fingerprint: %s", fingerprint)
	}

	return created, nil
}

// Forget removes a fingerprint so the article can be scored again
func (r *FingerprintRepository) Forget(ctx context.Context, fingerprint string) error {
	if err := r.client.Del(ctx, r.getKey(fingerprint)).Err(); err != nil {
		return errors.Wrapf(err, "failed to delete fingerprint: %s", fingerprint)
	}
	return nil
}

func (r *FingerprintRepository) getKey(fingerprint string) string {
	return fingerprintPrefix + fingerprint
}
