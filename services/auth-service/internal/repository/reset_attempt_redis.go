package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
)

const (
	resetAttemptKeyPrefix = "reset_attempt:"

	// Keys outlive ExpiresAt a little so the expiry decision stays with the caller's clock.
	resetAttemptKeyGrace = time.Minute
)

var deleteIfEqualScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type resetAttemptRedisRepository struct {
	client *redis.Client
}

// NewResetAttemptRedisRepository creates a repository shared by every process that
// points at the same Redis.
func NewResetAttemptRedisRepository(client *redis.Client) ResetAttemptRepository {
	return &resetAttemptRedisRepository{client: client}
}

func (r *resetAttemptRedisRepository) SaveAttempt(ctx context.Context, attempt *model.ResetAttempt) error {
	value, err := encodeResetAttempt(attempt)
	if err != nil {
		return err
	}

	ttl := time.Until(attempt.ExpiresAt) + resetAttemptKeyGrace
	if ttl < resetAttemptKeyGrace {
		ttl = resetAttemptKeyGrace
	}

	return r.client.Set(ctx, resetAttemptKey(attempt.Email), value, ttl).Err()
}

func (r *resetAttemptRedisRepository) GetAttempt(ctx context.Context, email string) (*model.ResetAttempt, error) {
	value, err := r.client.Get(ctx, resetAttemptKey(email)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrResetAttemptNotFound
		}
		return nil, err
	}

	var attempt model.ResetAttempt
	if err := json.Unmarshal(value, &attempt); err != nil {
		return nil, err
	}

	return &attempt, nil
}

func (r *resetAttemptRedisRepository) DeleteAttemptIfMatch(
	ctx context.Context,
	attempt *model.ResetAttempt,
) (bool, error) {
	value, err := encodeResetAttempt(attempt)
	if err != nil {
		return false, err
	}

	deleted, err := deleteIfEqualScript.Run(ctx, r.client, []string{resetAttemptKey(attempt.Email)}, value).Int()
	if err != nil {
		return false, err
	}

	return deleted == 1, nil
}

// DeleteExpiredAttempts is a no-op; Redis expires keys on its own.
func (r *resetAttemptRedisRepository) DeleteExpiredAttempts(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func resetAttemptKey(email string) string {
	return resetAttemptKeyPrefix + email
}

func encodeResetAttempt(attempt *model.ResetAttempt) (string, error) {
	normalized := *attempt
	normalized.ExpiresAt = attempt.ExpiresAt.UTC()

	b, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}

	return string(b), nil
}
