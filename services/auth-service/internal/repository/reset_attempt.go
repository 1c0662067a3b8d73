package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
)

var ErrResetAttemptNotFound = errors.New("reset attempt not found")

// ResetAttemptRepository stores at most one pending reset attempt per email.
// Emails are expected to be normalized by the caller.
type ResetAttemptRepository interface {
	// SaveAttempt stores attempt, atomically replacing any attempt for the same email.
	SaveAttempt(ctx context.Context, attempt *model.ResetAttempt) error

	// GetAttempt returns the attempt for email or ErrResetAttemptNotFound.
	GetAttempt(ctx context.Context, email string) (*model.ResetAttempt, error)

	// DeleteAttemptIfMatch deletes the stored attempt only if it is still the same
	// attempt as the one given. It reports whether a delete happened.
	DeleteAttemptIfMatch(ctx context.Context, attempt *model.ResetAttempt) (bool, error)

	// DeleteExpiredAttempts removes attempts expired at now.
	DeleteExpiredAttempts(ctx context.Context, now time.Time) (int64, error)
}

type resetAttemptMemoryRepository struct {
	mu       sync.Mutex
	attempts map[string]model.ResetAttempt
}

// NewResetAttemptMemoryRepository creates a process-local repository. Attempts do not
// survive a restart.
func NewResetAttemptMemoryRepository() ResetAttemptRepository {
	return &resetAttemptMemoryRepository{
		attempts: make(map[string]model.ResetAttempt),
	}
}

func (r *resetAttemptMemoryRepository) SaveAttempt(_ context.Context, attempt *model.ResetAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.attempts[attempt.Email] = *attempt
	return nil
}

func (r *resetAttemptMemoryRepository) GetAttempt(_ context.Context, email string) (*model.ResetAttempt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	attempt, ok := r.attempts[email]
	if !ok {
		return nil, ErrResetAttemptNotFound
	}

	return &attempt, nil
}

func (r *resetAttemptMemoryRepository) DeleteAttemptIfMatch(
	_ context.Context,
	attempt *model.ResetAttempt,
) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.attempts[attempt.Email]
	if !ok || !stored.Same(attempt) {
		return false, nil
	}

	delete(r.attempts, attempt.Email)
	return true, nil
}

func (r *resetAttemptMemoryRepository) DeleteExpiredAttempts(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for email, attempt := range r.attempts {
		if attempt.ExpiredAt(now) {
			delete(r.attempts, email)
			deleted++
		}
	}

	return deleted, nil
}
