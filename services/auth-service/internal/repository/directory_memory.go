package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-api/shared/security"
)

type identityMemoryRepository struct {
	mu           sync.Mutex
	byEmail      map[string]*model.Identity
	hashPassword func(string) (string, error)
}

// NewIdentityMemoryRepository creates a process-local identity directory for local
// development and tests.
func NewIdentityMemoryRepository() IdentityRepository {
	return &identityMemoryRepository{
		byEmail:      make(map[string]*model.Identity),
		hashPassword: security.HashPassword,
	}
}

func (r *identityMemoryRepository) EnsureIdentity(
	ctx context.Context,
	params EnsureIdentityParams,
) (*model.Identity, bool, error) {
	if existing, err := r.GetIdentityByEmail(ctx, params.Email); err == nil {
		return existing, false, nil
	}

	// Hashing is slow; keep it outside the lock and re-check afterwards.
	passwordHash, err := r.hashPassword(params.Password)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.byEmail[params.Email]; ok {
		copied := *existing
		return &copied, false, nil
	}

	now := time.Now()
	identity := &model.Identity{
		ID:           bson.NewObjectID(),
		Email:        params.Email,
		DisplayName:  params.DisplayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	r.byEmail[params.Email] = identity

	copied := *identity
	return &copied, true, nil
}

func (r *identityMemoryRepository) GetIdentityByEmail(_ context.Context, email string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byEmail[email]
	if !ok {
		return nil, ErrIdentityNotFound
	}

	copied := *identity
	return &copied, nil
}

func (r *identityMemoryRepository) SetPassword(_ context.Context, handle, newPassword string) error {
	passwordHash, err := r.hashPassword(newPassword)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, identity := range r.byEmail {
		if identity.Handle() == handle {
			identity.PasswordHash = passwordHash
			identity.UpdatedAt = time.Now()
			return nil
		}
	}

	return ErrIdentityNotFound
}

type profileMemoryRepository struct {
	mu       sync.Mutex
	profiles map[string]bson.M
}

// NewProfileMemoryRepository creates a process-local profile store with the same
// merge semantics as the MongoDB one.
func NewProfileMemoryRepository() ProfileRepository {
	return &profileMemoryRepository{profiles: make(map[string]bson.M)}
}

func (r *profileMemoryRepository) UpsertProfile(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	if profile.IdentityHandle == "" {
		return nil, errors.New("profile identity handle is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	doc, ok := r.profiles[profile.IdentityHandle]
	if !ok {
		doc = bson.M{"_id": profile.IdentityHandle, "created_at": now}
		r.profiles[profile.IdentityHandle] = doc
	}

	for k, v := range ProfileMergeFields(profile) {
		doc[k] = v
	}
	doc["updated_at"] = now

	return decodeProfile(doc)
}

func (r *profileMemoryRepository) GetProfile(_ context.Context, handle string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.profiles[handle]
	if !ok {
		return nil, ErrProfileNotFound
	}

	return decodeProfile(doc)
}

// decodeProfile round-trips doc through BSON so field mapping follows the model tags.
func decodeProfile(doc bson.M) (*model.Profile, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}

	var profile model.Profile
	if err := bson.Unmarshal(raw, &profile); err != nil {
		return nil, err
	}

	return &profile, nil
}
