package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-api/shared/mailer"
	"github.com/vasapolrittideah/credential-api/shared/validation"
)

type fakeIdentityRepo struct {
	mu         sync.Mutex
	byEmail    map[string]*model.Identity
	passwords  map[string]string
	ensureErr  error
	setPassErr error
	setCalls   int
}

func newFakeIdentityRepo() *fakeIdentityRepo {
	return &fakeIdentityRepo{
		byEmail:   make(map[string]*model.Identity),
		passwords: make(map[string]string),
	}
}

func (r *fakeIdentityRepo) EnsureIdentity(
	_ context.Context,
	params repository.EnsureIdentityParams,
) (*model.Identity, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.ensureErr != nil {
		return nil, false, r.ensureErr
	}
	if existing, ok := r.byEmail[params.Email]; ok {
		copied := *existing
		return &copied, false, nil
	}

	identity := &model.Identity{
		ID:          bson.NewObjectID(),
		Email:       params.Email,
		DisplayName: params.DisplayName,
	}
	r.byEmail[params.Email] = identity
	r.passwords[identity.Handle()] = params.Password

	copied := *identity
	return &copied, true, nil
}

func (r *fakeIdentityRepo) GetIdentityByEmail(_ context.Context, email string) (*model.Identity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	identity, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrIdentityNotFound
	}
	copied := *identity
	return &copied, nil
}

func (r *fakeIdentityRepo) SetPassword(_ context.Context, handle, newPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.setCalls++
	if r.setPassErr != nil {
		return r.setPassErr
	}
	if _, ok := r.passwords[handle]; !ok {
		return repository.ErrIdentityNotFound
	}
	r.passwords[handle] = newPassword
	return nil
}

func (r *fakeIdentityRepo) password(handle string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.passwords[handle]
}

func (r *fakeIdentityRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byEmail)
}

type fakeProfileRepo struct {
	mu        sync.Mutex
	profiles  map[string]*model.Profile
	upsertErr error
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*model.Profile)}
}

func (r *fakeProfileRepo) UpsertProfile(_ context.Context, profile *model.Profile) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.upsertErr != nil {
		return nil, r.upsertErr
	}

	now := time.Now()
	stored, ok := r.profiles[profile.IdentityHandle]
	if !ok {
		stored = &model.Profile{IdentityHandle: profile.IdentityHandle, CreatedAt: now}
		r.profiles[profile.IdentityHandle] = stored
	}

	merge := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	merge(&stored.Role, profile.Role)
	merge(&stored.Email, profile.Email)
	merge(&stored.DisplayName, profile.DisplayName)
	merge(&stored.BusinessName, profile.BusinessName)
	merge(&stored.OwnerName, profile.OwnerName)
	merge(&stored.Category, profile.Category)
	merge(&stored.Phone, profile.Phone)
	merge(&stored.Address, profile.Address)
	merge(&stored.FirstName, profile.FirstName)
	merge(&stored.LastName, profile.LastName)
	merge(&stored.DateOfBirth, profile.DateOfBirth)
	merge(&stored.Region, profile.Region)
	stored.UpdatedAt = now

	copied := *stored
	return &copied, nil
}

func (r *fakeProfileRepo) GetProfile(_ context.Context, handle string) (*model.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	profile, ok := r.profiles[handle]
	if !ok {
		return nil, repository.ErrProfileNotFound
	}
	copied := *profile
	return &copied, nil
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []mailer.Email
	err    error
	onSend func(email mailer.Email)
}

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) error {
	if m.onSend != nil {
		m.onSend(email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func (m *fakeMailer) last() mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sent[len(m.sent)-1]
}

type sequenceCodes struct {
	mu    sync.Mutex
	codes []string
	next  int
}

func (s *sequenceCodes) Generate() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := s.codes[s.next%len(s.codes)]
	s.next++
	return code, nil
}

func newTestValidator(t *testing.T) *validation.Validator {
	t.Helper()

	v, err := validation.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}
	return v
}
