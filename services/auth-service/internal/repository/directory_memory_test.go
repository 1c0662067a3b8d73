package repository

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-api/shared/security"
)

func TestIdentityMemoryRepository_EnsureIdentity(t *testing.T) {
	repo := NewIdentityMemoryRepository()
	ctx := context.Background()

	first, created, err := repo.EnsureIdentity(ctx, EnsureIdentityParams{Email: "p@x.com", Password: "secret1"})
	if err != nil || !created {
		t.Fatalf("first EnsureIdentity: created=%v err=%v", created, err)
	}

	second, created, err := repo.EnsureIdentity(ctx, EnsureIdentityParams{Email: "p@x.com", Password: "other1"})
	if err != nil || created {
		t.Fatalf("second EnsureIdentity: created=%v err=%v", created, err)
	}
	if first.Handle() != second.Handle() {
		t.Fatalf("handles differ: %s vs %s", first.Handle(), second.Handle())
	}

	ok, err := security.VerifyPassword("secret1", second.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("original password lost (ok=%v err=%v)", ok, err)
	}
}

func TestIdentityMemoryRepository_ConcurrentEnsureIdentity(t *testing.T) {
	repo := NewIdentityMemoryRepository()
	ctx := context.Background()

	const workers = 8
	handles := make([]string, workers)
	created := make([]bool, workers)

	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			identity, ok, err := repo.EnsureIdentity(ctx, EnsureIdentityParams{Email: "c@x.com", Password: "secret1"})
			if err != nil {
				t.Errorf("EnsureIdentity: %v", err)
				return
			}
			handles[i] = identity.Handle()
			created[i] = ok
		}()
	}
	wg.Wait()

	creators := 0
	for i := range workers {
		if created[i] {
			creators++
		}
		if handles[i] != handles[0] {
			t.Fatalf("handles differ: %s vs %s", handles[i], handles[0])
		}
	}
	if creators != 1 {
		t.Fatalf("%d callers created the identity, want 1", creators)
	}
}

func TestIdentityMemoryRepository_LookupNotBlockedByHashing(t *testing.T) {
	hashing := make(chan struct{})
	release := make(chan struct{})
	repo := &identityMemoryRepository{
		byEmail: make(map[string]*model.Identity),
		hashPassword: func(password string) (string, error) {
			if password == "slow-one" {
				close(hashing)
				<-release
			}
			return "hash:" + password, nil
		},
	}
	ctx := context.Background()

	if _, _, err := repo.EnsureIdentity(ctx, EnsureIdentityParams{Email: "a@x.com", Password: "secret1"}); err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() {
		_, _, err := repo.EnsureIdentity(ctx, EnsureIdentityParams{Email: "b@x.com", Password: "slow-one"})
		done <- err
	}()
	<-hashing

	lookup := make(chan error, 1)
	go func() {
		_, err := repo.GetIdentityByEmail(ctx, "a@x.com")
		lookup <- err
	}()

	select {
	case err := <-lookup:
		if err != nil {
			t.Fatalf("GetIdentityByEmail: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("lookup blocked while another identity was being hashed")
	}

	close(release)
	if err := <-done; err != nil {
		t.Fatalf("slow EnsureIdentity: %v", err)
	}
}

func TestIdentityMemoryRepository_SetPassword(t *testing.T) {
	repo := NewIdentityMemoryRepository()
	ctx := context.Background()

	identity, _, err := repo.EnsureIdentity(ctx, EnsureIdentityParams{Email: "u@x.com", Password: "secret1"})
	if err != nil {
		t.Fatal(err)
	}

	if err := repo.SetPassword(ctx, identity.Handle(), "newpass"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}

	updated, _ := repo.GetIdentityByEmail(ctx, "u@x.com")
	if ok, _ := security.VerifyPassword("newpass", updated.PasswordHash); !ok {
		t.Fatal("new password does not verify")
	}

	if err := repo.SetPassword(ctx, "ffffffffffffffffffffffff", "x12345"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("err = %v, want ErrIdentityNotFound", err)
	}
	if _, err := repo.GetIdentityByEmail(ctx, "nobody@x.com"); !errors.Is(err, ErrIdentityNotFound) {
		t.Fatalf("err = %v, want ErrIdentityNotFound", err)
	}
}

func TestProfileMemoryRepository_UpsertMerges(t *testing.T) {
	repo := NewProfileMemoryRepository()
	ctx := context.Background()

	first, err := repo.UpsertProfile(ctx, &model.Profile{
		IdentityHandle: "h1",
		Role:           model.RoleProvider,
		BusinessName:   "Acme",
		Category:       "plumbing",
	})
	if err != nil {
		t.Fatalf("UpsertProfile: %v", err)
	}
	if first.CreatedAt.IsZero() {
		t.Fatal("created_at not assigned")
	}

	second, err := repo.UpsertProfile(ctx, &model.Profile{
		IdentityHandle: "h1",
		BusinessName:   "Acme Renamed",
	})
	if err != nil {
		t.Fatal(err)
	}

	if second.BusinessName != "Acme Renamed" {
		t.Errorf("business name = %q", second.BusinessName)
	}
	if second.Category != "plumbing" || second.Role != model.RoleProvider {
		t.Errorf("merge dropped fields: %+v", second)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("created_at changed: %s -> %s", first.CreatedAt, second.CreatedAt)
	}

	got, err := repo.GetProfile(ctx, "h1")
	if err != nil {
		t.Fatal(err)
	}
	if got.IdentityHandle != "h1" || got.BusinessName != "Acme Renamed" {
		t.Errorf("GetProfile = %+v", got)
	}
}

func TestProfileMemoryRepository_Errors(t *testing.T) {
	repo := NewProfileMemoryRepository()
	ctx := context.Background()

	if _, err := repo.UpsertProfile(ctx, &model.Profile{}); err == nil {
		t.Fatal("upsert without handle should fail")
	}
	if _, err := repo.GetProfile(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("err = %v, want ErrProfileNotFound", err)
	}
}
