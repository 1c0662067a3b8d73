package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-api/shared/validation"
)

// AccountUsecase defines the account provisioning use cases.
type AccountUsecase interface {
	// ApproveProvider provisions a login for an approved provider. Calling it again
	// for the same email reuses the identity and merges the profile.
	ApproveProvider(ctx context.Context, params ApproveProviderParams) (*model.ProvisionedAccount, error)

	// Signup registers a new customer account and sends a welcome email.
	Signup(ctx context.Context, params SignupParams) (*SignupResult, error)
}

// ApproveProviderParams defines the parameters for provider approval.
type ApproveProviderParams struct {
	Email        string
	Password     string
	BusinessName string
	OwnerName    string
	Category     string
	Phone        string
	Address      string
}

// SignupParams defines the parameters for customer signup.
type SignupParams struct {
	FirstName   string
	LastName    string
	DateOfBirth string
	Region      string
	Email       string
	Password    string
}

// SignupResult reports the outcome of a signup.
type SignupResult struct {
	IdentityHandle   string
	WelcomeEmailSent bool
}

var (
	ErrIdentityCreationFailed = errors.New("identity creation failed")
	ErrProfileWriteFailed     = errors.New("profile write failed")
	ErrAccountAlreadyExists   = errors.New("account already exists")
)

type accountUsecase struct {
	identityRepo repository.IdentityRepository
	profileRepo  repository.ProfileRepository
	mailer       MailSender
	validator    *validation.Validator
	logger       *zerolog.Logger
}

func NewAccountUsecase(
	identityRepo repository.IdentityRepository,
	profileRepo repository.ProfileRepository,
	mailer MailSender,
	validator *validation.Validator,
	logger *zerolog.Logger,
) AccountUsecase {
	return &accountUsecase{
		identityRepo: identityRepo,
		profileRepo:  profileRepo,
		mailer:       mailer,
		validator:    validator,
		logger:       logger,
	}
}

func (u *accountUsecase) ApproveProvider(
	ctx context.Context,
	params ApproveProviderParams,
) (*model.ProvisionedAccount, error) {
	email := model.NormalizeEmail(params.Email)
	if err := u.checkCredentials(email, params.Password); err != nil {
		return nil, err
	}

	displayName := firstNonEmpty(params.BusinessName, params.OwnerName, email)

	identity, created, err := u.identityRepo.EnsureIdentity(ctx, repository.EnsureIdentityParams{
		Email:       email,
		Password:    params.Password,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityCreationFailed, err)
	}

	profile, err := u.profileRepo.UpsertProfile(ctx, &model.Profile{
		IdentityHandle: identity.Handle(),
		Role:           model.RoleProvider,
		Email:          email,
		DisplayName:    displayName,
		BusinessName:   strings.TrimSpace(params.BusinessName),
		OwnerName:      strings.TrimSpace(params.OwnerName),
		Category:       strings.TrimSpace(params.Category),
		Phone:          strings.TrimSpace(params.Phone),
		Address:        strings.TrimSpace(params.Address),
	})
	if err != nil {
		// The identity stays; approving again retries the profile write.
		return nil, fmt.Errorf("%w: %w", ErrProfileWriteFailed, err)
	}

	account := &model.ProvisionedAccount{
		IdentityHandle: identity.Handle(),
		Email:          email,
		DisplayName:    identity.DisplayName,
		Created:        created,
		Profile:        profile,
	}

	if err := u.mailer.Send(ctx, approvalEmail(email, profile.BusinessName)); err != nil {
		u.logger.Warn().Err(err).
			Str("email", email).
			Str("operation", "provider.approve").
			Msg("failed to send approval email")
		return account, nil
	}
	account.Notified = true

	return account, nil
}

func (u *accountUsecase) Signup(ctx context.Context, params SignupParams) (*SignupResult, error) {
	email := model.NormalizeEmail(params.Email)
	if err := u.checkCredentials(email, params.Password); err != nil {
		return nil, err
	}

	firstName := strings.TrimSpace(params.FirstName)
	lastName := strings.TrimSpace(params.LastName)
	displayName := strings.TrimSpace(firstName + " " + lastName)

	identity, created, err := u.identityRepo.EnsureIdentity(ctx, repository.EnsureIdentityParams{
		Email:       email,
		Password:    params.Password,
		DisplayName: displayName,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIdentityCreationFailed, err)
	}
	if !created {
		// An identity without a profile is left by an earlier signup whose profile
		// write failed; finish that signup instead of rejecting it.
		_, err := u.profileRepo.GetProfile(ctx, identity.Handle())
		switch {
		case err == nil:
			return nil, ErrAccountAlreadyExists
		case !errors.Is(err, repository.ErrProfileNotFound):
			return nil, fmt.Errorf("%w: %w", ErrProfileWriteFailed, err)
		}
	}

	if _, err := u.profileRepo.UpsertProfile(ctx, &model.Profile{
		IdentityHandle: identity.Handle(),
		Role:           model.RoleCustomer,
		Email:          email,
		DisplayName:    displayName,
		FirstName:      firstName,
		LastName:       lastName,
		DateOfBirth:    strings.TrimSpace(params.DateOfBirth),
		Region:         strings.TrimSpace(params.Region),
	}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrProfileWriteFailed, err)
	}

	result := &SignupResult{IdentityHandle: identity.Handle()}

	if err := u.mailer.Send(ctx, welcomeEmail(email, firstName)); err != nil {
		u.logger.Warn().Err(err).
			Str("email", email).
			Str("operation", "auth.signup").
			Msg("failed to send welcome email")
		return result, nil
	}
	result.WelcomeEmailSent = true

	return result, nil
}

func (u *accountUsecase) checkCredentials(email, password string) error {
	if err := u.validator.Var(email, "required,email"); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEmail, err)
	}
	if len(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
