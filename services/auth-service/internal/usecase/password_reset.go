package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/clock"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/model"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/repository"
	"github.com/vasapolrittideah/credential-api/shared/mailer"
	"github.com/vasapolrittideah/credential-api/shared/validation"
)

// MinPasswordLength is the shortest password accepted for any new credential.
const MinPasswordLength = 6

var (
	ErrInvalidEmail           = errors.New("invalid email address")
	ErrWeakPassword           = errors.New("password is too short")
	ErrAttemptNotFound        = errors.New("reset attempt not found")
	ErrCodeMismatch           = errors.New("reset code does not match")
	ErrCodeExpired            = errors.New("reset code has expired")
	ErrUnknownAccount         = errors.New("no account for reset email")
	ErrMailDeliveryFailed     = errors.New("mail delivery failed")
	ErrCredentialUpdateFailed = errors.New("credential update failed")
)

// MailSender delivers an email within a bounded time.
type MailSender interface {
	Send(ctx context.Context, email mailer.Email) error
}

// CredentialUpdater resolves an account by email and replaces its password.
type CredentialUpdater interface {
	GetIdentityByEmail(ctx context.Context, email string) (*model.Identity, error)
	SetPassword(ctx context.Context, handle, newPassword string) error
}

// PasswordResetUsecase defines the reset code lifecycle: request, verify, complete.
type PasswordResetUsecase interface {
	// RequestPasswordReset issues a fresh code for email, replacing any pending one,
	// and mails it. The attempt is rolled back if the mail cannot be delivered.
	RequestPasswordReset(ctx context.Context, email string) (*model.ResetAttempt, error)

	// VerifyResetCode checks email and code without consuming the attempt.
	VerifyResetCode(ctx context.Context, email, code string) error

	// ResetPassword checks email and code, consumes the attempt and sets the new password.
	ResetPassword(ctx context.Context, email, code, newPassword string) error

	// PurgeExpiredAttempts removes attempts that can no longer be used.
	PurgeExpiredAttempts(ctx context.Context) (int64, error)
}

type passwordResetUsecase struct {
	attemptRepo   repository.ResetAttemptRepository
	credentials   CredentialUpdater
	codes         CodeGenerator
	mailer        MailSender
	clock         clock.Clock
	validator     *validation.Validator
	logger        *zerolog.Logger
	codeExpiresIn time.Duration
}

// NewPasswordResetUsecase creates a new instance of PasswordResetUsecase.
func NewPasswordResetUsecase(
	attemptRepo repository.ResetAttemptRepository,
	credentials CredentialUpdater,
	codes CodeGenerator,
	mailer MailSender,
	clock clock.Clock,
	validator *validation.Validator,
	logger *zerolog.Logger,
	codeExpiresIn time.Duration,
) PasswordResetUsecase {
	return &passwordResetUsecase{
		attemptRepo:   attemptRepo,
		credentials:   credentials,
		codes:         codes,
		mailer:        mailer,
		clock:         clock,
		validator:     validator,
		logger:        logger,
		codeExpiresIn: codeExpiresIn,
	}
}

func (u *passwordResetUsecase) RequestPasswordReset(ctx context.Context, email string) (*model.ResetAttempt, error) {
	email = model.NormalizeEmail(email)
	if err := u.validator.Var(email, "required,email"); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidEmail, err)
	}

	code, err := u.codes.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate reset code: %w", err)
	}

	attempt := &model.ResetAttempt{
		Email:     email,
		Code:      code,
		ExpiresAt: u.clock.Now().Add(u.codeExpiresIn),
	}

	if err := u.attemptRepo.SaveAttempt(ctx, attempt); err != nil {
		return nil, fmt.Errorf("save reset attempt: %w", err)
	}

	if err := u.mailer.Send(ctx, resetCodeEmail(email, code, u.codeExpiresIn)); err != nil {
		// Only our own attempt is removed; a newer request for the same email stays.
		if _, rbErr := u.attemptRepo.DeleteAttemptIfMatch(context.WithoutCancel(ctx), attempt); rbErr != nil {
			u.logger.Error().Err(rbErr).
				Str("email", email).
				Str("operation", "reset.request").
				Msg("failed to roll back reset attempt")
		}
		return nil, fmt.Errorf("%w: %w", ErrMailDeliveryFailed, err)
	}

	return attempt, nil
}

func (u *passwordResetUsecase) VerifyResetCode(ctx context.Context, email, code string) error {
	_, err := u.validAttempt(ctx, model.NormalizeEmail(email), code)
	return err
}

func (u *passwordResetUsecase) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	email = model.NormalizeEmail(email)

	if len(newPassword) < MinPasswordLength {
		return ErrWeakPassword
	}

	attempt, err := u.validAttempt(ctx, email, code)
	if err != nil {
		return err
	}

	// Consume before updating so two concurrent completions cannot both succeed.
	deleted, err := u.attemptRepo.DeleteAttemptIfMatch(ctx, attempt)
	if err != nil {
		return fmt.Errorf("consume reset attempt: %w", err)
	}
	if !deleted {
		return ErrAttemptNotFound
	}

	identity, err := u.credentials.GetIdentityByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrIdentityNotFound) {
			return ErrUnknownAccount
		}
		return fmt.Errorf("%w: %w", ErrCredentialUpdateFailed, err)
	}

	if err := u.credentials.SetPassword(ctx, identity.Handle(), newPassword); err != nil {
		return fmt.Errorf("%w: %w", ErrCredentialUpdateFailed, err)
	}

	return nil
}

func (u *passwordResetUsecase) PurgeExpiredAttempts(ctx context.Context) (int64, error) {
	return u.attemptRepo.DeleteExpiredAttempts(ctx, u.clock.Now())
}

// validAttempt returns the stored attempt if code matches and it has not expired.
func (u *passwordResetUsecase) validAttempt(ctx context.Context, email, code string) (*model.ResetAttempt, error) {
	attempt, err := u.attemptRepo.GetAttempt(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrResetAttemptNotFound) {
			return nil, ErrAttemptNotFound
		}
		return nil, err
	}

	if attempt.Code != code {
		return nil, ErrCodeMismatch
	}

	if attempt.ExpiredAt(u.clock.Now()) {
		return nil, ErrCodeExpired
	}

	return attempt, nil
}

// IsInvalidCode reports whether err is one of the reset failures that callers
// must not be able to tell apart.
func IsInvalidCode(err error) bool {
	return errors.Is(err, ErrAttemptNotFound) ||
		errors.Is(err, ErrCodeMismatch) ||
		errors.Is(err, ErrCodeExpired) ||
		errors.Is(err, ErrUnknownAccount)
}
