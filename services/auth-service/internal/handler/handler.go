package handler

import (
	"github.com/go-chi/chi/v5"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/usecase"
	"github.com/vasapolrittideah/credential-api/shared/validation"
)

const (
	msgSomethingWentWrong = "something went wrong"
	msgInvalidCode        = "invalid or expired code"
	msgMailFailed         = "unable to send email, please try again later"
)

type authHTTPHandler struct {
	passwordResetUsecase usecase.PasswordResetUsecase
	accountUsecase       usecase.AccountUsecase
	validator            *validation.Validator
}

// NewAuthHTTPHandler mounts the credential API on router.
func NewAuthHTTPHandler(
	router chi.Router,
	passwordResetUsecase usecase.PasswordResetUsecase,
	accountUsecase usecase.AccountUsecase,
	validator *validation.Validator,
) {
	h := &authHTTPHandler{
		passwordResetUsecase: passwordResetUsecase,
		accountUsecase:       accountUsecase,
		validator:            validator,
	}

	router.Route("/auth", func(r chi.Router) {
		r.Post("/reset/request", h.RequestPasswordReset)
		r.Post("/reset/verify", h.VerifyResetCode)
		r.Post("/reset/complete", h.ResetPassword)
		r.Post("/signup", h.Signup)
	})
	router.Post("/provider/approve", h.ApproveProvider)
}
