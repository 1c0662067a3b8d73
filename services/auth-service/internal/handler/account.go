package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/usecase"
)

func (h *authHTTPHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req payload.SignupRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	result, err := h.accountUsecase.Signup(r.Context(), usecase.SignupParams{
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		DateOfBirth: req.DOB,
		Region:      req.Region,
		Email:       req.Email,
		Password:    req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail), errors.Is(err, usecase.ErrWeakPassword):
			writeBadRequest(w, err)
		case errors.Is(err, usecase.ErrAccountAlreadyExists):
			writeError(w, http.StatusConflict, "an account with this email already exists")
		default:
			hlog.FromRequest(r).Error().Err(err).
				Str("email", req.Email).
				Str("operation", "auth.signup").
				Msg("failed to sign up")
			writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
		}
		return
	}

	if !result.WelcomeEmailSent {
		writeMessage(w, "account created, your welcome email may be delayed")
		return
	}

	writeMessage(w, "account created")
}

func (h *authHTTPHandler) ApproveProvider(w http.ResponseWriter, r *http.Request) {
	var req payload.ApproveProviderRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	account, err := h.accountUsecase.ApproveProvider(r.Context(), usecase.ApproveProviderParams{
		Email:        req.Email,
		Password:     req.Password,
		BusinessName: req.BusinessName,
		OwnerName:    req.OwnerName,
		Category:     req.Category,
		Phone:        req.Phone,
		Address:      req.Address,
	})
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail), errors.Is(err, usecase.ErrWeakPassword):
			writeBadRequest(w, err)
		case errors.Is(err, usecase.ErrIdentityCreationFailed):
			hlog.FromRequest(r).Error().Err(err).
				Str("email", req.Email).
				Str("operation", "provider.approve").
				Msg("failed to create identity")
			writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
		case errors.Is(err, usecase.ErrProfileWriteFailed):
			hlog.FromRequest(r).Error().Err(err).
				Str("email", req.Email).
				Str("operation", "provider.approve").
				Msg("failed to write provider profile")
			writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
		default:
			hlog.FromRequest(r).Error().Err(err).
				Str("email", req.Email).
				Str("operation", "provider.approve").
				Msg("failed to approve provider")
			writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
		}
		return
	}

	writeJSON(w, http.StatusOK, payload.ApproveProviderResponse{
		Message:        "provider approved",
		IdentityHandle: account.IdentityHandle,
	})
}
