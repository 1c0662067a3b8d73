package handler

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/hlog"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/usecase"
)

func (h *authHTTPHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req payload.RequestPasswordResetRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	_, err := h.passwordResetUsecase.RequestPasswordReset(r.Context(), req.Email)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidEmail):
			writeBadRequest(w, err)
		case errors.Is(err, usecase.ErrMailDeliveryFailed):
			hlog.FromRequest(r).Error().Err(err).
				Str("email", req.Email).
				Str("operation", "reset.request").
				Msg("failed to deliver reset code")
			writeError(w, http.StatusInternalServerError, msgMailFailed)
		default:
			hlog.FromRequest(r).Error().Err(err).
				Str("email", req.Email).
				Str("operation", "reset.request").
				Msg("failed to request password reset")
			writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
		}
		return
	}

	writeMessage(w, "reset code sent")
}

func (h *authHTTPHandler) VerifyResetCode(w http.ResponseWriter, r *http.Request) {
	var req payload.VerifyResetCodeRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	err := h.passwordResetUsecase.VerifyResetCode(r.Context(), req.Email, req.Code)
	if err != nil {
		h.writeResetError(w, r, err, req.Email, "reset.verify")
		return
	}

	writeMessage(w, "code verified")
}

func (h *authHTTPHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req payload.CompletePasswordResetRequest
	if err := h.decodeAndValidate(w, r, &req); err != nil {
		writeBadRequest(w, err)
		return
	}

	err := h.passwordResetUsecase.ResetPassword(r.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		h.writeResetError(w, r, err, req.Email, "reset.complete")
		return
	}

	writeMessage(w, "password has been reset")
}

// writeResetError maps the verify and complete failures. The invalid-code family
// shares one answer so callers cannot tell which check failed.
func (h *authHTTPHandler) writeResetError(w http.ResponseWriter, r *http.Request, err error, email, operation string) {
	switch {
	case usecase.IsInvalidCode(err):
		hlog.FromRequest(r).Info().Err(err).
			Str("email", email).
			Str("operation", operation).
			Msg("rejected reset code")
		writeError(w, http.StatusBadRequest, msgInvalidCode)
	case errors.Is(err, usecase.ErrWeakPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).
			Str("email", email).
			Str("operation", operation).
			Msg("failed to process reset code")
		writeError(w, http.StatusInternalServerError, msgSomethingWentWrong)
	}
}
