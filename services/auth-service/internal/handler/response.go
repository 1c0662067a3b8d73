package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/vasapolrittideah/credential-api/services/auth-service/internal/payload"
	"github.com/vasapolrittideah/credential-api/shared/validation"
)

const maxBodyBytes = 1 << 20

var errInvalidBody = errors.New("invalid request body")

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, payload.MessageResponse{Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, payload.ErrorResponse{Error: message})
}

// writeBadRequest answers 400 with the translated validation messages when err
// carries them.
func writeBadRequest(w http.ResponseWriter, err error) {
	var verr *validation.Error
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{Error: verr.Error(), Fields: verr.Fields})
		return
	}
	writeError(w, http.StatusBadRequest, err.Error())
}

// decodeAndValidate reads a single JSON object from the body into dst and validates it.
func (h *authHTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		return errInvalidBody
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errInvalidBody
	}

	if n, ok := dst.(normalizer); ok {
		n.Normalize()
	}

	return h.validator.Struct(dst)
}

// normalizer is implemented by payloads that clean their fields before validation.
type normalizer interface {
	Normalize()
}
