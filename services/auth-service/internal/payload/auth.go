package payload

import "strings"

type RequestPasswordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyResetCodeRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code"  validate:"required"`
}

type CompletePasswordResetRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Code     string `json:"code"     validate:"required"`
	Password string `json:"password" validate:"required,min=6"`
}

type SignupRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
	DOB       string `json:"dob"       validate:"required"`
	Region    string `json:"region"    validate:"required"`
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
}

type ApproveProviderRequest struct {
	Email        string `json:"email"        validate:"required,email"`
	Password     string `json:"password"     validate:"required,min=6"`
	BusinessName string `json:"businessName"`
	OwnerName    string `json:"ownerName"`
	Category     string `json:"category"`
	Phone        string `json:"phone"`
	Address      string `json:"address"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ApproveProviderResponse struct {
	Message        string `json:"message"`
	IdentityHandle string `json:"identityHandle"`
}

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// Normalize trims surrounding whitespace from the email before validation.
func (r *RequestPasswordResetRequest) Normalize() { r.Email = strings.TrimSpace(r.Email) }

func (r *VerifyResetCodeRequest) Normalize() { r.Email = strings.TrimSpace(r.Email) }

func (r *CompletePasswordResetRequest) Normalize() { r.Email = strings.TrimSpace(r.Email) }

func (r *SignupRequest) Normalize() { r.Email = strings.TrimSpace(r.Email) }

func (r *ApproveProviderRequest) Normalize() { r.Email = strings.TrimSpace(r.Email) }
