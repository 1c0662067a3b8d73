package validation

import (
	"errors"
	"strings"
	"testing"
)

type signupBody struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

func TestValidator_Struct(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatalf("NewValidator: %v", err)
	}

	tests := []struct {
		name       string
		body       signupBody
		wantFields []string
	}{
		{name: "valid", body: signupBody{Email: "a@b.com", Password: "secret1"}},
		{name: "missing both", body: signupBody{}, wantFields: []string{"email", "password"}},
		{name: "bad email", body: signupBody{Email: "nope", Password: "secret1"}, wantFields: []string{"email"}},
		{name: "short password", body: signupBody{Email: "a@b.com", Password: "12345"}, wantFields: []string{"password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.body)
			if len(tt.wantFields) == 0 {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("err = %v, want *Error", err)
			}
			if len(verr.Fields) != len(tt.wantFields) {
				t.Fatalf("fields = %v, want %v", verr.Fields, tt.wantFields)
			}
			for _, f := range tt.wantFields {
				msg, ok := verr.Fields[f]
				if !ok {
					t.Fatalf("missing field %q in %v", f, verr.Fields)
				}
				if !strings.Contains(msg, f) {
					t.Errorf("message %q does not name field %q", msg, f)
				}
			}
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v, err := NewValidator()
	if err != nil {
		t.Fatal(err)
	}

	if err := v.Var("user@example.com", "required,email"); err != nil {
		t.Fatalf("valid email rejected: %v", err)
	}
	if err := v.Var("user@", "required,email"); err == nil {
		t.Fatal("invalid email accepted")
	}
	if err := v.Var("", "required,email"); err == nil {
		t.Fatal("empty email accepted")
	}
}
