package validation

import (
	"errors"
	"testing"

	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
)

func TestIsStrongPassword(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"Passw0rd!": true,
		"Ab1@xy":    true,
		"password":  false,
		"PASSW0RD!": false,
		"Password!": false,
		"Passw0rd":  false,
		"Pa0!":      false,
		"Passw0rd#": false,
	}
	for pw, want := range tests {
		if got := IsStrongPassword(pw); got != want {
			t.Fatalf("IsStrongPassword(%q): want %v, got %v", pw, want, got)
		}
	}
}

type sample struct {
	Name  string `json:"name" validate:"required,alphaspace"`
	Email string `json:"email" validate:"required,email"`
	Skip  string `json:"-"`
}

func TestToError_UsesJSONNames(t *testing.T) {
	t.Parallel()

	v := New()
	err := ToError(v.Struct(sample{Name: "R2"}), func(field, tag string) string {
		return field + ":" + tag
	})

	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected apierror, got %v", err)
	}
	if apiErr.Kind != apierror.KindValidation {
		t.Fatalf("unexpected kind: %s", apiErr.Kind)
	}
	want := map[string]string{"name": "name:alphaspace", "email": "email:required"}
	for k, v := range want {
		if apiErr.Fields[k] != v {
			t.Fatalf("field %s: want %q, got %q", k, v, apiErr.Fields[k])
		}
	}
}

func TestToError_Nil(t *testing.T) {
	t.Parallel()

	if err := ToError(nil, nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestVarField(t *testing.T) {
	t.Parallel()

	v := New()
	if tag := VarField(v, "Ann Lee", "required,alphaspace"); tag != "" {
		t.Fatalf("expected success, got %q", tag)
	}
	if tag := VarField(v, "", "required,alphaspace"); tag != "required" {
		t.Fatalf("expected required, got %q", tag)
	}
	if tag := VarField(v, "not-an-email", "required,email"); tag != "email" {
		t.Fatalf("expected email, got %q", tag)
	}
}
