package session

import (
	"errors"
	"strings"
	"testing"

	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
)

func validForm() RegisterForm {
	return RegisterForm{
		FirstName:       "Jane",
		LastName:        "Doe",
		Email:           "jane@example.com",
		Password:        "Passw0rd!",
		ConfirmPassword: "Passw0rd!",
	}
}

func TestRegisterForm_Validate_Success(t *testing.T) {
	t.Parallel()

	f := validForm()
	if err := f.Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	in := f.Input()
	if in.Email != f.Email || in.Password != f.Password || in.FirstName != "Jane" || in.LastName != "Doe" {
		t.Fatalf("unexpected input: %+v", in)
	}
}

func TestRegisterForm_Validate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*RegisterForm)
		field  string
		want   string
	}{
		{"missing first name", func(f *RegisterForm) { f.FirstName = "" }, "firstName", "First name is required"},
		{"long last name", func(f *RegisterForm) { f.LastName = strings.Repeat("a", 51) }, "lastName", "Last name cannot exceed 50 characters"},
		{"digits in name", func(f *RegisterForm) { f.FirstName = "J4ne" }, "firstName", "Only alphabetic characters allowed"},
		{"bad email", func(f *RegisterForm) { f.Email = "jane" }, "email", "Invalid email format"},
		{"short password", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "Ab1!", "Ab1!" }, "password", "Password must be at least 6 characters"},
		{"weak password", func(f *RegisterForm) { f.Password, f.ConfirmPassword = "password", "password" }, "password", "Password must contain at least one uppercase letter, one lowercase letter, one number and one special character"},
		{"mismatch", func(f *RegisterForm) { f.ConfirmPassword = "Passw0rd?" }, "confirmPassword", "Passwords must match"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := validForm()
			tt.mutate(&f)
			var apiErr *apierror.Error
			if err := f.Validate(); !errors.As(err, &apiErr) || apiErr.Kind != apierror.KindValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := apiErr.Fields[tt.field]; got != tt.want {
				t.Fatalf("field %s: want %q, got %q (all: %v)", tt.field, tt.want, got, apiErr.Fields)
			}
		})
	}
}

func TestCredentials_Validate(t *testing.T) {
	t.Parallel()

	if err := (Credentials{Email: "a@b.com", Password: "x"}).Validate(); err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}
	err := Credentials{Email: "a@b.com"}.Validate()
	var apiErr *apierror.Error
	if !errors.As(err, &apiErr) || apiErr.Fields["password"] != "Password is required" {
		t.Fatalf("expected password required, got %v", err)
	}
}

func TestEncodeDecodeUser(t *testing.T) {
	t.Parallel()

	raw, err := EncodeUser(User{Email: "a@b.com"})
	if err != nil {
		t.Fatalf("EncodeUser returned error: %v", err)
	}
	if raw != `{"email":"a@b.com"}` {
		t.Fatalf("unexpected encoding: %s", raw)
	}
	if _, err := DecodeUser("nope"); err == nil {
		t.Fatal("expected decode error")
	}
}
