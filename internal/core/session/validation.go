package session

import (
	"github.com/ogurasousui/codex-directory-client/internal/platform/validation"
)

var validate = validation.New()

// RegisterForm は登録画面の入力です。確認用パスワードは送信しません。
type RegisterForm struct {
	FirstName       string `json:"firstName" validate:"required,max=50,alphaspace"`
	LastName        string `json:"lastName" validate:"required,max=50,alphaspace"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=6,strongpassword"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// Validate はフォーム入力を検証します。
func (f RegisterForm) Validate() error {
	return validation.ToError(validate.Struct(f), registerMessage)
}

// Input は送信用の RegisterInput を返します。
func (f RegisterForm) Input() RegisterInput {
	return RegisterInput{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Password:  f.Password,
	}
}

type loginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Validate はログイン入力を検証します。
func (c Credentials) Validate() error {
	return validation.ToError(validate.Struct(loginForm(c)), registerMessage)
}

func registerMessage(field, tag string) string {
	switch field {
	case "firstName", "lastName":
		label := "First name"
		if field == "lastName" {
			label = "Last name"
		}
		switch tag {
		case "required":
			return label + " is required"
		case "max":
			return label + " cannot exceed 50 characters"
		default:
			return "Only alphabetic characters allowed"
		}
	case "email":
		if tag == "required" {
			return "Email is required"
		}
		return "Invalid email format"
	case "password":
		switch tag {
		case "required":
			return "Password is required"
		case "min":
			return "Password must be at least 6 characters"
		default:
			return "Password must contain at least one uppercase letter, one lowercase letter, one number and one special character"
		}
	case "confirmPassword":
		if tag == "required" {
			return "Please confirm your password"
		}
		return "Passwords must match"
	default:
		return "Invalid value"
	}
}
