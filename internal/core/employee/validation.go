package employee

import (
	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
	"github.com/ogurasousui/codex-directory-client/internal/platform/validation"
)

const (
	nameTags       = "required,max=100,alphaspace"
	emailTags      = "required,email"
	departmentTags = "required,department"
)

var validate = newValidator()

// newValidator は共通 validator に部署タグ department を追加します。
func newValidator() *validator.Validate {
	v := validation.New()
	_ = v.RegisterValidation("department", func(fl validator.FieldLevel) bool {
		return Department(fl.Field().String()).IsValid()
	})
	return v
}

// Validate はフォーム入力を検証します。ストア自体は送信前に検証を行いません。
func (in CreateInput) Validate() error {
	fields := make(map[string]string)
	checkField(fields, "name", in.Name, nameTags)
	checkField(fields, "email", in.Email, emailTags)
	checkField(fields, "department", string(in.Department), departmentTags)
	return fieldsError(fields)
}

// Validate は指定されたフィールドのみを検証します。
func (in UpdateInput) Validate() error {
	fields := make(map[string]string)
	if in.Name != nil {
		checkField(fields, "name", *in.Name, nameTags)
	}
	if in.Email != nil {
		checkField(fields, "email", *in.Email, emailTags)
	}
	if in.Department != nil {
		checkField(fields, "department", string(*in.Department), departmentTags)
	}
	return fieldsError(fields)
}

func checkField(fields map[string]string, field, value, tags string) {
	if tag := validation.VarField(validate, value, tags); tag != "" {
		fields[field] = fieldMessage(field, tag)
	}
}

func fieldsError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return apierror.Validation(fields)
}

func fieldMessage(field, tag string) string {
	switch field {
	case "name":
		switch tag {
		case "required":
			return "Name is required"
		case "max":
			return "Name cannot exceed 100 characters"
		default:
			return "Only alphabetic characters allowed"
		}
	case "email":
		if tag == "required" {
			return "Email is required"
		}
		return "Invalid email format"
	case "department":
		if tag == "required" {
			return "Department is required"
		}
		return "Invalid department"
	default:
		return "Invalid value"
	}
}
