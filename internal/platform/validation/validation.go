// Package validation はフォーム入力検証に使う validator の共通設定を提供します。
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
)

var (
	alphaSpacePattern = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	passwordPattern   = regexp.MustCompile(`^[A-Za-z\d@$!%*?&]{6,}$`)
	passwordSpecials  = "@$!%*?&"
)

// New は独自タグ alphaspace と strongpassword を登録した validator を返します。
// フィールド名には json タグの名前を用います。
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("alphaspace", func(fl validator.FieldLevel) bool {
		return alphaSpacePattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	return v
}

// IsStrongPassword は英大文字・英小文字・数字・記号をそれぞれ含むかを判定します。
func IsStrongPassword(pw string) bool {
	if !passwordPattern.MatchString(pw) {
		return false
	}
	var lower, upper, digit, special bool
	for _, r := range pw {
		switch {
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return lower && upper && digit && special
}

// MessageFunc はフィールド名と失敗したタグから表示文言を返します。
type MessageFunc func(field, tag string) string

// ToError は validator のエラーを apierror.KindValidation に変換します。
// フィールドごとに最初の失敗だけを残します。
func ToError(err error, message MessageFunc) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		if _, ok := fields[fe.Field()]; ok {
			continue
		}
		fields[fe.Field()] = message(fe.Field(), fe.Tag())
	}
	return apierror.Validation(fields)
}

// VarField は単一の値を検証し、失敗したタグを返します。成功時は空文字です。
func VarField(v *validator.Validate, value any, tags string) string {
	err := v.Var(value, tags)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Tag()
	}
	return tags
}
