// Package apierror はリモート API 呼び出しの失敗を分類する構造化エラーを提供します。
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind は失敗の分類です。
type Kind string

const (
	KindNetwork    Kind = "network"
	KindAuth       Kind = "auth"
	KindServer     Kind = "server"
	KindNotFound   Kind = "not_found"
	KindValidation Kind = "validation"
)

// 利用者に表示する既定メッセージです。
const (
	MessageNetwork            = "No response from server. Check your network connection."
	MessageInvalidCredentials = "Invalid email or password"
	MessageNotFound           = "Resource not found"
	MessageValidation         = "Validation failed"
)

// Error は分類済みの失敗を表します。Message は利用者にそのまま表示できる文言です。
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Cause   error
	Fields  map[string]string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Network は応答を得られなかった失敗を生成します。
func Network(cause error) *Error {
	return &Error{Kind: KindNetwork, Message: MessageNetwork, Cause: cause}
}

// Validation はフィールド単位の入力エラーを生成します。
func Validation(fields map[string]string) *Error {
	return &Error{Kind: KindValidation, Message: MessageValidation, Fields: fields}
}

// FromStatus は HTTP ステータスとサーバーが返したメッセージから失敗を分類します。
// serverMessage が空の場合は分類ごとの既定文言を用います。
func FromStatus(status int, serverMessage string) *Error {
	switch {
	case status == http.StatusUnauthorized:
		return &Error{Kind: KindAuth, Status: status, Message: MessageInvalidCredentials}
	case status == http.StatusNotFound:
		msg := serverMessage
		if msg == "" {
			msg = MessageNotFound
		}
		return &Error{Kind: KindNotFound, Status: status, Message: msg}
	default:
		msg := serverMessage
		if msg == "" {
			msg = fmt.Sprintf("Server error: %d", status)
		}
		return &Error{Kind: KindServer, Status: status, Message: msg}
	}
}

// KindOf は err の分類を返します。分類されていないエラーは KindServer として扱います。
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindServer
}

// Is は err が指定の分類かどうかを返します。
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// MessageOf は利用者向けのメッセージを取り出します。
// 分類されていないエラーでは fallback を返します。
func MessageOf(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
