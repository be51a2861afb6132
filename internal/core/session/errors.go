package session

import "errors"

var (
	// ErrNotAuthenticated は認証が必要な操作を未ログインで呼び出した場合に返却されます。
	ErrNotAuthenticated = errors.New("session: not authenticated")
	// ErrInvalidLoginResponse はログイン応答にトークンが含まれていない場合に返却されます。
	ErrInvalidLoginResponse = errors.New("session: login response has no token")
)

// 操作結果として通知する文言です。
const (
	MessageLoginSucceeded  = "Login successful!"
	MessageLoginFailed     = "Login failed"
	MessageInvalidResponse = "Invalid response from server"
	MessageRegistered      = "Registration successful! Please login."
	MessageRegisterFailed  = "Registration failed"
	MessageLoggedOut       = "You have been logged out"
	MessageSessionExpired  = "Your session has expired. Please login again."
	MessagePersistFailed   = "Could not save session"
	MessageValidateFailed  = "Could not validate session"
)
