package session

import "context"

// Gateway はリモート API の認証エンドポイントの抽象です。
type Gateway interface {
	Login(ctx context.Context, creds Credentials) (*LoginResult, error)
	Register(ctx context.Context, in RegisterInput) (*RegisteredUser, error)
	Validate(ctx context.Context) error
}
