package httpapi

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ogurasousui/codex-directory-client/internal/core/session"
	"github.com/ogurasousui/codex-directory-client/internal/platform/apierror"
)

// AuthGateway は認証エンドポイントに対する session.Gateway の実装です。
type AuthGateway struct {
	c *Client
}

var _ session.Gateway = (*AuthGateway)(nil)

// NewAuthGateway は AuthGateway を生成します。
func NewAuthGateway(c *Client) *AuthGateway {
	return &AuthGateway{c: c}
}

// Login は POST /auth/login を呼び出します。
func (g *AuthGateway) Login(ctx context.Context, creds session.Credentials) (*session.LoginResult, error) {
	var out session.LoginResult
	if _, err := g.c.do(ctx, call{
		method:   http.MethodPost,
		route:    "/auth/login",
		path:     "/auth/login",
		body:     creds,
		out:      &out,
		classify: loginStatus,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register は POST /auth/register を呼び出します。
func (g *AuthGateway) Register(ctx context.Context, in session.RegisterInput) (*session.RegisteredUser, error) {
	var out session.RegisteredUser
	if _, err := g.c.do(ctx, call{
		method:   http.MethodPost,
		route:    "/auth/register",
		path:     "/auth/register",
		body:     in,
		out:      &out,
		classify: registerStatus,
	}); err != nil {
		return nil, err
	}
	return &out, nil
}

// Validate は GET /auth/validate を呼び出します。
func (g *AuthGateway) Validate(ctx context.Context) error {
	_, err := g.c.do(ctx, call{
		method: http.MethodGet,
		route:  "/auth/validate",
		path:   "/auth/validate",
		auth:   true,
	})
	return err
}

// loginStatus は 401 を資格情報の誤りとし、それ以外をサーバーエラーとして扱います。
func loginStatus(status int, serverMessage string) *apierror.Error {
	if status == http.StatusUnauthorized {
		return apierror.FromStatus(status, "")
	}
	msg := serverMessage
	if msg == "" {
		msg = fmt.Sprintf("Server error: %d", status)
	}
	return &apierror.Error{Kind: apierror.KindServer, Status: status, Message: msg}
}

func registerStatus(status int, serverMessage string) *apierror.Error {
	msg := serverMessage
	if msg == "" {
		msg = fmt.Sprintf("Registration failed: %d", status)
	}
	kind := apierror.KindServer
	if status == http.StatusUnauthorized {
		kind = apierror.KindAuth
	}
	return &apierror.Error{Kind: kind, Status: status, Message: msg}
}
