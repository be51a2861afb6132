package session

import (
	"encoding/json"
	"fmt"
)

// Credentials はログイン時に送信する認証情報です。
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// User は認証済み利用者の最小限の識別情報です。
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
}

// RegisterInput は利用者登録時に送信する内容です。
type RegisterInput struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// LoginResult はログイン応答です。
type LoginResult struct {
	Token string `json:"token"`
}

// RegisteredUser は登録応答として返る利用者レコードです。
type RegisteredUser struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email"`
}

// EncodeUser は永続化用に User を直列化します。
func EncodeUser(u User) (string, error) {
	b, err := json.Marshal(u)
	if err != nil {
		return "", fmt.Errorf("session: encode user: %w", err)
	}
	return string(b), nil
}

// DecodeUser は永続化された User を復元します。
func DecodeUser(raw string) (User, error) {
	var u User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return User{}, fmt.Errorf("session: decode user: %w", err)
	}
	return u, nil
}
