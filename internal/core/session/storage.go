package session

import "context"

// 永続化キーです。token と user は常に同時に書き込み・削除されます。
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// Persisted は永続化領域に保存されるセッションです。User は直列化済みの JSON です。
type Persisted struct {
	Token string
	User  string
}

// Empty は保存済みのトークンがないかどうかを返します。
func (p Persisted) Empty() bool {
	return p.Token == ""
}

// Storage はセッションの永続化領域です。実装は Save と Clear で両キーを原子的に扱います。
type Storage interface {
	Load(ctx context.Context) (Persisted, error)
	Save(ctx context.Context, p Persisted) error
	Clear(ctx context.Context) error
}
