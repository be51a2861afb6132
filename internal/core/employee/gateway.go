package employee

import "context"

// Gateway はリモート API に対する社員 CRUD の抽象です。
type Gateway interface {
	List(ctx context.Context) ([]Employee, error)
	Get(ctx context.Context, id ID) (*Employee, error)
	Create(ctx context.Context, in CreateInput) (*Employee, error)
	Update(ctx context.Context, id ID, in UpdateInput) (*Employee, error)
	Delete(ctx context.Context, id ID) (*DeleteResult, error)
}
