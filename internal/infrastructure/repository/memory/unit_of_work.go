package memory

import "context"

// UnitOfWork runs the function directly. The in-memory repositories lock per
// operation and serve a single process, so there is no transaction to open.
type UnitOfWork struct{}

func NewUnitOfWork() *UnitOfWork {
	return &UnitOfWork{}
}

func (UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
