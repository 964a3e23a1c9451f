package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations. Every mutation
// performed by fn through a repository joins the same database transaction.
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
