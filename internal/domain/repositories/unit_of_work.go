package repositories

import (
	"context"
)

// UnitOfWork defines the interface for atomic operations
type UnitOfWork interface {
	// Do executes the given function within a transaction scope
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	// DoSerializable is Do with SERIALIZABLE isolation where the database supports it
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
	// WithLock makes row reads through the returned context lock the rows
	// they return until the transaction ends
	WithLock(ctx context.Context) context.Context
}
