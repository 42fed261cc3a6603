package repositories

import (
	"context"
	"database/sql"
	"fmt"

	domainerrors "barberq.backend/internal/domain/errors"
	domainRepos "barberq.backend/internal/domain/repositories"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type contextKey string

const (
	txKey   contextKey = "tx_db"
	lockKey contextKey = "tx_lock"
)

var commitTx = func(tx *gorm.DB) error { return tx.Commit().Error }

// UnitOfWorkImpl implements UnitOfWork using GORM
type UnitOfWorkImpl struct {
	db *gorm.DB
}

// NewUnitOfWork creates a new UnitOfWork
func NewUnitOfWork(db *gorm.DB) *UnitOfWorkImpl {
	return &UnitOfWorkImpl{db: db}
}

var _ domainRepos.UnitOfWork = (*UnitOfWorkImpl)(nil)

// Do executes the given function within a transaction scope. A call made
// with a transaction already in ctx joins it.
func (u *UnitOfWorkImpl) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.run(ctx, nil, fn)
}

// DoSerializable is Do at SERIALIZABLE isolation. A serialization failure
// raised by fn or at commit comes back as ErrQueueConflict so the caller can
// retry the whole transaction.
func (u *UnitOfWorkImpl) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	return u.run(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable}, fn)
}

func (u *UnitOfWorkImpl) run(ctx context.Context, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey).(*gorm.DB); ok {
		return fn(ctx)
	}

	tx := u.db.WithContext(ctx).Begin(opts)
	if tx.Error != nil {
		return fmt.Errorf("failed to begin transaction: %w", tx.Error)
	}

	serializable := opts != nil && opts.Isolation == sql.LevelSerializable
	txCtx := context.WithValue(ctx, txKey, tx)
	if err := fn(txCtx); err != nil {
		tx.Rollback()
		if serializable && isSerializationFailure(err) {
			return fmt.Errorf("%w: %w", domainerrors.ErrQueueConflict, err)
		}
		return err
	}

	if err := commitTx(tx); err != nil {
		tx.Rollback()
		if serializable && isSerializationFailure(err) {
			return fmt.Errorf("%w: commit: %w", domainerrors.ErrQueueConflict, err)
		}
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// WithLock marks ctx so row reads made through it take FOR UPDATE locks
func (u *UnitOfWorkImpl) WithLock(ctx context.Context) context.Context {
	return context.WithValue(ctx, lockKey, true)
}

// GetDB returns the transaction in ctx, or the base handle
func (u *UnitOfWorkImpl) GetDB(ctx context.Context) *gorm.DB {
	return GetDB(ctx, u.db)
}

// GetDB is the package helper every repository reads its handle through
func GetDB(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	db := fallback
	if tx, ok := ctx.Value(txKey).(*gorm.DB); ok {
		db = tx
	}
	db = db.WithContext(ctx)
	if locked, _ := ctx.Value(lockKey).(bool); locked {
		db = db.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return db
}
