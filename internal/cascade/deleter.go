// Package cascade deletes a catalog subtree (brand, bike model, or
// category together with everything beneath it) as one logical operation.
// Two strategies implement the same interface: one wraps the level-by-level
// deletes in a single transaction, the other runs them sequentially when
// the deployment cannot give transactional guarantees. The strategy is
// picked once, by a capability probe at startup.
package cascade

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	apperrors "github.com/myspares/catalog-platform/internal/errors"
)

// RootKind names the level a subtree is rooted at.
type RootKind string

const (
	RootBrand    RootKind = "brand"
	RootModel    RootKind = "model"
	RootCategory RootKind = "category"
)

// SubtreeDeleter removes a catalog subtree. Implementations return a
// not-found error when the root does not exist, and only report success
// once the root row itself is confirmed deleted.
type SubtreeDeleter interface {
	DeleteSubtree(ctx context.Context, kind RootKind, rootID uuid.UUID) error
}

// statements per level, parameterized on the root. Products go first,
// then categories, then models, then the root row.
type level struct {
	table string
	query string
}

func levelsFor(kind RootKind) ([]level, string) {
	switch kind {
	case RootBrand:
		return []level{
			{"products", `DELETE FROM products WHERE brand_id = $1`},
			{"categories", `DELETE FROM categories WHERE brand_id = $1`},
			{"bike_models", `DELETE FROM bike_models WHERE brand_id = $1`},
			{"brands", `DELETE FROM brands WHERE id = $1`},
		}, `SELECT EXISTS(SELECT 1 FROM brands WHERE id = $1)`
	case RootModel:
		return []level{
			{"products", `DELETE FROM products WHERE model_id = $1`},
			{"categories", `DELETE FROM categories WHERE model_id = $1`},
			{"bike_models", `DELETE FROM bike_models WHERE id = $1`},
		}, `SELECT EXISTS(SELECT 1 FROM bike_models WHERE id = $1)`
	default:
		return []level{
			{"products", `DELETE FROM products WHERE category_id = $1`},
			{"categories", `DELETE FROM categories WHERE id = $1`},
		}, `SELECT EXISTS(SELECT 1 FROM categories WHERE id = $1)`
	}
}

func resolveRoot(ctx context.Context, db *sql.DB, kind RootKind, rootID uuid.UUID) error {
	_, existsQuery := levelsFor(kind)

	var exists bool
	if err := db.QueryRowContext(ctx, existsQuery, rootID).Scan(&exists); err != nil {
		return apperrors.DatabaseError(fmt.Sprintf("Failed to resolve %s", kind)).WithError(err)
	}

	if !exists {
		return apperrors.NotFoundError(fmt.Sprintf("%s not found", kind))
	}

	return nil
}

// AtomicSubtreeDeleter runs all levels in one transaction: either the
// whole subtree goes or none of it does. The transaction attempt is
// bounded by txTimeout so a stuck lock cannot hang the calling request.
type AtomicSubtreeDeleter struct {
	DB        *sql.DB
	TxTimeout time.Duration
}

func (d *AtomicSubtreeDeleter) DeleteSubtree(ctx context.Context, kind RootKind, rootID uuid.UUID) error {
	if err := resolveRoot(ctx, d.DB, kind, rootID); err != nil {
		return err
	}

	txCtx, cancel := context.WithTimeout(ctx, d.TxTimeout)
	defer cancel()

	tx, err := d.DB.BeginTx(txCtx, nil)
	if err != nil {
		return apperrors.DatabaseError("Failed to begin subtree delete transaction").WithError(err)
	}

	levels, _ := levelsFor(kind)

	for _, lvl := range levels {
		if _, err := tx.ExecContext(txCtx, lvl.query, rootID); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Error("subtree delete rollback failed", slog.Any("error", rbErr))
			}

			return apperrors.DatabaseError(fmt.Sprintf("Failed to delete from %s", lvl.table)).WithError(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.DatabaseError("Failed to commit subtree delete").WithError(err)
	}

	return nil
}

// BestEffortSubtreeDeleter runs the same level sequence without a
// transaction. This trades atomicity for availability: a crash midway
// can orphan descendants, and a partial failure is surfaced as such so
// the caller can retry or reconcile manually.
type BestEffortSubtreeDeleter struct {
	DB *sql.DB
}

func (d *BestEffortSubtreeDeleter) DeleteSubtree(ctx context.Context, kind RootKind, rootID uuid.UUID) error {
	if err := resolveRoot(ctx, d.DB, kind, rootID); err != nil {
		return err
	}

	levels, _ := levelsFor(kind)
	deletedLevels := 0

	for _, lvl := range levels {
		if _, err := d.DB.ExecContext(ctx, lvl.query, rootID); err != nil {
			if deletedLevels > 0 {
				return apperrors.PartialFailureError(
					fmt.Sprintf("Subtree delete stopped at %s, descendants below it are already gone", lvl.table)).WithError(err)
			}

			return apperrors.DatabaseError(fmt.Sprintf("Failed to delete from %s", lvl.table)).WithError(err)
		}

		deletedLevels++
	}

	return nil
}

// NewSubtreeDeleter probes whether the store honors transactions and
// picks the strategy once. The degraded choice is logged loudly, not
// hidden: callers of the fallback get a weaker guarantee.
func NewSubtreeDeleter(db *sql.DB, txTimeout time.Duration) SubtreeDeleter {
	probeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	tx, err := db.BeginTx(probeCtx, nil)
	if err == nil {
		err = tx.Rollback()
	}

	if err != nil {
		slog.Warn("store does not support transactions, subtree deletes degrade to best-effort sequential",
			slog.Any("error", err))

		return &BestEffortSubtreeDeleter{DB: db}
	}

	return &AtomicSubtreeDeleter{DB: db, TxTimeout: txTimeout}
}
