package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-buyer-verification/internal/domain"
	"telegram-buyer-verification/internal/domain/model"
	"telegram-buyer-verification/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.BuyerCodeRepository = (*buyerCodeRepo)(nil)

type buyerCodeRepo struct {
	pool  *pgxpool.Pool
	table string
}

// NewBuyerCodeRepo returns a repository bound to the configured table. The
// table name is operator configuration, equivalent to pointing the bot at a
// different dataset.
func NewBuyerCodeRepo(pool *pgxpool.Pool, table string) repository.BuyerCodeRepository {
	return &buyerCodeRepo{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

// FindByCode matches the code column by exact equality. This is the primary
// read of the redemption flow.
func (r *buyerCodeRepo) FindByCode(ctx context.Context, code string) (*model.BuyerCode, error) {
	q := fmt.Sprintf(`
SELECT id, code, redeemed_by, redeemed_at, note, created_at
  FROM %s
 WHERE code = $1;`, r.table)

	var bc model.BuyerCode
	err := r.pool.QueryRow(ctx, q, code).Scan(
		&bc.ID, &bc.Code, &bc.RedeemedBy, &bc.RedeemedAt, &bc.Note, &bc.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCodeNotFound
		}
		return nil, classify(err)
	}
	return &bc, nil
}

// MarkRedeemed is the single conditional write of the whole system: it only
// succeeds while redeemed_by is still empty, so two racing redemptions of the
// same code cannot both win.
func (r *buyerCodeRepo) MarkRedeemed(ctx context.Context, id, redeemedBy string) error {
	q := fmt.Sprintf(`
UPDATE %s
   SET redeemed_by = $2, redeemed_at = $3
 WHERE id = $1 AND redeemed_by = '';`, r.table)

	tag, err := r.pool.Exec(ctx, q, id, redeemedBy, time.Now())
	if err != nil {
		return classify(err)
	}
	if tag.RowsAffected() == 0 {
		// Either the swap was lost or the record vanished; tell them apart.
		eq := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1);`, r.table)
		var exists bool
		if err := r.pool.QueryRow(ctx, eq, id).Scan(&exists); err != nil {
			return classify(err)
		}
		if exists {
			return domain.ErrCodeAlreadyUsed
		}
		return domain.ErrNotFound
	}
	return nil
}

func (r *buyerCodeRepo) Insert(ctx context.Context, bc *model.BuyerCode) error {
	if bc.ID == "" {
		bc.ID = uuid.NewString()
	}
	if bc.CreatedAt.IsZero() {
		bc.CreatedAt = time.Now()
	}
	q := fmt.Sprintf(`
INSERT INTO %s (id, code, redeemed_by, redeemed_at, note, created_at)
VALUES ($1, $2, $3, $4, $5, $6);`, r.table)

	if _, err := r.pool.Exec(ctx, q,
		bc.ID, bc.Code, bc.RedeemedBy, bc.RedeemedAt, bc.Note, bc.CreatedAt,
	); err != nil {
		return classify(err)
	}
	return nil
}

func (r *buyerCodeRepo) CountByStatus(ctx context.Context) (int, int, error) {
	q := fmt.Sprintf(`
SELECT COUNT(*), COUNT(*) FILTER (WHERE redeemed_by <> '')
  FROM %s;`, r.table)

	var total, redeemed int
	if err := r.pool.QueryRow(ctx, q).Scan(&total, &redeemed); err != nil {
		return 0, 0, classify(err)
	}
	return total, redeemed, nil
}

// classify maps driver errors onto domain errors. Anything the store itself
// reports (including a missing table) is surfaced as ErrStoreUnavailable with
// the server detail preserved for logs.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fmt.Errorf("%w: %s (%s)", domain.ErrStoreUnavailable, pgErr.Message, pgErr.Code)
	}
	return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
}
