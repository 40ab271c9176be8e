package repository

import (
	"context"

	"telegram-buyer-verification/internal/domain/model"
)

// BuyerCodeRepository is the port to the external buyer-code store.
type BuyerCodeRepository interface {
	// FindByCode matches the code column by exact equality. Returns
	// domain.ErrCodeNotFound when no record carries the code.
	FindByCode(ctx context.Context, code string) (*model.BuyerCode, error)
	// MarkRedeemed writes the redeemer identity, conditional on the record
	// still being unredeemed (compare-and-swap). Returns
	// domain.ErrCodeAlreadyUsed when the swap is lost and domain.ErrNotFound
	// when the record vanished between lookup and update.
	MarkRedeemed(ctx context.Context, id, redeemedBy string) error
	// Insert stores a fresh, unredeemed record. Used by the seeding tool.
	Insert(ctx context.Context, code *model.BuyerCode) error
	// CountByStatus returns total and redeemed record counts.
	CountByStatus(ctx context.Context) (total, redeemed int, err error)
}
