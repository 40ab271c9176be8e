package usecase

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-buyer-verification/internal/domain"
	"telegram-buyer-verification/internal/domain/ports/repository"
	"telegram-buyer-verification/internal/infra/logging"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// StatsUseCase exposes code inventory counts for the admin API.
type StatsUseCase interface {
	CodeCounts(ctx context.Context) (total, redeemed int, err error)
}

type statsUC struct {
	codes repository.BuyerCodeRepository
	log   *zerolog.Logger
}

func NewStatsUseCase(codes repository.BuyerCodeRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{codes: codes, log: logger}
}

func (s *statsUC) CodeCounts(ctx context.Context) (int, int, error) {
	defer logging.TraceDuration(s.log, "StatsUC.CodeCounts")()
	if s.codes == nil {
		return 0, 0, domain.ErrStoreNotConfigured
	}
	return s.codes.CountByStatus(ctx)
}
