package adapter

import (
	"context"

	"telegram-buyer-verification/internal/domain/model"
)

// AuditNotifier delivers one structured line per verification outcome to an
// external sink. Best effort: implementations swallow delivery failures and
// never retry.
type AuditNotifier interface {
	Publish(ctx context.Context, outcome model.VerificationOutcome)
}
