package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-buyer-verification/internal/domain/ports/adapter"
)

// NoopEntitlements stands in for the buyers chat in dev mode: every grant is
// logged and dropped, and nobody counts as already verified.
type NoopEntitlements struct {
	roleName string
	log      *zerolog.Logger
}

var _ adapter.EntitlementAdapter = (*NoopEntitlements)(nil)

func NewNoopEntitlements(roleName string, logger *zerolog.Logger) *NoopEntitlements {
	return &NoopEntitlements{roleName: roleName, log: logger}
}

func (n *NoopEntitlements) ResolveRole(_ context.Context) (*adapter.Role, error) {
	return &adapter.Role{Name: n.roleName}, nil
}

func (n *NoopEntitlements) HasRole(_ context.Context, _ int64, _ *adapter.Role) (bool, error) {
	return false, nil
}

func (n *NoopEntitlements) GrantRole(_ context.Context, userID int64, role *adapter.Role) error {
	n.log.Info().Int64("tg_id", userID).Str("role", role.Name).Msg("dev mode, role grant skipped")
	return nil
}
