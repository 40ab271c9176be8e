package adapter

import "context"

// Role is a grantable entitlement in a chat context. On Telegram the buyer
// role is modelled as membership of a private buyers chat.
type Role struct {
	ChatID int64
	Name   string
}

// EntitlementAdapter is the port to the platform's identity/role system.
type EntitlementAdapter interface {
	// ResolveRole resolves the configured buyer role. Returns
	// domain.ErrRoleNotFound when the role is not provisioned.
	ResolveRole(ctx context.Context) (*Role, error)
	// HasRole reports whether the user already holds the role.
	HasRole(ctx context.Context, userID int64, role *Role) (bool, error)
	// GrantRole grants the role to the user.
	GrantRole(ctx context.Context, userID int64, role *Role) error
}
