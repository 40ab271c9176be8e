package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrCodeNotFound       = errors.New("buyer code not found")
	ErrCodeAlreadyUsed    = errors.New("buyer code already redeemed")
	ErrStoreNotConfigured = errors.New("buyer code store is not configured")
	ErrStoreUnavailable   = errors.New("buyer code store unavailable")
	ErrRoleNotFound       = errors.New("buyer role not provisioned")
)
