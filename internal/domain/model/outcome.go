package model

import "time"

// VerificationStatus classifies the terminal state of one /verify attempt.
type VerificationStatus string

const (
	VerificationSuccess         VerificationStatus = "success"
	VerificationInvalidFormat   VerificationStatus = "invalid_format"
	VerificationRateLimited     VerificationStatus = "rate_limited"
	VerificationWrongContext    VerificationStatus = "wrong_context"
	VerificationStoreMisconfig  VerificationStatus = "store_misconfigured"
	VerificationRoleNotFound    VerificationStatus = "role_not_found"
	VerificationAlreadyVerified VerificationStatus = "already_verified"
	VerificationCodeNotFound    VerificationStatus = "code_not_found"
	VerificationCodeUsed        VerificationStatus = "code_already_used"
	VerificationStoreError      VerificationStatus = "store_error"
	VerificationUnexpected      VerificationStatus = "unexpected_error"
)

// VerificationOutcome is the ephemeral result of one verification attempt.
// It is produced exactly once per request, consumed by the audit notifier and
// the reply path, and never persisted.
type VerificationOutcome struct {
	Status   VerificationStatus
	Code     string
	UserID   int64
	Username string
	Reason   string // failure detail for the audit line, empty on success
	At       time.Time
}

func (o VerificationOutcome) Succeeded() bool { return o.Status == VerificationSuccess }
