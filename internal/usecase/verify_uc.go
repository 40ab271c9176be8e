// File: internal/usecase/verify_uc.go
package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"telegram-buyer-verification/internal/domain"
	"telegram-buyer-verification/internal/domain/model"
	"telegram-buyer-verification/internal/domain/ports/adapter"
	"telegram-buyer-verification/internal/domain/ports/repository"
	"telegram-buyer-verification/internal/infra/i18n"
	"telegram-buyer-verification/internal/infra/logging"
	"telegram-buyer-verification/internal/infra/metrics"
)

// AttemptLimiter is the per-user sliding-window limiter consulted before any
// store access. A denied attempt must not be recorded.
type AttemptLimiter interface {
	Allow(userID int64) bool
}

// VerifyRequest carries one inbound /verify invocation.
type VerifyRequest struct {
	UserID   int64
	Username string
	ChatID   int64
	IsGroup  bool
	Locale   string
	Code     string
}

// VerifyResult pairs the terminal outcome with the localized reply for the
// requesting user.
type VerifyResult struct {
	Outcome model.VerificationOutcome
	Reply   string
}

// VerifyUseCase runs the full code verification pipeline: format check, rate
// limit, context checks, record lookup, consumption mark, role grant.
type VerifyUseCase interface {
	Verify(ctx context.Context, req VerifyRequest) VerifyResult
}

// Compile-time check
var _ VerifyUseCase = (*verifyUC)(nil)

type verifyUC struct {
	codes        repository.BuyerCodeRepository // nil when the store is not configured
	entitlements adapter.EntitlementAdapter
	limiter      AttemptLimiter
	audit        adapter.AuditNotifier
	tr           *i18n.Registry
	log          *zerolog.Logger

	restrictedChatID int64
	dev              bool

	codeLocks keyedMutex
}

func NewVerifyUseCase(
	codes repository.BuyerCodeRepository,
	entitlements adapter.EntitlementAdapter,
	limiter AttemptLimiter,
	audit adapter.AuditNotifier,
	tr *i18n.Registry,
	restrictedChatID int64,
	dev bool,
	logger *zerolog.Logger,
) *verifyUC {
	return &verifyUC{
		codes:            codes,
		entitlements:     entitlements,
		limiter:          limiter,
		audit:            audit,
		tr:               tr,
		log:              logger,
		restrictedChatID: restrictedChatID,
		dev:              dev,
	}
}

// Verify walks the pipeline to exactly one terminal outcome. Every exit
// produces one VerificationOutcome (audited) and one localized reply.
func (u *verifyUC) Verify(ctx context.Context, req VerifyRequest) VerifyResult {
	defer logging.TraceDuration(u.log, "VerifyUC.Verify")()
	start := time.Now()
	defer func() { metrics.ObserveVerificationDuration(time.Since(start).Seconds()) }()

	log := logging.With(ctx, u.log)
	roleName := u.tr.T(req.Locale, "role_name_buyer")

	// 1. Format. Garbage input never reaches the limiter or the store.
	if !model.IsValidCodeFormat(req.Code) {
		return u.finish(ctx, req, model.VerificationInvalidFormat, "bad format",
			u.tr.T(req.Locale, "verify_invalid_format"))
	}

	// 2. Sliding-window attempt limit.
	if !u.limiter.Allow(req.UserID) {
		metrics.IncRateLimited()
		return u.finish(ctx, req, model.VerificationRateLimited, "too many attempts",
			u.tr.T(req.Locale, "verify_too_many_attempts"))
	}

	// 3. Context: group chats only, and only the configured chat if one is set.
	if !req.IsGroup {
		return u.finish(ctx, req, model.VerificationWrongContext, "direct message",
			u.tr.T(req.Locale, "verify_dm_error"))
	}
	if u.restrictedChatID != 0 && req.ChatID != u.restrictedChatID {
		return u.finish(ctx, req, model.VerificationWrongContext, "wrong chat",
			u.tr.T(req.Locale, "verify_wrong_channel_error", strconv.FormatInt(u.restrictedChatID, 10)))
	}

	// 4. Operator misconfiguration is not a user error; it must stand out in
	// the logs rather than look like a bad code.
	if u.codes == nil {
		log.Error().Msg("buyer code store is not configured")
		return u.finish(ctx, req, model.VerificationStoreMisconfig, "store not configured",
			u.tr.T(req.Locale, "verify_store_config_error"))
	}

	// 5. Resolve the buyer role. Provisioning it is an out-of-band operator task.
	role, err := u.entitlements.ResolveRole(ctx)
	if err != nil {
		log.Error().Err(err).Msg("buyer role not resolvable")
		return u.finish(ctx, req, model.VerificationRoleNotFound, "role not provisioned",
			u.tr.T(req.Locale, "verify_role_not_found_error", roleName))
	}

	// 6. Idempotent short-circuit: existing holders never touch the store.
	has, err := u.entitlements.HasRole(ctx, req.UserID, role)
	if err != nil {
		log.Error().Err(err).Msg("role membership check failed")
		return u.finish(ctx, req, model.VerificationUnexpected, "platform error",
			u.tr.T(req.Locale, "verify_platform_error"))
	}
	if has {
		return u.finish(ctx, req, model.VerificationAlreadyVerified, "",
			u.tr.T(req.Locale, "verify_already_verified", roleName))
	}

	// 7-9. Check-then-act on store state. The conditional write inside
	// MarkRedeemed is the real guard against a double redemption; the
	// per-code lock additionally serializes same-code requests within this
	// process so the loser fails on the read instead of the write.
	unlock := u.codeLocks.lock(req.Code)

	rec, err := u.codes.FindByCode(ctx, req.Code)
	if err != nil {
		unlock()
		if errors.Is(err, domain.ErrCodeNotFound) {
			return u.finish(ctx, req, model.VerificationCodeNotFound, "code not found",
				u.tr.T(req.Locale, "verify_code_not_found", req.Code))
		}
		log.Error().Err(err).Str("code", logging.Redact(req.Code, u.dev)).Msg("buyer code lookup failed")
		return u.finish(ctx, req, model.VerificationStoreError, "store error",
			u.tr.T(req.Locale, "verify_store_api_error"))
	}

	if rec.Redeemed() {
		unlock()
		return u.finish(ctx, req, model.VerificationCodeUsed, "already used",
			u.tr.T(req.Locale, "verify_code_already_used"))
	}

	// 9. Consume the record. Store trouble is logged and does not block the
	// grant; only losing the conditional write to a concurrent redemption does.
	err = u.codes.MarkRedeemed(ctx, rec.ID, strconv.FormatInt(req.UserID, 10))
	unlock()
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrCodeAlreadyUsed):
		return u.finish(ctx, req, model.VerificationCodeUsed, "already used",
			u.tr.T(req.Locale, "verify_code_already_used"))
	case errors.Is(err, domain.ErrNotFound):
		log.Warn().Str("record_id", rec.ID).Msg("buyer record vanished before consumption mark")
	default:
		log.Error().Err(err).Str("record_id", rec.ID).Msg("consumption mark failed, granting anyway")
	}

	// 10. Grant. If this fails after a successful mark we accept the
	// inconsistent record over clawing the mark back.
	if err := u.entitlements.GrantRole(ctx, req.UserID, role); err != nil {
		log.Error().Err(err).Msg("role grant failed")
		return u.finish(ctx, req, model.VerificationUnexpected, "platform error",
			u.tr.T(req.Locale, "verify_platform_error"))
	}

	return u.finish(ctx, req, model.VerificationSuccess, "",
		u.tr.T(req.Locale, "verify_success", req.Code, roleName))
}

func (u *verifyUC) finish(ctx context.Context, req VerifyRequest, status model.VerificationStatus, reason, reply string) VerifyResult {
	o := model.VerificationOutcome{
		Status:   status,
		Code:     req.Code,
		UserID:   req.UserID,
		Username: req.Username,
		Reason:   reason,
		At:       time.Now(),
	}
	metrics.IncVerification(string(o.Status))
	u.audit.Publish(ctx, o)
	return VerifyResult{Outcome: o, Reply: reply}
}
