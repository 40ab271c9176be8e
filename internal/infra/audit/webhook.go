package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"telegram-buyer-verification/internal/domain/model"
	"telegram-buyer-verification/internal/domain/ports/adapter"
	"telegram-buyer-verification/internal/infra/metrics"
)

var _ adapter.AuditNotifier = (*WebhookNotifier)(nil)

// WebhookNotifier pushes one line per verification outcome to a webhook URL.
// Delivery is best effort: failures are logged and never retried, and a local
// limiter keeps bursts under the sink's rate limit.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
	log     *zerolog.Logger
}

func NewWebhookNotifier(url string, logger *zerolog.Logger) *WebhookNotifier {
	return &WebhookNotifier{
		url:     url,
		client:  &http.Client{Timeout: 10 * time.Second},
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		log:     logger,
	}
}

func (n *WebhookNotifier) Publish(ctx context.Context, o model.VerificationOutcome) {
	if err := n.limiter.Wait(ctx); err != nil {
		n.log.Warn().Err(err).Msg("audit publish skipped")
		return
	}

	body, err := json.Marshal(map[string]string{"content": FormatLine(o)})
	if err != nil {
		n.log.Warn().Err(err).Msg("audit payload marshal failed")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, bytes.NewReader(body))
	if err != nil {
		n.log.Warn().Err(err).Msg("audit request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		metrics.IncAuditPublishFailure()
		n.log.Warn().Err(err).Msg("audit publish failed")
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		metrics.IncAuditPublishFailure()
		n.log.Warn().Int("status", resp.StatusCode).Msg("audit publish rejected")
	}
}

// FormatLine renders the single-line audit record. Success and failure lines
// carry distinct lead glyphs so they scan apart in the sink.
func FormatLine(o model.VerificationOutcome) string {
	ts := o.At.Format("2006-01-02 15:04:05")
	mention := fmt.Sprintf("@%s", o.Username)
	if o.Username == "" {
		mention = fmt.Sprintf("id:%d", o.UserID)
	}
	if o.Succeeded() {
		return fmt.Sprintf("✅ %s (`%d`) | `%s` | %s", mention, o.UserID, o.Code, ts)
	}
	reason := ""
	if o.Reason != "" {
		reason = " | " + o.Reason
	}
	return fmt.Sprintf("❗ %s (`%d`) | **`%s`** | %s%s", mention, o.UserID, o.Code, ts, reason)
}

// NopNotifier stands in when no webhook URL is configured; outcomes still
// land in the local log.
type NopNotifier struct {
	log *zerolog.Logger
}

func NewNopNotifier(logger *zerolog.Logger) *NopNotifier {
	return &NopNotifier{log: logger}
}

func (n *NopNotifier) Publish(_ context.Context, o model.VerificationOutcome) {
	n.log.Info().
		Str("status", string(o.Status)).
		Str("code", o.Code).
		Int64("tg_id", o.UserID).
		Str("reason", o.Reason).
		Msg("verification outcome")
}
