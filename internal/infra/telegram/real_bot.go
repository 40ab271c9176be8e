package telegram

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-buyer-verification/internal/config"
	"telegram-buyer-verification/internal/domain/ports/adapter"
	"telegram-buyer-verification/internal/infra/i18n"
	"telegram-buyer-verification/internal/infra/logging"
	"telegram-buyer-verification/internal/infra/metrics"
	"telegram-buyer-verification/internal/usecase"
)

// Cooldown gates repeated command invocations per user. Backed by Redis when
// available, in memory otherwise.
type Cooldown interface {
	Allow(ctx context.Context, userID int64, command string) (bool, time.Duration, error)
}

// NewAPI creates the raw Telegram client from the bot credential.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

// RealBotAdapter polls Telegram updates on a worker pool and routes the
// /verify command into the verification pipeline.
type RealBotAdapter struct {
	bot      *tgbotapi.BotAPI
	cfg      *config.BotConfig
	verify   usecase.VerifyUseCase
	cooldown Cooldown
	tr       *i18n.Registry
	log      *zerolog.Logger

	updateWorkers int
	cancelPolling context.CancelFunc
}

var _ adapter.ChatBotAdapter = (*RealBotAdapter)(nil)

func NewRealBotAdapter(bot *tgbotapi.BotAPI, cfg *config.BotConfig, cooldown Cooldown, tr *i18n.Registry, logger *zerolog.Logger) (*RealBotAdapter, error) {
	if bot == nil {
		return nil, errors.New("bot client is nil")
	}
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if cooldown == nil {
		return nil, errors.New("cooldown is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	return &RealBotAdapter{
		bot:           bot,
		cfg:           cfg,
		cooldown:      cooldown,
		tr:            tr,
		log:           logger,
		updateWorkers: workers,
	}, nil
}

// AttachVerify wires the verification pipeline in. Separate from the
// constructor because the entitlement adapter needs this adapter's outbound
// messaging before the pipeline can be built.
func (r *RealBotAdapter) AttachVerify(uc usecase.VerifyUseCase) {
	r.verify = uc
}

func (r *RealBotAdapter) StartPolling(ctx context.Context) error {
	if r.verify == nil {
		return errors.New("verify usecase not attached")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	r.cancelPolling = cancel

	var wg sync.WaitGroup
	updateChan := make(chan tgbotapi.Update, 100)

	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-updateChan:
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Msg("update handler failed")
					}
				}
			}
		}(i)
	}

	for {
		select {
		case <-ctx.Done():
			close(updateChan)
			wg.Wait()
			return ctx.Err()
		case up := <-updates:
			updateChan <- up
		}
	}
}

func (r *RealBotAdapter) StopPolling() {
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// handleUpdate is the outermost boundary of request handling: one broken
// update must not take down the worker or its neighbours.
func (r *RealBotAdapter) handleUpdate(ctx context.Context, up tgbotapi.Update) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in update handler: %v", rec)
		}
	}()

	msg := up.Message
	if msg == nil || msg.From == nil || msg.From.IsBot || !msg.IsCommand() {
		return nil
	}

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, msg.From.ID)
	ctx = logging.WithChatID(ctx, msg.Chat.ID)

	metrics.IncTelegramCommand(msg.Command())
	switch msg.Command() {
	case "verify":
		return r.handleVerify(ctx, msg)
	case "start", "help":
		return r.reply(msg, r.tr.T(userLocale(msg.From), "cmd_verify_description"))
	}
	return nil
}

func (r *RealBotAdapter) handleVerify(ctx context.Context, msg *tgbotapi.Message) error {
	locale := userLocale(msg.From)

	ok, retryAfter, err := r.cooldown.Allow(ctx, msg.From.ID, "verify")
	if err != nil {
		// fail open: the sliding-window attempt limit still applies downstream
		logging.With(ctx, r.log).Warn().Err(err).Msg("cooldown check failed")
		ok = true
	}
	if !ok {
		metrics.IncCooldownTriggered()
		seconds := int(retryAfter.Seconds())
		if seconds <= 0 {
			seconds = 1
		}
		return r.reply(msg, r.tr.T(locale, "verify_cooldown", seconds))
	}

	res := r.verify.Verify(ctx, usecase.VerifyRequest{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		ChatID:   msg.Chat.ID,
		IsGroup:  msg.Chat.IsGroup() || msg.Chat.IsSuperGroup(),
		Locale:   locale,
		Code:     msg.CommandArguments(),
	})
	return r.reply(msg, res.Reply)
}

func (r *RealBotAdapter) reply(msg *tgbotapi.Message, text string) error {
	m := tgbotapi.NewMessage(msg.Chat.ID, text)
	m.ReplyToMessageID = msg.MessageID
	_, err := r.bot.Send(m)
	return err
}

// SendMessage implements adapter.ChatBotAdapter.
func (r *RealBotAdapter) SendMessage(_ context.Context, chatID int64, text string) error {
	_, err := r.bot.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

func userLocale(u *tgbotapi.User) string {
	if u.LanguageCode != "" {
		return u.LanguageCode
	}
	return i18n.DefaultLocale
}
