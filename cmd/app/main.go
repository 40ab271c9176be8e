// File: cmd/app/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"telegram-buyer-verification/internal/config"
	"telegram-buyer-verification/internal/domain/ports/adapter"
	"telegram-buyer-verification/internal/domain/ports/repository"
	"telegram-buyer-verification/internal/infra/audit"
	pg "telegram-buyer-verification/internal/infra/db/postgres"
	"telegram-buyer-verification/internal/infra/i18n"
	"telegram-buyer-verification/internal/infra/logging"
	"telegram-buyer-verification/internal/infra/metrics"
	"telegram-buyer-verification/internal/infra/ratelimit"
	red "telegram-buyer-verification/internal/infra/redis"
	tele "telegram-buyer-verification/internal/infra/telegram"
	"telegram-buyer-verification/internal/infra/web"
	"telegram-buyer-verification/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ---- CLI flags ----
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "enable developer mode (log codes, skip role grants)")
	flag.Parse()

	cfg, err := config.LoadConfig(ctx, *cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("dev mode enabled")
	}

	metrics.MustRegister()

	// ---- Localization ----
	tr, err := i18n.NewRegistry(i18n.LocalesFS)
	if err != nil {
		logger.Fatal().Err(err).Msg("locales")
	}

	// ---- Buyer code store ----
	var codeRepo repository.BuyerCodeRepository
	if cfg.Database.URL != "" {
		pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, 10)
		if err != nil {
			logger.Fatal().Err(err).Msg("postgres")
		}
		defer pool.Close()
		codeRepo = pg.NewBuyerCodeRepo(pool, cfg.Database.Table)
	} else {
		logger.Warn().Msg("database.url not set, verification will report the store as unconfigured")
	}

	// ---- Cooldown (Redis, in-memory fallback) ----
	var cooldown tele.Cooldown
	if cfg.Redis.URL != "" {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis")
		}
		defer func() { _ = redisClient.Close() }()
		cooldown = red.NewCommandCooldown(redisClient, cfg.Verification.Cooldown)
	} else {
		logger.Warn().Msg("redis.url not set, using in-memory cooldown")
		cooldown = ratelimit.NewMemoryCooldown(cfg.Verification.Cooldown)
	}

	// ---- Attempt limiter ----
	limiter := ratelimit.NewAttemptLimiter(cfg.Verification.MaxAttempts, cfg.Verification.AttemptWindow)
	go limiter.Run(ctx, cfg.Verification.AttemptWindow, logger)

	// ---- Audit notifier ----
	var notifier adapter.AuditNotifier
	if cfg.Audit.WebhookURL != "" {
		notifier = audit.NewWebhookNotifier(cfg.Audit.WebhookURL, logger)
	} else {
		logger.Warn().Msg("audit.webhook_url not set, outcomes are logged only")
		notifier = audit.NewNopNotifier(logger)
	}

	// ---- Telegram ----
	api, err := tele.NewAPI(cfg.Bot.Token)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram")
	}
	bot, err := tele.NewRealBotAdapter(api, &cfg.Bot, cooldown, tr, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("telegram adapter")
	}

	var entitlements adapter.EntitlementAdapter
	if cfg.Runtime.Dev {
		entitlements = tele.NewNoopEntitlements(cfg.Verification.RoleName, logger)
	} else {
		entitlements = tele.NewBuyerChatEntitlements(api, bot, cfg.Verification.BuyerChatID, cfg.Verification.RoleName, logger)
	}

	verifyUC := usecase.NewVerifyUseCase(
		codeRepo, entitlements, limiter, notifier, tr,
		cfg.Verification.ChatID, cfg.Runtime.Dev, logger,
	)
	bot.AttachVerify(verifyUC)

	go func() {
		if err := bot.StartPolling(ctx); err != nil && ctx.Err() == nil {
			logger.Error().Err(err).Msg("telegram polling stopped")
		}
	}()

	// ---- Admin HTTP server ----
	statsUC := usecase.NewStatsUseCase(codeRepo, logger)
	adminSrv := web.NewServer(statsUC, cfg.Admin.APIKey, logger)
	server := &http.Server{Addr: fmt.Sprintf(":%d", cfg.Admin.Port), Handler: adminSrv.Router()}
	go func() {
		logger.Info().Str("addr", server.Addr).Msg("admin http listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("admin http server error")
		}
	}()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
