// File: internal/config/config.go
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sethvargo/go-envconfig"
	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type BotConfig struct {
	Token    string `yaml:"token" env:"BOT_TOKEN,overwrite"`
	Username string `yaml:"username"`
	Workers  int    `yaml:"workers"` // polling workers
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL   string `yaml:"url" env:"DATABASE_URL,overwrite"`
	Table string `yaml:"table"` // dataset holding the buyer codes
}

type RedisConfig struct {
	URL      string `yaml:"url" env:"REDIS_URL,overwrite"`
	Password string `yaml:"password" env:"REDIS_PASSWORD,overwrite"`
	DB       int    `yaml:"db"`
}

type VerificationConfig struct {
	ChatID        int64         `yaml:"chat_id"`       // restricted verification chat; 0 = any group
	BuyerChatID   int64         `yaml:"buyer_chat_id"` // private buyers chat backing the role
	RoleName      string        `yaml:"role_name"`
	MaxAttempts   int           `yaml:"max_attempts"`
	AttemptWindow time.Duration `yaml:"attempt_window"`
	Cooldown      time.Duration `yaml:"cooldown"`
}

type AuditConfig struct {
	WebhookURL string `yaml:"webhook_url" env:"AUDIT_WEBHOOK_URL,overwrite"`
}

type AdminConfig struct {
	Port   int    `yaml:"port"`
	APIKey string `yaml:"api_key" env:"ADMIN_API_KEY,overwrite"`
}

type Config struct {
	Bot          BotConfig          `yaml:"bot"`
	Log          LogConfig          `yaml:"log"`
	Database     DatabaseConfig     `yaml:"database"`
	Redis        RedisConfig        `yaml:"redis"`
	Verification VerificationConfig `yaml:"verification"`
	Audit        AuditConfig        `yaml:"audit"`
	Admin        AdminConfig        `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

// LoadConfig reads the YAML file, then overlays secrets from the environment
// so credentials can stay out of the file entirely.
func LoadConfig(ctx context.Context, path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("env overlay: %w", err)
	}
	applyDefaults(&cfg)

	// Minimal validation: only the bot credential is hard-required. A missing
	// database, redis or webhook degrades the matching feature at runtime.
	if cfg.Bot.Token == "" {
		return nil, errors.New("bot.token is required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Bot.Workers <= 0 {
		cfg.Bot.Workers = 8
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.Table == "" {
		cfg.Database.Table = "buyer_codes"
	}
	if cfg.Verification.RoleName == "" {
		cfg.Verification.RoleName = "✅ Buyer"
	}
	if cfg.Verification.MaxAttempts <= 0 {
		cfg.Verification.MaxAttempts = 10
	}
	if cfg.Verification.AttemptWindow <= 0 {
		cfg.Verification.AttemptWindow = time.Hour
	}
	if cfg.Verification.Cooldown <= 0 {
		cfg.Verification.Cooldown = 30 * time.Second
	}
	if cfg.Admin.Port <= 0 {
		cfg.Admin.Port = 8090
	}
}
