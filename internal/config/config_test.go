// File: internal/config/config_test.go
package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "123:abc"
verification:
  buyer_chat_id: -100999
`)

	cfg, err := LoadConfig(context.Background(), path, false)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Bot.Workers != 8 {
		t.Errorf("default workers: got %d", cfg.Bot.Workers)
	}
	if cfg.Database.Table != "buyer_codes" {
		t.Errorf("default table: got %q", cfg.Database.Table)
	}
	if cfg.Verification.RoleName != "✅ Buyer" {
		t.Errorf("default role name: got %q", cfg.Verification.RoleName)
	}
	if cfg.Verification.MaxAttempts != 10 {
		t.Errorf("default max attempts: got %d", cfg.Verification.MaxAttempts)
	}
	if cfg.Verification.AttemptWindow != time.Hour {
		t.Errorf("default attempt window: got %v", cfg.Verification.AttemptWindow)
	}
	if cfg.Verification.Cooldown != 30*time.Second {
		t.Errorf("default cooldown: got %v", cfg.Verification.Cooldown)
	}
	if cfg.Admin.Port != 8090 {
		t.Errorf("default admin port: got %d", cfg.Admin.Port)
	}
	if cfg.Verification.BuyerChatID != -100999 {
		t.Errorf("buyer chat id: got %d", cfg.Verification.BuyerChatID)
	}
}

func TestLoadConfigEnvOverlay(t *testing.T) {
	path := writeConfig(t, `
bot:
  token: "from-file"
database:
  url: "postgres://file"
`)

	t.Setenv("BOT_TOKEN", "from-env")
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("ADMIN_API_KEY", "hunter2")

	cfg, err := LoadConfig(context.Background(), path, true)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Bot.Token != "from-env" {
		t.Errorf("env must win over the file, got %q", cfg.Bot.Token)
	}
	if cfg.Database.URL != "postgres://env" {
		t.Errorf("env must win over the file, got %q", cfg.Database.URL)
	}
	if cfg.Admin.APIKey != "hunter2" {
		t.Errorf("admin api key: got %q", cfg.Admin.APIKey)
	}
	if !cfg.Runtime.Dev {
		t.Errorf("dev flag not carried into runtime config")
	}
}

func TestLoadConfigRequiresToken(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
`)

	if _, err := LoadConfig(context.Background(), path, false); err == nil {
		t.Fatalf("expected an error for a missing bot token")
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(context.Background(), filepath.Join(t.TempDir(), "nope.yaml"), false); err == nil {
		t.Fatalf("expected an error for a missing file")
	}
}
