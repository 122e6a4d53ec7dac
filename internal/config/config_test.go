package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("INVBOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("INVBOT_CHAT_ID", "-1001234")
	t.Setenv("INVBOT_STEAM_IDS", "76561198000000001")
}

func TestLoadDefaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Poll.AppID != 730 || cfg.Poll.ContextID != 2 {
		t.Fatalf("app/context = %d/%d, want 730/2", cfg.Poll.AppID, cfg.Poll.ContextID)
	}
	if cfg.Poll.Interval != 60*time.Second {
		t.Fatalf("single-account interval = %v, want 60s", cfg.Poll.Interval)
	}
	if !cfg.Health.Enabled || cfg.Health.Addr != ":8080" {
		t.Fatalf("health = %+v, want enabled on :8080", cfg.Health)
	}
	if cfg.Telegram.ChatID != -1001234 {
		t.Fatalf("chat id = %d, want -1001234", cfg.Telegram.ChatID)
	}
}

func TestLoadMultiAccountInterval(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INVBOT_STEAM_IDS", "76561198000000001, 76561198000000002 ,76561198000000003")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	want := []string{"76561198000000001", "76561198000000002", "76561198000000003"}
	if !reflect.DeepEqual(cfg.Accounts, want) {
		t.Fatalf("accounts = %v, want %v", cfg.Accounts, want)
	}
	if cfg.Poll.Interval != 600*time.Second {
		t.Fatalf("multi-account interval = %v, want 600s", cfg.Poll.Interval)
	}
}

func TestLoadExplicitIntervalWins(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INVBOT_POLL_INTERVAL", "45s")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Poll.Interval != 45*time.Second {
		t.Fatalf("interval = %v, want 45s", cfg.Poll.Interval)
	}
}

func TestLoadNoAccountsIsFatal(t *testing.T) {
	t.Setenv("INVBOT_TELEGRAM_TOKEN", "123:abc")
	t.Setenv("INVBOT_CHAT_ID", "-1001234")
	t.Setenv("INVBOT_STEAM_IDS", "")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for empty account list")
	}
}

func TestLoadInvalidChatID(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("INVBOT_CHAT_ID", "not-a-number")

	if _, err := Load(""); err == nil {
		t.Fatal("expected error for invalid chat id")
	}
}

func TestLoadFileLayerAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "invbot.yaml")
	body := `
telegram:
  token: file-token
  chat_id: 99
accounts:
  - "111"
  - "222"
poll:
  interval: 5m
  app_id: 440
  retry_max: 5
  backoff_base: 30s
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	// Env overrides the file token, the rest comes from the file.
	t.Setenv("INVBOT_TELEGRAM_TOKEN", "env-token")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Fatalf("token = %q, want env override", cfg.Telegram.Token)
	}
	if cfg.Telegram.ChatID != 99 {
		t.Fatalf("chat id = %d, want 99 from file", cfg.Telegram.ChatID)
	}
	if !reflect.DeepEqual(cfg.Accounts, []string{"111", "222"}) {
		t.Fatalf("accounts = %v, want file accounts", cfg.Accounts)
	}
	if cfg.Poll.Interval != 5*time.Minute || cfg.Poll.AppID != 440 {
		t.Fatalf("poll = %+v, want interval 5m app 440", cfg.Poll)
	}
	if cfg.Poll.RetryMax != 5 || cfg.Poll.BackoffBase != 30*time.Second {
		t.Fatalf("poll retry = %+v, want retry_max 5 backoff_base 30s", cfg.Poll)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("log level = %q, want debug", cfg.Logging.Level)
	}
}

func TestParseDurationField(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		raw     string
		want    time.Duration
		wantErr bool
	}{
		{name: "empty means unset", raw: "", want: 0},
		{name: "whitespace means unset", raw: "  ", want: 0},
		{name: "plain duration", raw: "45s", want: 45 * time.Second},
		{name: "compound duration", raw: "1m30s", want: 90 * time.Second},
		{name: "negative rejected", raw: "-5s", wantErr: true},
		{name: "garbage rejected", raw: "soon", wantErr: true},
		{name: "bare number rejected", raw: "60", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDurationField("poll.interval", tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDurationField(%q) expected error", tt.raw)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDurationField(%q) error: %v", tt.raw, err)
			}
			if got != tt.want {
				t.Fatalf("ParseDurationField(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestLoadUnknownFileKey(t *testing.T) {
	setRequiredEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "invbot.yaml")
	if err := os.WriteFile(path, []byte("nope: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown config key")
	}
}
