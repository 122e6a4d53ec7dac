package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the effective process configuration. Values are resolved in
// three layers: built-in defaults, then the optional YAML file, then
// environment variables (which always win).
//
// Accounts, credentials and the poll interval are fixed for the process
// lifetime; only the logging section participates in hot reload.
type Config struct {
	Telegram TelegramConfig
	Accounts []string
	Poll     PollConfig
	Health   HealthConfig
	Logging  LoggingConfig
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

type PollConfig struct {
	// Interval between sweeps. Zero picks a variant default at Load time:
	// 60s for a single tracked account, 600s for several.
	Interval time.Duration

	AppID     int
	ContextID int

	RetryMax    int
	BackoffBase time.Duration
	RetryDelay  time.Duration
}

type HealthConfig struct {
	Enabled bool
	Addr    string
}

type LoggingConfig struct {
	Level string
	File  string
}

const (
	defaultAppID     = 730
	defaultContextID = 2

	singleAccountInterval = 60 * time.Second
	multiAccountInterval  = 600 * time.Second
)

func defaults() Config {
	return Config{
		Poll: PollConfig{
			AppID:     defaultAppID,
			ContextID: defaultContextID,
		},
		Health: HealthConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load resolves the effective configuration. path may be empty (no file).
// A validation failure here is fatal by contract: the caller exits
// non-zero before any scheduling begins.
func Load(path string) (Config, error) {
	cfg := defaults()

	if strings.TrimSpace(path) != "" {
		if err := applyFile(&cfg, path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	cfg.finalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) finalize() {
	if c.Poll.Interval <= 0 {
		if len(c.Accounts) > 1 {
			c.Poll.Interval = multiAccountInterval
		} else {
			c.Poll.Interval = singleAccountInterval
		}
	}
}

func (c *Config) validate() error {
	if len(c.Accounts) == 0 {
		return errors.New("no accounts configured (set INVBOT_STEAM_IDS or accounts in the config file)")
	}
	for _, a := range c.Accounts {
		if strings.TrimSpace(a) == "" {
			return errors.New("accounts list contains an empty id")
		}
	}
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return errors.New("telegram token is empty (set INVBOT_TELEGRAM_TOKEN)")
	}
	if c.Telegram.ChatID == 0 {
		return errors.New("telegram chat id is empty (set INVBOT_CHAT_ID)")
	}
	return nil
}

func applyEnv(c *Config) error {
	if v, ok := lookup("INVBOT_TELEGRAM_TOKEN"); ok {
		c.Telegram.Token = v
	}
	if v, ok := lookup("INVBOT_CHAT_ID"); ok {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("INVBOT_CHAT_ID: invalid chat id %q", v)
		}
		c.Telegram.ChatID = id
	}
	if v, ok := lookup("INVBOT_STEAM_IDS"); ok {
		c.Accounts = splitList(v)
	}
	if v, ok := lookup("INVBOT_APP_ID"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("INVBOT_APP_ID: invalid app id %q", v)
		}
		c.Poll.AppID = n
	}
	if v, ok := lookup("INVBOT_CONTEXT_ID"); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("INVBOT_CONTEXT_ID: invalid context id %q", v)
		}
		c.Poll.ContextID = n
	}
	if v, ok := lookup("INVBOT_POLL_INTERVAL"); ok {
		d, err := ParseDurationField("INVBOT_POLL_INTERVAL", v)
		if err != nil {
			return err
		}
		c.Poll.Interval = d
	}
	if v, ok := lookup("INVBOT_HEALTH_ADDR"); ok {
		c.Health.Addr = v
	}
	if v, ok := lookup("INVBOT_HEALTH_ENABLED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("INVBOT_HEALTH_ENABLED: invalid bool %q", v)
		}
		c.Health.Enabled = b
	}
	if v, ok := lookup("INVBOT_LOG_LEVEL"); ok {
		c.Logging.Level = v
	}
	if v, ok := lookup("INVBOT_LOG_FILE"); ok {
		c.Logging.File = v
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	return v, true
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
