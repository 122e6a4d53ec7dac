package config

import (
	"bytes"
	"errors"
	"io"
	"os"

	yaml "go.yaml.in/yaml/v3"
)

// fileConfig is the raw shape of the optional YAML file. Durations are
// plain Go duration strings ("45s", "10m") and get parsed during merge.
// Pointer fields distinguish "omitted" from an explicit zero value.
type fileConfig struct {
	Telegram struct {
		Token  string `yaml:"token"`
		ChatID int64  `yaml:"chat_id"`
	} `yaml:"telegram"`

	Accounts []string `yaml:"accounts"`

	Poll struct {
		Interval    string `yaml:"interval"`
		AppID       int    `yaml:"app_id"`
		ContextID   int    `yaml:"context_id"`
		RetryMax    int    `yaml:"retry_max"`
		BackoffBase string `yaml:"backoff_base"`
		RetryDelay  string `yaml:"retry_delay"`
	} `yaml:"poll"`

	Health struct {
		Enabled *bool  `yaml:"enabled"`
		Addr    string `yaml:"addr"`
	} `yaml:"health"`

	Logging struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"logging"`
}

func parseFile(path string) (*fileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fc fileConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return &fc, nil
}

// applyFile merges the file layer onto cfg. Only set fields override.
func applyFile(cfg *Config, path string) error {
	fc, err := parseFile(path)
	if err != nil {
		return err
	}

	if fc.Telegram.Token != "" {
		cfg.Telegram.Token = fc.Telegram.Token
	}
	if fc.Telegram.ChatID != 0 {
		cfg.Telegram.ChatID = fc.Telegram.ChatID
	}
	if len(fc.Accounts) > 0 {
		cfg.Accounts = append([]string(nil), fc.Accounts...)
	}

	if fc.Poll.AppID > 0 {
		cfg.Poll.AppID = fc.Poll.AppID
	}
	if fc.Poll.ContextID > 0 {
		cfg.Poll.ContextID = fc.Poll.ContextID
	}
	if fc.Poll.RetryMax > 0 {
		cfg.Poll.RetryMax = fc.Poll.RetryMax
	}
	d, err := ParseDurationField("poll.interval", fc.Poll.Interval)
	if err != nil {
		return err
	}
	if d > 0 {
		cfg.Poll.Interval = d
	}
	d, err = ParseDurationField("poll.backoff_base", fc.Poll.BackoffBase)
	if err != nil {
		return err
	}
	if d > 0 {
		cfg.Poll.BackoffBase = d
	}
	d, err = ParseDurationField("poll.retry_delay", fc.Poll.RetryDelay)
	if err != nil {
		return err
	}
	if d > 0 {
		cfg.Poll.RetryDelay = d
	}

	if fc.Health.Enabled != nil {
		cfg.Health.Enabled = *fc.Health.Enabled
	}
	if fc.Health.Addr != "" {
		cfg.Health.Addr = fc.Health.Addr
	}

	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.File != "" {
		cfg.Logging.File = fc.Logging.File
	}
	return nil
}
