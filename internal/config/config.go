// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	DatabasePath     string
	LogLevel         string

	CatalogFile     string
	ModelIndexFile  string
	RuntimeDataFile string

	Account        string
	PrimaryAccount string

	MarkupEnabled bool
	MarkupT1      int
	MarkupT2      int
	MarkupT3      int
	MarkupA0      int
	MarkupA1      int
	MarkupA2      int
	MarkupA3      int

	CatalogTTL      time.Duration
	ModelIndexTTL   time.Duration
	EnabledTTL      time.Duration
	AllowedPathsTTL time.Duration
	AllowedChatsTTL time.Duration

	DedupGlobalWindow  time.Duration
	DedupPerUserWindow time.Duration
	DedupRepliedWindow time.Duration

	AuditKeepWindow time.Duration
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}

	cfg := &Config{
		TelegramBotToken: token,
		DatabasePath:     envStr("DATABASE_PATH", "./data/bot.db"),
		LogLevel:         envStr("LOG_LEVEL", "info"),

		CatalogFile:     envStr("CATALOG_FILE", "./data/parsed_data.json"),
		ModelIndexFile:  envStr("MODEL_INDEX_FILE", "./data/model_index.json"),
		RuntimeDataFile: envStr("RUNTIME_DATA_FILE", "./data/data.json"),

		Account:        envStr("ACCOUNT_NAME", "main"),
		PrimaryAccount: envStr("PRIMARY_ACCOUNT", "main"),
	}

	var err error
	if cfg.MarkupEnabled, err = envBool("MARKUP_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.MarkupT1, err = envInt("MARKUP_T1", 20000); err != nil {
		return nil, err
	}
	if cfg.MarkupT2, err = envInt("MARKUP_T2", 150000); err != nil {
		return nil, err
	}
	if cfg.MarkupT3, err = envInt("MARKUP_T3", 250000); err != nil {
		return nil, err
	}
	if cfg.MarkupA0, err = envInt("MARKUP_A0", 300); err != nil {
		return nil, err
	}
	if cfg.MarkupA1, err = envInt("MARKUP_A1", 500); err != nil {
		return nil, err
	}
	if cfg.MarkupA2, err = envInt("MARKUP_A2", 1000); err != nil {
		return nil, err
	}
	if cfg.MarkupA3, err = envInt("MARKUP_A3", 2000); err != nil {
		return nil, err
	}

	if cfg.CatalogTTL, err = envSeconds("CATALOG_TTL_SEC", 120); err != nil {
		return nil, err
	}
	if cfg.ModelIndexTTL, err = envSeconds("MODEL_INDEX_TTL_SEC", 300); err != nil {
		return nil, err
	}
	if cfg.EnabledTTL, err = envSeconds("ENABLED_TTL_SEC", 2); err != nil {
		return nil, err
	}
	if cfg.AllowedPathsTTL, err = envSeconds("ALLOWED_PATHS_TTL_SEC", 10); err != nil {
		return nil, err
	}
	if cfg.AllowedChatsTTL, err = envSeconds("ALLOWED_CHATS_TTL_SEC", 30); err != nil {
		return nil, err
	}

	if cfg.DedupGlobalWindow, err = envSeconds("DEDUP_GLOBAL_SEC", 60); err != nil {
		return nil, err
	}
	if cfg.DedupPerUserWindow, err = envSeconds("DEDUP_PER_USER_SEC", 120); err != nil {
		return nil, err
	}
	if cfg.DedupRepliedWindow, err = envSeconds("DEDUP_REPLIED_SEC", 1800); err != nil {
		return nil, err
	}

	if cfg.AuditKeepWindow, err = envSeconds("AUDIT_KEEP_SEC", 3600); err != nil {
		return nil, err
	}

	return cfg, nil
}

// IsPrimary reports whether this account is the designated replier.
// Secondary accounts observe traffic without recording or replying.
func (c *Config) IsPrimary() bool {
	return c.Account == c.PrimaryAccount
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envBool(key string, def bool) (bool, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func envInt(key string, def int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", key, raw, err)
	}
	return v, nil
}

func envSeconds(key string, def int) (time.Duration, error) {
	v, err := envInt(key, def)
	if err != nil {
		return 0, err
	}
	return time.Duration(v) * time.Second, nil
}
