package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"quote_bot/internal/bot"
	"quote_bot/internal/catalog"
	"quote_bot/internal/config"
	"quote_bot/internal/dedup"
	"quote_bot/internal/engine"
	"quote_bot/internal/extract"
	"quote_bot/internal/match"
	"quote_bot/internal/reply"
	"quote_bot/internal/runtimecfg"
	"quote_bot/internal/scheduler"
	"quote_bot/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath, cfg.AuditKeepWindow)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	models := extract.NewModelIndex(cfg.ModelIndexFile, cfg.ModelIndexTTL, log)
	offers := catalog.NewIndex(cfg.CatalogFile, cfg.CatalogTTL, models, log)
	parser := extract.NewParserAdapter(extract.NewParser(models, log), log)

	runtime := runtimecfg.New(cfg.RuntimeDataFile, runtimecfg.TTLs{
		Enabled:      cfg.EnabledTTL,
		AllowedPaths: cfg.AllowedPathsTTL,
		Chats:        cfg.AllowedChatsTTL,
	}, log)

	b, err := bot.New(cfg.TelegramBotToken, runtime, cfg.Account, cfg.IsPrimary(), log)
	if err != nil {
		log.Error("create bot", "error", err)
		os.Exit(1)
	}

	eng := engine.New(engine.Deps{
		Log:       log,
		Extractor: parser,
		Offers:    offers,
		Matcher:   match.New(log),
		Composer: reply.New(reply.Markup{
			Enabled: cfg.MarkupEnabled,
			T1:      cfg.MarkupT1,
			T2:      cfg.MarkupT2,
			T3:      cfg.MarkupT3,
			A0:      cfg.MarkupA0,
			A1:      cfg.MarkupA1,
			A2:      cfg.MarkupA2,
			A3:      cfg.MarkupA3,
		}),
		Guard: dedup.New(dedup.Windows{
			Global:  cfg.DedupGlobalWindow,
			PerUser: cfg.DedupPerUserWindow,
			Replied: cfg.DedupRepliedWindow,
		}),
		Runtime: runtime,
		Store:   store,
		Sender:  b,
		Account: cfg.Account,
	})
	b.SetProcessor(eng)

	sched, err := scheduler.New(store, eng, cfg.AuditKeepWindow, log)
	if err != nil {
		log.Error("create scheduler", "error", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting bot", "account", cfg.Account, "primary", cfg.IsPrimary())

	go func() {
		if err := sched.Run(ctx); err != nil {
			log.Error("scheduler stopped", "error", err)
		}
	}()

	b.Run(ctx)

	log.Info("bot stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
