package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/vocabot/internal/app"
	"github.com/example/vocabot/internal/bot"
	"github.com/example/vocabot/internal/config"
	"github.com/example/vocabot/internal/database"
	"github.com/example/vocabot/internal/quiz"
	"github.com/example/vocabot/internal/scheduler"
	"github.com/example/vocabot/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Log)

	// Cancel the context on SIGINT/SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("bot failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger.Info("bot stopped successfully")
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	db, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()
	logger.Info("database ready", slog.String("driver", cfg.Database.Driver))

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("unable to create bot: %w", err)
	}
	api.Debug = cfg.Telegram.Debug

	botConfig := bot.ConfigFromApp(cfg)
	terms := database.NewTermRepository(db)
	generator := quiz.NewGenerator(terms, quiz.DefaultRand, cfg.Bot.OptionMaxLength)
	sessions := session.NewStore()
	channel := bot.NewTelegramChannel(api)
	machine := bot.NewMachine(terms, channel, generator, sessions, botConfig, logger)

	evictor := scheduler.New(sessions, cfg.Session.IdleTTL, cfg.Session.EvictInterval, logger)
	if err := evictor.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer evictor.Stop()

	logger.Info("bot started, press Ctrl+C to stop",
		slog.Any("languages", botConfig.Languages),
		slog.Int("workers", botConfig.Workers))
	return bot.New(api, machine, channel, botConfig, logger).Start(ctx)
}
