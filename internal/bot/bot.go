package bot

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Bot represents the Telegram bot application
type Bot struct {
	api        *tgbotapi.BotAPI
	handler    Handler
	channel    Channel
	downloader *downloader
	config     *BotConfig
	log        *slog.Logger
}

// New creates a new bot instance. The handler is normally a *Machine
// sending through NewTelegramChannel(api).
func New(api *tgbotapi.BotAPI, handler Handler, channel Channel, cfg *BotConfig, log *slog.Logger) *Bot {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Bot{
		api:     api,
		handler: handler,
		channel: channel,
		downloader: &downloader{
			api:      api,
			client:   &http.Client{Timeout: time.Minute},
			maxBytes: cfg.MaxUploadBytes,
		},
		config: cfg,
		log:    log,
	}
}

// Start receives updates until ctx is done, then waits for events
// already accepted to be handled.
func (b *Bot) Start(ctx context.Context) error {
	b.log.Info("authorized on account", slog.String("username", b.api.Self.UserName))

	// Set up the update configuration
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = b.config.PollTimeout

	updates := b.api.GetUpdatesChan(updateConfig)
	events := make(chan Event)

	go func() {
		defer close(events)
		for {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				ev, ok := eventFromUpdate(update)
				if !ok {
					continue
				}
				select {
				case events <- ev:
				case <-ctx.Done():
					b.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()

	pool := NewPool(HandlerFunc(b.handle), b.config.Workers)
	if err := pool.Run(ctx, events); err != nil {
		return fmt.Errorf("event pool failed: %w", err)
	}
	b.log.Info("bot stopped")
	return nil
}

// handle fetches uploaded documents before passing events on
func (b *Bot) handle(ctx context.Context, ev Event) error {
	if ev.Kind == EventDocument && ev.Document != nil && ev.Document.Data == nil {
		data, err := b.downloader.download(ctx, ev.Document)
		if err != nil {
			b.log.Warn("failed to download document",
				slog.Int64("user_id", ev.UserID),
				slog.String("file", ev.Document.FileName),
				slog.String("error", err.Error()))
			if sendErr := b.channel.SendText(ctx, ev.UserID, msgUnreadableDocument, nil); sendErr != nil {
				b.log.Error("failed to notify user",
					slog.Int64("user_id", ev.UserID),
					slog.String("error", sendErr.Error()))
			}
			return err
		}
		ev.Document.Data = data
	}
	return b.handler.Handle(ctx, ev)
}
