package bot

import (
	"github.com/example/vocabot/internal/config"
)

// BotConfig represents the configuration for the bot
type BotConfig struct {
	// Languages a user can keep a dictionary in, lowercased
	Languages []string
	// Separator between definitions entered in one message
	DefinitionSeparator string
	// Number of recent words offered as buttons, 0 turns suggestions off
	RecentSuggestions int
	// Number of event workers
	Workers int
	// Long polling timeout in seconds
	PollTimeout int
	// Largest accepted document
	MaxUploadBytes int64
}

// DefaultConfig returns the default bot configuration
func DefaultConfig() *BotConfig {
	return &BotConfig{
		Languages:           []string{"eng", "ru"},
		DefinitionSeparator: "|",
		RecentSuggestions:   5,
		Workers:             8,
		PollTimeout:         60,
		MaxUploadBytes:      5 << 20,
	}
}

// ConfigFromApp builds the bot configuration from the loaded application config
func ConfigFromApp(cfg *config.Config) *BotConfig {
	return &BotConfig{
		Languages:           cfg.Bot.Languages,
		DefinitionSeparator: cfg.Bot.DefinitionSeparator,
		RecentSuggestions:   cfg.Bot.RecentSuggestions,
		Workers:             cfg.Bot.Workers,
		PollTimeout:         cfg.Telegram.PollTimeout,
		MaxUploadBytes:      int64(cfg.Bot.MaxUploadBytes),
	}
}
