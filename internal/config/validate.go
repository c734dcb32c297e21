package config

import "fmt"

// maxPollOptionLength is the Telegram limit for a poll option label.
const maxPollOptionLength = 100

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("telegram.token is required")
	}

	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite3 or postgres (got %q)", c.Database.Driver)
	}

	if err := c.Bot.validate(); err != nil {
		return fmt.Errorf("bot: %w", err)
	}

	if c.Session.IdleTTL < 0 {
		return fmt.Errorf("session.idle_ttl must be >= 0 (got %s)", c.Session.IdleTTL)
	}
	if c.Session.IdleTTL > 0 && c.Session.EvictInterval <= 0 {
		return fmt.Errorf("session.evict_interval must be > 0 when idle_ttl is set (got %s)", c.Session.EvictInterval)
	}

	return nil
}

func (b *BotConfig) validate() error {
	b.Languages = ParseLanguages(b.LanguagesRaw)
	if len(b.Languages) == 0 {
		return fmt.Errorf("languages must list at least one language")
	}
	if b.OptionMaxLength < 1 || b.OptionMaxLength > maxPollOptionLength {
		return fmt.Errorf("option_max_length must be in 1..%d (got %d)", maxPollOptionLength, b.OptionMaxLength)
	}
	if b.DefinitionSeparator == "" {
		return fmt.Errorf("definition_separator must not be empty")
	}
	if b.RecentSuggestions < 0 {
		return fmt.Errorf("recent_suggestions must be >= 0 (got %d)", b.RecentSuggestions)
	}
	if b.Workers < 1 {
		return fmt.Errorf("workers must be >= 1 (got %d)", b.Workers)
	}
	if b.MaxUploadBytes < 1 {
		return fmt.Errorf("max_upload_bytes must be >= 1 (got %d)", b.MaxUploadBytes)
	}
	return nil
}
