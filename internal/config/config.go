package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root application configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Database DatabaseConfig `yaml:"database"`
	Bot      BotConfig      `yaml:"bot"`
	Session  SessionConfig  `yaml:"session"`
	Log      LogConfig      `yaml:"log"`
}

// TelegramConfig holds Bot API settings.
type TelegramConfig struct {
	Token       string `yaml:"token"        env:"TELEGRAM_BOT_TOKEN"    env-required:"true"`
	PollTimeout int    `yaml:"poll_timeout" env:"TELEGRAM_POLL_TIMEOUT" env-default:"60"`
	Debug       bool   `yaml:"debug"        env:"TELEGRAM_DEBUG"        env-default:"false"`
}

// DatabaseConfig holds the term store connection settings.
type DatabaseConfig struct {
	Driver       string `yaml:"driver"         env:"DATABASE_DRIVER"         env-default:"sqlite3"`
	DSN          string `yaml:"dsn"            env:"DATABASE_DSN"`
	MaxOpenConns int    `yaml:"max_open_conns" env:"DATABASE_MAX_OPEN_CONNS" env-default:"10"`

	// Postgres connection parts, used when DSN is empty.
	PostgresHost     string `yaml:"postgres_host"     env:"POSTGRES_HOST"     env-default:"localhost"`
	PostgresPort     int    `yaml:"postgres_port"     env:"POSTGRES_PORT"     env-default:"5432"`
	PostgresUser     string `yaml:"postgres_user"     env:"POSTGRES_USER"`
	PostgresPassword string `yaml:"postgres_password" env:"POSTGRES_PASSWORD"`
	PostgresDB       string `yaml:"postgres_db"       env:"POSTGRES_DB"`
}

// BotConfig holds conversation settings.
type BotConfig struct {
	LanguagesRaw        string `yaml:"languages"            env:"BOT_LANGUAGES"            env-default:"eng,ru"`
	OptionMaxLength     int    `yaml:"option_max_length"    env:"BOT_OPTION_MAX_LENGTH"    env-default:"100"`
	DefinitionSeparator string `yaml:"definition_separator" env:"BOT_DEFINITION_SEPARATOR" env-default:"|"`
	RecentSuggestions   int    `yaml:"recent_suggestions"   env:"BOT_RECENT_SUGGESTIONS"   env-default:"5"`
	Workers             int    `yaml:"workers"              env:"BOT_WORKERS"              env-default:"8"`
	MaxUploadBytes      int    `yaml:"max_upload_bytes"     env:"BOT_MAX_UPLOAD_BYTES"     env-default:"5242880"`

	// Languages is parsed from LanguagesRaw during validation.
	Languages []string `yaml:"-" env:"-"`
}

// SessionConfig holds idle session eviction settings.
type SessionConfig struct {
	IdleTTL       time.Duration `yaml:"idle_ttl"       env:"SESSION_IDLE_TTL"       env-default:"24h"`
	EvictInterval time.Duration `yaml:"evict_interval" env:"SESSION_EVICT_INTERVAL" env-default:"10m"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// DataSource returns the DSN for the configured driver.
// For postgres an empty DSN is assembled from the POSTGRES_* parts.
func (c DatabaseConfig) DataSource() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
			c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresDB)
	}
	return "data/vocabot.db"
}

// ParseLanguages splits a comma-separated language list, lowercasing
// every code and dropping blanks and duplicates.
func ParseLanguages(raw string) []string {
	var langs []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(raw, ",") {
		lang := strings.ToLower(strings.TrimSpace(part))
		if lang == "" || seen[lang] {
			continue
		}
		seen[lang] = true
		langs = append(langs, lang)
	}
	return langs
}
