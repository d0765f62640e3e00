package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Supported values of DB_DRIVER.
const (
	DriverSQLite = "sqlite3"
	DriverMySQL  = "mysql"
)

// Config holds the runtime configuration of the notebook. All values are taken from the
// system's environment variables; every variable has a safe default or disables the feature
// it belongs to when absent.
//
// Usage example:
// > DB_PATH=./people.db UPLOAD_DIR=./uploads TELEGRAM_BOT_TOKEN=123:abc TELEGRAM_CHAT_ID=42 notebook serve
type Config struct {
	Port int `envconfig:"PORT" default:"8080"`

	DBDriver string `envconfig:"DB_DRIVER" default:"sqlite3"`
	DBPath   string `envconfig:"DB_PATH" default:"/data/people.db"`
	DBDSN    string `envconfig:"DB_DSN" default:""`

	UploadDir string `envconfig:"UPLOAD_DIR" default:"/data/uploads"`

	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
	TelegramChatID   string `envconfig:"TELEGRAM_CHAT_ID" default:""`
	TelegramAPIURL   string `envconfig:"TELEGRAM_API_URL" default:"https://api.telegram.org"`

	ReminderInterval   time.Duration `envconfig:"REMINDER_INTERVAL" default:"12h"`
	ReminderStartDelay time.Duration `envconfig:"REMINDER_START_DELAY" default:"3s"`
	ReminderTimezone   string        `envconfig:"REMINDER_TIMEZONE" default:"Local"`

	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat  string `envconfig:"LOG_FORMAT" default:"json"`
	GinLogging string `envconfig:"GIN_LOGGING" default:"on"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that cannot be defaulted away.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverSQLite:
		if strings.TrimSpace(c.DBPath) == "" {
			return fmt.Errorf("DB_PATH must not be empty for driver %s", c.DBDriver)
		}
	case DriverMySQL:
		if strings.TrimSpace(c.DBDSN) == "" {
			return fmt.Errorf("DB_DSN must be set for driver %s", c.DBDriver)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.ReminderInterval <= 0 {
		return fmt.Errorf("REMINDER_INTERVAL must be positive, got %s", c.ReminderInterval)
	}
	if c.ReminderStartDelay < 0 {
		return fmt.Errorf("REMINDER_START_DELAY must not be negative, got %s", c.ReminderStartDelay)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location resolves REMINDER_TIMEZONE. It defines which calendar day counts as "today" for
// birthday reminders.
func (c *Config) Location() (*time.Location, error) {
	if c.ReminderTimezone == "" || strings.EqualFold(c.ReminderTimezone, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIMEZONE %q: %w", c.ReminderTimezone, err)
	}
	return loc, nil
}

// RemindersEnabled reports whether both Telegram credentials are present.
func (c *Config) RemindersEnabled() bool {
	return strings.TrimSpace(c.TelegramBotToken) != "" && strings.TrimSpace(c.TelegramChatID) != ""
}

// RequestLogging reports whether HTTP request logging is on. GIN_LOGGING=off turns it off.
func (c *Config) RequestLogging() bool {
	return !strings.EqualFold(c.GinLogging, "off")
}
