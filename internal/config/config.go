// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every environment variable name.
const Prefix = "UNREADWATCH"

// Store drivers.
const (
	DriverSQLite = "sqlite"
	DriverFile   = "file"
)

// SMTPConfig configures the optional email mirror.
type SMTPConfig struct {
	Host       string `envconfig:"HOST"`
	Port       int    `envconfig:"PORT" default:"587"`
	Username   string `envconfig:"USERNAME"`
	Password   string `envconfig:"PASSWORD"`
	From       string `envconfig:"FROM"`
	To         string `envconfig:"TO"`
	Encryption string `envconfig:"ENCRYPTION" default:"starttls"`
}

// Enabled reports whether enough is set to send mail.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.From != "" && s.To != ""
}

// TelegramConfig configures the optional Telegram mirror.
type TelegramConfig struct {
	Token  string `envconfig:"TOKEN"`
	ChatID int64  `envconfig:"CHAT_ID"`
}

// Enabled reports whether the Telegram mirror is configured.
func (t TelegramConfig) Enabled() bool {
	return t.Token != "" && t.ChatID != 0
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIBaseURL   string        `envconfig:"API_BASE_URL" default:"https://api.v2.walletchat.fun"`
	ServiceName  string        `envconfig:"SERVICE_NAME" default:"WalletChat.fun"`
	PollSchedule string        `envconfig:"POLL_SCHEDULE" default:"1m"`
	FetchTimeout time.Duration `envconfig:"FETCH_TIMEOUT" default:"10s"`
	ListenAddr   string        `envconfig:"LISTEN_ADDR" default:"127.0.0.1:8080"`
	StoreDriver  string        `envconfig:"STORE_DRIVER" default:"sqlite"`
	DBPath       string        `envconfig:"DB_PATH" default:"unreadwatch.db"`
	InstanceID   string        `envconfig:"INSTANCE_ID" default:"default"`
	SecretKeyHex string        `envconfig:"SECRET_KEY"`

	// Bootstrap credential, applied only while the store holds none.
	APIKey  string `envconfig:"API_KEY"`
	Address string `envconfig:"ADDRESS"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"text"`
	LogFile   string `envconfig:"LOG_FILE"`

	SMTP     SMTPConfig     `envconfig:"SMTP"`
	Telegram TelegramConfig `envconfig:"TELEGRAM"`

	// Derived by Load.
	SecretKey []byte `ignored:"true"`
}

// HasBootstrapCredentials reports whether both bootstrap values are set.
func (c *Config) HasBootstrapCredentials() bool {
	return c.APIKey != "" && c.Address != ""
}

// Load reads configuration from UNREADWATCH_* environment variables and
// returns a validated Config. Every variable is optional.
func Load() (*Config, error) {
	var c Config
	if err := envconfig.Process(Prefix, &c); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s_API_BASE_URL must be an absolute URL, got %q", Prefix, c.APIBaseURL)
	}

	c.PollSchedule = strings.TrimSpace(c.PollSchedule)
	if c.PollSchedule == "" {
		return fmt.Errorf("%s_POLL_SCHEDULE must not be empty", Prefix)
	}

	if c.FetchTimeout <= 0 {
		return fmt.Errorf("%s_FETCH_TIMEOUT must be positive, got %s", Prefix, c.FetchTimeout)
	}

	c.StoreDriver = strings.ToLower(strings.TrimSpace(c.StoreDriver))
	if c.StoreDriver != DriverSQLite && c.StoreDriver != DriverFile {
		return fmt.Errorf("%s_STORE_DRIVER must be %q or %q, got %q", Prefix, DriverSQLite, DriverFile, c.StoreDriver)
	}

	if strings.TrimSpace(c.InstanceID) == "" {
		return fmt.Errorf("%s_INSTANCE_ID must not be empty", Prefix)
	}

	if c.SecretKeyHex != "" {
		key, err := hex.DecodeString(c.SecretKeyHex)
		if err != nil || len(key) != 32 {
			return fmt.Errorf("%s_SECRET_KEY must be 64 hex characters (32 bytes)", Prefix)
		}
		c.SecretKey = key
	}

	if (c.APIKey == "") != (c.Address == "") {
		return fmt.Errorf("%s_API_KEY and %s_ADDRESS must be set together", Prefix, Prefix)
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%s_LOG_FORMAT must be \"text\" or \"json\", got %q", Prefix, c.LogFormat)
	}

	switch c.SMTP.Encryption {
	case "none", "starttls", "ssl_tls":
	default:
		return fmt.Errorf("%s_SMTP_ENCRYPTION must be none, starttls, or ssl_tls, got %q", Prefix, c.SMTP.Encryption)
	}

	return nil
}
