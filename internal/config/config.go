// Package config loads service configuration from an optional YAML file and
// the environment (AWTC_ prefix), validates it, and supports hot reload.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Store     StoreConfig     `mapstructure:"store"`
	Push      PushConfig      `mapstructure:"push"`
	Messaging MessagingConfig `mapstructure:"messaging"`
	Log       LogConfig       `mapstructure:"log"`

	// live holds the hot-reloadable subset. The watch goroutine swaps the
	// pointer; request paths read through the accessors below, never the
	// struct fields, so reloads cannot race in-flight requests.
	live     atomic.Pointer[liveSettings]
	logLevel slog.LevelVar
}

type liveSettings struct {
	page         string
	historyLimit int
}

// MessagingPage returns the current messaging view prefix, reflecting file
// reloads.
func (c *Config) MessagingPage() string {
	if s := c.live.Load(); s != nil {
		return s.page
	}
	return c.Messaging.Page
}

// HistoryLimit returns the current per-conversation history cap.
func (c *Config) HistoryLimit() int {
	if s := c.live.Load(); s != nil {
		return s.historyLimit
	}
	return c.Messaging.HistoryLimit
}

// LogLevel is the leveler handed to slog handlers; reloads adjust it in
// place so the running logger follows the file.
func (c *Config) LogLevel() *slog.LevelVar { return &c.logLevel }

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type StoreConfig struct {
	// Driver selects the persistence adapter: "postgres" or "memory".
	Driver   string `mapstructure:"driver" validate:"oneof=postgres memory"`
	DSN      string `mapstructure:"dsn" validate:"required_if=Driver postgres"`
	MaxConns int32  `mapstructure:"max_conns"`
}

type PushConfig struct {
	Enabled         bool   `mapstructure:"enabled"`
	VAPIDPublicKey  string `mapstructure:"vapid_public_key" validate:"required_if=Enabled true"`
	VAPIDPrivateKey string `mapstructure:"vapid_private_key" validate:"required_if=Enabled true"`
	// Subscriber is the contact URI sent to push services, e.g. mailto:.
	Subscriber string `mapstructure:"subscriber" validate:"required_if=Enabled true"`
	TTLSeconds int    `mapstructure:"ttl_seconds"`
}

type MessagingConfig struct {
	// Page is the client route of the messaging view; sessions reporting a
	// page under this prefix have push notifications suppressed.
	Page         string        `mapstructure:"page" validate:"required"`
	HistoryLimit int           `mapstructure:"history_limit"`
	MailboxSize  int           `mapstructure:"mailbox_size" validate:"gt=0"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
}

type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Load reads configuration with precedence env > file > defaults.
// configFile may be empty.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.addr", ":8087")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.max_conns", 8)
	// Push stays off until VAPID keys are configured. Secret-bearing keys
	// default empty so env overrides are picked up by Unmarshal.
	v.SetDefault("push.enabled", false)
	v.SetDefault("push.vapid_public_key", "")
	v.SetDefault("push.vapid_private_key", "")
	v.SetDefault("push.subscriber", "")
	v.SetDefault("push.ttl_seconds", 60)
	v.SetDefault("messaging.page", "/messages")
	v.SetDefault("messaging.history_limit", 200)
	v.SetDefault("messaging.mailbox_size", 256)
	v.SetDefault("messaging.send_timeout", 500*time.Millisecond)
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("AWTC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.apply(&cfg)

	// Reload on file change; only safe-to-flip values are picked up live.
	if configFile != "" {
		v.OnConfigChange(func(e fsnotify.Event) {
			var next Config
			if err := v.Unmarshal(&next); err != nil || next.Validate() != nil {
				slog.Warn("config reload skipped", "file", e.Name)
				return
			}
			cfg.apply(&next)
			slog.Info("config reloaded", "file", e.Name)
		})
		v.WatchConfig()
	}

	return &cfg, nil
}

// apply publishes the reloadable values of src as the live snapshot.
func (c *Config) apply(src *Config) {
	c.live.Store(&liveSettings{
		page:         src.Messaging.Page,
		historyLimit: src.Messaging.HistoryLimit,
	})
	c.logLevel.Set(src.Log.SlogLevel())
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: validate: %w", err)
	}
	return nil
}

// SlogLevel maps the configured level onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch c.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
