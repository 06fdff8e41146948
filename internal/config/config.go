package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Storage StorageConfig `mapstructure:"storage"`
	Jobs    JobsConfig    `mapstructure:"jobs"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Notify  NotifyConfig  `mapstructure:"notify"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type StorageConfig struct {
	Type      string `mapstructure:"type"`
	Container string `mapstructure:"container"`
	Access    string `mapstructure:"access"`

	// AWS S3 and S3 compatible stores
	Region       string `mapstructure:"region"`
	Endpoint     string `mapstructure:"endpoint"`
	AccessKey    string `mapstructure:"access_key"`
	SecretKey    string `mapstructure:"secret_key"`
	UsePathStyle bool   `mapstructure:"use_path_style"`

	// Local filesystem
	LocalPath string `mapstructure:"local_path"`
}

type JobsConfig struct {
	MaxConcurrentUploads int `mapstructure:"max_concurrent_uploads"`
}

type CacheConfig struct {
	Root            string `mapstructure:"root"`
	RetentionDays   int    `mapstructure:"retention_days"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
}

type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram"`
}

type TelegramConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	BotToken     string `mapstructure:"bot_token"`
	ChatID       string `mapstructure:"chat_id"`
	OnlyFailures bool   `mapstructure:"only_failures"`
}

const envPrefix = "SITESHOT"

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "siteshot-storage")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("storage.type", "s3")
	v.SetDefault("storage.container", "screenshots")
	v.SetDefault("storage.access", "public-read")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("jobs.max_concurrent_uploads", 0)
	v.SetDefault("cache.retention_days", 14)
	v.SetDefault("cache.cleanup_schedule", "0 0 3 * * *")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"storage.endpoint",
		"storage.access_key",
		"storage.secret_key",
		"storage.use_path_style",
		"storage.local_path",
		"cache.root",
		"notify.telegram.enabled",
		"notify.telegram.bot_token",
		"notify.telegram.chat_id",
		"notify.telegram.only_failures",
	} {
		_ = v.BindEnv(key)
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Storage.Container) == "" {
		return fmt.Errorf("storage.container is required")
	}

	switch c.Storage.Access {
	case "private", "public-read":
	default:
		return fmt.Errorf("storage.access must be private or public-read, got %q", c.Storage.Access)
	}

	switch c.Storage.Type {
	case "s3":
		if c.Storage.Region == "" {
			return fmt.Errorf("storage.region is required for s3")
		}
		if (c.Storage.AccessKey == "") != (c.Storage.SecretKey == "") {
			return fmt.Errorf("storage.access_key and storage.secret_key must be set together")
		}
	case "local":
		if c.Storage.LocalPath == "" {
			return fmt.Errorf("storage.local_path is required for local storage")
		}
	default:
		return fmt.Errorf("unsupported storage.type: %s", c.Storage.Type)
	}

	if c.Jobs.MaxConcurrentUploads < 0 {
		return fmt.Errorf("jobs.max_concurrent_uploads cannot be negative")
	}

	if c.Cache.RetentionDays < 0 {
		return fmt.Errorf("cache.retention_days cannot be negative")
	}
	if c.Cache.RetentionDays > 0 && c.Cache.Root != "" && c.Cache.CleanupSchedule == "" {
		return fmt.Errorf("cache.cleanup_schedule is required when cache cleanup is enabled")
	}

	if c.Notify.Telegram.Enabled {
		if c.Notify.Telegram.BotToken == "" {
			return fmt.Errorf("notify.telegram.bot_token is required when telegram is enabled")
		}
		if c.Notify.Telegram.ChatID == "" {
			return fmt.Errorf("notify.telegram.chat_id is required when telegram is enabled")
		}
	}

	return nil
}

// CacheCleanupEnabled reports whether the scheduled cache sweep should run.
func (c *Config) CacheCleanupEnabled() bool {
	return c.Cache.Root != "" && c.Cache.RetentionDays > 0
}
