package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Unsplash UnsplashConfig `mapstructure:"unsplash"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Share    ShareConfig    `mapstructure:"share"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Download DownloadConfig `mapstructure:"download"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type UnsplashConfig struct {
	BaseURL   string        `mapstructure:"base_url"`
	AccessKey string        `mapstructure:"access_key"`
	PerPage   int           `mapstructure:"per_page"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

type FeedConfig struct {
	Debounce        time.Duration `mapstructure:"debounce"`
	ScrollThreshold float64       `mapstructure:"scroll_threshold"`
}

type ShareConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Message string `mapstructure:"message"`
}

// StorageConfig selects where saved downloads go. Type "local" writes into
// LocalDir; "s3", "r2" and "s3compatible" use the bucket settings.
type StorageConfig struct {
	Type      string `mapstructure:"type"`
	LocalDir  string `mapstructure:"local_dir"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	UseSSL    bool   `mapstructure:"use_ssl"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	PublicURL string `mapstructure:"public_url"`
	Prefix    string `mapstructure:"prefix"`
}

type DownloadConfig struct {
	Workers int           `mapstructure:"workers"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from configPath, or from config.yaml in ./configs
// or the working directory when configPath is empty. Environment variables
// override file values.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets are usually provided under their conventional names
	v.BindEnv("unsplash.access_key", "UNSPLASH_ACCESS_KEY")
	v.BindEnv("unsplash.base_url", "UNSPLASH_BASE_URL")
	v.BindEnv("storage.access_key", "STORAGE_ACCESS_KEY")
	v.BindEnv("storage.secret_key", "STORAGE_SECRET_KEY")
	v.BindEnv("storage.endpoint", "STORAGE_ENDPOINT")
	v.BindEnv("storage.bucket", "STORAGE_BUCKET")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("unsplash.base_url", "https://api.unsplash.com")
	v.SetDefault("unsplash.per_page", 30)
	v.SetDefault("unsplash.timeout", 15*time.Second)
	v.SetDefault("feed.debounce", 300*time.Millisecond)
	v.SetDefault("feed.scroll_threshold", 2.0)
	v.SetDefault("share.base_url", "https://api.whatsapp.com/send")
	v.SetDefault("share.message", "Check out this awesome photo: ")
	v.SetDefault("storage.type", "local")
	v.SetDefault("storage.local_dir", "./downloads")
	v.SetDefault("storage.use_ssl", true)
	v.SetDefault("download.workers", 4)
	v.SetDefault("download.timeout", 60*time.Second)
}

// Validate rejects settings the gallery cannot run with.
func (c *Config) Validate() error {
	if c.Unsplash.PerPage <= 0 {
		return fmt.Errorf("unsplash.per_page must be positive, got %d", c.Unsplash.PerPage)
	}
	if c.Feed.Debounce < 0 {
		return fmt.Errorf("feed.debounce must not be negative, got %s", c.Feed.Debounce)
	}
	if c.Download.Workers <= 0 {
		return fmt.Errorf("download.workers must be positive, got %d", c.Download.Workers)
	}
	switch c.Storage.Type {
	case "local":
		if c.Storage.LocalDir == "" {
			return fmt.Errorf("storage.local_dir is required for local storage")
		}
	case "s3", "r2", "s3compatible":
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for %s storage", c.Storage.Type)
		}
	default:
		return fmt.Errorf("unknown storage.type %q", c.Storage.Type)
	}
	return nil
}
