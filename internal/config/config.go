// Package config loads runtime settings from configs/config.yml, a .env file
// and BLOG_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	envPrefix         = "BLOG"
	defaultConfigName = "config"
	defaultConfigDir  = "configs"

	// DevSessionSecret is only acceptable when server.dev is on.
	DevSessionSecret = "dev-only-session-secret"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	DB      DBConfig      `mapstructure:"db"`
	Session SessionConfig `mapstructure:"session"`
	Upload  UploadConfig  `mapstructure:"upload"`
	S3      S3Config      `mapstructure:"s3"`
	Log     LogConfig     `mapstructure:"log"`
	Feed    FeedConfig    `mapstructure:"feed"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
	// Dev re-reads templates from disk and injects the live-reload script.
	Dev         bool   `mapstructure:"dev"`
	TemplateDir string `mapstructure:"template_dir"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"` // sqlite | pgx
	DSN    string `mapstructure:"dsn"`
}

type SessionConfig struct {
	Secret     string        `mapstructure:"secret"`
	CookieName string        `mapstructure:"cookie_name"`
	TTL        time.Duration `mapstructure:"ttl"`
	Secure     bool          `mapstructure:"secure"`
}

type UploadConfig struct {
	Backend  string `mapstructure:"backend"` // local | s3
	Dir      string `mapstructure:"dir"`
	URLPath  string `mapstructure:"url_path"`
	MaxBytes int64  `mapstructure:"max_bytes"`
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	PublicURL string `mapstructure:"public_url"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console | json
}

type FeedConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Size     int           `mapstructure:"size"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.dev", false)
	v.SetDefault("server.template_dir", "web/templates")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "data.db")

	v.SetDefault("session.secret", "")
	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", 24*time.Hour)
	v.SetDefault("session.secure", false)

	v.SetDefault("upload.backend", "local")
	v.SetDefault("upload.dir", "static/upload")
	v.SetDefault("upload.url_path", "/static/upload")
	v.SetDefault("upload.max_bytes", int64(8<<20))

	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.access_key", "")
	v.SetDefault("s3.secret_key", "")
	v.SetDefault("s3.public_url", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("feed.interval", 5*time.Second)
	v.SetDefault("feed.size", 5)
}

// Load reads configuration. dir is searched for config.yml; an empty dir means
// "configs". A missing file is fine, a malformed one is not.
func Load(dir string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	if dir == "" {
		dir = defaultConfigDir
	}

	v := viper.New()
	setDefaults(v)

	v.AddConfigPath(dir)
	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Session.Secret == "" && cfg.Server.Dev {
		cfg.Session.Secret = DevSessionSecret
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "sqlite", "pgx":
	default:
		return fmt.Errorf("db.driver: unsupported value %q", c.DB.Driver)
	}
	if c.DB.DSN == "" {
		return errors.New("db.dsn is required")
	}

	if c.Session.Secret == "" {
		return errors.New("session.secret is required outside dev mode")
	}
	if c.Session.TTL <= 0 {
		return errors.New("session.ttl must be positive")
	}

	switch c.Upload.Backend {
	case "local":
		if c.Upload.Dir == "" {
			return errors.New("upload.dir is required for the local backend")
		}
	case "s3":
		if c.S3.Bucket == "" {
			return errors.New("s3.bucket is required for the s3 backend")
		}
	default:
		return fmt.Errorf("upload.backend: unsupported value %q", c.Upload.Backend)
	}

	if c.Feed.Interval <= 0 {
		return errors.New("feed.interval must be positive")
	}
	return nil
}
