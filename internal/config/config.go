// Package config loads the service configuration.
//
// Values are layered: the embedded defaults, then an optional TOML file, then
// a .env file, then the process environment. Later layers win.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Database   DatabaseConfig   `toml:"database"`
	Media      MediaConfig      `toml:"media"`
	Auth       AuthConfig       `toml:"auth"`
	Pagination PaginationConfig `toml:"pagination"`
	Reconcile  ReconcileConfig  `toml:"reconcile"`
	Log        LogConfig        `toml:"log"`
}

type ServerConfig struct {
	Port            int      `toml:"port"`
	Mode            string   `toml:"mode"`
	CORSOrigin      string   `toml:"cors_origin"`
	MaxMultipartMB  int64    `toml:"max_multipart_mb"`
	RateRPS         float64  `toml:"rate_rps"`
	RateBurst       int      `toml:"rate_burst"`
	ShutdownTimeout Duration `toml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver        string `toml:"driver"`
	SQLitePath    string `toml:"sqlite_path"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

type MediaConfig struct {
	Driver         string `toml:"driver"`
	DiskPath       string `toml:"disk_path"`
	DiskBaseURL    string `toml:"disk_base_url"`
	MinioEndpoint  string `toml:"minio_endpoint"`
	MinioAccessKey string `toml:"minio_access_key"`
	MinioSecretKey string `toml:"minio_secret_key"`
	MinioBucket    string `toml:"minio_bucket"`
	MinioSecure    bool   `toml:"minio_secure"`
	MinioPublicURL string `toml:"minio_public_url"`
}

type AuthConfig struct {
	JWTSecret string   `toml:"jwt_secret"`
	TokenTTL  Duration `toml:"token_ttl"`
}

type PaginationConfig struct {
	DefaultLimit int `toml:"default_limit"`
	MaxLimit     int `toml:"max_limit"`
}

type ReconcileConfig struct {
	StaleAfter Duration `toml:"stale_after"`
	// Interval between background passes while serving. Zero disables them.
	Interval Duration `toml:"interval"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration described by the embedded example file.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// Load builds the configuration. path may be empty; a missing file at path
// is only an error when it was named explicitly.
func Load(path string, explicit bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// A missing .env is fine; existing environment variables are not overridden.
	_ = godotenv.Load()

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = n
		}
	}
	dur := func(key string, dst *Duration) {
		if v, ok := lookup(key); ok && v != "" {
			if err := dst.UnmarshalText([]byte(v)); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			*dst = b
		}
	}

	num("PORT", &c.Server.Port)
	str("GIN_MODE", &c.Server.Mode)
	str("CORS_ORIGIN", &c.Server.CORSOrigin)
	if v, ok := lookup("MAX_MULTIPART_MB"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("MAX_MULTIPART_MB: %w", err))
		} else {
			c.Server.MaxMultipartMB = n
		}
	}
	if v, ok := lookup("RATE_RPS"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("RATE_RPS: %w", err))
		} else {
			c.Server.RateRPS = f
		}
	}
	num("RATE_BURST", &c.Server.RateBurst)
	dur("SHUTDOWN_TIMEOUT", &c.Server.ShutdownTimeout)

	str("DB_DRIVER", &c.Database.Driver)
	str("SQLITE_PATH", &c.Database.SQLitePath)
	str("MONGODB_URI", &c.Database.MongoURI)
	str("MONGODB_DATABASE", &c.Database.MongoDatabase)

	str("MEDIA_DRIVER", &c.Media.Driver)
	str("STORAGE_PATH", &c.Media.DiskPath)
	str("MEDIA_BASE_URL", &c.Media.DiskBaseURL)
	str("MINIO_ENDPOINT", &c.Media.MinioEndpoint)
	str("MINIO_ACCESS_KEY", &c.Media.MinioAccessKey)
	str("MINIO_SECRET_KEY", &c.Media.MinioSecretKey)
	str("MINIO_BUCKET", &c.Media.MinioBucket)
	flag("MINIO_SECURE", &c.Media.MinioSecure)
	str("MINIO_PUBLIC_URL", &c.Media.MinioPublicURL)

	str("JWT_SECRET", &c.Auth.JWTSecret)
	dur("TOKEN_TTL", &c.Auth.TokenTTL)

	num("PAGE_DEFAULT_LIMIT", &c.Pagination.DefaultLimit)
	num("PAGE_MAX_LIMIT", &c.Pagination.MaxLimit)

	dur("RECONCILE_STALE_AFTER", &c.Reconcile.StaleAfter)
	dur("RECONCILE_INTERVAL", &c.Reconcile.Interval)

	str("LOG_LEVEL", &c.Log.Level)

	return errors.Join(errs...)
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		errs = append(errs, fmt.Errorf("server.mode %q must be debug, release or test", c.Server.Mode))
	}
	if c.Server.MaxMultipartMB <= 0 {
		errs = append(errs, errors.New("server.max_multipart_mb must be positive"))
	}

	switch c.Database.Driver {
	case "sqlite":
		if c.Database.SQLitePath == "" {
			errs = append(errs, errors.New("database.sqlite_path is required"))
		}
	case "mongo":
		if c.Database.MongoURI == "" || c.Database.MongoDatabase == "" {
			errs = append(errs, errors.New("database.mongo_uri and database.mongo_database are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown database driver %q", c.Database.Driver))
	}

	switch c.Media.Driver {
	case "disk":
		if c.Media.DiskPath == "" {
			errs = append(errs, errors.New("media.disk_path is required"))
		}
	case "minio":
		if c.Media.MinioEndpoint == "" || c.Media.MinioBucket == "" {
			errs = append(errs, errors.New("media.minio_endpoint and media.minio_bucket are required"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown media driver %q", c.Media.Driver))
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		errs = append(errs, errors.New("auth.jwt_secret is required"))
	}
	if c.Auth.TokenTTL.Duration <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}

	if c.Pagination.DefaultLimit <= 0 || c.Pagination.MaxLimit <= 0 {
		errs = append(errs, errors.New("pagination limits must be positive"))
	} else if c.Pagination.DefaultLimit > c.Pagination.MaxLimit {
		errs = append(errs, errors.New("pagination.default_limit exceeds max_limit"))
	}

	if c.Reconcile.StaleAfter.Duration <= 0 {
		errs = append(errs, errors.New("reconcile.stale_after must be positive"))
	}
	if c.Reconcile.Interval.Duration < 0 {
		errs = append(errs, errors.New("reconcile.interval must not be negative"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Server.Port)
}
