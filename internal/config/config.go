// Package config loads runtime settings from .env files and the environment.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage and backend selectors.
const (
	StoreFile     = "file"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"

	SessionRedis  = "redis"
	SessionMemory = "memory"

	AvatarLocal = "local"
	AvatarS3    = "s3"
)

type Config struct {
	Port       string
	Production bool

	SessionSecret  string
	SessionTTL     time.Duration
	SessionCookie  string
	SessionBackend string
	RedisURL       string

	StoreDriver   string
	UsersFile     string
	DatabaseURL   string
	SeedUsersFile string

	AvatarStorage  string
	UploadDir      string
	MaxAvatarBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	OrphanSweepSchedule string
	OrphanGracePeriod   time.Duration
	ReclaimMaxRetries   uint64

	AllowPlaintextPasswords bool
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "3001")
	v.SetDefault("app_env", "development")
	v.SetDefault("session_secret", "secret123")
	v.SetDefault("session_ttl", 24*time.Hour)
	v.SetDefault("session_cookie", "sid")
	v.SetDefault("session_backend", SessionRedis)
	v.SetDefault("redis_url", "redis://localhost:6379/0")
	v.SetDefault("store_driver", StoreFile)
	v.SetDefault("users_file", "users.json")
	v.SetDefault("database_url", "")
	v.SetDefault("seed_users_file", "")
	v.SetDefault("avatar_storage", AvatarLocal)
	v.SetDefault("upload_dir", "uploads")
	v.SetDefault("max_avatar_bytes", 2*1024*1024)
	v.SetDefault("s3_bucket", "avatars")
	v.SetDefault("s3_region", "us-east-1")
	v.SetDefault("s3_endpoint", "")
	v.SetDefault("s3_access_key", "")
	v.SetDefault("s3_secret_key", "")
	v.SetDefault("orphan_sweep_schedule", "@every 1h")
	v.SetDefault("orphan_grace_period", 15*time.Minute)
	v.SetDefault("reclaim_max_retries", 3)
	v.SetDefault("allow_plaintext_passwords", true)
}

// Load reads .env.local or .env when present, then resolves every setting
// from the environment with defaults applied.
func Load() (*Config, error) {
	if err := godotenv.Load(".env.local"); err != nil {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		Port:       v.GetString("port"),
		Production: strings.EqualFold(v.GetString("app_env"), "production"),

		SessionSecret:  v.GetString("session_secret"),
		SessionTTL:     v.GetDuration("session_ttl"),
		SessionCookie:  v.GetString("session_cookie"),
		SessionBackend: strings.ToLower(v.GetString("session_backend")),
		RedisURL:       v.GetString("redis_url"),

		StoreDriver:   strings.ToLower(v.GetString("store_driver")),
		UsersFile:     v.GetString("users_file"),
		DatabaseURL:   v.GetString("database_url"),
		SeedUsersFile: v.GetString("seed_users_file"),

		AvatarStorage:  strings.ToLower(v.GetString("avatar_storage")),
		UploadDir:      v.GetString("upload_dir"),
		MaxAvatarBytes: v.GetInt64("max_avatar_bytes"),
		S3Bucket:       v.GetString("s3_bucket"),
		S3Region:       v.GetString("s3_region"),
		S3Endpoint:     v.GetString("s3_endpoint"),
		S3AccessKey:    v.GetString("s3_access_key"),
		S3SecretKey:    v.GetString("s3_secret_key"),

		OrphanSweepSchedule: v.GetString("orphan_sweep_schedule"),
		OrphanGracePeriod:   v.GetDuration("orphan_grace_period"),
		ReclaimMaxRetries:   v.GetUint64("reclaim_max_retries"),

		AllowPlaintextPasswords: v.GetBool("allow_plaintext_passwords"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreFile:
		if c.UsersFile == "" {
			return fmt.Errorf("USERS_FILE is required for store driver %q", c.StoreDriver)
		}
	case StorePostgres, StoreSQLite:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.SessionBackend {
	case SessionRedis, SessionMemory:
	default:
		return fmt.Errorf("unknown SESSION_BACKEND %q", c.SessionBackend)
	}

	switch c.AvatarStorage {
	case AvatarLocal:
		if c.UploadDir == "" {
			return fmt.Errorf("UPLOAD_DIR is required for local avatar storage")
		}
	case AvatarS3:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required for s3 avatar storage")
		}
	default:
		return fmt.Errorf("unknown AVATAR_STORAGE %q", c.AvatarStorage)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if c.MaxAvatarBytes <= 0 {
		return fmt.Errorf("MAX_AVATAR_BYTES must be positive")
	}
	if c.Production && c.SessionSecret == "secret123" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}
