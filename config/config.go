package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the process configuration, read once at startup.
type Config struct {
	Environment string
	Port        string
	LogLevel    string
	Version     string

	DB DatabaseConfig

	JWTSecret string
	JWTTTL    time.Duration

	RedisURL        string
	LoginRateLimit  int
	LoginRateWindow time.Duration

	FrontendURL     string
	FrontendDistDir string
	BackendURL      string

	Upload UploadConfig

	DefaultHeroImageURL string
}

// DatabaseConfig holds store connection and pool settings.
type DatabaseConfig struct {
	Driver   string // mysql, postgres or sqlite
	URL      string // full DSN; wins over the discrete fields
	Host     string
	Port     int
	User     string
	Password string
	Name     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
	AutoMigrate     bool
}

// UploadConfig selects and configures the image store.
type UploadConfig struct {
	Backend      string // disk, s3 or gcs
	Dir          string
	MaxBytes     int64
	S3Bucket     string
	AWSRegion    string
	S3PublicURL  string
	GCSBucket    string
	GCSPublicURL string
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadEnvFile loads .env into the process environment outside production.
// A missing file is not an error.
func LoadEnvFile(paths ...string) error {
	if env := firstNonEmpty(os.Getenv("APP_ENV"), os.Getenv("NODE_ENV")); env == "production" {
		return nil
	}
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// Load reads the configuration from the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Environment: firstNonEmpty(v.GetString("APP_ENV"), v.GetString("NODE_ENV"), "development"),
		Port:        v.GetString("PORT"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		Version:     v.GetString("APP_VERSION"),
		DB: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("DB_DRIVER")),
			URL:             v.GetString("DATABASE_URL"),
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime: v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			QueryTimeout:    v.GetDuration("DB_QUERY_TIMEOUT"),
			AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
		},
		JWTSecret:       v.GetString("JWT_SECRET"),
		JWTTTL:          v.GetDuration("JWT_TTL"),
		RedisURL:        v.GetString("REDIS_URL"),
		LoginRateLimit:  v.GetInt("LOGIN_RATE_LIMIT"),
		LoginRateWindow: v.GetDuration("LOGIN_RATE_WINDOW"),
		FrontendURL:     v.GetString("FRONTEND_URL"),
		FrontendDistDir: v.GetString("FRONTEND_DIST_DIR"),
		BackendURL:      strings.TrimRight(v.GetString("BACKEND_URL"), "/"),
		Upload: UploadConfig{
			Backend:      strings.ToLower(v.GetString("UPLOAD_BACKEND")),
			Dir:          v.GetString("UPLOAD_DIR"),
			MaxBytes:     v.GetInt64("UPLOAD_MAX_BYTES"),
			S3Bucket:     v.GetString("S3_BUCKET"),
			AWSRegion:    v.GetString("AWS_REGION"),
			S3PublicURL:  strings.TrimRight(v.GetString("S3_PUBLIC_URL"), "/"),
			GCSBucket:    v.GetString("GCS_BUCKET"),
			GCSPublicURL: strings.TrimRight(v.GetString("GCS_PUBLIC_URL"), "/"),
		},
		DefaultHeroImageURL: v.GetString("DEFAULT_HERO_IMAGE_URL"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("APP_VERSION", "dev")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 5*time.Minute)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", time.Minute)
	v.SetDefault("DB_QUERY_TIMEOUT", 10*time.Second)
	v.SetDefault("DB_AUTO_MIGRATE", false)
	v.SetDefault("JWT_TTL", time.Hour)
	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("LOGIN_RATE_WINDOW", 15*time.Minute)
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("UPLOAD_BACKEND", "disk")
	v.SetDefault("UPLOAD_DIR", "public/images")
	v.SetDefault("UPLOAD_MAX_BYTES", 5*1024*1024)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("DEFAULT_HERO_IMAGE_URL", "https://res.cloudinary.com/youth-spark/image/upload/v1/youth_spark/default-hero.jpg")
}

// Validate reports missing or contradictory settings.
func (c *Config) Validate() error {
	var problems []string

	switch c.DB.Driver {
	case "mysql", "postgres":
		if c.DB.URL == "" {
			for name, val := range map[string]string{
				"DB_HOST": c.DB.Host,
				"DB_USER": c.DB.User,
				"DB_NAME": c.DB.Name,
			} {
				if val == "" {
					problems = append(problems, name+" is required when DATABASE_URL is empty")
				}
			}
		}
	case "sqlite":
		if c.DB.URL == "" && c.DB.Name == "" {
			problems = append(problems, "DATABASE_URL or DB_NAME is required for sqlite")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown DB_DRIVER %q", c.DB.Driver))
	}

	switch c.Upload.Backend {
	case "disk":
		if c.Upload.Dir == "" {
			problems = append(problems, "UPLOAD_DIR is required for the disk backend")
		}
	case "s3":
		if c.Upload.S3Bucket == "" {
			problems = append(problems, "S3_BUCKET is required for the s3 backend")
		}
	case "gcs":
		if c.Upload.GCSBucket == "" {
			problems = append(problems, "GCS_BUCKET is required for the gcs backend")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown UPLOAD_BACKEND %q", c.Upload.Backend))
	}

	if len(problems) > 0 {
		sort.Strings(problems)
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequireJWTSecret is checked by commands that issue or verify tokens.
func (c *Config) RequireJWTSecret() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
