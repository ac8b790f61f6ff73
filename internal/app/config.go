package app

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds runtime configuration for the console and its worker.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`

	RateLimitPerMinute int `envconfig:"RATE_LIMIT_PER_MINUTE" default:"300"`

	APIBaseURL    string        `envconfig:"API_BASE_URL" default:"http://127.0.0.1:8000"`
	APIPrefix     string        `envconfig:"API_PREFIX" default:"/api"`
	APIAuthPrefix string        `envconfig:"API_AUTH_PREFIX" default:"/auth"`
	APITimeout    time.Duration `envconfig:"API_TIMEOUT" default:"20s"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	RedisPassword string        `envconfig:"REDIS_PASSWORD"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	DisplayTZ    string `envconfig:"DISPLAY_TZ" default:"Europe/Moscow"`
	HistoryLimit int    `envconfig:"HISTORY_LIMIT" default:"50"`

	WorkerUsername string `envconfig:"WORKER_USERNAME"`
	WorkerPassword string `envconfig:"WORKER_PASSWORD"`
	ImportCron     string `envconfig:"IMPORT_CRON" default:"@every 5m"`
	StockScanCron  string `envconfig:"STOCK_SCAN_CRON" default:"@every 1h"`
	WorkerMetrics  string `envconfig:"WORKER_METRICS_ADDR" default:":9091"`
	WorkerThreads  int    `envconfig:"WORKER_CONCURRENCY" default:"2"`
}

// DotEnvFile is read before the environment when present.
const DotEnvFile = ".env"

// LoadConfig reads configuration from an optional .env file and the
// environment. Variables already set win over the file.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load %s: %w", DotEnvFile, err)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if cfg.HistoryLimit <= 0 {
		return nil, errors.New("history limit must be positive")
	}
	if _, err := time.LoadLocation(cfg.DisplayTZ); err != nil {
		return nil, fmt.Errorf("display timezone %q: %w", cfg.DisplayTZ, err)
	}
	return &cfg, nil
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}

// Location returns the zone timestamps are displayed in.
func (c *Config) Location() *time.Location {
	if c == nil {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.DisplayTZ)
	if err != nil {
		return time.UTC
	}
	return loc
}

// WorkerEnabled reports whether service credentials for the worker are set.
func (c *Config) WorkerEnabled() bool {
	return c != nil && c.WorkerUsername != "" && c.WorkerPassword != ""
}
