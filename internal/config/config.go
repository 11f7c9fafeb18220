package config

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	logrus "github.com/sirupsen/logrus"
)

// Config holds every process-wide setting. Values come from the environment,
// optionally seeded from a .env file.
type Config struct {
	DBHost        string `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string `env:"DB_PORT" envDefault:"5432"`
	DBUser        string `env:"DB_USER" envDefault:"postgres"`
	DBPassword    string `env:"DB_PASSWORD" envDefault:"password"`
	DBName        string `env:"DB_NAME" envDefault:"bscf_accounts"`
	DBSSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	DBTimezone    string `env:"DB_TIMEZONE" envDefault:"UTC"`
	DBTxIsolation string `env:"DB_TX_ISOLATION" envDefault:"serializable"`

	JWTSecret string        `env:"JWT_SECRET" envDefault:"supersecret"`
	TokenTTL  time.Duration `env:"TOKEN_TTL" envDefault:"0s"`

	Port        string   `env:"PORT" envDefault:"8080"`
	GinMode     string   `env:"GIN_MODE" envDefault:"release"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:","`

	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile       string `env:"LOG_FILE" envDefault:"./logs/app.log"`
	AccessLogFile string `env:"ACCESS_LOG_FILE" envDefault:"./logs/access.log"`

	SentryDSN string `env:"SENTRY_DSN"`
	AppEnv    string `env:"APP_ENV" envDefault:"development"`
}

// Load reads .env (if present) and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found – relying on env vars")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

// DSN builds the postgres data source name.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode, c.DBTimezone,
	)
}

// TxOptions maps DB_TX_ISOLATION onto database/sql options. An empty or
// "default" value leaves the driver default in place.
func (c *Config) TxOptions() (*sql.TxOptions, error) {
	switch strings.ToLower(strings.TrimSpace(c.DBTxIsolation)) {
	case "", "default":
		return nil, nil
	case "serializable":
		return &sql.TxOptions{Isolation: sql.LevelSerializable}, nil
	case "repeatable_read":
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, nil
	case "read_committed":
		return &sql.TxOptions{Isolation: sql.LevelReadCommitted}, nil
	default:
		return nil, fmt.Errorf("unknown DB_TX_ISOLATION %q", c.DBTxIsolation)
	}
}
