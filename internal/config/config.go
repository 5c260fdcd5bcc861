package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/keber-cl/wallet-api/internal/money"
)

const (
	defaultAppName       = "WalletAPI"
	defaultAppEnv        = "development"
	defaultPort          = "8080"
	defaultLogLevel      = "info"
	defaultBoltPath      = "wallet.db"
	defaultCORSOrigin    = "http://localhost:3000"
	defaultKafkaTopic    = "wallet.transactions"
	defaultSignupBonus   = "1000"
	defaultShutdownDelay = 10 * time.Second

	shutdownSecondsEnvVar  = "SHUTDOWN_TIMEOUT_SECONDS"
	shutdownDurationEnvVar = "SHUTDOWN_TIMEOUT"
)

// Config captures application runtime configuration loaded from environment
// variables. DatabaseURL selects the Postgres backend; without it the service
// runs on the embedded bolt file at BoltPath. RedisURL and KafkaBrokers are
// optional add-ons (login rate limiting, event publishing).
type Config struct {
	AppName        string
	AppEnv         string
	Port           string
	LogLevel       string
	DatabaseURL    string
	RedisURL       string
	BoltPath       string
	CORSOrigin     string
	KafkaBrokers   []string
	KafkaTopic     string
	SignupBonus    int64
	ShutdownPeriod time.Duration
}

// Load reads configuration from the environment (and a .env file when
// present) and populates a Config instance.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		AppName:        getEnv("APP_NAME", defaultAppName),
		AppEnv:         getEnv("APP_ENV", defaultAppEnv),
		Port:           getEnv("PORT", defaultPort),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", defaultLogLevel)),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		BoltPath:       getEnv("BOLT_PATH", defaultBoltPath),
		CORSOrigin:     getEnv("CORS_ORIGIN", defaultCORSOrigin),
		KafkaTopic:     getEnv("KAFKA_TOPIC", defaultKafkaTopic),
		ShutdownPeriod: defaultShutdownDelay,
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}

	bonus, err := decimal.NewFromString(getEnv("SIGNUP_BONUS", defaultSignupBonus))
	if err != nil {
		return Config{}, fmt.Errorf("invalid SIGNUP_BONUS: %w", err)
	}
	cfg.SignupBonus, err = money.ToMinorUnits(bonus)
	if err != nil {
		return Config{}, fmt.Errorf("invalid SIGNUP_BONUS: %w", err)
	}
	if cfg.SignupBonus < 0 {
		return Config{}, fmt.Errorf("SIGNUP_BONUS must not be negative")
	}

	if v := os.Getenv(shutdownSecondsEnvVar); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownSecondsEnvVar, err)
		}
		cfg.ShutdownPeriod = time.Duration(seconds) * time.Second
	} else if v := os.Getenv(shutdownDurationEnvVar); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s: %w", shutdownDurationEnvVar, err)
		}
		cfg.ShutdownPeriod = d
	}

	return cfg, nil
}

// Address returns the listen address in the format Fiber expects.
func (c Config) Address() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return fmt.Sprintf(":%s", c.Port)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
