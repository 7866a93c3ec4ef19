package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendRedis  = "redis"
)

type Config struct {
	Addr              string        `env:"ADDR" validate:"required"`
	LogLevel          string        `env:"LOG_LEVEL" validate:"required,oneof=DEBUG INFO WARN WARNING ERROR debug info warn warning error"`
	StorageBackend    string        `env:"STORAGE_BACKEND" validate:"required,oneof=sqlite file redis"`
	DBPath            string        `env:"DB_PATH" validate:"required"`
	DataDir           string        `env:"DATA_DIR" validate:"required_if=StorageBackend file"`
	RedisAddr         string        `env:"REDIS_ADDR" validate:"required_if=StorageBackend redis"`
	RedisPassword     string        `env:"REDIS_PASSWORD"`
	RedisDB           int           `env:"REDIS_DB" validate:"gte=0,lte=15"`
	StrictStorage     bool          `env:"STRICT_STORAGE"`
	GuestStarterDecks bool          `env:"GUEST_STARTER_DECKS"`
	BcryptCost        int           `env:"BCRYPT_COST" validate:"gte=4,lte=31"`
	FlushWorkers      int           `env:"FLUSH_WORKERS" validate:"gte=1,lte=64"`
	LoginTTL          time.Duration `env:"LOGIN_TTL" validate:"gte=0"`
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		StorageBackend:    strings.ToLower(envOr("STORAGE_BACKEND", BackendSQLite)),
		DBPath:            envOr("DB_PATH", "file:flashdeck.db"),
		DataDir:           envOr("DATA_DIR", "user_data"),
		RedisAddr:         envOr("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		RedisDB:           envIntOr("REDIS_DB", 0),
		StrictStorage:     envBoolOr("STRICT_STORAGE", false),
		GuestStarterDecks: envBoolOr("GUEST_STARTER_DECKS", true),
		BcryptCost:        envIntOr("BCRYPT_COST", 10),
		FlushWorkers:      envIntOr("FLUSH_WORKERS", 4),
		LoginTTL:          envDurationOr("LOGIN_TTL", 24*time.Hour),
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration and reports problems using the
// environment variable names an operator would have to fix.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describe(fe))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

func describe(fe validator.FieldError) string {
	key := envKey(fe.StructField())
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s cannot be empty", key)
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", key, fe.Param(), fe.Value())
	case "gte", "lte":
		return fmt.Sprintf("%s out of range (%s %s), got %v", key, fe.Tag(), fe.Param(), fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", key, fe.Tag())
	}
}

func envKey(field string) string {
	if f, ok := reflect.TypeOf(Config{}).FieldByName(field); ok {
		if k := f.Tag.Get("env"); k != "" {
			return k
		}
	}
	return field
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
