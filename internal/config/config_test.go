package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/flashdeck/internal/config"
)

func validConfig() config.Config {
	return config.Config{
		Addr:              ":8080",
		LogLevel:          "INFO",
		StorageBackend:    config.BackendSQLite,
		DBPath:            "test.db",
		DataDir:           "user_data",
		RedisAddr:         "localhost:6379",
		RedisDB:           0,
		GuestStarterDecks: true,
		BcryptCost:        10,
		FlushWorkers:      4,
		LoginTTL:          time.Hour,
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_EmptyAddr(t *testing.T) {
	cfg := validConfig()
	cfg.Addr = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ADDR cannot be empty")
}

func TestValidate_UnknownBackend(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = "s3"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORAGE_BACKEND must be one of")
}

func TestValidate_BackendSpecificSettings(t *testing.T) {
	tests := []struct {
		name    string
		backend string
		mutate  func(*config.Config)
		wantErr string
	}{
		{
			name:    "accounts always need the database",
			backend: config.BackendRedis,
			mutate:  func(c *config.Config) { c.DBPath = "" },
			wantErr: "DB_PATH cannot be empty",
		},
		{
			name:    "file without data dir",
			backend: config.BackendFile,
			mutate:  func(c *config.Config) { c.DataDir = "" },
			wantErr: "DATA_DIR cannot be empty",
		},
		{
			name:    "redis without address",
			backend: config.BackendRedis,
			mutate:  func(c *config.Config) { c.RedisAddr = "" },
			wantErr: "REDIS_ADDR cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.StorageBackend = tt.backend
			tt.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_UnusedBackendSettingsMayBeEmpty(t *testing.T) {
	cfg := validConfig()
	cfg.StorageBackend = config.BackendFile
	cfg.RedisAddr = ""

	assert.NoError(t, cfg.Validate())
}

func TestValidate_BcryptCostRange(t *testing.T) {
	for _, cost := range []int{0, 3, 32} {
		cfg := validConfig()
		cfg.BcryptCost = cost

		err := cfg.Validate()
		require.Error(t, err, "cost %d", cost)
		assert.Contains(t, err.Error(), "BCRYPT_COST")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.LogLevel = "chatty"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOG_LEVEL")
}

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"ADDR", "LOG_LEVEL", "STORAGE_BACKEND", "DB_PATH", "DATA_DIR", "REDIS_ADDR", "REDIS_DB", "STRICT_STORAGE", "GUEST_STARTER_DECKS", "BCRYPT_COST", "FLUSH_WORKERS", "LOGIN_TTL"} {
		t.Setenv(key, "")
	}

	cfg := config.Load()

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "INFO", cfg.LogLevel)
	assert.Equal(t, config.BackendSQLite, cfg.StorageBackend)
	assert.Equal(t, "file:flashdeck.db", cfg.DBPath)
	assert.Equal(t, "user_data", cfg.DataDir)
	assert.False(t, cfg.StrictStorage)
	assert.True(t, cfg.GuestStarterDecks)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 4, cfg.FlushWorkers)
	assert.Equal(t, 24*time.Hour, cfg.LoginTTL)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("ADDR", ":9090")
	t.Setenv("STORAGE_BACKEND", "FILE")
	t.Setenv("DATA_DIR", "/tmp/decks")
	t.Setenv("STRICT_STORAGE", "true")
	t.Setenv("GUEST_STARTER_DECKS", "false")
	t.Setenv("BCRYPT_COST", "not-a-number")
	t.Setenv("LOGIN_TTL", "90m")

	cfg := config.Load()

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, config.BackendFile, cfg.StorageBackend)
	assert.Equal(t, "/tmp/decks", cfg.DataDir)
	assert.True(t, cfg.StrictStorage)
	assert.False(t, cfg.GuestStarterDecks)
	assert.Equal(t, 10, cfg.BcryptCost, "invalid ints fall back to the default")
	assert.Equal(t, 90*time.Minute, cfg.LoginTTL)
}

func TestLoad_InvalidLoginTTLFallsBack(t *testing.T) {
	t.Setenv("LOGIN_TTL", "soon")

	assert.Equal(t, 24*time.Hour, config.Load().LoginTTL)
}

func TestValidate_NegativeLoginTTL(t *testing.T) {
	cfg := validConfig()
	cfg.LoginTTL = -time.Minute

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "LOGIN_TTL")
}
