package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App:       AppConfig{Environment: "development"},
		Logger:    LoggerConfig{Level: "info"},
		Store:     StoreConfig{Driver: DriverBadger, DataPath: "/some/path"},
		RateLimit: RateLimitConfig{RequestsPerMinute: 60, Burst: 10},
	}
}

// unsetAround clears keys so a .env file can set them, and removes them
// again when the test ends.
func unsetAround(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_ = os.Unsetenv(k)
	}
	t.Cleanup(func() {
		for _, k := range keys {
			_ = os.Unsetenv(k)
		}
	})
}

func TestValidate_ValidConfig(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_AllEnvironments(t *testing.T) {
	tests := []struct {
		env   string
		valid bool
	}{
		{"development", true},
		{"staging", true},
		{"production", true},
		{"test", false},
		{"", false},
		{"DEVELOPMENT", false}, // case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := validConfig()
			cfg.App.Environment = tt.env

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_AllLogLevels(t *testing.T) {
	tests := []struct {
		level string
		valid bool
	}{
		{"debug", true},
		{"info", true},
		{"warn", true},
		{"error", true},
		{"DEBUG", true},
		{"trace", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			cfg := validConfig()
			cfg.Logger.Level = tt.level

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_StoreDrivers(t *testing.T) {
	tests := []struct {
		name  string
		store StoreConfig
		valid bool
	}{
		{"badger", StoreConfig{Driver: DriverBadger, DataPath: "/data"}, true},
		{"badger without path", StoreConfig{Driver: DriverBadger}, false},
		{"sqlite", StoreConfig{Driver: DriverSQLite, DataPath: "/data"}, true},
		{"memory", StoreConfig{Driver: DriverMemory}, true},
		{"postgres", StoreConfig{Driver: DriverPostgres, DatabaseURL: "postgres://localhost/catalog"}, true},
		{"postgres without url", StoreConfig{Driver: DriverPostgres}, false},
		{"unknown", StoreConfig{Driver: "mysql", DataPath: "/data"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Store = tt.store

			err := cfg.Validate()
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestValidate_RateLimit(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit = RateLimitConfig{RequestsPerMinute: 0, Burst: 0}
	assert.NoError(t, cfg.Validate(), "zero disables limiting")

	cfg.RateLimit = RateLimitConfig{RequestsPerMinute: 10, Burst: 0}
	assert.Error(t, cfg.Validate())

	cfg.RateLimit = RateLimitConfig{RequestsPerMinute: -1, Burst: 1}
	assert.Error(t, cfg.Validate())
}

func TestSearchPath(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, filepath.Join("/some/path", "search"), cfg.SearchPath())

	cfg.Store.Driver = DriverMemory
	assert.Empty(t, cfg.SearchPath())

	cfg.Store.Driver = DriverPostgres
	assert.Empty(t, cfg.SearchPath(), "postgres deployments keep no local data")
}

func TestLoad_Defaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("ENV", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DATA_PATH", "")

	cfg, err := Load([]string{"-env-file", filepath.Join(t.TempDir(), "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
	assert.Equal(t, DriverBadger, cfg.Store.Driver)
	assert.Equal(t, filepath.Join(home, "Catalog", "data"), cfg.Store.DataPath)
	assert.True(t, cfg.Search.Enabled)
	assert.Equal(t, 60, cfg.RateLimit.RequestsPerMinute)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoad_Precedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte(
		"# catalog settings\n"+
			"SERVER_PORT=7000\n"+
			"LOG_LEVEL=\"debug\"\n"+
			"STORE_DRIVER=memory\n",
	), 0o600))
	unsetAround(t, "SERVER_PORT", "LOG_LEVEL", "STORE_DRIVER")
	t.Setenv("SERVER_READ_TIMEOUT", "5s")

	cfg, err := Load([]string{"-env-file", envFile, "-port", "9000"})
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port, "flag beats .env")
	assert.Equal(t, "debug", cfg.Logger.Level, ".env beats default")
	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout, "environment beats default")
}

func TestLoad_EnvironmentBeatsEnvFile(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("RATE_LIMIT_BURST=3\n"), 0o600))
	t.Setenv("RATE_LIMIT_BURST", "7")

	cfg, err := Load([]string{"-env-file", envFile})
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateLimit.Burst)
}

func TestLoad_Invalid(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("DATABASE_URL", "")

	_, err := Load([]string{"-env-file", ""})
	assert.ErrorContains(t, err, "DATABASE_URL")

	_, err = Load([]string{"-read-timeout", "soon"})
	assert.ErrorContains(t, err, "read timeout")

	_, err = Load([]string{"-no-such-flag"})
	assert.Error(t, err)
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	got, err := expandPath("~/catalog", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "catalog"), got)

	got, err = expandPath("", "/default")
	require.NoError(t, err)
	assert.Equal(t, "/default", got)

	got, err = expandPath("relative/dir", "")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(got))
}

func TestGetConfigValue_Precedence(t *testing.T) {
	t.Setenv("TEST_ENV_KEY", "env-value")

	assert.Equal(t, "flag-value", getConfigValue("flag-value", "TEST_ENV_KEY", "default"))
	assert.Equal(t, "env-value", getConfigValue("", "TEST_ENV_KEY", "default"))
	assert.Equal(t, "default", getConfigValue("", "TEST_UNSET_KEY", "default"))
}

func TestGetBoolAndIntConfigValue(t *testing.T) {
	assert.True(t, getBoolConfigValue("YES", "UNUSED", false))
	assert.False(t, getBoolConfigValue("off", "UNUSED", true))
	assert.True(t, getBoolConfigValue("", "UNUSED_BOOL", true))

	assert.Equal(t, 42, getIntConfigValue("42", "UNUSED", 1))
	assert.Equal(t, 1, getIntConfigValue("many", "UNUSED", 1))
}

func TestGetListConfigValue(t *testing.T) {
	t.Setenv("TEST_LIST_KEY", "http://a.test, ,http://b.test")

	assert.Equal(t, []string{"http://a.test", "http://b.test"}, getListConfigValue("", "TEST_LIST_KEY"))
	assert.Equal(t, []string{"http://c.test"}, getListConfigValue("http://c.test", "TEST_LIST_KEY"))
	assert.Nil(t, getListConfigValue("", "TEST_UNSET_LIST_KEY"))
}
