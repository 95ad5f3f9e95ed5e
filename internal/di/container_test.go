package di

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/di/providers"
)

func testConfig(t *testing.T, driver string) *config.Config {
	t.Helper()
	return &config.Config{
		App:    config.AppConfig{Environment: "development"},
		Logger: config.LoggerConfig{Level: "error"},
		Server: config.ServerConfig{
			Port:         "0",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  5 * time.Second,
		},
		Store:     config.StoreConfig{Driver: driver, DataPath: t.TempDir()},
		Search:    config.SearchConfig{Enabled: true},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 60, Burst: 10},
	}
}

func TestBootstrap_ServesHealth(t *testing.T) {
	for _, driver := range []string{config.DriverMemory, config.DriverBadger, config.DriverSQLite} {
		t.Run(driver, func(t *testing.T) {
			injector := NewContainerWithConfig(testConfig(t, driver))
			require.NoError(t, Bootstrap(injector))
			t.Cleanup(func() { _ = injector.Shutdown() })

			srv := do.MustInvoke[*providers.HTTPServerHandle](injector)

			resp, err := http.Get("http://" + srv.ListenAddr().String() + "/api/v1/catalog/health")
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			var body struct {
				Status string `json:"status"`
			}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, "healthy", body.Status)

			storeHandle := do.MustInvoke[*providers.StoreHandle](injector)
			assert.Equal(t, driver, storeHandle.Driver)
		})
	}
}

func TestBootstrap_SearchDisabled(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Search.Enabled = false
	cfg.RateLimit.RequestsPerMinute = 0

	injector := NewContainerWithConfig(cfg)
	require.NoError(t, Bootstrap(injector))
	t.Cleanup(func() { _ = injector.Shutdown() })

	assert.Nil(t, do.MustInvoke[*providers.SearchIndexHandle](injector).Index)
	assert.Nil(t, do.MustInvoke[*providers.SearchIndexHandle](injector).Indexer())
	assert.Nil(t, do.MustInvoke[*providers.RateLimiterHandle](injector).Limiter)
}

func TestBootstrap_BadDriver(t *testing.T) {
	injector := NewContainerWithConfig(testConfig(t, "mongo"))
	t.Cleanup(func() { _ = injector.Shutdown() })

	assert.Error(t, Bootstrap(injector))
}

func TestBootstrap_CORS(t *testing.T) {
	cfg := testConfig(t, config.DriverMemory)
	cfg.Server.CORSOrigins = []string{"http://localhost:3000"}

	injector := NewContainerWithConfig(cfg)
	require.NoError(t, Bootstrap(injector))
	t.Cleanup(func() { _ = injector.Shutdown() })

	srv := do.MustInvoke[*providers.HTTPServerHandle](injector)

	req, err := http.NewRequest(http.MethodGet, "http://"+srv.ListenAddr().String()+"/api/v1/catalog", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
