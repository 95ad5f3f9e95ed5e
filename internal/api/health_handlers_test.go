package api

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/listenupapp/catalog-server/internal/store"
)

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get(basePath + "/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "healthy", health.Components["store"].Status)
	assert.Equal(t, "healthy", health.Components["search"].Status)
}

// unreachable fails every ping.
type unreachable struct {
	store.Store
}

func (unreachable) Ping(context.Context) error {
	return assert.AnError
}

func TestHealthCheck_StoreDown(t *testing.T) {
	ts := setupTestServer(t, func(o *serverOptions) {
		o.store = func(s store.Store) store.Store { return unreachable{Store: s} }
	})

	resp := ts.api.Get(basePath + "/health")
	require.Equal(t, http.StatusOK, resp.Code)

	health := decode[HealthResponse](t, resp)
	assert.Equal(t, "unhealthy", health.Status)
	assert.Equal(t, "store unreachable", health.Components["store"].Message)
}

func TestHealthCheck_SearchDisabled(t *testing.T) {
	ts := setupTestServer(t)
	ts.index = nil

	resp := ts.api.Get(basePath + "/health")
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "degraded", decode[HealthResponse](t, resp).Status)
}
