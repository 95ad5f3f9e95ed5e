package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/listenupapp/catalog-server/internal/config"
	"github.com/listenupapp/catalog-server/internal/logger"
	"github.com/listenupapp/catalog-server/internal/store"
	"github.com/listenupapp/catalog-server/internal/store/postgres"
	"github.com/listenupapp/catalog-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
	Driver string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by the configured driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeLog := log.WithComponent("store")

	var (
		st  store.Store
		err error
	)
	switch cfg.Store.Driver {
	case config.DriverBadger:
		st, err = store.New(cfg.Store.BadgerPath(), storeLog)
	case config.DriverMemory:
		st, err = store.New("", storeLog)
	case config.DriverSQLite:
		st, err = sqlite.Open(cfg.Store.SQLitePath(), storeLog)
	case config.DriverPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		st, err = postgres.Open(ctx, cfg.Store.DatabaseURL, storeLog)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store.Driver, err)
	}

	log.Info("Store initialized", "driver", cfg.Store.Driver)

	return &StoreHandle{Store: st, Driver: cfg.Store.Driver}, nil
}
