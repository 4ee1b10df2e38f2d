package providers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/listenupapp/guestbook/internal/config"
	"github.com/listenupapp/guestbook/internal/logger"
	"github.com/listenupapp/guestbook/internal/store"
	"github.com/listenupapp/guestbook/internal/store/badgerdb"
	"github.com/listenupapp/guestbook/internal/store/postgres"
	"github.com/listenupapp/guestbook/internal/store/sqlite"
)

// StoreHandle wraps the configured store with shutdown capability.
type StoreHandle struct {
	store.Store
	Backend string
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the backend selected by STORE_BACKEND.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, location, err := OpenStore(context.Background(), cfg.Store, log)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "backend", cfg.Store.Backend, "location", location)

	return &StoreHandle{Store: st, Backend: cfg.Store.Backend}, nil
}

// OpenStore opens the configured backend and returns it with a printable
// location. Postgres DSNs are not returned since they may carry credentials.
func OpenStore(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (store.Store, string, error) {
	switch cfg.Backend {
	case store.BackendBadger:
		path := filepath.Join(cfg.DataPath, "badger")
		st, err := badgerdb.New(path, log.Logger)
		if err != nil {
			return nil, "", err
		}
		return st, path, nil

	case store.BackendSQLite:
		if err := os.MkdirAll(cfg.DataPath, 0o755); err != nil {
			return nil, "", fmt.Errorf("create data directory: %w", err)
		}
		path := filepath.Join(cfg.DataPath, "guestbook.db")
		st, err := sqlite.Open(path, log.Logger)
		if err != nil {
			return nil, "", err
		}
		return st, path, nil

	case store.BackendPostgres:
		st, err := postgres.Open(ctx, cfg.DatabaseURL, log.Logger)
		if err != nil {
			return nil, "", err
		}
		return st, "postgres", nil

	default:
		return nil, "", fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
