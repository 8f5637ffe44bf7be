package providers

import (
	"context"
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.WithField("component", "sse").Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// ProvideSSEEmitter routes service events to connected SSE clients.
func ProvideSSEEmitter(i do.Injector) (service.EventEmitter, error) {
	return do.MustInvoke[*SSEManagerHandle](i).Manager, nil
}

// ProvideNoopEmitter drops service events. Used by processes without
// event stream clients, such as the admin CLI.
func ProvideNoopEmitter(i do.Injector) (service.EventEmitter, error) {
	return service.NewNoopEmitter(), nil
}

// StoreHandle wraps the graph store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the Badger graph store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Data.GraphPath()
	db, err := store.New(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Graph store initialized", "path", path)

	return &StoreHandle{Store: db}, nil
}

// FreetStoreHandle wraps the SQLite freet store with shutdown capability.
type FreetStoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *FreetStoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideFreetStore provides the SQLite freet store.
func ProvideFreetStore(i do.Injector) (*FreetStoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	path := cfg.Data.FreetsPath()
	db, err := sqlite.Open(path, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Freet store initialized", "path", path)

	return &FreetStoreHandle{Store: db}, nil
}

// ProvideSlogLogger provides access to the underlying slog.Logger for packages that need it.
func ProvideSlogLogger(i do.Injector) (*slog.Logger, error) {
	log := do.MustInvoke[*logger.Logger](i)
	return log.Logger, nil
}
