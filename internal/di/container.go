// Package di provides dependency injection configuration for the Fritter server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/api"
	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/di/providers"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
)

// NewContainer creates and configures the DI container for the API server.
func NewContainer() *do.RootScope {
	injector := do.New()

	do.Provide(injector, providers.ProvideConfig)
	provideCore(injector)

	// Events fan out to connected clients
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideSSEEmitter)

	// Server
	do.Provide(injector, providers.ProvideLoginLimiter)
	do.Provide(injector, providers.ProvideServices)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// NewCLIContainer creates a container for one-shot admin commands. It opens
// the same stores as the server but never listens and drops service events.
func NewCLIContainer(cfg *config.Config) *do.RootScope {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	provideCore(injector)
	do.Provide(injector, providers.ProvideNoopEmitter)

	// Backups
	do.Provide(injector, providers.ProvideBackupService)
	do.Provide(injector, providers.ProvideRestoreService)

	return injector
}

// provideCore registers everything shared by the server and the CLI.
func provideCore(injector *do.RootScope) {
	// Core infrastructure
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideSlogLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideFreetStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Validation and projection
	do.Provide(injector, providers.ProvideValidator)
	do.Provide(injector, providers.ProvideRules)
	do.Provide(injector, providers.ProvideEnricher)

	// Business services
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvideFreetService)
	do.Provide(injector, providers.ProvideBookmarkService)
	do.Provide(injector, providers.ProvideTagService)
	do.Provide(injector, providers.ProvidePersonaService)
	do.Provide(injector, providers.ProvideFollowService)
	do.Provide(injector, providers.ProvideLikeService)
	do.Provide(injector, providers.ProvideStatsService)
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.FreetStoreHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*api.Services](injector)
	_ = do.MustInvoke[*service.StatsService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
