package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/api"
	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideServices groups the business services for the API server.
func ProvideServices(i do.Injector) (*api.Services, error) {
	return &api.Services{
		User:     do.MustInvoke[*service.UserService](i),
		Freet:    do.MustInvoke[*service.FreetService](i),
		Bookmark: do.MustInvoke[*service.BookmarkService](i),
		Tag:      do.MustInvoke[*service.TagService](i),
		Persona:  do.MustInvoke[*service.PersonaService](i),
		Follow:   do.MustInvoke[*service.FollowService](i),
		Like:     do.MustInvoke[*service.LikeService](i),
		Stats:    do.MustInvoke[*service.StatsService](i),
	}, nil
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	limiterHandle := do.MustInvoke[*LoginLimiterHandle](i)
	services := do.MustInvoke[*api.Services](i)

	handler := api.NewServer(
		storeHandle.Store,
		freetHandle.Store,
		services,
		tokenService,
		sseHandle.Manager,
		api.Options{
			CORSOrigins:  cfg.Server.CORSOrigins,
			LoginLimiter: limiterHandle.KeyedRateLimiter,
		},
		log.Logger,
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("HTTP server error")
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
