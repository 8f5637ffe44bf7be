// Package api provides the HTTP API server and handlers for Fritter.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/ratelimit"
	"github.com/fritterapp/fritter-server/internal/sse"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	freets       *sqlite.Store
	services     *Services
	tokens       *auth.TokenService
	sseManager   *sse.Manager
	sseHandler   *sse.Handler
	loginLimiter *ratelimit.KeyedRateLimiter
	router       *chi.Mux
	api          huma.API
	logger       *slog.Logger
}

// Options carries the optional knobs of NewServer.
type Options struct {
	// CORSOrigins lists browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string
	// LoginLimiter throttles POST /api/users/session per client address. Nil disables it.
	LoginLimiter *ratelimit.KeyedRateLimiter
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *store.Store,
	freets *sqlite.Store,
	services *Services,
	tokens *auth.TokenService,
	sseManager *sse.Manager,
	opts Options,
	logger *slog.Logger,
) *Server {
	s := &Server{
		store:        store,
		freets:       freets,
		services:     services,
		tokens:       tokens,
		sseManager:   sseManager,
		loginLimiter: opts.LoginLimiter,
		router:       chi.NewRouter(),
		logger:       logger,
	}
	s.sseHandler = sse.NewHandler(sseManager, sessionUser, logger)

	s.setupMiddleware(opts.CORSOrigins)
	s.api = humachi.New(s.router, NewHumaConfig())
	RegisterErrorHandler()
	s.setupRoutes()

	return s
}

// NewHumaConfig returns the huma configuration every Fritter API instance uses.
func NewHumaConfig() huma.Config {
	config := huma.DefaultConfig("Fritter API", "1.0.0")
	config.Info.Description = "Follows, personas, bookmarks, tags and likes for Fritter."
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	// Bodies are wrapped in the envelope, so no $schema links.
	config.CreateHooks = nil
	config.Transformers = append(config.Transformers, EnvelopeTransformer)
	return config
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API exposes the huma API, mainly for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(corsOrigins []string) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	if len(corsOrigins) > 0 {
		s.router.Use(cors.Handler(cors.Options{
			AllowedOrigins:   corsOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	s.router.Use(authMiddleware(s.tokens, s.store, s.logger))
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerUserRoutes()
	s.registerFreetRoutes()
	s.registerBookmarkRoutes()
	s.registerTagRoutes()
	s.registerPersonaRoutes()
	s.registerFollowRoutes()
	s.registerLikeRoutes()

	// The event stream is plain net/http; huma has no streaming operation type.
	s.router.With(requireSession).Get("/api/events", s.sseHandler.ServeHTTP)
}
