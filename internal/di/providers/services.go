package providers

import (
	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/auth"
	"github.com/fritterapp/fritter-server/internal/backup"
	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/dto"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/ratelimit"
	"github.com/fritterapp/fritter-server/internal/service"
	"github.com/fritterapp/fritter-server/internal/validation"
)

// ProvideValidator provides the shared struct and field validator.
func ProvideValidator(i do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideRules provides the reusable service preconditions.
func ProvideRules(i do.Injector) (*validation.Rules, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)

	return validation.NewRules(storeHandle.Store, freetHandle.Store, v), nil
}

// ProvideEnricher provides the view enricher.
func ProvideEnricher(i do.Injector) (*dto.Enricher, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	return dto.NewEnricher(storeHandle.Store), nil
}

// ProvideUserService provides the account service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	v := do.MustInvoke[*validation.Validator](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	events := do.MustInvoke[service.EventEmitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, freetHandle.Store, rules, v, tokenService, events, log.Logger), nil
}

// ProvideFreetService provides the freet service.
func ProvideFreetService(i do.Injector) (*service.FreetService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFreetService(storeHandle.Store, freetHandle.Store, rules, log.Logger), nil
}

// ProvideBookmarkService provides the bookmark service.
func ProvideBookmarkService(i do.Injector) (*service.BookmarkService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	events := do.MustInvoke[service.EventEmitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookmarkService(storeHandle.Store, rules, enricher, events, log.Logger), nil
}

// ProvideTagService provides the bookmark tag service.
func ProvideTagService(i do.Injector) (*service.TagService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	events := do.MustInvoke[service.EventEmitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTagService(storeHandle.Store, rules, events, log.Logger), nil
}

// ProvidePersonaService provides the persona service.
func ProvidePersonaService(i do.Injector) (*service.PersonaService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	events := do.MustInvoke[service.EventEmitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPersonaService(storeHandle.Store, rules, enricher, events, log.Logger), nil
}

// ProvideFollowService provides the follow service.
func ProvideFollowService(i do.Injector) (*service.FollowService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	enricher := do.MustInvoke[*dto.Enricher](i)
	events := do.MustInvoke[service.EventEmitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewFollowService(storeHandle.Store, rules, enricher, events, log.Logger), nil
}

// ProvideLikeService provides the like service.
func ProvideLikeService(i do.Injector) (*service.LikeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	rules := do.MustInvoke[*validation.Rules](i)
	events := do.MustInvoke[service.EventEmitter](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLikeService(storeHandle.Store, rules, events, log.Logger), nil
}

// ProvideStatsService provides the entity count service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)

	return service.NewStatsService(storeHandle.Store, freetHandle.Store), nil
}

// LoginLimiterHandle wraps the sign-in rate limiter with Shutdownable.
type LoginLimiterHandle struct {
	*ratelimit.KeyedRateLimiter
}

// Shutdown implements do.Shutdownable.
func (h *LoginLimiterHandle) Shutdown() error {
	h.Stop()
	return nil
}

// ProvideLoginLimiter provides the per-client sign-in rate limiter.
func ProvideLoginLimiter(i do.Injector) (*LoginLimiterHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)

	limiter := ratelimit.New(ratelimit.PerMinute(cfg.Auth.LoginRatePerMinute), cfg.Auth.LoginBurst)
	return &LoginLimiterHandle{KeyedRateLimiter: limiter}, nil
}

// ProvideBackupService provides backup creation and listing.
func ProvideBackupService(i do.Injector) (*backup.BackupService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewBackupService(storeHandle.Store, freetHandle.Store, cfg.Data.BackupsPath(), log.Logger), nil
}

// ProvideRestoreService provides backup restoration.
func ProvideRestoreService(i do.Injector) (*backup.RestoreService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	freetHandle := do.MustInvoke[*FreetStoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return backup.NewRestoreService(storeHandle.Store, freetHandle.Store, log.Logger), nil
}
