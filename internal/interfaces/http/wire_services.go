package http

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/orris-inc/licensing/internal/application/licensing/notifications"
	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/infrastructure/auth"
	"github.com/orris-inc/licensing/internal/infrastructure/cache"
	"github.com/orris-inc/licensing/internal/infrastructure/config"
	"github.com/orris-inc/licensing/internal/infrastructure/email"
	"github.com/orris-inc/licensing/internal/infrastructure/permission"
	"github.com/orris-inc/licensing/internal/infrastructure/platform"
	"github.com/orris-inc/licensing/internal/infrastructure/scheduler"
	mailtemplate "github.com/orris-inc/licensing/internal/infrastructure/template"
	licensingHandlers "github.com/orris-inc/licensing/internal/interfaces/http/handlers/licensing"
	"github.com/orris-inc/licensing/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensing/internal/shared/logger"
	"github.com/orris-inc/licensing/internal/shared/services/markdown"
)

const (
	eventBufferSize     = 256
	uploadRateLimit     = 20
	uploadRateWindow    = time.Minute
	redisConnectTimeout = 5 * time.Second
)

// ============================================================
// Section 1: Infrastructure - Redis, registry, repositories, auth
// ============================================================

func (c *Container) initInfrastructure() error {
	cfg := c.cfg
	log := c.log

	c.redis = initRedis(cfg, log)

	registry, err := platform.NewRegistry(c.db, cfg.Licensing.SiteURL, log)
	if err != nil {
		return fmt.Errorf("failed to build dispatch registry: %w", err)
	}
	c.registry = registry

	c.repos = newRepositories(c.db, c.redis, cfg.Licensing, log)

	c.jwtSvc = auth.NewJWTService(cfg.Auth.JWT.Secret, cfg.Auth.JWT.AccessExpMinutes)
	c.enforcer, err = permission.NewEnforcer(c.db, cfg.Permission.ModelPath, log)
	if err != nil {
		return fmt.Errorf("failed to create permission enforcer: %w", err)
	}
	if err := c.enforcer.InitLicensingPermissions(); err != nil {
		return fmt.Errorf("failed to seed licensing permissions: %w", err)
	}

	if err := licensingHandlers.RegisterValidators(); err != nil {
		return fmt.Errorf("failed to register request validators: %w", err)
	}

	c.authMiddleware = middleware.NewAuthMiddleware(c.jwtSvc, log)
	c.permissionMiddleware = middleware.NewPermissionMiddleware(c.enforcer, log)
	c.uploadLimiter = middleware.NewRateLimiter(c.redis, "roster-upload", uploadRateLimit, uploadRateWindow, log)
	return nil
}

// initRedis connects to Redis. A failed connection is logged and the
// service continues without it.
func initRedis(cfg *config.Config, log logger.Interface) *redis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
	defer cancel()

	client, err := cache.NewRedisClient(ctx, &cfg.Redis)
	if err != nil {
		log.Warnw("redis unavailable, continuing without it", "error", err)
		return nil
	}
	log.Infow("redis connection established", "addr", cfg.Redis.GetAddr())
	return client
}

// ============================================================
// Section 2: Licensing - use cases and handlers
// ============================================================

func (c *Container) initLicensing() {
	c.dispatcher = events.NewInMemoryEventDispatcher(eventBufferSize, c.log)
	c.runState = usecases.NewRunState(c.repos.settingRepo, c.log)

	hasher := auth.NewBcryptPasswordHasher(c.cfg.Auth.Password.BcryptCost)
	c.ucs = newUseCases(c.repos, c.registry, hasher, c.dispatcher, c.runState, c.cfg.Licensing, c.log)
	c.hdlrs = newHandlers(c.ucs, c.runState, c.cfg.Licensing, c.log)
}

// ============================================================
// Section 3: Background - event dispatcher, notifier, scheduler
// ============================================================

func (c *Container) initBackground() error {
	cfg := c.cfg
	log := c.log

	templates := mailtemplate.NewMailTemplateLoader(cfg.Licensing.MailTemplateDir, log)
	if err := templates.Load(); err != nil {
		return fmt.Errorf("failed to load mail templates: %w", err)
	}

	sender := email.NewThrottledSender(
		email.NewSMTPEmailService(email.SMTPConfigFrom(cfg.Email)),
		cfg.Licensing.MailRatePerSecond,
	)

	var dedupe notifications.Deduplicator
	if c.redis != nil {
		dedupe = cache.NewMailDeduplicator(c.redis, cfg.Licensing.MailDedupeTTL)
	}

	c.notifier = notifications.NewNotifier(
		sender, dedupe, templates, markdown.NewMarkdownService(),
		c.repos.userRepo, c.repos.productSetRepo, c.repos.targetSetRepo, c.registry,
		notifications.Config{SiteURL: cfg.Licensing.SiteURL},
		log.Named("notifications"),
	)
	if err := c.notifier.Register(c.dispatcher); err != nil {
		return fmt.Errorf("failed to subscribe notifier: %w", err)
	}

	schedulerManager, err := scheduler.NewSchedulerManager(log.Named("scheduler"))
	if err != nil {
		return fmt.Errorf("failed to create scheduler: %w", err)
	}
	if err := schedulerManager.RegisterReconciliationJob(c.ucs.reconcile, cfg.Licensing.CronInterval); err != nil {
		return fmt.Errorf("failed to register reconciliation job: %w", err)
	}
	c.schedulerManager = schedulerManager
	return nil
}

// Start runs the event dispatcher and, when withScheduler is set, the
// reconciliation schedule.
func (c *Container) Start(withScheduler bool) error {
	if err := c.dispatcher.Start(); err != nil {
		return fmt.Errorf("failed to start event dispatcher: %w", err)
	}
	c.dispatcherStarted = true
	if withScheduler {
		c.schedulerManager.Start()
	}
	return nil
}

// Shutdown stops background services and closes Redis. Queued events are
// delivered before the dispatcher stops.
func (c *Container) Shutdown() {
	if c.schedulerManager != nil {
		if err := c.schedulerManager.Stop(); err != nil {
			c.log.Errorw("failed to stop scheduler", "error", err)
		}
	}
	if c.dispatcherStarted {
		if err := c.dispatcher.Stop(); err != nil {
			c.log.Errorw("failed to stop event dispatcher", "error", err)
		}
	}
	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			c.log.Warnw("failed to close redis client", "error", err)
		}
	}
}
