package http

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/application/licensing/notifications"
	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/infrastructure/auth"
	"github.com/orris-inc/licensing/internal/infrastructure/config"
	"github.com/orris-inc/licensing/internal/infrastructure/permission"
	"github.com/orris-inc/licensing/internal/infrastructure/scheduler"
	"github.com/orris-inc/licensing/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// Container holds all infrastructure components, repositories, use cases,
// handlers and background services. It wires everything together and
// provides Shutdown for graceful termination.
type Container struct {
	// Core infrastructure
	engine *gin.Engine
	db     *gorm.DB
	cfg    *config.Config
	log    logger.Interface
	redis  *redis.Client

	registry *licensing.Registry
	repos    *repositories
	ucs      *allUseCases
	hdlrs    *allHandlers

	// Middlewares
	authMiddleware       *middleware.AuthMiddleware
	permissionMiddleware *middleware.PermissionMiddleware
	uploadLimiter        *middleware.RateLimiter

	jwtSvc   *auth.JWTService
	enforcer *permission.Enforcer

	// Background services
	dispatcher        *events.InMemoryEventDispatcher
	dispatcherStarted bool
	notifier          *notifications.Notifier
	schedulerManager  *scheduler.SchedulerManager
	runState          *usecases.RunState
}

// NewContainer wires the service. Redis is optional; without it rosters are
// staged in the database and mails are not de-duplicated.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Container, error) {
	c := &Container{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		log:    log,
	}

	// Section 1: Infrastructure - Redis, registry, repositories, auth
	if err := c.initInfrastructure(); err != nil {
		return nil, err
	}

	// Section 2: Licensing - use cases and handlers
	c.initLicensing()

	// Section 3: Background - event dispatcher, notifier, scheduler
	if err := c.initBackground(); err != nil {
		return nil, err
	}

	return c, nil
}

// Reconciliation returns the reconciliation job shared by the scheduler,
// the HTTP trigger and the cron command.
func (c *Container) Reconciliation() *usecases.ReconciliationUseCase {
	return c.ucs.reconcile
}

// Scheduler returns the scheduler manager.
func (c *Container) Scheduler() *scheduler.SchedulerManager {
	return c.schedulerManager
}
