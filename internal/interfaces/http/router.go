package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/infrastructure/config"
	"github.com/orris-inc/licensing/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensing/internal/interfaces/http/routes"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// Router represents the HTTP router configuration
type Router struct {
	*Container
}

// NewRouter creates a new HTTP router with all dependencies
func NewRouter(db *gorm.DB, cfg *config.Config, log logger.Interface) (*Router, error) {
	c, err := NewContainer(db, cfg, log)
	if err != nil {
		return nil, err
	}
	return &Router{Container: c}, nil
}

// SetupRoutes configures all HTTP routes
func (r *Router) SetupRoutes() {
	r.engine.Use(middleware.RequestID())
	r.engine.Use(middleware.RequestLogger(r.log))
	r.engine.Use(middleware.Recovery(r.log))
	r.engine.Use(middleware.CORS(r.cfg.Server.AllowedOrigins))
	r.engine.Use(middleware.SecurityHeaders())

	r.engine.GET("/health", r.health)
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	routes.SetupLicensingRoutes(r.engine, &routes.LicensingRouteConfig{
		AllocationHandler:     r.hdlrs.allocationHandler,
		DistributionHandler:   r.hdlrs.distributionHandler,
		SetHandler:            r.hdlrs.setHandler,
		CatalogHandler:        r.hdlrs.catalogHandler,
		ReconciliationHandler: r.hdlrs.reconciliationHandler,
		AuthMiddleware:        r.authMiddleware,
		PermissionMiddleware:  r.permissionMiddleware,
		UploadLimiter:         r.uploadLimiter,
	})
}

// health reports whether the database and, when configured, Redis answer.
func (r *Router) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := gin.H{"status": "healthy", "service": "licensing"}
	code := http.StatusOK

	sqlDB, err := r.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		r.log.Warnw("health check: database unreachable", "error", err)
		status["status"] = "unhealthy"
		status["database"] = "down"
		code = http.StatusServiceUnavailable
	}

	if r.redis != nil {
		if err := r.redis.Ping(ctx).Err(); err != nil {
			status["redis"] = "down"
		}
	}

	c.JSON(code, status)
}

// GetEngine returns the Gin engine
func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
