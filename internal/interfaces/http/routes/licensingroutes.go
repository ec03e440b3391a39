package routes

import (
	"github.com/gin-gonic/gin"

	licensingHandlers "github.com/orris-inc/licensing/internal/interfaces/http/handlers/licensing"
	"github.com/orris-inc/licensing/internal/interfaces/http/middleware"
	"github.com/orris-inc/licensing/internal/shared/authorization"
)

// LicensingRouteConfig holds dependencies for licensing routes.
type LicensingRouteConfig struct {
	AllocationHandler     *licensingHandlers.AllocationHandler
	DistributionHandler   *licensingHandlers.DistributionHandler
	SetHandler            *licensingHandlers.SetHandler
	CatalogHandler        *licensingHandlers.CatalogHandler
	ReconciliationHandler *licensingHandlers.ReconciliationHandler
	AuthMiddleware        *middleware.AuthMiddleware
	PermissionMiddleware  *middleware.PermissionMiddleware
	UploadLimiter         *middleware.RateLimiter
}

// SetupLicensingRoutes configures licensing routes under /api/v1/licensing.
func SetupLicensingRoutes(engine *gin.Engine, cfg *LicensingRouteConfig) {
	require := cfg.PermissionMiddleware.RequireCapability
	distributeRead := require(authorization.CapDistributeLicences, authorization.ActionRead)
	distributeWrite := require(authorization.CapDistributeLicences, authorization.ActionWrite)

	licensing := engine.Group("/api/v1/licensing")
	licensing.Use(cfg.AuthMiddleware.RequireAuth())

	allocations := licensing.Group("/allocations")
	{
		allocations.POST("",
			require(authorization.CapAllocateLicences, authorization.ActionWrite),
			cfg.AllocationHandler.Create)
		allocations.GET("", distributeRead, cfg.AllocationHandler.List)
		allocations.GET("/:id", distributeRead, cfg.AllocationHandler.Get)
		allocations.GET("/:id/distributions", distributeRead, cfg.DistributionHandler.ListByAllocation)
	}

	me := licensing.Group("/me")
	me.Use(distributeRead)
	{
		me.GET("/allocations", cfg.AllocationHandler.ListMine)
		me.GET("/targets", cfg.AllocationHandler.MyTargets)
	}

	distributions := licensing.Group("/distributions")
	distributions.Use(distributeWrite)
	{
		distributions.POST("/manual", cfg.DistributionHandler.CreateManual)
		distributions.POST("/bulk", cfg.UploadLimiter.Limit(), cfg.DistributionHandler.UploadRoster)
		distributions.PUT("/:id/roster", cfg.UploadLimiter.Limit(), cfg.DistributionHandler.ReuploadRoster)
	}

	productSets := licensing.Group("/product-sets")
	{
		productSets.GET("", distributeRead, cfg.SetHandler.ListProductSets)
		productSets.GET("/:id", distributeRead, cfg.SetHandler.GetProductSet)

		manage := require(authorization.CapManageProductSets, authorization.ActionWrite)
		productSets.POST("", manage, cfg.SetHandler.CreateProductSet)
		productSets.PUT("/:id", manage, cfg.SetHandler.UpdateProductSet)
		productSets.DELETE("/:id", manage, cfg.SetHandler.DeleteProductSet)
	}

	targetSets := licensing.Group("/target-sets")
	{
		targetSets.GET("", distributeRead, cfg.SetHandler.ListTargetSets)
		targetSets.GET("/:id", distributeRead, cfg.SetHandler.GetTargetSet)

		manage := require(authorization.CapManageTargetSets, authorization.ActionWrite)
		targetSets.POST("", manage, cfg.SetHandler.CreateTargetSet)
		targetSets.PUT("/:id", manage, cfg.SetHandler.UpdateTargetSet)
		targetSets.DELETE("/:id", manage, cfg.SetHandler.DeleteTargetSet)
	}

	// :kind is "product" or "target"
	catalog := licensing.Group("/catalog/:kind")
	catalog.Use(distributeRead)
	{
		catalog.GET("/types", cfg.CatalogHandler.Types)
		catalog.GET("/:type/search", cfg.CatalogHandler.Search)
		catalog.GET("/:type", cfg.CatalogHandler.Get)
	}

	reconciliation := licensing.Group("/reconciliation")
	{
		reconciliation.POST("/run",
			require(authorization.CapRunReconciliation, authorization.ActionWrite),
			cfg.ReconciliationHandler.Run)
		reconciliation.GET("/status",
			require(authorization.CapRunReconciliation, authorization.ActionRead),
			cfg.ReconciliationHandler.Status)
	}
}
