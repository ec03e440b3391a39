package http

import (
	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	licensingHandlers "github.com/orris-inc/licensing/internal/interfaces/http/handlers/licensing"
	sharedConfig "github.com/orris-inc/licensing/internal/shared/config"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// allHandlers holds all HTTP handler instances used by the application.
type allHandlers struct {
	allocationHandler     *licensingHandlers.AllocationHandler
	distributionHandler   *licensingHandlers.DistributionHandler
	setHandler            *licensingHandlers.SetHandler
	catalogHandler        *licensingHandlers.CatalogHandler
	reconciliationHandler *licensingHandlers.ReconciliationHandler
}

func newHandlers(ucs *allUseCases, runState *usecases.RunState, cfg sharedConfig.LicensingConfig, log logger.Interface) *allHandlers {
	return &allHandlers{
		allocationHandler: licensingHandlers.NewAllocationHandler(
			ucs.createAllocation, ucs.getAllocation, ucs.listAllocations, ucs.myTarget, log,
		),
		distributionHandler: licensingHandlers.NewDistributionHandler(
			ucs.manualDistribution, ucs.stageBulk, ucs.reupload, ucs.listDistributions, cfg.MaxUploadBytes, log,
		),
		setHandler:            licensingHandlers.NewSetHandler(ucs.saveProductSet, ucs.saveTargetSet, ucs.sets, log),
		catalogHandler:        licensingHandlers.NewCatalogHandler(ucs.catalog, log),
		reconciliationHandler: licensingHandlers.NewReconciliationHandler(ucs.reconcile, runState, log),
	}
}
