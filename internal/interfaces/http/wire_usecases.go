package http

import (
	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	"github.com/orris-inc/licensing/internal/infrastructure/auth"
	sharedConfig "github.com/orris-inc/licensing/internal/shared/config"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// allUseCases holds all use case instances used by the application.
type allUseCases struct {
	createAllocation   *usecases.CreateAllocationUseCase
	getAllocation      *usecases.GetAllocationUseCase
	listAllocations    *usecases.ListAllocationsUseCase
	myTarget           *usecases.MyTargetUseCase
	manualDistribution *usecases.CreateManualDistributionUseCase
	stageBulk          *usecases.StageBulkDistributionUseCase
	reupload           *usecases.ReuploadDistributionUseCase
	listDistributions  *usecases.ListDistributionsUseCase
	saveProductSet     *usecases.SaveProductSetUseCase
	saveTargetSet      *usecases.SaveTargetSetUseCase
	sets               *usecases.SetsUseCase
	catalog            *usecases.CatalogUseCase
	importRoster       *usecases.ImportRosterUseCase
	reconcile          *usecases.ReconciliationUseCase
}

func newUseCases(
	repos *repositories,
	registry *licensing.Registry,
	hasher *auth.BcryptPasswordHasher,
	publisher events.EventPublisher,
	runState *usecases.RunState,
	cfg sharedConfig.LicensingConfig,
	log logger.Interface,
) *allUseCases {
	ucs := &allUseCases{
		createAllocation: usecases.NewCreateAllocationUseCase(
			repos.allocationRepo, repos.productSetRepo, repos.targetSetRepo, publisher, log,
		),
		getAllocation:   usecases.NewGetAllocationUseCase(repos.allocationRepo, repos.licenceRepo, log),
		listAllocations: usecases.NewListAllocationsUseCase(repos.allocationRepo, log),
		myTarget:        usecases.NewMyTargetUseCase(repos.targetSetRepo, repos.allocationRepo, registry, log),
		manualDistribution: usecases.NewCreateManualDistributionUseCase(
			repos.txManager, repos.allocationRepo, repos.distributionRepo, repos.licenceRepo,
			repos.productSetRepo, repos.userRepo, log,
		),
		stageBulk: usecases.NewStageBulkDistributionUseCase(
			repos.txManager, repos.allocationRepo, repos.distributionRepo, repos.productSetRepo,
			repos.artifacts, cfg.MaxUploadBytes, log,
		),
		reupload: usecases.NewReuploadDistributionUseCase(
			repos.distributionRepo, repos.licenceRepo, repos.artifacts, cfg.MaxUploadBytes, log,
		),
		listDistributions: usecases.NewListDistributionsUseCase(
			repos.allocationRepo, repos.distributionRepo, repos.licenceRepo, repos.artifacts, log,
		),
		saveProductSet: usecases.NewSaveProductSetUseCase(repos.txManager, repos.productSetRepo, registry, log),
		saveTargetSet:  usecases.NewSaveTargetSetUseCase(repos.txManager, repos.targetSetRepo, registry, log),
		sets:           usecases.NewSetsUseCase(repos.productSetRepo, repos.targetSetRepo, repos.allocationRepo, log),
		catalog:        usecases.NewCatalogUseCase(registry, log),
	}

	ucs.importRoster = usecases.NewImportRosterUseCase(
		repos.txManager, repos.allocationRepo, repos.distributionRepo, repos.licenceRepo,
		repos.targetSetRepo, repos.userRepo, registry, hasher, publisher,
		usecases.AccountDefaults{Locale: cfg.DefaultLocale, Host: cfg.DefaultHost},
		log,
	)
	ucs.reconcile = usecases.NewReconciliationUseCase(
		runState, ucs.importRoster, repos.artifacts, repos.allocationRepo, repos.distributionRepo,
		repos.licenceRepo, repos.productSetRepo, registry, publisher, log,
	)

	return ucs
}
