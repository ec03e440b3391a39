package licensing

import (
	"context"
	"time"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
)

// Use case interfaces consumed by the licensing handlers.

type createAllocationUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateAllocationCommand) (*licensing.Allocation, error)
}

type getAllocationUseCase interface {
	Execute(ctx context.Context, allocationID uint) (*usecases.AllocationView, error)
}

type listAllocationsUseCase interface {
	Execute(ctx context.Context, query usecases.ListAllocationsQuery) ([]*licensing.AllocationUsage, error)
}

type createManualDistributionUseCase interface {
	Execute(ctx context.Context, cmd usecases.CreateManualDistributionCommand) (*usecases.CreateManualDistributionResult, error)
}

type stageBulkDistributionUseCase interface {
	Execute(ctx context.Context, cmd usecases.StageBulkDistributionCommand) (*licensing.Distribution, error)
}

type reuploadDistributionUseCase interface {
	Execute(ctx context.Context, cmd usecases.ReuploadDistributionCommand) error
}

type listDistributionsUseCase interface {
	Execute(ctx context.Context, allocationID uint) ([]*usecases.DistributionView, error)
}

type saveProductSetUseCase interface {
	Execute(ctx context.Context, cmd usecases.SaveProductSetCommand) (*licensing.ProductSet, error)
}

type saveTargetSetUseCase interface {
	Execute(ctx context.Context, cmd usecases.SaveTargetSetCommand) (*licensing.TargetSet, error)
}

type setsUseCase interface {
	GetProductSet(ctx context.Context, id uint) (*licensing.ProductSet, error)
	ListProductSets(ctx context.Context) ([]*licensing.ProductSet, error)
	DeleteProductSet(ctx context.Context, id uint) error
	GetTargetSet(ctx context.Context, id uint) (*licensing.TargetSet, error)
	ListTargetSets(ctx context.Context) ([]*licensing.TargetSet, error)
	DeleteTargetSet(ctx context.Context, id uint) error
}

type catalogUseCase interface {
	Types(kind string) ([]string, error)
	Search(ctx context.Context, q usecases.SearchCatalogQuery) ([]*licensing.CatalogItem, error)
	Get(ctx context.Context, kind, itemType string, itemIDs []uint) ([]*licensing.CatalogItem, error)
}

type myTargetUseCase interface {
	InSet(ctx context.Context, userID, targetSetID uint) (*usecases.MyTarget, error)
	All(ctx context.Context, userID uint) ([]*usecases.MyTarget, error)
	ActiveAllocations(ctx context.Context, userID uint) ([]*licensing.AllocationUsage, error)
}

type reconciliationUseCase interface {
	Execute(ctx context.Context) (int, error)
}

type runStateReader interface {
	IsRunning(ctx context.Context) (bool, error)
	LastRun(ctx context.Context) (time.Time, error)
}
