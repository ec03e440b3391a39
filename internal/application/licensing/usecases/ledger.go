package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

type ListAllocationsQuery struct {
	TargetSetID *uint
	// ActiveOnly keeps allocations whose window contains now and that still
	// have licences left.
	ActiveOnly bool
}

// ListAllocationsUseCase reports consumed and available counts per allocation.
// Nothing is cached; every call reads the ledger.
type ListAllocationsUseCase struct {
	allocationRepo licensing.AllocationRepository
	logger         logger.Interface
}

func NewListAllocationsUseCase(allocationRepo licensing.AllocationRepository, logger logger.Interface) *ListAllocationsUseCase {
	return &ListAllocationsUseCase{
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

func (uc *ListAllocationsUseCase) Execute(ctx context.Context, query ListAllocationsQuery) ([]*licensing.AllocationUsage, error) {
	var (
		usage []*licensing.AllocationUsage
		err   error
	)
	if query.ActiveOnly {
		usage, err = uc.allocationRepo.ListActive(ctx, biztime.NowUTC(), query.TargetSetID)
	} else {
		usage, err = uc.allocationRepo.ListUsage(ctx, query.TargetSetID)
	}
	if err != nil {
		uc.logger.Errorw("failed to list allocations", "active_only", query.ActiveOnly, "error", err)
		return nil, fmt.Errorf("failed to list allocations: %w", err)
	}
	return usage, nil
}

// AllocationView is an allocation with its ledger position.
type AllocationView struct {
	Allocation *licensing.Allocation
	Consumed   int
	// Available may be negative after an over-commitment; DisplayAvailable is clamped.
	Available        int
	DisplayAvailable int
	Active           bool
}

type GetAllocationUseCase struct {
	allocationRepo licensing.AllocationRepository
	licenceRepo    licensing.LicenceRepository
	logger         logger.Interface
}

func NewGetAllocationUseCase(
	allocationRepo licensing.AllocationRepository,
	licenceRepo licensing.LicenceRepository,
	logger logger.Interface,
) *GetAllocationUseCase {
	return &GetAllocationUseCase{
		allocationRepo: allocationRepo,
		licenceRepo:    licenceRepo,
		logger:         logger,
	}
}

func (uc *GetAllocationUseCase) Execute(ctx context.Context, allocationID uint) (*AllocationView, error) {
	allocation, err := uc.allocationRepo.GetByID(ctx, allocationID)
	if err != nil {
		return nil, toAppError(err)
	}

	consumed, err := uc.licenceRepo.CountByAllocation(ctx, allocationID)
	if err != nil {
		uc.logger.Errorw("failed to count licences", "allocation_id", allocationID, "error", err)
		return nil, fmt.Errorf("failed to count licences: %w", err)
	}

	usage := &licensing.AllocationUsage{Allocation: allocation, Consumed: consumed}
	return &AllocationView{
		Allocation:       allocation,
		Consumed:         consumed,
		Available:        usage.Available(),
		DisplayAvailable: usage.DisplayAvailable(),
		Active:           allocation.IsActiveAt(biztime.NowUTC()),
	}, nil
}
