package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// DistributionView pairs a distribution with its licence count, or
// licensing.CountPending while its roster is staged.
type DistributionView struct {
	Distribution *licensing.Distribution
	Count        int
	Pending      bool
}

type ListDistributionsUseCase struct {
	allocationRepo   licensing.AllocationRepository
	distributionRepo licensing.DistributionRepository
	licenceRepo      licensing.LicenceRepository
	artifacts        licensing.ArtifactStore
	logger           logger.Interface
}

func NewListDistributionsUseCase(
	allocationRepo licensing.AllocationRepository,
	distributionRepo licensing.DistributionRepository,
	licenceRepo licensing.LicenceRepository,
	artifacts licensing.ArtifactStore,
	logger logger.Interface,
) *ListDistributionsUseCase {
	return &ListDistributionsUseCase{
		allocationRepo:   allocationRepo,
		distributionRepo: distributionRepo,
		licenceRepo:      licenceRepo,
		artifacts:        artifacts,
		logger:           logger,
	}
}

func (uc *ListDistributionsUseCase) Execute(ctx context.Context, allocationID uint) ([]*DistributionView, error) {
	if _, err := uc.allocationRepo.GetByID(ctx, allocationID); err != nil {
		return nil, toAppError(err)
	}

	distributions, err := uc.distributionRepo.ListByAllocation(ctx, allocationID)
	if err != nil {
		uc.logger.Errorw("failed to list distributions", "allocation_id", allocationID, "error", err)
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	if len(distributions) == 0 {
		return []*DistributionView{}, nil
	}

	ids := make([]uint, len(distributions))
	for i, d := range distributions {
		ids[i] = d.ID()
	}

	counts, err := uc.licenceRepo.CountByDistributions(ctx, ids)
	if err != nil {
		uc.logger.Errorw("failed to count distribution licences", "allocation_id", allocationID, "error", err)
		return nil, fmt.Errorf("failed to count distribution licences: %w", err)
	}
	staged, err := uc.artifacts.ExistsMany(ctx, licensing.ArtifactOwnerDistribution, ids)
	if err != nil {
		uc.logger.Errorw("failed to check staged rosters", "allocation_id", allocationID, "error", err)
		return nil, fmt.Errorf("failed to check staged rosters: %w", err)
	}

	views := make([]*DistributionView, len(distributions))
	for i, d := range distributions {
		count := licensing.DistributionCount(counts[d.ID()], staged[d.ID()])
		views[i] = &DistributionView{
			Distribution: d,
			Count:        count,
			Pending:      count == licensing.CountPending,
		}
	}
	return views, nil
}
