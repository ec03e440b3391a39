package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/metrics"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

type CreateManualDistributionCommand struct {
	AllocationID uint
	ProductID    uint
	UserIDs      []uint
	CreatedBy    uint
}

type CreateManualDistributionResult struct {
	Distribution *licensing.Distribution
	Licences     int
}

// CreateManualDistributionUseCase grants one licence per selected user. The
// capacity check and the writes share a transaction holding the allocation
// row lock, and consumed is re-counted before commit.
type CreateManualDistributionUseCase struct {
	txManager        TransactionManager
	allocationRepo   licensing.AllocationRepository
	distributionRepo licensing.DistributionRepository
	licenceRepo      licensing.LicenceRepository
	productSetRepo   licensing.ProductSetRepository
	userRepo         account.Repository
	logger           logger.Interface
}

func NewCreateManualDistributionUseCase(
	txManager TransactionManager,
	allocationRepo licensing.AllocationRepository,
	distributionRepo licensing.DistributionRepository,
	licenceRepo licensing.LicenceRepository,
	productSetRepo licensing.ProductSetRepository,
	userRepo account.Repository,
	logger logger.Interface,
) *CreateManualDistributionUseCase {
	return &CreateManualDistributionUseCase{
		txManager:        txManager,
		allocationRepo:   allocationRepo,
		distributionRepo: distributionRepo,
		licenceRepo:      licenceRepo,
		productSetRepo:   productSetRepo,
		userRepo:         userRepo,
		logger:           logger,
	}
}

func (uc *CreateManualDistributionUseCase) Execute(ctx context.Context, cmd CreateManualDistributionCommand) (*CreateManualDistributionResult, error) {
	userIDs := uniqueIDs(cmd.UserIDs)
	if len(userIDs) == 0 {
		return nil, toAppError(licensing.ErrEmptySelection)
	}

	if err := uc.ensureUsersExist(ctx, userIDs); err != nil {
		return nil, err
	}

	var distribution *licensing.Distribution
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		allocation, err := uc.allocationRepo.GetByIDForUpdate(txCtx, cmd.AllocationID)
		if err != nil {
			return err
		}
		if err := checkDistributable(txCtx, uc.productSetRepo, allocation, cmd.ProductID); err != nil {
			return err
		}

		consumed, err := uc.licenceRepo.CountByAllocation(txCtx, allocation.ID())
		if err != nil {
			return err
		}
		if available := allocation.Available(consumed); len(userIDs) > available {
			return licensing.NewInsufficientCapacityError(available, len(userIDs))
		}

		distribution, err = licensing.NewDistribution(allocation.ID(), cmd.ProductID, cmd.CreatedBy)
		if err != nil {
			return apperrors.NewValidationError(err.Error())
		}
		if err := uc.distributionRepo.Create(txCtx, distribution); err != nil {
			return err
		}

		licences := make([]*licensing.Licence, 0, len(userIDs))
		for _, userID := range userIDs {
			licence, err := licensing.NewLicence(distribution.ID(), userID, cmd.CreatedBy)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			licences = append(licences, licence)
		}
		if err := uc.licenceRepo.CreateBatch(txCtx, licences); err != nil {
			return err
		}

		recount, err := uc.licenceRepo.CountByAllocation(txCtx, allocation.ID())
		if err != nil {
			return err
		}
		if recount > allocation.Count() {
			return licensing.ErrCapacityRace
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, licensing.ErrInsufficientCapacity) || errors.Is(err, licensing.ErrCapacityRace) {
			metrics.RecordCapacityRejection(metrics.SourceManual)
			uc.logger.Warnw("manual distribution refused",
				"allocation_id", cmd.AllocationID,
				"requested", len(userIDs),
				"error", err,
			)
		} else if !apperrors.IsAppError(toAppError(err)) {
			uc.logger.Errorw("failed to create manual distribution", "allocation_id", cmd.AllocationID, "error", err)
			return nil, fmt.Errorf("failed to create manual distribution: %w", err)
		}
		return nil, toAppError(err)
	}

	metrics.RecordLicencesCreated(metrics.SourceManual, len(userIDs))
	uc.logger.Infow("manual distribution created",
		"distribution_id", distribution.ID(),
		"allocation_id", distribution.AllocationID(),
		"product_id", distribution.ProductID(),
		"licences", len(userIDs),
		"created_by", cmd.CreatedBy,
	)

	return &CreateManualDistributionResult{
		Distribution: distribution,
		Licences:     len(userIDs),
	}, nil
}

func (uc *CreateManualDistributionUseCase) ensureUsersExist(ctx context.Context, userIDs []uint) error {
	users, err := uc.userRepo.GetByIDs(ctx, userIDs)
	if err != nil {
		uc.logger.Errorw("failed to load selected users", "count", len(userIDs), "error", err)
		return fmt.Errorf("failed to load selected users: %w", err)
	}
	if len(users) == len(userIDs) {
		return nil
	}

	found := make(map[uint]struct{}, len(users))
	for _, u := range users {
		found[u.ID()] = struct{}{}
	}
	for _, id := range userIDs {
		if _, ok := found[id]; !ok {
			return apperrors.NewValidationError(account.ErrUserNotFound.Error(), fmt.Sprintf("user_id=%d", id))
		}
	}
	return nil
}

// checkDistributable verifies the allocation window and that the product
// belongs to the allocation's product set.
func checkDistributable(ctx context.Context, productSetRepo licensing.ProductSetRepository, allocation *licensing.Allocation, productID uint) error {
	if !allocation.IsActiveAt(biztime.NowUTC()) {
		return licensing.ErrAllocationInactive
	}
	set, err := productSetRepo.GetByID(ctx, allocation.ProductSetID())
	if err != nil {
		return err
	}
	if !set.Contains(productID) {
		return licensing.ErrProductNotInSet
	}
	return nil
}

// uniqueIDs drops zeros and repeats, keeping first-occurrence order.
func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
