package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/domain/shared/events"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

type CreateAllocationCommand struct {
	ProductSetID uint
	TargetSetID  uint
	Count        int
	StartDate    time.Time
	EndDate      time.Time
	CreatedBy    uint
}

type CreateAllocationUseCase struct {
	allocationRepo licensing.AllocationRepository
	productSetRepo licensing.ProductSetRepository
	targetSetRepo  licensing.TargetSetRepository
	publisher      events.EventPublisher
	logger         logger.Interface
}

func NewCreateAllocationUseCase(
	allocationRepo licensing.AllocationRepository,
	productSetRepo licensing.ProductSetRepository,
	targetSetRepo licensing.TargetSetRepository,
	publisher events.EventPublisher,
	logger logger.Interface,
) *CreateAllocationUseCase {
	return &CreateAllocationUseCase{
		allocationRepo: allocationRepo,
		productSetRepo: productSetRepo,
		targetSetRepo:  targetSetRepo,
		publisher:      publisher,
		logger:         logger,
	}
}

func (uc *CreateAllocationUseCase) Execute(ctx context.Context, cmd CreateAllocationCommand) (*licensing.Allocation, error) {
	if _, err := uc.productSetRepo.GetByID(ctx, cmd.ProductSetID); err != nil {
		return nil, toAppError(err)
	}
	if _, err := uc.targetSetRepo.GetByID(ctx, cmd.TargetSetID); err != nil {
		return nil, toAppError(err)
	}

	allocation, err := licensing.NewAllocation(cmd.ProductSetID, cmd.TargetSetID, cmd.Count, cmd.StartDate, cmd.EndDate, cmd.CreatedBy)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	if err := uc.allocationRepo.Create(ctx, allocation); err != nil {
		uc.logger.Errorw("failed to create allocation", "error", err, "product_set_id", cmd.ProductSetID, "target_set_id", cmd.TargetSetID)
		return nil, fmt.Errorf("failed to create allocation: %w", err)
	}

	uc.logger.Infow("allocation created",
		"allocation_id", allocation.ID(),
		"product_set_id", allocation.ProductSetID(),
		"target_set_id", allocation.TargetSetID(),
		"count", allocation.Count(),
		"created_by", allocation.CreatedBy(),
	)

	if err := uc.publisher.Publish(licensing.NewAllocationCreatedEvent(allocation)); err != nil {
		uc.logger.Warnw("failed to publish allocation created event", "allocation_id", allocation.ID(), "error", err)
	}

	return allocation, nil
}
