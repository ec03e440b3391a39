package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// MyTarget is the target of a set the acting user belongs to.
type MyTarget struct {
	TargetSet *licensing.TargetSet
	Target    *licensing.Target
	Item      *licensing.CatalogItem
}

// MyTargetUseCase answers "which target am I in" for distributors.
type MyTargetUseCase struct {
	targetSetRepo  licensing.TargetSetRepository
	allocationRepo licensing.AllocationRepository
	registry       *licensing.Registry
	logger         logger.Interface
}

func NewMyTargetUseCase(
	targetSetRepo licensing.TargetSetRepository,
	allocationRepo licensing.AllocationRepository,
	registry *licensing.Registry,
	logger logger.Interface,
) *MyTargetUseCase {
	return &MyTargetUseCase{
		targetSetRepo:  targetSetRepo,
		allocationRepo: allocationRepo,
		registry:       registry,
		logger:         logger,
	}
}

// InSet resolves userID's target within one target set.
func (uc *MyTargetUseCase) InSet(ctx context.Context, userID, targetSetID uint) (*MyTarget, error) {
	set, err := uc.targetSetRepo.GetByID(ctx, targetSetID)
	if err != nil {
		return nil, toAppError(err)
	}
	mine, found, err := uc.resolve(ctx, set, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, toAppError(fmt.Errorf("%w: user %d", licensing.ErrMissingTarget, userID))
	}
	return mine, nil
}

// All returns userID's target in every set it belongs to.
func (uc *MyTargetUseCase) All(ctx context.Context, userID uint) ([]*MyTarget, error) {
	sets, err := uc.targetSetRepo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list target sets", "error", err)
		return nil, fmt.Errorf("failed to list target sets: %w", err)
	}

	out := make([]*MyTarget, 0)
	for _, set := range sets {
		mine, found, err := uc.resolve(ctx, set, userID)
		if err != nil {
			return nil, err
		}
		if found {
			out = append(out, mine)
		}
	}
	return out, nil
}

// ActiveAllocations lists the active allocations of every set userID belongs to.
func (uc *MyTargetUseCase) ActiveAllocations(ctx context.Context, userID uint) ([]*licensing.AllocationUsage, error) {
	mine, err := uc.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := biztime.NowUTC()
	out := make([]*licensing.AllocationUsage, 0)
	for _, m := range mine {
		setID := m.TargetSet.ID()
		usage, err := uc.allocationRepo.ListActive(ctx, now, &setID)
		if err != nil {
			uc.logger.Errorw("failed to list active allocations", "target_set_id", setID, "error", err)
			return nil, fmt.Errorf("failed to list active allocations: %w", err)
		}
		out = append(out, usage...)
	}
	return out, nil
}

func (uc *MyTargetUseCase) resolve(ctx context.Context, set *licensing.TargetSet, userID uint) (*MyTarget, bool, error) {
	target, found, err := uc.registry.TargetForUser(ctx, set, userID)
	if err != nil {
		uc.logger.Errorw("failed to resolve user target", "target_set_id", set.ID(), "user_id", userID, "error", err)
		return nil, false, fmt.Errorf("failed to resolve user target: %w", err)
	}
	if !found {
		return nil, false, nil
	}

	mine := &MyTarget{TargetSet: set, Target: target}
	h, err := uc.registry.Target(target.Type())
	if err != nil {
		return nil, false, err
	}
	items, err := h.Get(ctx, []uint{target.ItemID()})
	if err != nil {
		return nil, false, fmt.Errorf("failed to load target item: %w", err)
	}
	if len(items) > 0 {
		mine.Item = items[0]
	}
	return mine, true, nil
}
