package usecases

import (
	"context"
	"fmt"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// itemNamer is the lookup shared by product and target handlers.
type itemNamer interface {
	ItemName(ctx context.Context, itemID uint) (string, error)
}

// checkItemsExist asks each ref's handler for the item's name so that refs
// to missing catalog items are rejected on save.
func checkItemsExist(ctx context.Context, refs []licensing.ItemRef, lookup func(string) (itemNamer, error)) error {
	for _, ref := range refs {
		h, err := lookup(ref.Type)
		if err != nil {
			return err
		}
		if _, err := h.ItemName(ctx, ref.ItemID); err != nil {
			return fmt.Errorf("%s %d: %w", ref.Type, ref.ItemID, err)
		}
	}
	return nil
}

type SaveProductSetCommand struct {
	// ID is zero when creating.
	ID       uint
	Name     string
	Products []licensing.ItemRef
	SavedBy  uint
}

// SaveProductSetUseCase creates or updates a product set. On update the
// stored products are diffed against the wanted list.
type SaveProductSetUseCase struct {
	txManager      TransactionManager
	productSetRepo licensing.ProductSetRepository
	registry       *licensing.Registry
	logger         logger.Interface
}

func NewSaveProductSetUseCase(
	txManager TransactionManager,
	productSetRepo licensing.ProductSetRepository,
	registry *licensing.Registry,
	logger logger.Interface,
) *SaveProductSetUseCase {
	return &SaveProductSetUseCase{
		txManager:      txManager,
		productSetRepo: productSetRepo,
		registry:       registry,
		logger:         logger,
	}
}

func (uc *SaveProductSetUseCase) Execute(ctx context.Context, cmd SaveProductSetCommand) (*licensing.ProductSet, error) {
	if err := uc.registry.ValidateProducts(cmd.Products); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	lookup := func(t string) (itemNamer, error) { return uc.registry.Product(t) }
	if err := checkItemsExist(ctx, cmd.Products, lookup); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	var setID uint
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var set *licensing.ProductSet
		var add []licensing.ItemRef
		if cmd.ID == 0 {
			var err error
			set, err = licensing.NewProductSet(cmd.Name, cmd.SavedBy)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.productSetRepo.Create(txCtx, set); err != nil {
				return err
			}
			add, _ = set.DiffProducts(cmd.Products)
		} else {
			var err error
			set, err = uc.productSetRepo.GetByID(txCtx, cmd.ID)
			if err != nil {
				return err
			}
			if err := set.Rename(cmd.Name); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.productSetRepo.Update(txCtx, set); err != nil {
				return err
			}
			var remove []*licensing.Product
			add, remove = set.DiffProducts(cmd.Products)
			if len(remove) > 0 {
				ids := make([]uint, len(remove))
				for i, p := range remove {
					ids[i] = p.ID()
				}
				if err := uc.productSetRepo.DeleteProducts(txCtx, ids); err != nil {
					return err
				}
			}
		}

		if len(add) > 0 {
			products := make([]*licensing.Product, len(add))
			for i, ref := range add {
				products[i] = licensing.NewProduct(set.ID(), ref)
			}
			if err := uc.productSetRepo.AddProducts(txCtx, products); err != nil {
				return err
			}
		}
		setID = set.ID()
		return nil
	})
	if err != nil {
		if appErr := toAppError(err); apperrors.IsAppError(appErr) {
			return nil, appErr
		}
		uc.logger.Errorw("failed to save product set", "product_set_id", cmd.ID, "error", err)
		return nil, fmt.Errorf("failed to save product set: %w", err)
	}

	uc.logger.Infow("product set saved", "product_set_id", setID, "products", len(cmd.Products), "saved_by", cmd.SavedBy)
	set, err := uc.productSetRepo.GetByID(ctx, setID)
	if err != nil {
		return nil, toAppError(err)
	}
	return set, nil
}

type SaveTargetSetCommand struct {
	ID                 uint
	Name               string
	UserIDNumberFormat string
	Targets            []licensing.ItemRef
	SavedBy            uint
}

// SaveTargetSetUseCase creates or updates a target set, diffing its targets.
type SaveTargetSetUseCase struct {
	txManager     TransactionManager
	targetSetRepo licensing.TargetSetRepository
	registry      *licensing.Registry
	logger        logger.Interface
}

func NewSaveTargetSetUseCase(
	txManager TransactionManager,
	targetSetRepo licensing.TargetSetRepository,
	registry *licensing.Registry,
	logger logger.Interface,
) *SaveTargetSetUseCase {
	return &SaveTargetSetUseCase{
		txManager:     txManager,
		targetSetRepo: targetSetRepo,
		registry:      registry,
		logger:        logger,
	}
}

func (uc *SaveTargetSetUseCase) Execute(ctx context.Context, cmd SaveTargetSetCommand) (*licensing.TargetSet, error) {
	if err := uc.registry.ValidateTargets(cmd.Targets); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}
	lookup := func(t string) (itemNamer, error) { return uc.registry.Target(t) }
	if err := checkItemsExist(ctx, cmd.Targets, lookup); err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	var setID uint
	err := uc.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		var set *licensing.TargetSet
		var add []licensing.ItemRef
		if cmd.ID == 0 {
			var err error
			set, err = licensing.NewTargetSet(cmd.Name, cmd.UserIDNumberFormat, cmd.SavedBy)
			if err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.targetSetRepo.Create(txCtx, set); err != nil {
				return err
			}
			add, _ = set.DiffTargets(cmd.Targets)
		} else {
			var err error
			set, err = uc.targetSetRepo.GetByID(txCtx, cmd.ID)
			if err != nil {
				return err
			}
			if err := set.Update(cmd.Name, cmd.UserIDNumberFormat); err != nil {
				return apperrors.NewValidationError(err.Error())
			}
			if err := uc.targetSetRepo.Update(txCtx, set); err != nil {
				return err
			}
			var remove []*licensing.Target
			add, remove = set.DiffTargets(cmd.Targets)
			if len(remove) > 0 {
				ids := make([]uint, len(remove))
				for i, t := range remove {
					ids[i] = t.ID()
				}
				if err := uc.targetSetRepo.DeleteTargets(txCtx, ids); err != nil {
					return err
				}
			}
		}

		if len(add) > 0 {
			targets := make([]*licensing.Target, len(add))
			for i, ref := range add {
				targets[i] = licensing.NewTarget(set.ID(), ref)
			}
			if err := uc.targetSetRepo.AddTargets(txCtx, targets); err != nil {
				return err
			}
		}
		setID = set.ID()
		return nil
	})
	if err != nil {
		if appErr := toAppError(err); apperrors.IsAppError(appErr) {
			return nil, appErr
		}
		uc.logger.Errorw("failed to save target set", "target_set_id", cmd.ID, "error", err)
		return nil, fmt.Errorf("failed to save target set: %w", err)
	}

	uc.logger.Infow("target set saved", "target_set_id", setID, "targets", len(cmd.Targets), "saved_by", cmd.SavedBy)
	set, err := uc.targetSetRepo.GetByID(ctx, setID)
	if err != nil {
		return nil, toAppError(err)
	}
	return set, nil
}

// SetsUseCase serves reads and deletes of product and target sets.
type SetsUseCase struct {
	productSetRepo licensing.ProductSetRepository
	targetSetRepo  licensing.TargetSetRepository
	allocationRepo licensing.AllocationRepository
	logger         logger.Interface
}

func NewSetsUseCase(
	productSetRepo licensing.ProductSetRepository,
	targetSetRepo licensing.TargetSetRepository,
	allocationRepo licensing.AllocationRepository,
	logger logger.Interface,
) *SetsUseCase {
	return &SetsUseCase{
		productSetRepo: productSetRepo,
		targetSetRepo:  targetSetRepo,
		allocationRepo: allocationRepo,
		logger:         logger,
	}
}

func (uc *SetsUseCase) GetProductSet(ctx context.Context, id uint) (*licensing.ProductSet, error) {
	set, err := uc.productSetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, toAppError(err)
	}
	return set, nil
}

func (uc *SetsUseCase) ListProductSets(ctx context.Context) ([]*licensing.ProductSet, error) {
	sets, err := uc.productSetRepo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list product sets", "error", err)
		return nil, fmt.Errorf("failed to list product sets: %w", err)
	}
	return sets, nil
}

// DeleteProductSet refuses sets still referenced by an allocation.
func (uc *SetsUseCase) DeleteProductSet(ctx context.Context, id uint) error {
	if _, err := uc.productSetRepo.GetByID(ctx, id); err != nil {
		return toAppError(err)
	}
	n, err := uc.allocationRepo.CountByProductSet(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count allocations of product set: %w", err)
	}
	if n > 0 {
		return toAppError(licensing.ErrSetInUse)
	}
	if err := uc.productSetRepo.Delete(ctx, id); err != nil {
		uc.logger.Errorw("failed to delete product set", "product_set_id", id, "error", err)
		return fmt.Errorf("failed to delete product set: %w", err)
	}
	uc.logger.Infow("product set deleted", "product_set_id", id)
	return nil
}

func (uc *SetsUseCase) GetTargetSet(ctx context.Context, id uint) (*licensing.TargetSet, error) {
	set, err := uc.targetSetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, toAppError(err)
	}
	return set, nil
}

func (uc *SetsUseCase) ListTargetSets(ctx context.Context) ([]*licensing.TargetSet, error) {
	sets, err := uc.targetSetRepo.List(ctx)
	if err != nil {
		uc.logger.Errorw("failed to list target sets", "error", err)
		return nil, fmt.Errorf("failed to list target sets: %w", err)
	}
	return sets, nil
}

// DeleteTargetSet refuses sets still referenced by an allocation.
func (uc *SetsUseCase) DeleteTargetSet(ctx context.Context, id uint) error {
	if _, err := uc.targetSetRepo.GetByID(ctx, id); err != nil {
		return toAppError(err)
	}
	n, err := uc.allocationRepo.CountByTargetSet(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to count allocations of target set: %w", err)
	}
	if n > 0 {
		return toAppError(licensing.ErrSetInUse)
	}
	if err := uc.targetSetRepo.Delete(ctx, id); err != nil {
		uc.logger.Errorw("failed to delete target set", "target_set_id", id, "error", err)
		return fmt.Errorf("failed to delete target set: %w", err)
	}
	uc.logger.Infow("target set deleted", "target_set_id", id)
	return nil
}
