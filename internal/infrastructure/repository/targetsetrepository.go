package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// TargetSetRepositoryImpl implements licensing.TargetSetRepository
type TargetSetRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SetMapper
	logger logger.Interface
}

// NewTargetSetRepository creates a new target set repository
func NewTargetSetRepository(db *gorm.DB, logger logger.Interface) licensing.TargetSetRepository {
	return &TargetSetRepositoryImpl{
		db:     db,
		mapper: mappers.NewSetMapper(),
		logger: logger,
	}
}

func (r *TargetSetRepositoryImpl) Create(ctx context.Context, set *licensing.TargetSet) error {
	model := r.mapper.TargetSetToModel(set)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create target set", "name", set.Name(), "error", err)
		return fmt.Errorf("failed to create target set: %w", err)
	}
	set.SetID(model.ID)
	return nil
}

func (r *TargetSetRepositoryImpl) Update(ctx context.Context, set *licensing.TargetSet) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.TargetSetModel{}).
		Where("id = ?", set.ID()).
		Updates(map[string]any{
			"name":                  set.Name(),
			"user_id_number_format": set.UserIDNumberFormat(),
		})
	if result.Error != nil {
		r.logger.Errorw("failed to update target set", "id", set.ID(), "error", result.Error)
		return fmt.Errorf("failed to update target set: %w", result.Error)
	}
	return nil
}

func (r *TargetSetRepositoryImpl) GetByID(ctx context.Context, id uint) (*licensing.TargetSet, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.TargetSetModel
	if err := tx.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, licensing.ErrTargetSetNotFound
		}
		r.logger.Errorw("failed to get target set", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get target set: %w", err)
	}

	var targets []*models.TargetModel
	if err := tx.Where("target_set_id = ?", id).Order("id ASC").Find(&targets).Error; err != nil {
		r.logger.Errorw("failed to load targets", "target_set_id", id, "error", err)
		return nil, fmt.Errorf("failed to load targets: %w", err)
	}

	return r.mapper.TargetSetToDomain(&model, targets), nil
}

func (r *TargetSetRepositoryImpl) List(ctx context.Context) ([]*licensing.TargetSet, error) {
	var sets []*models.TargetSetModel
	if err := db.GetTxFromContext(ctx, r.db).Order("name ASC, id ASC").Find(&sets).Error; err != nil {
		r.logger.Errorw("failed to list target sets", "error", err)
		return nil, fmt.Errorf("failed to list target sets: %w", err)
	}
	return r.withTargets(ctx, sets)
}

// ListContaining returns the sets holding any of refs, each with all its targets.
func (r *TargetSetRepositoryImpl) ListContaining(ctx context.Context, refs []licensing.ItemRef) ([]*licensing.TargetSet, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	tx := db.GetTxFromContext(ctx, r.db)

	conds := make([]string, 0, len(refs))
	args := make([]any, 0, len(refs)*2)
	for _, ref := range refs {
		conds = append(conds, "(type = ? AND item_id = ?)")
		args = append(args, ref.Type, ref.ItemID)
	}

	var setIDs []uint
	err := tx.Model(&models.TargetModel{}).
		Where(strings.Join(conds, " OR "), args...).
		Distinct().
		Pluck("target_set_id", &setIDs).Error
	if err != nil {
		r.logger.Errorw("failed to match targets", "error", err)
		return nil, fmt.Errorf("failed to match targets: %w", err)
	}
	if len(setIDs) == 0 {
		return []*licensing.TargetSet{}, nil
	}

	var sets []*models.TargetSetModel
	if err := tx.Where("id IN ?", setIDs).Order("name ASC, id ASC").Find(&sets).Error; err != nil {
		r.logger.Errorw("failed to list target sets by target", "error", err)
		return nil, fmt.Errorf("failed to list target sets: %w", err)
	}
	return r.withTargets(ctx, sets)
}

func (r *TargetSetRepositoryImpl) withTargets(ctx context.Context, sets []*models.TargetSetModel) ([]*licensing.TargetSet, error) {
	if len(sets) == 0 {
		return []*licensing.TargetSet{}, nil
	}
	ids := make([]uint, 0, len(sets))
	for _, s := range sets {
		ids = append(ids, s.ID)
	}

	var targets []*models.TargetModel
	if err := db.GetTxFromContext(ctx, r.db).Where("target_set_id IN ?", ids).Order("id ASC").Find(&targets).Error; err != nil {
		r.logger.Errorw("failed to list targets", "error", err)
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	bySet := make(map[uint][]*models.TargetModel)
	for _, t := range targets {
		bySet[t.TargetSetID] = append(bySet[t.TargetSetID], t)
	}

	out := make([]*licensing.TargetSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, r.mapper.TargetSetToDomain(s, bySet[s.ID]))
	}
	return out, nil
}

// Delete removes the set and its targets.
func (r *TargetSetRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("target_set_id = ?", id).Delete(&models.TargetModel{}).Error; err != nil {
			r.logger.Errorw("failed to delete targets", "target_set_id", id, "error", err)
			return fmt.Errorf("failed to delete targets: %w", err)
		}
		result := tx.Delete(&models.TargetSetModel{}, id)
		if result.Error != nil {
			r.logger.Errorw("failed to delete target set", "id", id, "error", result.Error)
			return fmt.Errorf("failed to delete target set: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return licensing.ErrTargetSetNotFound
		}
		return nil
	})
}

func (r *TargetSetRepositoryImpl) AddTargets(ctx context.Context, targets []*licensing.Target) error {
	if len(targets) == 0 {
		return nil
	}
	modelList := make([]*models.TargetModel, 0, len(targets))
	for _, t := range targets {
		modelList = append(modelList, r.mapper.TargetToModel(t))
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(&modelList).Error; err != nil {
		r.logger.Errorw("failed to add targets", "count", len(targets), "error", err)
		return fmt.Errorf("failed to add targets: %w", err)
	}
	for i, m := range modelList {
		targets[i].SetID(m.ID)
	}
	return nil
}

func (r *TargetSetRepositoryImpl) DeleteTargets(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Delete(&models.TargetModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete targets", "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete targets: %w", err)
	}
	return nil
}
