package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// DistributionRepositoryImpl implements licensing.DistributionRepository
type DistributionRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.LicensingMapper
	logger logger.Interface
}

// NewDistributionRepository creates a new distribution repository
func NewDistributionRepository(db *gorm.DB, logger logger.Interface) licensing.DistributionRepository {
	return &DistributionRepositoryImpl{
		db:     db,
		mapper: mappers.NewLicensingMapper(),
		logger: logger,
	}
}

func (r *DistributionRepositoryImpl) Create(ctx context.Context, distribution *licensing.Distribution) error {
	model := r.mapper.DistributionToModel(distribution)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create distribution", "allocation_id", distribution.AllocationID(), "error", err)
		return fmt.Errorf("failed to create distribution: %w", err)
	}

	distribution.SetID(model.ID)
	return nil
}

func (r *DistributionRepositoryImpl) GetByID(ctx context.Context, id uint) (*licensing.Distribution, error) {
	var model models.DistributionModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, licensing.ErrDistributionNotFound
		}
		r.logger.Errorw("failed to get distribution", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get distribution: %w", err)
	}
	return r.mapper.DistributionToDomain(&model), nil
}

func (r *DistributionRepositoryImpl) ListByIDs(ctx context.Context, ids []uint) ([]*licensing.Distribution, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var modelList []*models.DistributionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("id IN ?", ids).
		Order("created_at ASC, id ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list distributions by ids", "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	return r.mapper.DistributionsToDomain(modelList), nil
}

func (r *DistributionRepositoryImpl) ListByAllocation(ctx context.Context, allocationID uint) ([]*licensing.Distribution, error) {
	var modelList []*models.DistributionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("allocation_id = ?", allocationID).
		Order("created_at ASC, id ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list distributions", "allocation_id", allocationID, "error", err)
		return nil, fmt.Errorf("failed to list distributions: %w", err)
	}
	return r.mapper.DistributionsToDomain(modelList), nil
}

func (r *DistributionRepositoryImpl) ListCreatedBetween(ctx context.Context, after, upTo time.Time) ([]*licensing.Distribution, error) {
	var modelList []*models.DistributionModel
	err := db.GetTxFromContext(ctx, r.db).
		Where("created_at > ? AND created_at <= ?", after.UTC(), upTo.UTC()).
		Order("created_at ASC, id ASC").
		Find(&modelList).Error
	if err != nil {
		r.logger.Errorw("failed to list new distributions", "after", after, "up_to", upTo, "error", err)
		return nil, fmt.Errorf("failed to list new distributions: %w", err)
	}
	return r.mapper.DistributionsToDomain(modelList), nil
}
