package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

const licenceBatchSize = 200

// LicenceRepositoryImpl implements licensing.LicenceRepository
type LicenceRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.LicensingMapper
	logger logger.Interface
}

// NewLicenceRepository creates a new licence repository
func NewLicenceRepository(db *gorm.DB, logger logger.Interface) licensing.LicenceRepository {
	return &LicenceRepositoryImpl{
		db:     db,
		mapper: mappers.NewLicensingMapper(),
		logger: logger,
	}
}

// CreateBatch inserts licences in the given order and sets their ids.
func (r *LicenceRepositoryImpl) CreateBatch(ctx context.Context, licences []*licensing.Licence) error {
	if len(licences) == 0 {
		return nil
	}
	modelList := make([]*models.LicenceModel, 0, len(licences))
	for _, l := range licences {
		modelList = append(modelList, r.mapper.LicenceToModel(l))
	}

	if err := db.GetTxFromContext(ctx, r.db).CreateInBatches(modelList, licenceBatchSize).Error; err != nil {
		r.logger.Errorw("failed to create licences", "count", len(licences), "error", err)
		return fmt.Errorf("failed to create licences: %w", err)
	}

	for i, m := range modelList {
		licences[i].SetID(m.ID)
	}
	return nil
}

func (r *LicenceRepositoryImpl) CountByAllocation(ctx context.Context, allocationID uint) (int, error) {
	var count int64
	err := db.GetTxFromContext(ctx, r.db).
		Table("licensing_licences AS l").
		Joins("JOIN licensing_distributions d ON d.id = l.distribution_id").
		Where("d.allocation_id = ?", allocationID).
		Count(&count).Error
	if err != nil {
		r.logger.Errorw("failed to count consumed licences", "allocation_id", allocationID, "error", err)
		return 0, fmt.Errorf("failed to count consumed licences: %w", err)
	}
	return int(count), nil
}

func (r *LicenceRepositoryImpl) CountByDistributions(ctx context.Context, distributionIDs []uint) (map[uint]int, error) {
	out := make(map[uint]int, len(distributionIDs))
	if len(distributionIDs) == 0 {
		return out, nil
	}

	var rows []struct {
		DistributionID uint
		Total          int
	}
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenceModel{}).
		Select("distribution_id, COUNT(*) AS total").
		Where("distribution_id IN ?", distributionIDs).
		Group("distribution_id").
		Scan(&rows).Error
	if err != nil {
		r.logger.Errorw("failed to count licences per distribution", "error", err)
		return nil, fmt.Errorf("failed to count licences: %w", err)
	}

	for _, row := range rows {
		out[row.DistributionID] = row.Total
	}
	return out, nil
}

// UserIDsByDistribution returns licence holders in insertion order.
func (r *LicenceRepositoryImpl) UserIDsByDistribution(ctx context.Context, distributionID uint) ([]uint, error) {
	var ids []uint
	err := db.GetTxFromContext(ctx, r.db).
		Model(&models.LicenceModel{}).
		Where("distribution_id = ?", distributionID).
		Order("id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		r.logger.Errorw("failed to list licence holders", "distribution_id", distributionID, "error", err)
		return nil, fmt.Errorf("failed to list licence holders: %w", err)
	}
	return ids, nil
}

func (r *LicenceRepositoryImpl) DeleteByDistribution(ctx context.Context, distributionID uint) (int64, error) {
	result := db.GetTxFromContext(ctx, r.db).
		Where("distribution_id = ?", distributionID).
		Delete(&models.LicenceModel{})
	if result.Error != nil {
		r.logger.Errorw("failed to delete licences", "distribution_id", distributionID, "error", result.Error)
		return 0, fmt.Errorf("failed to delete licences: %w", result.Error)
	}
	return result.RowsAffected, nil
}
