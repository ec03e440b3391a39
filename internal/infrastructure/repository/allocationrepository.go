package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// consumedByAllocation counts licences per allocation through their distributions.
const consumedByAllocation = `SELECT d.allocation_id AS allocation_id, COUNT(l.id) AS consumed
FROM licensing_distributions d
JOIN licensing_licences l ON l.distribution_id = d.id
GROUP BY d.allocation_id`

// AllocationRepositoryImpl implements licensing.AllocationRepository
type AllocationRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.LicensingMapper
	logger logger.Interface
}

// NewAllocationRepository creates a new allocation repository
func NewAllocationRepository(db *gorm.DB, logger logger.Interface) licensing.AllocationRepository {
	return &AllocationRepositoryImpl{
		db:     db,
		mapper: mappers.NewLicensingMapper(),
		logger: logger,
	}
}

type allocationUsageRow struct {
	models.AllocationModel `gorm:"embedded"`
	Consumed               int `gorm:"column:consumed"`
}

func (r *AllocationRepositoryImpl) Create(ctx context.Context, allocation *licensing.Allocation) error {
	model := r.mapper.AllocationToModel(allocation)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create allocation", "error", err)
		return fmt.Errorf("failed to create allocation: %w", err)
	}

	allocation.SetID(model.ID)
	return nil
}

func (r *AllocationRepositoryImpl) GetByID(ctx context.Context, id uint) (*licensing.Allocation, error) {
	return r.get(ctx, db.GetTxFromContext(ctx, r.db), id)
}

// GetByIDForUpdate issues SELECT ... FOR UPDATE. SQLite has no row locks; its
// single-writer transactions already serialize the capacity check.
func (r *AllocationRepositoryImpl) GetByIDForUpdate(ctx context.Context, id uint) (*licensing.Allocation, error) {
	tx := db.GetTxFromContext(ctx, r.db)
	if tx.Dialector.Name() != "sqlite" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(ctx, tx, id)
}

func (r *AllocationRepositoryImpl) get(_ context.Context, tx *gorm.DB, id uint) (*licensing.Allocation, error) {
	var model models.AllocationModel
	if err := tx.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, licensing.ErrAllocationNotFound
		}
		r.logger.Errorw("failed to get allocation", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get allocation: %w", err)
	}
	return r.mapper.AllocationToDomain(&model), nil
}

func (r *AllocationRepositoryImpl) usageQuery(ctx context.Context) *gorm.DB {
	return db.GetTxFromContext(ctx, r.db).
		Table("licensing_allocations AS a").
		Select("a.*, COALESCE(c.consumed, 0) AS consumed").
		Joins("LEFT JOIN (" + consumedByAllocation + ") c ON c.allocation_id = a.id")
}

func (r *AllocationRepositoryImpl) ListActive(ctx context.Context, now time.Time, targetSetID *uint) ([]*licensing.AllocationUsage, error) {
	query := r.usageQuery(ctx).
		Where("a.start_date <= ? AND a.end_date >= ?", now, now).
		Where("COALESCE(c.consumed, 0) < a.count")
	if targetSetID != nil {
		query = query.Where("a.target_set_id = ?", *targetSetID)
	}

	var rows []allocationUsageRow
	if err := query.Order("a.end_date ASC, a.id ASC").Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to list active allocations", "error", err)
		return nil, fmt.Errorf("failed to list active allocations: %w", err)
	}
	return r.toUsage(rows), nil
}

func (r *AllocationRepositoryImpl) ListUsage(ctx context.Context, targetSetID *uint) ([]*licensing.AllocationUsage, error) {
	query := r.usageQuery(ctx)
	if targetSetID != nil {
		query = query.Where("a.target_set_id = ?", *targetSetID)
	}

	var rows []allocationUsageRow
	if err := query.Order("a.id ASC").Scan(&rows).Error; err != nil {
		r.logger.Errorw("failed to list allocation usage", "error", err)
		return nil, fmt.Errorf("failed to list allocation usage: %w", err)
	}
	return r.toUsage(rows), nil
}

func (r *AllocationRepositoryImpl) toUsage(rows []allocationUsageRow) []*licensing.AllocationUsage {
	out := make([]*licensing.AllocationUsage, 0, len(rows))
	for i := range rows {
		out = append(out, &licensing.AllocationUsage{
			Allocation: r.mapper.AllocationToDomain(&rows[i].AllocationModel),
			Consumed:   rows[i].Consumed,
		})
	}
	return out
}

func (r *AllocationRepositoryImpl) CountByProductSet(ctx context.Context, productSetID uint) (int64, error) {
	return r.countWhere(ctx, "product_set_id = ?", productSetID)
}

func (r *AllocationRepositoryImpl) CountByTargetSet(ctx context.Context, targetSetID uint) (int64, error) {
	return r.countWhere(ctx, "target_set_id = ?", targetSetID)
}

func (r *AllocationRepositoryImpl) countWhere(ctx context.Context, query string, arg uint) (int64, error) {
	var count int64
	if err := db.GetTxFromContext(ctx, r.db).Model(&models.AllocationModel{}).Where(query, arg).Count(&count).Error; err != nil {
		r.logger.Errorw("failed to count allocations", "condition", query, "value", arg, "error", err)
		return 0, fmt.Errorf("failed to count allocations: %w", err)
	}
	return count, nil
}
