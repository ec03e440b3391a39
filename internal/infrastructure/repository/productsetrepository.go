package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// ProductSetRepositoryImpl implements licensing.ProductSetRepository
type ProductSetRepositoryImpl struct {
	db     *gorm.DB
	mapper mappers.SetMapper
	logger logger.Interface
}

// NewProductSetRepository creates a new product set repository
func NewProductSetRepository(db *gorm.DB, logger logger.Interface) licensing.ProductSetRepository {
	return &ProductSetRepositoryImpl{
		db:     db,
		mapper: mappers.NewSetMapper(),
		logger: logger,
	}
}

func (r *ProductSetRepositoryImpl) Create(ctx context.Context, set *licensing.ProductSet) error {
	model := r.mapper.ProductSetToModel(set)
	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		r.logger.Errorw("failed to create product set", "name", set.Name(), "error", err)
		return fmt.Errorf("failed to create product set: %w", err)
	}
	set.SetID(model.ID)
	return nil
}

func (r *ProductSetRepositoryImpl) Update(ctx context.Context, set *licensing.ProductSet) error {
	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.ProductSetModel{}).
		Where("id = ?", set.ID()).
		Update("name", set.Name())
	if result.Error != nil {
		r.logger.Errorw("failed to update product set", "id", set.ID(), "error", result.Error)
		return fmt.Errorf("failed to update product set: %w", result.Error)
	}
	return nil
}

func (r *ProductSetRepositoryImpl) GetByID(ctx context.Context, id uint) (*licensing.ProductSet, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var model models.ProductSetModel
	if err := tx.First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, licensing.ErrProductSetNotFound
		}
		r.logger.Errorw("failed to get product set", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get product set: %w", err)
	}

	var products []*models.ProductModel
	if err := tx.Where("product_set_id = ?", id).Order("id ASC").Find(&products).Error; err != nil {
		r.logger.Errorw("failed to load products", "product_set_id", id, "error", err)
		return nil, fmt.Errorf("failed to load products: %w", err)
	}

	return r.mapper.ProductSetToDomain(&model, products), nil
}

func (r *ProductSetRepositoryImpl) List(ctx context.Context) ([]*licensing.ProductSet, error) {
	tx := db.GetTxFromContext(ctx, r.db)

	var sets []*models.ProductSetModel
	if err := tx.Order("name ASC, id ASC").Find(&sets).Error; err != nil {
		r.logger.Errorw("failed to list product sets", "error", err)
		return nil, fmt.Errorf("failed to list product sets: %w", err)
	}

	var products []*models.ProductModel
	if err := tx.Order("id ASC").Find(&products).Error; err != nil {
		r.logger.Errorw("failed to list products", "error", err)
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	bySet := make(map[uint][]*models.ProductModel)
	for _, p := range products {
		bySet[p.ProductSetID] = append(bySet[p.ProductSetID], p)
	}

	out := make([]*licensing.ProductSet, 0, len(sets))
	for _, s := range sets {
		out = append(out, r.mapper.ProductSetToDomain(s, bySet[s.ID]))
	}
	return out, nil
}

// Delete removes the set and its products.
func (r *ProductSetRepositoryImpl) Delete(ctx context.Context, id uint) error {
	return db.GetTxFromContext(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_set_id = ?", id).Delete(&models.ProductModel{}).Error; err != nil {
			r.logger.Errorw("failed to delete products", "product_set_id", id, "error", err)
			return fmt.Errorf("failed to delete products: %w", err)
		}
		result := tx.Delete(&models.ProductSetModel{}, id)
		if result.Error != nil {
			r.logger.Errorw("failed to delete product set", "id", id, "error", result.Error)
			return fmt.Errorf("failed to delete product set: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return licensing.ErrProductSetNotFound
		}
		return nil
	})
}

func (r *ProductSetRepositoryImpl) AddProducts(ctx context.Context, products []*licensing.Product) error {
	if len(products) == 0 {
		return nil
	}
	modelList := make([]*models.ProductModel, 0, len(products))
	for _, p := range products {
		modelList = append(modelList, r.mapper.ProductToModel(p))
	}
	if err := db.GetTxFromContext(ctx, r.db).Create(&modelList).Error; err != nil {
		r.logger.Errorw("failed to add products", "count", len(products), "error", err)
		return fmt.Errorf("failed to add products: %w", err)
	}
	for i, m := range modelList {
		products[i].SetID(m.ID)
	}
	return nil
}

func (r *ProductSetRepositoryImpl) DeleteProducts(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Delete(&models.ProductModel{}).Error; err != nil {
		r.logger.Errorw("failed to delete products", "count", len(ids), "error", err)
		return fmt.Errorf("failed to delete products: %w", err)
	}
	return nil
}

func (r *ProductSetRepositoryImpl) GetProduct(ctx context.Context, id uint) (*licensing.Product, error) {
	var model models.ProductModel
	if err := db.GetTxFromContext(ctx, r.db).First(&model, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, licensing.ErrProductNotFound
		}
		r.logger.Errorw("failed to get product", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return r.mapper.ProductToDomain(&model), nil
}
