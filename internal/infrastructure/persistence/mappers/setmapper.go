package mappers

import (
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/mapper"
)

// SetMapper converts product and target sets to and from persistence models
type SetMapper interface {
	ProductSetToDomain(model *models.ProductSetModel, products []*models.ProductModel) *licensing.ProductSet
	ProductSetToModel(entity *licensing.ProductSet) *models.ProductSetModel
	ProductToDomain(model *models.ProductModel) *licensing.Product
	ProductToModel(entity *licensing.Product) *models.ProductModel
	TargetSetToDomain(model *models.TargetSetModel, targets []*models.TargetModel) *licensing.TargetSet
	TargetSetToModel(entity *licensing.TargetSet) *models.TargetSetModel
	TargetToDomain(model *models.TargetModel) *licensing.Target
	TargetToModel(entity *licensing.Target) *models.TargetModel
}

// SetMapperImpl implements SetMapper
type SetMapperImpl struct{}

// NewSetMapper creates a new SetMapper
func NewSetMapper() SetMapper {
	return &SetMapperImpl{}
}

func (m *SetMapperImpl) ProductSetToDomain(model *models.ProductSetModel, products []*models.ProductModel) *licensing.ProductSet {
	if model == nil {
		return nil
	}
	items := mapper.MapSlicePtr(products, m.ProductToDomain)
	return licensing.ReconstructProductSet(model.ID, model.Name, model.CreatedAt.UTC(), model.CreatedBy, items)
}

func (m *SetMapperImpl) ProductSetToModel(entity *licensing.ProductSet) *models.ProductSetModel {
	return &models.ProductSetModel{
		ID:        entity.ID(),
		Name:      entity.Name(),
		CreatedAt: entity.CreatedAt(),
		CreatedBy: entity.CreatedBy(),
	}
}

func (m *SetMapperImpl) ProductToDomain(model *models.ProductModel) *licensing.Product {
	if model == nil {
		return nil
	}
	return licensing.ReconstructProduct(model.ID, model.ProductSetID, model.Type, model.ItemID)
}

func (m *SetMapperImpl) ProductToModel(entity *licensing.Product) *models.ProductModel {
	return &models.ProductModel{
		ID:           entity.ID(),
		ProductSetID: entity.ProductSetID(),
		Type:         entity.Type(),
		ItemID:       entity.ItemID(),
	}
}

func (m *SetMapperImpl) TargetSetToDomain(model *models.TargetSetModel, targets []*models.TargetModel) *licensing.TargetSet {
	if model == nil {
		return nil
	}
	items := mapper.MapSlicePtr(targets, m.TargetToDomain)
	return licensing.ReconstructTargetSet(model.ID, model.Name, model.UserIDNumberFormat, model.CreatedAt.UTC(), model.CreatedBy, items)
}

func (m *SetMapperImpl) TargetSetToModel(entity *licensing.TargetSet) *models.TargetSetModel {
	return &models.TargetSetModel{
		ID:                 entity.ID(),
		Name:               entity.Name(),
		UserIDNumberFormat: entity.UserIDNumberFormat(),
		CreatedAt:          entity.CreatedAt(),
		CreatedBy:          entity.CreatedBy(),
	}
}

func (m *SetMapperImpl) TargetToDomain(model *models.TargetModel) *licensing.Target {
	if model == nil {
		return nil
	}
	return licensing.ReconstructTarget(model.ID, model.TargetSetID, model.Type, model.ItemID)
}

func (m *SetMapperImpl) TargetToModel(entity *licensing.Target) *models.TargetModel {
	return &models.TargetModel{
		ID:          entity.ID(),
		TargetSetID: entity.TargetSetID(),
		Type:        entity.Type(),
		ItemID:      entity.ItemID(),
	}
}
