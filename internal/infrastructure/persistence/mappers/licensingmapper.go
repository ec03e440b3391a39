package mappers

import (
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/mapper"
)

// LicensingMapper converts ledger entities to and from persistence models
type LicensingMapper interface {
	AllocationToDomain(model *models.AllocationModel) *licensing.Allocation
	AllocationToModel(entity *licensing.Allocation) *models.AllocationModel
	DistributionToDomain(model *models.DistributionModel) *licensing.Distribution
	DistributionToModel(entity *licensing.Distribution) *models.DistributionModel
	DistributionsToDomain(modelList []*models.DistributionModel) []*licensing.Distribution
	LicenceToModel(entity *licensing.Licence) *models.LicenceModel
}

// LicensingMapperImpl implements LicensingMapper
type LicensingMapperImpl struct{}

// NewLicensingMapper creates a new LicensingMapper
func NewLicensingMapper() LicensingMapper {
	return &LicensingMapperImpl{}
}

func (m *LicensingMapperImpl) AllocationToDomain(model *models.AllocationModel) *licensing.Allocation {
	if model == nil {
		return nil
	}
	return licensing.ReconstructAllocation(
		model.ID,
		model.ProductSetID,
		model.TargetSetID,
		model.Count,
		model.StartDate.UTC(),
		model.EndDate.UTC(),
		model.CreatedAt.UTC(),
		model.CreatedBy,
	)
}

func (m *LicensingMapperImpl) AllocationToModel(entity *licensing.Allocation) *models.AllocationModel {
	if entity == nil {
		return nil
	}
	return &models.AllocationModel{
		ID:           entity.ID(),
		ProductSetID: entity.ProductSetID(),
		TargetSetID:  entity.TargetSetID(),
		Count:        entity.Count(),
		StartDate:    entity.StartDate(),
		EndDate:      entity.EndDate(),
		CreatedAt:    entity.CreatedAt(),
		CreatedBy:    entity.CreatedBy(),
	}
}

func (m *LicensingMapperImpl) DistributionToDomain(model *models.DistributionModel) *licensing.Distribution {
	if model == nil {
		return nil
	}
	return licensing.ReconstructDistribution(model.ID, model.AllocationID, model.ProductID, model.CreatedAt.UTC(), model.CreatedBy)
}

func (m *LicensingMapperImpl) DistributionToModel(entity *licensing.Distribution) *models.DistributionModel {
	if entity == nil {
		return nil
	}
	return &models.DistributionModel{
		ID:           entity.ID(),
		AllocationID: entity.AllocationID(),
		ProductID:    entity.ProductID(),
		CreatedAt:    entity.CreatedAt(),
		CreatedBy:    entity.CreatedBy(),
	}
}

func (m *LicensingMapperImpl) DistributionsToDomain(modelList []*models.DistributionModel) []*licensing.Distribution {
	return mapper.MapSlicePtr(modelList, m.DistributionToDomain)
}

func (m *LicensingMapperImpl) LicenceToModel(entity *licensing.Licence) *models.LicenceModel {
	if entity == nil {
		return nil
	}
	return &models.LicenceModel{
		ID:             entity.ID(),
		DistributionID: entity.DistributionID(),
		UserID:         entity.UserID(),
		CreatedAt:      entity.CreatedAt(),
		CreatedBy:      entity.CreatedBy(),
	}
}
