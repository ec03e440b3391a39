package licensing

import (
	"context"
	"time"
)

// AllocationRepository persists allocations and answers ledger queries.
type AllocationRepository interface {
	Create(ctx context.Context, allocation *Allocation) error
	GetByID(ctx context.Context, id uint) (*Allocation, error)
	// GetByIDForUpdate locks the allocation row for the rest of the surrounding transaction.
	GetByIDForUpdate(ctx context.Context, id uint) (*Allocation, error)
	// ListActive returns allocations whose window contains now and whose
	// consumed count is below count, ordered by end date then id.
	ListActive(ctx context.Context, now time.Time, targetSetID *uint) ([]*AllocationUsage, error)
	ListUsage(ctx context.Context, targetSetID *uint) ([]*AllocationUsage, error)
	CountByProductSet(ctx context.Context, productSetID uint) (int64, error)
	CountByTargetSet(ctx context.Context, targetSetID uint) (int64, error)
}

// DistributionRepository persists distributions.
type DistributionRepository interface {
	Create(ctx context.Context, distribution *Distribution) error
	GetByID(ctx context.Context, id uint) (*Distribution, error)
	ListByIDs(ctx context.Context, ids []uint) ([]*Distribution, error)
	ListByAllocation(ctx context.Context, allocationID uint) ([]*Distribution, error)
	// ListCreatedBetween returns distributions with after < created_at <= upTo,
	// ordered by created_at then id.
	ListCreatedBetween(ctx context.Context, after, upTo time.Time) ([]*Distribution, error)
}

// LicenceRepository persists licences and counts them per allocation.
type LicenceRepository interface {
	CreateBatch(ctx context.Context, licences []*Licence) error
	CountByAllocation(ctx context.Context, allocationID uint) (int, error)
	CountByDistributions(ctx context.Context, distributionIDs []uint) (map[uint]int, error)
	UserIDsByDistribution(ctx context.Context, distributionID uint) ([]uint, error)
	DeleteByDistribution(ctx context.Context, distributionID uint) (int64, error)
}

// ProductSetRepository persists product sets with their products.
type ProductSetRepository interface {
	Create(ctx context.Context, set *ProductSet) error
	Update(ctx context.Context, set *ProductSet) error
	// GetByID loads the set with its products.
	GetByID(ctx context.Context, id uint) (*ProductSet, error)
	List(ctx context.Context) ([]*ProductSet, error)
	Delete(ctx context.Context, id uint) error
	AddProducts(ctx context.Context, products []*Product) error
	DeleteProducts(ctx context.Context, ids []uint) error
	GetProduct(ctx context.Context, id uint) (*Product, error)
}

// TargetSetRepository persists target sets with their targets.
type TargetSetRepository interface {
	Create(ctx context.Context, set *TargetSet) error
	Update(ctx context.Context, set *TargetSet) error
	// GetByID loads the set with its targets.
	GetByID(ctx context.Context, id uint) (*TargetSet, error)
	List(ctx context.Context) ([]*TargetSet, error)
	Delete(ctx context.Context, id uint) error
	AddTargets(ctx context.Context, targets []*Target) error
	DeleteTargets(ctx context.Context, ids []uint) error
	// ListContaining returns the sets holding any of refs.
	ListContaining(ctx context.Context, refs []ItemRef) ([]*TargetSet, error)
}

// Artifact owners.
const ArtifactOwnerDistribution = "distribution"

// ArtifactStore stages uploaded rosters until reconciliation imports them.
type ArtifactStore interface {
	Put(ctx context.Context, owner string, ownerID uint, filename string, content []byte) error
	Get(ctx context.Context, owner string, ownerID uint) ([]byte, error)
	Exists(ctx context.Context, owner string, ownerID uint) (bool, error)
	ExistsMany(ctx context.Context, owner string, ownerIDs []uint) (map[uint]bool, error)
	// ListOwnerIDs returns staged owner ids in ascending order.
	ListOwnerIDs(ctx context.Context, owner string) ([]uint, error)
	Delete(ctx context.Context, owner string, ownerID uint) error
}
