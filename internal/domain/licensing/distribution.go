package licensing

import (
	"fmt"
	"time"

	"github.com/orris-inc/licensing/internal/shared/biztime"
)

// CountPending is reported by DistributionCount while a staged roster awaits import.
const CountPending = -1

// Distribution hands some of an allocation's capacity to learners for one product.
type Distribution struct {
	id           uint
	allocationID uint
	productID    uint
	createdAt    time.Time
	createdBy    uint
}

// NewDistribution creates a new distribution
func NewDistribution(allocationID, productID, createdBy uint) (*Distribution, error) {
	if allocationID == 0 {
		return nil, fmt.Errorf("allocation is required")
	}
	if productID == 0 {
		return nil, fmt.Errorf("product is required")
	}
	if createdBy == 0 {
		return nil, fmt.Errorf("creator is required")
	}

	return &Distribution{
		allocationID: allocationID,
		productID:    productID,
		createdAt:    biztime.NowUTC(),
		createdBy:    createdBy,
	}, nil
}

// ReconstructDistribution reconstructs a Distribution from persistence
func ReconstructDistribution(id, allocationID, productID uint, createdAt time.Time, createdBy uint) *Distribution {
	return &Distribution{
		id:           id,
		allocationID: allocationID,
		productID:    productID,
		createdAt:    createdAt,
		createdBy:    createdBy,
	}
}

func (d *Distribution) ID() uint             { return d.id }
func (d *Distribution) AllocationID() uint   { return d.allocationID }
func (d *Distribution) ProductID() uint      { return d.productID }
func (d *Distribution) CreatedAt() time.Time { return d.createdAt }
func (d *Distribution) CreatedBy() uint      { return d.createdBy }

// SetID sets the distribution ID (only for persistence layer use)
func (d *Distribution) SetID(id uint) {
	d.id = id
}

// DistributionCount returns the licence count, or CountPending when no
// licences exist yet and a roster is still staged for the distribution.
func DistributionCount(licences int, staged bool) int {
	if licences == 0 && staged {
		return CountPending
	}
	return licences
}

// Licence is one learner's claim against a distribution.
type Licence struct {
	id             uint
	distributionID uint
	userID         uint
	createdAt      time.Time
	createdBy      uint
}

// NewLicence creates a new licence
func NewLicence(distributionID, userID, createdBy uint) (*Licence, error) {
	if distributionID == 0 {
		return nil, fmt.Errorf("distribution is required")
	}
	if userID == 0 {
		return nil, fmt.Errorf("user is required")
	}

	return &Licence{
		distributionID: distributionID,
		userID:         userID,
		createdAt:      biztime.NowUTC(),
		createdBy:      createdBy,
	}, nil
}

// ReconstructLicence reconstructs a Licence from persistence
func ReconstructLicence(id, distributionID, userID uint, createdAt time.Time, createdBy uint) *Licence {
	return &Licence{
		id:             id,
		distributionID: distributionID,
		userID:         userID,
		createdAt:      createdAt,
		createdBy:      createdBy,
	}
}

func (l *Licence) ID() uint             { return l.id }
func (l *Licence) DistributionID() uint { return l.distributionID }
func (l *Licence) UserID() uint         { return l.userID }
func (l *Licence) CreatedAt() time.Time { return l.createdAt }
func (l *Licence) CreatedBy() uint      { return l.createdBy }

// SetID sets the licence ID (only for persistence layer use)
func (l *Licence) SetID(id uint) {
	l.id = id
}
