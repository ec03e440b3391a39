package licensing

import (
	"fmt"
	"time"

	"github.com/orris-inc/licensing/internal/shared/biztime"
)

// Allocation is a pool of licences for a product set, granted to a target set
// and usable between startDate and endDate inclusive.
type Allocation struct {
	id           uint
	productSetID uint
	targetSetID  uint
	count        int
	startDate    time.Time
	endDate      time.Time
	createdAt    time.Time
	createdBy    uint
}

// NewAllocation creates a new allocation
func NewAllocation(productSetID, targetSetID uint, count int, startDate, endDate time.Time, createdBy uint) (*Allocation, error) {
	if productSetID == 0 {
		return nil, fmt.Errorf("product set is required")
	}
	if targetSetID == 0 {
		return nil, fmt.Errorf("target set is required")
	}
	if count < 0 {
		return nil, fmt.Errorf("count must not be negative")
	}
	if startDate.IsZero() || endDate.IsZero() {
		return nil, fmt.Errorf("start and end dates are required")
	}
	if endDate.Before(startDate) {
		return nil, fmt.Errorf("end date must not be before start date")
	}
	if createdBy == 0 {
		return nil, fmt.Errorf("creator is required")
	}

	return &Allocation{
		productSetID: productSetID,
		targetSetID:  targetSetID,
		count:        count,
		startDate:    startDate.UTC(),
		endDate:      endDate.UTC(),
		createdAt:    biztime.NowUTC(),
		createdBy:    createdBy,
	}, nil
}

// ReconstructAllocation reconstructs an Allocation from persistence
func ReconstructAllocation(
	id, productSetID, targetSetID uint,
	count int,
	startDate, endDate, createdAt time.Time,
	createdBy uint,
) *Allocation {
	return &Allocation{
		id:           id,
		productSetID: productSetID,
		targetSetID:  targetSetID,
		count:        count,
		startDate:    startDate,
		endDate:      endDate,
		createdAt:    createdAt,
		createdBy:    createdBy,
	}
}

func (a *Allocation) ID() uint             { return a.id }
func (a *Allocation) ProductSetID() uint   { return a.productSetID }
func (a *Allocation) TargetSetID() uint    { return a.targetSetID }
func (a *Allocation) Count() int           { return a.count }
func (a *Allocation) StartDate() time.Time { return a.startDate }
func (a *Allocation) EndDate() time.Time   { return a.endDate }
func (a *Allocation) CreatedAt() time.Time { return a.createdAt }
func (a *Allocation) CreatedBy() uint      { return a.createdBy }

// SetID sets the allocation ID (only for persistence layer use)
func (a *Allocation) SetID(id uint) {
	a.id = id
}

// IsActiveAt reports whether now falls inside the validity window, both bounds inclusive.
func (a *Allocation) IsActiveAt(now time.Time) bool {
	return !now.Before(a.startDate) && !now.After(a.endDate)
}

// Available returns count minus consumed. The result is negative when the
// allocation has been over-committed.
func (a *Allocation) Available(consumed int) int {
	return a.count - consumed
}

func (a *Allocation) IsExhausted(consumed int) bool {
	return consumed >= a.count
}

// AllocationUsage annotates an allocation with its consumed licence count.
type AllocationUsage struct {
	Allocation *Allocation
	Consumed   int
}

func (u *AllocationUsage) Available() int {
	return u.Allocation.Available(u.Consumed)
}

// DisplayAvailable clamps negative availability to zero for presentation.
func (u *AllocationUsage) DisplayAvailable() int {
	if available := u.Available(); available > 0 {
		return available
	}
	return 0
}
