package licensing

import (
	"fmt"
	"time"

	"github.com/orris-inc/licensing/internal/domain/shared/events"
)

// Event types
const (
	EventTypeAllocationCreated           = "licensing.allocation.created"
	EventTypeDistributionLicencesCreated = "licensing.distribution.licences_created"
	EventTypeDistributionEnrolmentFailed = "licensing.distribution.enrolment_failed"
	EventTypeUserCSVImportFailed         = "licensing.distribution.import_failed"
)

func distributionAggregate(id uint) string {
	return fmt.Sprintf("distribution:%d", id)
}

// AllocationCreatedEvent is emitted after an allocation is persisted
type AllocationCreatedEvent struct {
	events.BaseEvent
	AllocationID uint      `json:"allocation_id"`
	ProductSetID uint      `json:"product_set_id"`
	TargetSetID  uint      `json:"target_set_id"`
	Count        int       `json:"count"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	CreatedBy    uint      `json:"created_by"`
}

func NewAllocationCreatedEvent(a *Allocation) AllocationCreatedEvent {
	return AllocationCreatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: fmt.Sprintf("allocation:%d", a.ID()),
			EventType:   EventTypeAllocationCreated,
			OccurredAt:  time.Now(),
			Version:     1,
		},
		AllocationID: a.ID(),
		ProductSetID: a.ProductSetID(),
		TargetSetID:  a.TargetSetID(),
		Count:        a.Count(),
		StartDate:    a.StartDate(),
		EndDate:      a.EndDate(),
		CreatedBy:    a.CreatedBy(),
	}
}

// DistributionLicencesCreatedEvent is emitted once per reconciled distribution
type DistributionLicencesCreatedEvent struct {
	events.BaseEvent
	RunID          string `json:"run_id"`
	DistributionID uint   `json:"distribution_id"`
	AllocationID   uint   `json:"allocation_id"`
	ProductID      uint   `json:"product_id"`
	ProductType    string `json:"product_type"`
	ProductItemID  uint   `json:"product_item_id"`
	UserIDs        []uint `json:"user_ids"`
	CreatedBy      uint   `json:"created_by"`
	Enrolled       bool   `json:"enrolled"`
}

func NewDistributionLicencesCreatedEvent(runID string, d *Distribution, p *Product, userIDs []uint, enrolled bool) DistributionLicencesCreatedEvent {
	return DistributionLicencesCreatedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: distributionAggregate(d.ID()),
			EventType:   EventTypeDistributionLicencesCreated,
			OccurredAt:  time.Now(),
			Version:     1,
		},
		RunID:          runID,
		DistributionID: d.ID(),
		AllocationID:   d.AllocationID(),
		ProductID:      p.ID(),
		ProductType:    p.Type(),
		ProductItemID:  p.ItemID(),
		UserIDs:        userIDs,
		CreatedBy:      d.CreatedBy(),
		Enrolled:       enrolled,
	}
}

// DistributionEnrolmentFailedEvent is emitted when a product handler rejects an enrolment
type DistributionEnrolmentFailedEvent struct {
	events.BaseEvent
	RunID          string `json:"run_id"`
	DistributionID uint   `json:"distribution_id"`
	ProductType    string `json:"product_type"`
	CreatedBy      uint   `json:"created_by"`
	Message        string `json:"message"`
}

func NewDistributionEnrolmentFailedEvent(runID string, d *Distribution, productType string, cause error) DistributionEnrolmentFailedEvent {
	return DistributionEnrolmentFailedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: distributionAggregate(d.ID()),
			EventType:   EventTypeDistributionEnrolmentFailed,
			OccurredAt:  time.Now(),
			Version:     1,
		},
		RunID:          runID,
		DistributionID: d.ID(),
		ProductType:    productType,
		CreatedBy:      d.CreatedBy(),
		Message:        cause.Error(),
	}
}

// UserCSVImportFailedEvent is emitted after a failed roster import has been cleaned up
type UserCSVImportFailedEvent struct {
	events.BaseEvent
	DistributionID uint   `json:"distribution_id"`
	RelatedUserID  uint   `json:"related_user_id"`
	ErrorCode      string `json:"error_code"`
	Message        string `json:"message"`
	Line           int    `json:"line,omitempty"`
}

func NewUserCSVImportFailedEvent(distributionID, relatedUserID uint, line int, cause error) UserCSVImportFailedEvent {
	return UserCSVImportFailedEvent{
		BaseEvent: events.BaseEvent{
			AggregateID: distributionAggregate(distributionID),
			EventType:   EventTypeUserCSVImportFailed,
			OccurredAt:  time.Now(),
			Version:     1,
		},
		DistributionID: distributionID,
		RelatedUserID:  relatedUserID,
		ErrorCode:      ImportErrorCode(cause),
		Message:        cause.Error(),
		Line:           line,
	}
}
