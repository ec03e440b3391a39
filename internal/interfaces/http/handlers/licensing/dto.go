package licensing

import (
	"time"

	"github.com/orris-inc/licensing/internal/application/licensing/usecases"
	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/biztime"
)

// Requests

type CreateAllocationRequest struct {
	ProductSetID uint   `json:"product_set_id" binding:"required"`
	TargetSetID  uint   `json:"target_set_id" binding:"required"`
	Count        int    `json:"count" binding:"gte=0"`
	StartDate    string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate      string `json:"end_date" binding:"required,datetime=2006-01-02"`
}

type ManualDistributionRequest struct {
	AllocationID uint   `json:"allocation_id" binding:"required"`
	ProductID    uint   `json:"product_id" binding:"required"`
	UserIDs      []uint `json:"user_ids" binding:"required,min=1,dive,gt=0"`
}

// BulkDistributionForm is the multipart form of a roster upload. The file
// itself travels in the "file" part.
type BulkDistributionForm struct {
	AllocationID uint `form:"allocation_id" binding:"required"`
	ProductID    uint `form:"product_id" binding:"required"`
}

type ItemRefRequest struct {
	Type   string `json:"type" binding:"required"`
	ItemID uint   `json:"item_id" binding:"required"`
}

type SaveProductSetRequest struct {
	Name     string           `json:"name" binding:"required,max=255"`
	Products []ItemRefRequest `json:"products" binding:"dive"`
}

type SaveTargetSetRequest struct {
	Name               string           `json:"name" binding:"required,max=255"`
	UserIDNumberFormat string           `json:"user_id_number_format" binding:"required,idformat"`
	Targets            []ItemRefRequest `json:"targets" binding:"dive"`
}

func toItemRefs(reqs []ItemRefRequest) []licensing.ItemRef {
	refs := make([]licensing.ItemRef, len(reqs))
	for i, r := range reqs {
		refs[i] = licensing.ItemRef{Type: r.Type, ItemID: r.ItemID}
	}
	return refs
}

// Responses

type AllocationDTO struct {
	ID               uint      `json:"id"`
	ProductSetID     uint      `json:"product_set_id"`
	TargetSetID      uint      `json:"target_set_id"`
	Count            int       `json:"count"`
	Consumed         int       `json:"consumed"`
	Available        int       `json:"available"`
	DisplayAvailable int       `json:"display_available"`
	StartDate        string    `json:"start_date"`
	EndDate          string    `json:"end_date"`
	Active           bool      `json:"active"`
	CreatedAt        time.Time `json:"created_at"`
	CreatedBy        uint      `json:"created_by"`
}

func toAllocationDTO(a *licensing.Allocation, consumed int, now time.Time) *AllocationDTO {
	usage := &licensing.AllocationUsage{Allocation: a, Consumed: consumed}
	return &AllocationDTO{
		ID:               a.ID(),
		ProductSetID:     a.ProductSetID(),
		TargetSetID:      a.TargetSetID(),
		Count:            a.Count(),
		Consumed:         consumed,
		Available:        usage.Available(),
		DisplayAvailable: usage.DisplayAvailable(),
		StartDate:        biztime.FormatDate(a.StartDate()),
		EndDate:          biztime.FormatDate(a.EndDate()),
		Active:           a.IsActiveAt(now),
		CreatedAt:        a.CreatedAt(),
		CreatedBy:        a.CreatedBy(),
	}
}

func toAllocationDTOs(usage []*licensing.AllocationUsage, now time.Time) []*AllocationDTO {
	out := make([]*AllocationDTO, len(usage))
	for i, u := range usage {
		out[i] = toAllocationDTO(u.Allocation, u.Consumed, now)
	}
	return out
}

type DistributionDTO struct {
	ID           uint `json:"id"`
	AllocationID uint `json:"allocation_id"`
	ProductID    uint `json:"product_id"`
	// Count is -1 while the roster is waiting for the next reconciliation run.
	Count     int       `json:"count"`
	Pending   bool      `json:"pending"`
	CreatedAt time.Time `json:"created_at"`
	CreatedBy uint      `json:"created_by"`
}

func toDistributionDTO(d *licensing.Distribution, count int, pending bool) *DistributionDTO {
	return &DistributionDTO{
		ID:           d.ID(),
		AllocationID: d.AllocationID(),
		ProductID:    d.ProductID(),
		Count:        count,
		Pending:      pending,
		CreatedAt:    d.CreatedAt(),
		CreatedBy:    d.CreatedBy(),
	}
}

func toDistributionDTOs(views []*usecases.DistributionView) []*DistributionDTO {
	out := make([]*DistributionDTO, len(views))
	for i, v := range views {
		out[i] = toDistributionDTO(v.Distribution, v.Count, v.Pending)
	}
	return out
}

type ManualDistributionResponse struct {
	Distribution *DistributionDTO `json:"distribution"`
	Licences     int              `json:"licences"`
}

type ItemRefDTO struct {
	ID     uint   `json:"id"`
	Type   string `json:"type"`
	ItemID uint   `json:"item_id"`
}

type ProductSetDTO struct {
	ID        uint          `json:"id"`
	Name      string        `json:"name"`
	Products  []*ItemRefDTO `json:"products"`
	CreatedAt time.Time     `json:"created_at"`
	CreatedBy uint          `json:"created_by"`
}

func toProductSetDTO(s *licensing.ProductSet) *ProductSetDTO {
	products := make([]*ItemRefDTO, len(s.Products()))
	for i, p := range s.Products() {
		products[i] = &ItemRefDTO{ID: p.ID(), Type: p.Type(), ItemID: p.ItemID()}
	}
	return &ProductSetDTO{
		ID:        s.ID(),
		Name:      s.Name(),
		Products:  products,
		CreatedAt: s.CreatedAt(),
		CreatedBy: s.CreatedBy(),
	}
}

type TargetSetDTO struct {
	ID                 uint          `json:"id"`
	Name               string        `json:"name"`
	UserIDNumberFormat string        `json:"user_id_number_format"`
	Targets            []*ItemRefDTO `json:"targets"`
	CreatedAt          time.Time     `json:"created_at"`
	CreatedBy          uint          `json:"created_by"`
}

func toTargetSetDTO(s *licensing.TargetSet) *TargetSetDTO {
	targets := make([]*ItemRefDTO, len(s.Targets()))
	for i, t := range s.Targets() {
		targets[i] = toTargetDTO(t)
	}
	return &TargetSetDTO{
		ID:                 s.ID(),
		Name:               s.Name(),
		UserIDNumberFormat: s.UserIDNumberFormat(),
		Targets:            targets,
		CreatedAt:          s.CreatedAt(),
		CreatedBy:          s.CreatedBy(),
	}
}

func toTargetDTO(t *licensing.Target) *ItemRefDTO {
	return &ItemRefDTO{ID: t.ID(), Type: t.Type(), ItemID: t.ItemID()}
}

type CatalogItemDTO struct {
	Type      string `json:"type"`
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	IDNumber  string `json:"id_number,omitempty"`
	URL       string `json:"url,omitempty"`
}

func toCatalogItemDTO(item *licensing.CatalogItem) *CatalogItemDTO {
	if item == nil {
		return nil
	}
	return &CatalogItemDTO{
		Type:      item.Type,
		ID:        item.ID,
		Name:      item.Name,
		ShortName: item.ShortName,
		IDNumber:  item.IDNumber,
		URL:       item.URL,
	}
}

func toCatalogItemDTOs(items []*licensing.CatalogItem) []*CatalogItemDTO {
	out := make([]*CatalogItemDTO, len(items))
	for i, item := range items {
		out[i] = toCatalogItemDTO(item)
	}
	return out
}

type MyTargetDTO struct {
	TargetSetID   uint            `json:"target_set_id"`
	TargetSetName string          `json:"target_set_name"`
	Target        *ItemRefDTO     `json:"target"`
	Item          *CatalogItemDTO `json:"item,omitempty"`
}

func toMyTargetDTO(t *usecases.MyTarget) *MyTargetDTO {
	return &MyTargetDTO{
		TargetSetID:   t.TargetSet.ID(),
		TargetSetName: t.TargetSet.Name(),
		Target:        toTargetDTO(t.Target),
		Item:          toCatalogItemDTO(t.Item),
	}
}

type ReconciliationRunDTO struct {
	Enrolled int `json:"enrolled"`
}

type ReconciliationStatusDTO struct {
	Running bool       `json:"running"`
	LastRun *time.Time `json:"last_run,omitempty"`
}
