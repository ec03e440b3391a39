package models

import "time"

// AllocationModel is the GORM model for licensing_allocations
type AllocationModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	ProductSetID uint      `gorm:"column:product_set_id;not null;index"`
	TargetSetID  uint      `gorm:"column:target_set_id;not null;index"`
	Count        int       `gorm:"column:count;not null;default:0"`
	StartDate    time.Time `gorm:"column:start_date;not null"`
	EndDate      time.Time `gorm:"column:end_date;not null;index"`
	CreatedAt    time.Time `gorm:"column:created_at;not null"`
	CreatedBy    uint      `gorm:"column:created_by;not null"`
}

func (AllocationModel) TableName() string {
	return "licensing_allocations"
}

// DistributionModel is the GORM model for licensing_distributions
type DistributionModel struct {
	ID           uint      `gorm:"primaryKey;autoIncrement"`
	AllocationID uint      `gorm:"column:allocation_id;not null;index"`
	ProductID    uint      `gorm:"column:product_id;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;not null;index:idx_distribution_created"`
	CreatedBy    uint      `gorm:"column:created_by;not null"`
}

func (DistributionModel) TableName() string {
	return "licensing_distributions"
}

// LicenceModel is the GORM model for licensing_licences
type LicenceModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	DistributionID uint      `gorm:"column:distribution_id;not null;index"`
	UserID         uint      `gorm:"column:user_id;not null;index"`
	CreatedAt      time.Time `gorm:"column:created_at;not null"`
	CreatedBy      uint      `gorm:"column:created_by;not null"`
}

func (LicenceModel) TableName() string {
	return "licensing_licences"
}
