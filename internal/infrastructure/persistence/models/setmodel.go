package models

import "time"

// ProductSetModel is the GORM model for licensing_product_sets
type ProductSetModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Name      string    `gorm:"column:name;size:255;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
	CreatedBy uint      `gorm:"column:created_by;not null"`
}

func (ProductSetModel) TableName() string {
	return "licensing_product_sets"
}

// ProductModel is the GORM model for licensing_products
type ProductModel struct {
	ID           uint   `gorm:"primaryKey;autoIncrement"`
	ProductSetID uint   `gorm:"column:product_set_id;not null;index"`
	Type         string `gorm:"column:type;size:50;not null"`
	ItemID       uint   `gorm:"column:item_id;not null"`
}

func (ProductModel) TableName() string {
	return "licensing_products"
}

// TargetSetModel is the GORM model for licensing_target_sets
type TargetSetModel struct {
	ID                 uint      `gorm:"primaryKey;autoIncrement"`
	Name               string    `gorm:"column:name;size:255;not null"`
	UserIDNumberFormat string    `gorm:"column:user_id_number_format;size:255;not null"`
	CreatedAt          time.Time `gorm:"column:created_at;not null"`
	CreatedBy          uint      `gorm:"column:created_by;not null"`
}

func (TargetSetModel) TableName() string {
	return "licensing_target_sets"
}

// TargetModel is the GORM model for licensing_targets
type TargetModel struct {
	ID          uint   `gorm:"primaryKey;autoIncrement"`
	TargetSetID uint   `gorm:"column:target_set_id;not null;index"`
	Type        string `gorm:"column:type;size:50;not null;index:idx_target_item"`
	ItemID      uint   `gorm:"column:item_id;not null;index:idx_target_item"`
}

func (TargetModel) TableName() string {
	return "licensing_targets"
}

// StagedFileModel holds an uploaded roster until reconciliation imports it
type StagedFileModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Owner     string    `gorm:"column:owner;size:50;not null;uniqueIndex:uk_staged_owner"`
	OwnerID   uint      `gorm:"column:owner_id;not null;uniqueIndex:uk_staged_owner"`
	Filename  string    `gorm:"column:filename;size:255"`
	Content   []byte    `gorm:"column:content;type:longblob;not null"`
	Size      int64     `gorm:"column:size;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (StagedFileModel) TableName() string {
	return "licensing_staged_files"
}
