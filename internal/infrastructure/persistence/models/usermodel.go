package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserModel is the GORM model for users
type UserModel struct {
	ID           uint              `gorm:"primaryKey;autoIncrement"`
	Username     string            `gorm:"column:username;size:100;not null;uniqueIndex"`
	Email        string            `gorm:"column:email;size:255;index"`
	FirstName    string            `gorm:"column:first_name;size:100"`
	LastName     string            `gorm:"column:last_name;size:100"`
	IDNumber     string            `gorm:"column:id_number;size:255;not null;uniqueIndex"`
	Auth         string            `gorm:"column:auth;size:20;not null;default:'manual'"`
	Confirmed    bool              `gorm:"column:confirmed;not null;default:false"`
	Locale       string            `gorm:"column:locale;size:30"`
	Host         string            `gorm:"column:host;size:100"`
	Role         string            `gorm:"column:role;size:30;not null;default:'learner';index"`
	PasswordHash string            `gorm:"column:password_hash;size:255;not null"`
	Profile      datatypes.JSONMap `gorm:"column:profile"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserModel) TableName() string {
	return "users"
}

// BeforeCreate hook for GORM
func (u *UserModel) BeforeCreate(tx *gorm.DB) error {
	if u.Auth == "" {
		u.Auth = "manual"
	}
	if u.Role == "" {
		u.Role = "learner"
	}
	return nil
}
