package setting

import (
	"context"
)

// Repository defines the interface for system setting persistence
type Repository interface {
	// GetByKey retrieves a setting by category and key
	GetByKey(ctx context.Context, category, key string) (*SystemSetting, error)

	// GetByCategory retrieves all settings in a category
	GetByCategory(ctx context.Context, category string) ([]*SystemSetting, error)

	// Upsert creates or updates a setting
	Upsert(ctx context.Context, setting *SystemSetting) error

	// CompareAndSwap sets value only when the stored value equals expected.
	// A missing row counts as the empty string. It reports whether the swap happened.
	CompareAndSwap(ctx context.Context, category, key string, valueType ValueType, expected, value string) (bool, error)

	// Delete removes a setting by category and key
	Delete(ctx context.Context, category, key string) error
}
