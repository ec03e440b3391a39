package account

import "context"

// Repository defines the interface for account data operations
type Repository interface {
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id uint) (*User, error)
	GetByIDs(ctx context.Context, ids []uint) ([]*User, error)
	// GetByIDNumber returns ErrUserNotFound when no account carries idNumber.
	GetByIDNumber(ctx context.Context, idNumber string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
}
