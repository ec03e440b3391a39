package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/mappers"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/db"
	apperrors "github.com/orris-inc/licensing/internal/shared/errors"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// UserRepository implements account.Repository
type UserRepository struct {
	db     *gorm.DB
	mapper mappers.UserMapper
	logger logger.Interface
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB, logger logger.Interface) account.Repository {
	return &UserRepository{
		db:     db,
		mapper: mappers.NewUserMapper(),
		logger: logger,
	}
}

// Create creates a new user
func (r *UserRepository) Create(ctx context.Context, u *account.User) error {
	model := r.mapper.ToModel(u)

	if err := db.GetTxFromContext(ctx, r.db).Create(model).Error; err != nil {
		if dupErr := duplicateUserError(err, u); dupErr != nil {
			return dupErr
		}
		r.logger.Errorw("failed to create user", "username", u.Username(), "error", err)
		return fmt.Errorf("failed to create user: %w", err)
	}

	u.SetID(model.ID)
	r.logger.Infow("user created", "id", model.ID, "username", model.Username)
	return nil
}

// Update saves the mutable identity columns of a user
func (r *UserRepository) Update(ctx context.Context, u *account.User) error {
	model := r.mapper.ToModel(u)

	result := db.GetTxFromContext(ctx, r.db).
		Model(&models.UserModel{}).
		Where("id = ?", u.ID()).
		Updates(map[string]any{
			"username":   model.Username,
			"email":      model.Email,
			"first_name": model.FirstName,
			"last_name":  model.LastName,
			"id_number":  model.IDNumber,
			"profile":    model.Profile,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		if dupErr := duplicateUserError(result.Error, u); dupErr != nil {
			return dupErr
		}
		r.logger.Errorw("failed to update user", "id", u.ID(), "error", result.Error)
		return fmt.Errorf("failed to update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return account.ErrUserNotFound
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint) (*account.User, error) {
	return r.first(ctx, "id = ?", id)
}

// GetByIDNumber retrieves a user by canonical id number
func (r *UserRepository) GetByIDNumber(ctx context.Context, idNumber string) (*account.User, error) {
	return r.first(ctx, "id_number = ?", idNumber)
}

// GetByUsername retrieves a user by normalized username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*account.User, error) {
	return r.first(ctx, "username = ?", account.NormalizeUsername(username))
}

// GetByIDs retrieves users by ID, ordered by ID
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uint) ([]*account.User, error) {
	if len(ids) == 0 {
		return []*account.User{}, nil
	}

	var modelList []*models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where("id IN ?", ids).Order("id ASC").Find(&modelList).Error; err != nil {
		r.logger.Errorw("failed to get users by ids", "count", len(ids), "error", err)
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	return r.mapper.ToEntities(modelList), nil
}

func (r *UserRepository) first(ctx context.Context, query string, arg any) (*account.User, error) {
	var model models.UserModel
	if err := db.GetTxFromContext(ctx, r.db).Where(query, arg).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, account.ErrUserNotFound
		}
		r.logger.Errorw("failed to get user", "query", query, "error", err)
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return r.mapper.ToEntity(&model), nil
}

// duplicateUserError maps a unique key violation to the account sentinel for
// the clashing column. Both mysql and sqlite name the column in the message.
func duplicateUserError(err error, u *account.User) error {
	if !apperrors.IsDuplicateError(err) {
		return nil
	}
	if strings.Contains(err.Error(), "id_number") {
		return fmt.Errorf("%w: %s", account.ErrIDNumberTaken, u.IDNumber())
	}
	return fmt.Errorf("%w: %s", account.ErrUsernameTaken, u.Username())
}
