package mappers

import (
	"gorm.io/datatypes"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
)

// UserMapper handles the conversion between account users and persistence models
type UserMapper interface {
	ToEntity(model *models.UserModel) *account.User
	ToModel(entity *account.User) *models.UserModel
	ToEntities(modelList []*models.UserModel) []*account.User
}

// UserMapperImpl is the concrete implementation of UserMapper
type UserMapperImpl struct{}

// NewUserMapper creates a new user mapper
func NewUserMapper() UserMapper {
	return &UserMapperImpl{}
}

// ToEntity converts a persistence model to an account user
func (m *UserMapperImpl) ToEntity(model *models.UserModel) *account.User {
	if model == nil {
		return nil
	}

	return account.ReconstructUser(account.ReconstructUserParams{
		ID:           model.ID,
		Username:     model.Username,
		Email:        model.Email,
		FirstName:    model.FirstName,
		LastName:     model.LastName,
		IDNumber:     model.IDNumber,
		Auth:         model.Auth,
		Confirmed:    model.Confirmed,
		Locale:       model.Locale,
		Host:         model.Host,
		Role:         model.Role,
		PasswordHash: model.PasswordHash,
		Profile:      profileFromJSON(model.Profile),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	})
}

// ToModel converts an account user to a persistence model
func (m *UserMapperImpl) ToModel(entity *account.User) *models.UserModel {
	if entity == nil {
		return nil
	}

	return &models.UserModel{
		ID:           entity.ID(),
		Username:     entity.Username(),
		Email:        entity.Email(),
		FirstName:    entity.FirstName(),
		LastName:     entity.LastName(),
		IDNumber:     entity.IDNumber(),
		Auth:         entity.Auth(),
		Confirmed:    entity.Confirmed(),
		Locale:       entity.Locale(),
		Host:         entity.Host(),
		Role:         entity.Role().String(),
		PasswordHash: entity.PasswordHash(),
		Profile:      profileToJSON(entity.Profile()),
		CreatedAt:    entity.CreatedAt(),
		UpdatedAt:    entity.UpdatedAt(),
	}
}

// ToEntities converts multiple persistence models to account users
func (m *UserMapperImpl) ToEntities(modelList []*models.UserModel) []*account.User {
	users := make([]*account.User, 0, len(modelList))
	for _, model := range modelList {
		if u := m.ToEntity(model); u != nil {
			users = append(users, u)
		}
	}
	return users
}

func profileToJSON(profile map[string]string) datatypes.JSONMap {
	if len(profile) == 0 {
		return nil
	}
	out := make(datatypes.JSONMap, len(profile))
	for k, v := range profile {
		out[k] = v
	}
	return out
}

func profileFromJSON(profile datatypes.JSONMap) map[string]string {
	if len(profile) == 0 {
		return nil
	}
	out := make(map[string]string, len(profile))
	for k, v := range profile {
		if s, ok := v.(string); ok {
			out[k] = s
		}
	}
	return out
}
