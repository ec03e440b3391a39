// Package seeds loads platform fixtures (courses, programs, organisations and
// users) from a yaml file so a fresh database can be used for licensing.
package seeds

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/account"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/authorization"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// CatalogFile is the yaml document accepted by the seed command.
type CatalogFile struct {
	Courses       []ItemSeed `yaml:"courses"`
	Programs      []ItemSeed `yaml:"programs"`
	Organisations []ItemSeed `yaml:"organisations"`
	Users         []UserSeed `yaml:"users"`
}

type ItemSeed struct {
	Name      string `yaml:"name"`
	ShortName string `yaml:"short_name"`
	IDNumber  string `yaml:"idnumber"`
	Hidden    bool   `yaml:"hidden"`
}

// UserSeed describes an account. Organisation names the idnumber of an
// organisation in the same file or already in the database.
type UserSeed struct {
	Username     string `yaml:"username"`
	Email        string `yaml:"email"`
	FirstName    string `yaml:"firstname"`
	LastName     string `yaml:"lastname"`
	IDNumber     string `yaml:"idnumber"`
	Role         string `yaml:"role"`
	Password     string `yaml:"password"`
	Organisation string `yaml:"organisation"`
}

// PasswordHasher hashes seeded passwords. A blank password is generated.
type PasswordHasher interface {
	HashOrGenerate(password string) (plain string, hash string, err error)
}

// Result counts what a seed run changed.
type Result struct {
	ItemsCreated int
	UsersCreated int
	UsersSkipped int
	// Generated maps usernames to the passwords generated for them.
	Generated map[string]string
}

var errMissingField = errors.New("missing required field")

// ParseCatalog decodes a seed file. Unknown keys are rejected.
func ParseCatalog(data []byte) (*CatalogFile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var file CatalogFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	for kind, items := range map[string][]ItemSeed{
		models.CatalogKindCourse:       file.Courses,
		models.CatalogKindProgram:      file.Programs,
		models.CatalogKindOrganisation: file.Organisations,
	} {
		for i, item := range items {
			if strings.TrimSpace(item.Name) == "" {
				return nil, fmt.Errorf("%s %d: name: %w", kind, i+1, errMissingField)
			}
		}
	}
	for i, u := range file.Users {
		if strings.TrimSpace(u.Username) == "" || strings.TrimSpace(u.IDNumber) == "" {
			return nil, fmt.Errorf("user %d: username and idnumber: %w", i+1, errMissingField)
		}
	}
	return &file, nil
}

// Seeder writes a CatalogFile. Items are matched by kind and name and users
// by username, so a file can be applied more than once.
type Seeder struct {
	db     *gorm.DB
	hasher PasswordHasher
	logger logger.Interface
}

func NewSeeder(db *gorm.DB, hasher PasswordHasher, logger logger.Interface) *Seeder {
	return &Seeder{db: db, hasher: hasher, logger: logger}
}

// Seed applies file in one transaction.
func (s *Seeder) Seed(file *CatalogFile) (*Result, error) {
	result := &Result{Generated: make(map[string]string)}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		orgs := make(map[string]uint)

		for _, group := range []struct {
			kind  string
			items []ItemSeed
		}{
			{models.CatalogKindCourse, file.Courses},
			{models.CatalogKindProgram, file.Programs},
			{models.CatalogKindOrganisation, file.Organisations},
		} {
			for _, item := range group.items {
				row, created, err := s.upsertItem(tx, group.kind, item)
				if err != nil {
					return err
				}
				if created {
					result.ItemsCreated++
				}
				if group.kind == models.CatalogKindOrganisation && row.IDNumber != "" {
					orgs[row.IDNumber] = row.ID
				}
			}
		}

		for _, u := range file.Users {
			created, err := s.createUser(tx, u, orgs, result.Generated)
			if err != nil {
				return err
			}
			if created {
				result.UsersCreated++
			} else {
				result.UsersSkipped++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("seed applied",
		"items_created", result.ItemsCreated,
		"users_created", result.UsersCreated,
		"users_skipped", result.UsersSkipped)
	return result, nil
}

func (s *Seeder) upsertItem(tx *gorm.DB, kind string, item ItemSeed) (*models.CatalogItemModel, bool, error) {
	name := strings.TrimSpace(item.Name)

	row := &models.CatalogItemModel{}
	err := tx.Where("kind = ? AND name = ?", kind, name).First(row).Error
	if err == nil {
		return row, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("failed to look up %s %q: %w", kind, name, err)
	}

	row = &models.CatalogItemModel{
		Kind:      kind,
		Name:      name,
		ShortName: item.ShortName,
		IDNumber:  item.IDNumber,
		Visible:   true,
	}
	if err := tx.Create(row).Error; err != nil {
		return nil, false, fmt.Errorf("failed to seed %s %q: %w", kind, name, err)
	}
	// a false Visible is skipped on create in favour of the column default
	if item.Hidden {
		if err := tx.Model(row).Update("visible", false).Error; err != nil {
			return nil, false, fmt.Errorf("failed to hide %s %q: %w", kind, name, err)
		}
	}
	return row, true, nil
}

func (s *Seeder) createUser(tx *gorm.DB, u UserSeed, orgs map[string]uint, generated map[string]string) (bool, error) {
	username := account.NormalizeUsername(u.Username)

	var count int64
	if err := tx.Model(&models.UserModel{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to look up user %q: %w", username, err)
	}
	if count > 0 {
		return false, nil
	}

	role := authorization.ParseUserRole(u.Role)
	if u.Role != "" && string(role) != u.Role {
		s.logger.Warnw("unknown role in seed file, using learner", "username", username, "role", u.Role)
	}

	plain, hash, err := s.hasher.HashOrGenerate(u.Password)
	if err != nil {
		return false, err
	}
	if strings.TrimSpace(u.Password) == "" {
		generated[username] = plain
	}

	row := &models.UserModel{
		Username:     username,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IDNumber:     u.IDNumber,
		Confirmed:    true,
		Role:         string(role),
		PasswordHash: hash,
	}
	if err := tx.Create(row).Error; err != nil {
		return false, fmt.Errorf("failed to create user %q: %w", username, err)
	}

	if u.Organisation == "" {
		return true, nil
	}
	orgID, ok := orgs[u.Organisation]
	if !ok {
		var org models.CatalogItemModel
		err := tx.Where("kind = ? AND id_number = ?", models.CatalogKindOrganisation, u.Organisation).First(&org).Error
		if err != nil {
			return false, fmt.Errorf("user %q: organisation %q: %w", username, u.Organisation, err)
		}
		orgID = org.ID
	}
	assignment := &models.PositionAssignmentModel{UserID: row.ID, OrganisationID: orgID}
	if err := tx.Create(assignment).Error; err != nil {
		return false, fmt.Errorf("failed to assign user %q to organisation: %w", username, err)
	}
	return true, nil
}
