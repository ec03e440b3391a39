package platform

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// OrganisationHandler places users through their primary position assignment.
type OrganisationHandler struct {
	*Catalog
	db     *gorm.DB
	logger logger.Interface
}

func NewOrganisationHandler(db *gorm.DB, siteURL string, log logger.Interface) *OrganisationHandler {
	return &OrganisationHandler{
		Catalog: newCatalog(db, models.CatalogKindOrganisation, siteURL, "/totara/hierarchy/item/view.php", log),
		db:      db,
		logger:  log,
	}
}

func (h *OrganisationHandler) Type() string { return licensing.TargetTypeOrganisation }

// AssignUser replaces the user's primary organisation.
func (h *OrganisationHandler) AssignUser(ctx context.Context, organisationID, assigneeID, assignerID uint) error {
	now := biztime.NowUTC()
	row := &models.PositionAssignmentModel{
		UserID:         assigneeID,
		OrganisationID: organisationID,
		AssignedBy:     assignerID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	err := db.GetTxFromContext(ctx, h.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"organisation_id", "assigned_by", "updated_at"}),
	}).Create(row).Error
	if err != nil {
		h.logger.Errorw("failed to assign user to organisation", "user_id", assigneeID, "organisation_id", organisationID, "error", err)
		return fmt.Errorf("failed to assign user to organisation: %w", err)
	}
	return nil
}

// ForUser returns the candidate matching the user's primary organisation.
func (h *OrganisationHandler) ForUser(ctx context.Context, userID uint, candidates []*licensing.Target) (*licensing.Target, bool, error) {
	var row models.PositionAssignmentModel
	err := db.GetTxFromContext(ctx, h.db).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		h.logger.Errorw("failed to get position assignment", "user_id", userID, "error", err)
		return nil, false, fmt.Errorf("failed to get position assignment: %w", err)
	}

	for _, c := range candidates {
		if c.Type() == licensing.TargetTypeOrganisation && c.ItemID() == row.OrganisationID {
			return c, true, nil
		}
	}
	return nil, false, nil
}

// UsersIn returns the users whose primary organisation is one of itemIDs.
func (h *OrganisationHandler) UsersIn(ctx context.Context, itemIDs []uint) ([]uint, error) {
	if len(itemIDs) == 0 {
		return []uint{}, nil
	}
	var ids []uint
	err := db.GetTxFromContext(ctx, h.db).
		Model(&models.PositionAssignmentModel{}).
		Where("organisation_id IN ?", itemIDs).
		Order("user_id ASC").
		Pluck("user_id", &ids).Error
	if err != nil {
		h.logger.Errorw("failed to list organisation members", "error", err)
		return nil, fmt.Errorf("failed to list organisation members: %w", err)
	}
	return ids, nil
}
