package platform

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/biztime"
	"github.com/orris-inc/licensing/internal/shared/db"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// ProgramHandler assigns learners to programs due by the allocation end date.
type ProgramHandler struct {
	*Catalog
	db     *gorm.DB
	logger logger.Interface
}

func NewProgramHandler(db *gorm.DB, siteURL string, log logger.Interface) *ProgramHandler {
	return &ProgramHandler{
		Catalog: newCatalog(db, models.CatalogKindProgram, siteURL, "/totara/program/view.php", log),
		db:      db,
		logger:  log,
	}
}

func (h *ProgramHandler) Type() string { return licensing.ProductTypeProgram }

func (h *ProgramHandler) Enrol(ctx context.Context, allocation *licensing.Allocation, _ *licensing.Distribution, product *licensing.Product, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := biztime.NowUTC()
	due := allocation.EndDate()

	rows := make([]*models.ProgramAssignmentModel, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, &models.ProgramAssignmentModel{
			ProgramID:     product.ItemID(),
			UserID:        uid,
			CompletionDue: &due,
			Source:        EnrolmentSource,
			CreatedAt:     now,
		})
	}

	err := db.GetTxFromContext(ctx, h.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "program_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"completion_due", "source"}),
	}).Create(&rows).Error
	if err != nil {
		h.logger.Errorw("failed to assign users to program", "program_id", product.ItemID(), "users", len(userIDs), "error", err)
		return fmt.Errorf("failed to assign users to program %d: %w", product.ItemID(), err)
	}

	h.logger.Infow("users assigned to program", "program_id", product.ItemID(), "users", len(userIDs))
	return nil
}
