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

// EnrolmentSource tags rows written by licence reconciliation.
const EnrolmentSource = "licensing"

// CourseHandler enrols learners into courses until the allocation ends.
type CourseHandler struct {
	*Catalog
	db     *gorm.DB
	logger logger.Interface
}

func NewCourseHandler(db *gorm.DB, siteURL string, log logger.Interface) *CourseHandler {
	return &CourseHandler{
		Catalog: newCatalog(db, models.CatalogKindCourse, siteURL, "/course/view.php", log),
		db:      db,
		logger:  log,
	}
}

func (h *CourseHandler) Type() string { return licensing.ProductTypeCourse }

// Enrol upserts one enrolment per user. Existing enrolments get the later end date.
func (h *CourseHandler) Enrol(ctx context.Context, allocation *licensing.Allocation, _ *licensing.Distribution, product *licensing.Product, userIDs []uint) error {
	if len(userIDs) == 0 {
		return nil
	}
	now := biztime.NowUTC()
	end := allocation.EndDate()

	rows := make([]*models.CourseEnrolmentModel, 0, len(userIDs))
	for _, uid := range userIDs {
		rows = append(rows, &models.CourseEnrolmentModel{
			CourseID:  product.ItemID(),
			UserID:    uid,
			TimeStart: now,
			TimeEnd:   &end,
			Source:    EnrolmentSource,
			CreatedAt: now,
		})
	}

	err := db.GetTxFromContext(ctx, h.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "course_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"time_end", "source"}),
	}).Create(&rows).Error
	if err != nil {
		h.logger.Errorw("failed to enrol users in course", "course_id", product.ItemID(), "users", len(userIDs), "error", err)
		return fmt.Errorf("failed to enrol users in course %d: %w", product.ItemID(), err)
	}

	h.logger.Infow("users enrolled in course", "course_id", product.ItemID(), "users", len(userIDs))
	return nil
}
