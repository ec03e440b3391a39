package platform

import (
	"gorm.io/gorm"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

// NewRegistry wires every platform handler.
func NewRegistry(db *gorm.DB, siteURL string, log logger.Interface) (*licensing.Registry, error) {
	return licensing.NewRegistry(
		[]licensing.ProductHandler{
			NewCourseHandler(db, siteURL, log.Named("course")),
			NewProgramHandler(db, siteURL, log.Named("program")),
		},
		[]licensing.TargetHandler{
			NewOrganisationHandler(db, siteURL, log.Named("organisation")),
		},
	)
}

var (
	_ licensing.ProductHandler = (*CourseHandler)(nil)
	_ licensing.ProductHandler = (*ProgramHandler)(nil)
	_ licensing.TargetHandler  = (*OrganisationHandler)(nil)
)
