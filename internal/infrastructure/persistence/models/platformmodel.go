package models

import "time"

// Catalog item kinds.
const (
	CatalogKindCourse       = "course"
	CatalogKindProgram      = "program"
	CatalogKindOrganisation = "organisation"
)

// CatalogItemModel is a course, program or organisation of the platform
type CatalogItemModel struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	Kind      string `gorm:"column:kind;size:30;not null;index"`
	Name      string `gorm:"column:name;size:255;not null"`
	ShortName string `gorm:"column:short_name;size:100"`
	IDNumber  string `gorm:"column:id_number;size:100"`
	Visible   bool   `gorm:"column:visible;not null;default:true"`
}

func (CatalogItemModel) TableName() string {
	return "catalog_items"
}

// CourseEnrolmentModel is a learner's enrolment in a course
type CourseEnrolmentModel struct {
	ID        uint       `gorm:"primaryKey;autoIncrement"`
	CourseID  uint       `gorm:"column:course_id;not null;uniqueIndex:uk_course_user"`
	UserID    uint       `gorm:"column:user_id;not null;uniqueIndex:uk_course_user"`
	TimeStart time.Time  `gorm:"column:time_start;not null"`
	TimeEnd   *time.Time `gorm:"column:time_end"`
	Source    string     `gorm:"column:source;size:50"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (CourseEnrolmentModel) TableName() string {
	return "course_enrolments"
}

// ProgramAssignmentModel is a learner's assignment to a program
type ProgramAssignmentModel struct {
	ID            uint       `gorm:"primaryKey;autoIncrement"`
	ProgramID     uint       `gorm:"column:program_id;not null;uniqueIndex:uk_program_user"`
	UserID        uint       `gorm:"column:user_id;not null;uniqueIndex:uk_program_user"`
	CompletionDue *time.Time `gorm:"column:completion_due"`
	Source        string     `gorm:"column:source;size:50"`
	CreatedAt     time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (ProgramAssignmentModel) TableName() string {
	return "program_assignments"
}

// PositionAssignmentModel is a user's primary organisation
type PositionAssignmentModel struct {
	ID             uint      `gorm:"primaryKey;autoIncrement"`
	UserID         uint      `gorm:"column:user_id;not null;uniqueIndex"`
	OrganisationID uint      `gorm:"column:organisation_id;not null;index"`
	AssignedBy     uint      `gorm:"column:assigned_by"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (PositionAssignmentModel) TableName() string {
	return "position_assignments"
}
