package platform

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/licensing/internal/domain/licensing"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/logger"
)

type nopLogger struct{}

func (l *nopLogger) Debug(msg string, args ...any)                   {}
func (l *nopLogger) Info(msg string, args ...any)                    {}
func (l *nopLogger) Warn(msg string, args ...any)                    {}
func (l *nopLogger) Error(msg string, args ...any)                   {}
func (l *nopLogger) Fatal(msg string, args ...any)                   {}
func (l *nopLogger) With(args ...any) logger.Interface               { return l }
func (l *nopLogger) Named(name string) logger.Interface              { return l }
func (l *nopLogger) Debugw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Infow(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Warnw(msg string, keysAndValues ...interface{})  {}
func (l *nopLogger) Errorw(msg string, keysAndValues ...interface{}) {}
func (l *nopLogger) Fatalw(msg string, keysAndValues ...interface{}) {}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, db.Create([]*models.CatalogItemModel{
		{ID: 1, Kind: models.CatalogKindCourse, Name: "Fire Safety", ShortName: "FS101", Visible: true},
		{ID: 2, Kind: models.CatalogKindCourse, Name: "First Aid", ShortName: "FA", IDNumber: "AID-1", Visible: true},
		{ID: 3, Kind: models.CatalogKindProgram, Name: "Induction", Visible: true},
		{ID: 4, Kind: models.CatalogKindOrganisation, Name: "North Depot", Visible: true},
		{ID: 5, Kind: models.CatalogKindOrganisation, Name: "South Depot", Visible: true},
		{ID: 6, Kind: models.CatalogKindCourse, Name: "Hidden", Visible: true},
	}).Error)
	require.NoError(t, db.Model(&models.CatalogItemModel{}).Where("id = ?", 6).Update("visible", false).Error)
	return db
}

var (
	testEnd        = time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)
	testAllocation = licensing.ReconstructAllocation(1, 1, 1, 10, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), testEnd, time.Now(), 1)
)

func TestCatalog_Search(t *testing.T) {
	db := setupTestDB(t)
	h := NewCourseHandler(db, "https://lms.example.com/", &nopLogger{})
	ctx := context.Background()

	items, err := h.Search(ctx, "fi")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Fire Safety", items[0].Name)
	assert.Equal(t, "https://lms.example.com/course/view.php?id=1", items[0].URL)

	items, err = h.Search(ctx, "aid-1")
	require.NoError(t, err)
	require.Len(t, items, 1)

	items, err = h.Search(ctx, "")
	require.NoError(t, err)
	assert.Len(t, items, 2, "hidden items and other kinds are not listed")

	got, err := h.Get(ctx, []uint{1, 3})
	require.NoError(t, err)
	require.Len(t, got, 1, "program id is not a course")

	name, err := h.ItemName(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "First Aid", name)

	_, err = h.ItemName(ctx, 3)
	assert.ErrorIs(t, err, licensing.ErrItemNotFound)
}

func TestCourseHandler_Enrol(t *testing.T) {
	db := setupTestDB(t)
	h := NewCourseHandler(db, "", &nopLogger{})
	ctx := context.Background()
	product := licensing.ReconstructProduct(1, 1, licensing.ProductTypeCourse, 2)

	require.NoError(t, h.Enrol(ctx, testAllocation, nil, product, []uint{10, 11}))
	require.NoError(t, h.Enrol(ctx, testAllocation, nil, product, []uint{11}), "re-enrolling is idempotent")

	var rows []models.CourseEnrolmentModel
	require.NoError(t, db.Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 2)
	assert.Equal(t, uint(2), rows[0].CourseID)
	require.NotNil(t, rows[0].TimeEnd)
	assert.True(t, rows[0].TimeEnd.Equal(testEnd))
}

func TestProgramHandler_Enrol(t *testing.T) {
	db := setupTestDB(t)
	h := NewProgramHandler(db, "", &nopLogger{})
	product := licensing.ReconstructProduct(1, 1, licensing.ProductTypeProgram, 3)

	require.NoError(t, h.Enrol(context.Background(), testAllocation, nil, product, []uint{10}))

	var row models.ProgramAssignmentModel
	require.NoError(t, db.First(&row).Error)
	assert.Equal(t, uint(3), row.ProgramID)
	require.NotNil(t, row.CompletionDue)
	assert.True(t, row.CompletionDue.Equal(testEnd))
}

func TestOrganisationHandler(t *testing.T) {
	db := setupTestDB(t)
	h := NewOrganisationHandler(db, "", &nopLogger{})
	ctx := context.Background()

	north := licensing.ReconstructTarget(1, 1, licensing.TargetTypeOrganisation, 4)
	south := licensing.ReconstructTarget(2, 1, licensing.TargetTypeOrganisation, 5)

	_, found, err := h.ForUser(ctx, 10, []*licensing.Target{north, south})
	require.NoError(t, err)
	assert.False(t, found, "user without a position")

	require.NoError(t, h.AssignUser(ctx, 4, 10, 1))
	require.NoError(t, h.AssignUser(ctx, 5, 10, 1), "reassignment replaces the primary organisation")
	require.NoError(t, h.AssignUser(ctx, 4, 11, 1))

	target, found, err := h.ForUser(ctx, 10, []*licensing.Target{north, south})
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, south.ID(), target.ID())

	_, found, err = h.ForUser(ctx, 10, []*licensing.Target{north})
	require.NoError(t, err)
	assert.False(t, found)

	users, err := h.UsersIn(ctx, []uint{4})
	require.NoError(t, err)
	assert.Equal(t, []uint{11}, users)
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(setupTestDB(t), "", &nopLogger{})
	require.NoError(t, err)
	assert.Equal(t, []string{licensing.ProductTypeCourse, licensing.ProductTypeProgram}, reg.ProductTypes())
	assert.Equal(t, []string{licensing.TargetTypeOrganisation}, reg.TargetTypes())
}
