package migration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/orris-inc/licensing/internal/infrastructure/database"
	"github.com/orris-inc/licensing/internal/infrastructure/persistence/models"
	"github.com/orris-inc/licensing/internal/shared/constants"
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

func TestNewManager_StrategySelection(t *testing.T) {
	log := &nopLogger{}

	tests := []struct {
		name   string
		driver string
		env    string
		want   string
	}{
		{"sqlite always auto migrates", database.DriverSQLite, constants.EnvProduction, "gorm_auto_migrate"},
		{"mysql development", database.DriverMySQL, constants.EnvDevelopment, "gorm_auto_migrate"},
		{"mysql production", database.DriverMySQL, constants.EnvProduction, "goose"},
		{"mysql test", database.DriverMySQL, constants.EnvTest, "goose"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager(tt.driver, tt.env, log)
			assert.Equal(t, tt.want, m.GetStrategy().GetName())
		})
	}
}

func TestGormAutoMigrateStrategy(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer sqlDB.Close()

	m := NewManager(database.DriverSQLite, "", &nopLogger{})
	require.NoError(t, m.Migrate(db))

	for _, model := range models.All() {
		assert.True(t, db.Migrator().HasTable(model), "%T", model)
	}
}

func TestGooseStrategy_EmbeddedScripts(t *testing.T) {
	versions, err := NewGooseStrategy(&nopLogger{}).Versions()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, versions)
}
