package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tierworks/sellertiers/internal/domain/catalog"
	catalogvo "github.com/tierworks/sellertiers/internal/domain/catalog/valueobjects"
	"github.com/tierworks/sellertiers/internal/infrastructure/migration"
	"github.com/tierworks/sellertiers/internal/shared/logger"
)

var baseTime = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, migration.NewGooseStrategy("sqlite", logger.NewNop()).Migrate(db))
	return db
}

func testPackage(t *testing.T, name string, price int64, days int) *catalog.Package {
	t.Helper()
	p, err := catalog.NewPackage(name, catalogvo.NewMoney(price, "INR"), catalogvo.FeatureBundle{
		MaxListings:  50,
		MaxPhotos:    20,
		DurationDays: days,
		BoostCount:   10,
		Badges:       []string{"verified", "top_seller"},
		Analytics:    true,
	})
	require.NoError(t, err)
	return p
}
