package repo

import (
	"os"
	"testing"

	"github.com/glitch-app/glitch/internal/modules/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB connects to the integration database, skipping when it is unreachable.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("GLITCH_TEST_DSN")
	if dsn == "" {
		dsn = "host=localhost user=glitch password=glitch dbname=glitch_test port=15432 sslmode=disable"
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Skip("Test database not available, skipping integration tests")
		return nil
	}

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, premium bool) *model.User {
	t.Helper()
	u := &model.User{
		ID:        uuid.New(),
		Username:  "u_" + uuid.NewString()[:12],
		IsPremium: premium,
		Level:     1,
	}
	require.NoError(t, db.Create(u).Error)
	t.Cleanup(func() { db.Exec("DELETE FROM users WHERE id = ?", u.ID) })
	return u
}
