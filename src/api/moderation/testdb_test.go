package moderation

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/roadway-app/roadway/src/api/types"
)

// newTestDB opens a throwaway SQLite database with the schema migrated.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&types.User{}, &types.Post{}, &types.Comment{}, &types.Notification{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// seedUser inserts a user with the given trust state.
func seedUser(t *testing.T, db *gorm.DB, id string, admin bool, cleanCount, violations int, trusted bool) {
	t.Helper()
	u := types.User{
		ID:             id,
		Email:          id + "@test.local",
		Name:           id,
		IsActive:       true,
		IsAdmin:        admin,
		CleanPostCount: cleanCount,
		PostViolations: violations,
		IsTrusted:      trusted,
	}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user %s: %v", id, err)
	}
}

func getUser(t *testing.T, db *gorm.DB, id string) types.User {
	t.Helper()
	var u types.User
	if err := db.First(&u, "id = ?", id).Error; err != nil {
		t.Fatalf("get user %s: %v", id, err)
	}
	return u
}
