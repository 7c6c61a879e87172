//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/catalog-next/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB connects to TEST_POSTGRES_DSN and recreates the schema.
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.OrderItem{},
		&models.Order{},
		&models.Product{},
		&models.Category{},
		&models.RefreshToken{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresSearchIsCaseInsensitive(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	createRepoTestProduct(t, db, "Mechanical Keyboard", "99.00", true, nil)
	createRepoTestProduct(t, db, "Mouse", "25.00", true, nil)

	products, total, err := NewProductRepository(db).List(ProductListFilter{Search: "KEYBOARD"})
	if err != nil {
		t.Fatalf("list products failed: %v", err)
	}
	if total != 1 || products[0].Name != "Mechanical Keyboard" {
		t.Fatalf("ILIKE search want 1 result got %d", total)
	}
}

func TestPostgresUniqueViolationIsDetected(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewUserRepository(db)
	createRepoTestUser(t, db, "pguser")

	err := repo.Create(&models.User{Username: "pguser2", Email: "pguser@example.com", PasswordHash: "x", Role: "user"})
	if !IsUniqueViolation(err) {
		t.Fatalf("want unique violation got %v", err)
	}
}

func TestPostgresStatsAndRefreshUpsert(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	createRepoTestProduct(t, db, "A", "10.00", true, nil)
	createRepoTestProduct(t, db, "B", "15.00", false, nil)

	stats, err := NewProductRepository(db).Stats()
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.AveragePrice != "12.50" || stats.TotalOutOfStock != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	user := createRepoTestUser(t, db, "pgrefresh")
	tokens := NewRefreshTokenRepository(db)
	expires := time.Now().Add(time.Hour)
	for _, jti := range []string{"a", "b"} {
		if err := tokens.Save(user.ID, jti, expires); err != nil {
			t.Fatalf("save %s failed: %v", jti, err)
		}
	}
	row, err := tokens.GetByUserID(user.ID)
	if err != nil || row == nil || row.TokenID != "b" {
		t.Fatalf("upsert should keep latest token, got %+v (%v)", row, err)
	}
}
