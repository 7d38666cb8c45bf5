//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.Commission{},
		&models.OrderItem{},
		&models.Order{},
		&models.Booking{},
		&models.Partner{},
		&models.Product{},
		&models.Category{},
		&models.UserNetwork{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.UserNetwork{},
		&models.Category{},
		&models.Product{},
		&models.Partner{},
		&models.Booking{},
		&models.Order{},
		&models.OrderItem{},
		&models.Commission{},
	); err != nil {
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

func TestPostgresProductSearchUsesILike(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	category := &models.Category{Slug: "pg-category", Name: "Postgres Category"}
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("create category failed: %v", err)
	}

	productRepo := NewProductRepository(db)
	product := &models.Product{
		CategoryID:  category.ID,
		Slug:        "pg-product-booster",
		Name:        "Immunity Booster Pack",
		Description: "daily immunity booster bundle",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
		IsActive:    true,
	}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	// postgres 下 ILIKE 忽略大小写
	rows, total, err := productRepo.List(ProductListFilter{
		Page:   1,
		Search: "BOOSTER",
	})
	if err != nil {
		t.Fatalf("product search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("case-insensitive search want 1 got total=%d len=%d", total, len(rows))
	}
}

func TestPostgresCommissionUniqueIndex(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCommissionRepository(db)

	first := &models.Commission{
		OrderID: 1, UserID: 2, Level: 1, SourceUserID: 3,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Status: constants.CommissionStatusPending,
	}
	if err := repo.Create(first); err != nil {
		t.Fatalf("create commission failed: %v", err)
	}

	duplicate := &models.Commission{
		OrderID: 1, UserID: 2, Level: 1, SourceUserID: 3,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Status: constants.CommissionStatusPending,
	}
	err := repo.Create(duplicate)
	if err == nil {
		t.Fatalf("duplicate (order, user, level) must violate unique index")
	}
	if !strings.Contains(strings.ToLower(err.Error()), "duplicate") &&
		!strings.Contains(strings.ToLower(err.Error()), "unique") {
		t.Fatalf("expected unique violation, got %v", err)
	}
}

func TestPostgresDashboardOverview(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewDashboardRepository(db)
	now := time.Now().UTC().Truncate(time.Second)

	user := &models.User{
		Email: "pg@example.com", PasswordHash: "x",
		Role: constants.RoleCustomer, Status: constants.UserStatusActive,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	order := &models.Order{
		OrderNo:       "PG-ORDER-001",
		UserID:        user.ID,
		Status:        constants.OrderStatusProcessing,
		PaymentStatus: constants.PaymentStatusPaid,
		Currency:      "SGD",
		TotalAmount:   models.NewMoneyFromDecimal(decimal.NewFromInt(120)),
		CreatedAt:     now,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	row, err := repo.GetOverview(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if row.PaidOrders != 1 {
		t.Fatalf("paid orders want 1 got %d", row.PaidOrders)
	}
	if !row.GMVPaid.Equal(decimal.NewFromInt(120)) {
		t.Fatalf("gmv want 120 got %s", row.GMVPaid)
	}
}
