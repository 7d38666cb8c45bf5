package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupDashboardRepositoryTest(t *testing.T) (*GormDashboardRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.UserNetwork{},
		&models.Product{},
		&models.Order{},
		&models.Commission{},
		&models.Partner{},
		&models.Booking{},
	); err != nil {
		t.Fatalf("migrate dashboard models failed: %v", err)
	}
	return NewDashboardRepository(db), db
}

func TestDashboardGetOverview(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)
	now := time.Now()

	users := []models.User{
		{Email: "a@example.com", PasswordHash: "x", Role: constants.RoleCustomer, Status: constants.UserStatusActive},
		{Email: "b@example.com", PasswordHash: "x", Role: constants.RoleCustomer, Status: constants.UserStatusActive},
	}
	for i := range users {
		if err := db.Create(&users[i]).Error; err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	orders := []models.Order{
		{OrderNo: "GH-T-1", UserID: users[0].ID, Status: constants.OrderStatusProcessing,
			PaymentStatus: constants.PaymentStatusPaid, Currency: "SGD",
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)), CreatedAt: now},
		{OrderNo: "GH-T-2", UserID: users[0].ID, Status: constants.OrderStatusCancelled,
			PaymentStatus: constants.PaymentStatusUnpaid, Currency: "SGD",
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(50)), CreatedAt: now},
		{OrderNo: "GH-T-OLD", UserID: users[1].ID, Status: constants.OrderStatusCompleted,
			PaymentStatus: constants.PaymentStatusPaid, Currency: "SGD",
			TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(999)), CreatedAt: now.Add(-48 * time.Hour)},
	}
	for i := range orders {
		order := orders[i]
		if err := db.Create(&order).Error; err != nil {
			t.Fatalf("create order failed: %v", err)
		}
		// CreatedAt 由 GORM 覆盖，回写以固定窗口归属
		if err := db.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("created_at", orders[i].CreatedAt).Error; err != nil {
			t.Fatalf("backdate order failed: %v", err)
		}
	}

	if err := db.Create(&models.Product{CategoryID: 1, Slug: "p1", Name: "P1",
		PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), IsActive: true}).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := db.Create(&models.Partner{Name: "Clinic", Status: constants.PartnerStatusActive}).Error; err != nil {
		t.Fatalf("create partner failed: %v", err)
	}

	row, err := repo.GetOverview(now.Add(-time.Hour), now.Add(time.Hour))
	if err != nil {
		t.Fatalf("get overview failed: %v", err)
	}
	if row.UsersTotal != 2 {
		t.Fatalf("users total want 2 got %d", row.UsersTotal)
	}
	if row.OrdersTotal != 2 {
		t.Fatalf("window orders want 2 got %d", row.OrdersTotal)
	}
	if row.PaidOrders != 1 {
		t.Fatalf("paid orders want 1 got %d", row.PaidOrders)
	}
	if row.CancelledOrders != 1 {
		t.Fatalf("cancelled orders want 1 got %d", row.CancelledOrders)
	}
	if !row.GMVPaid.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("gmv want 100 got %s", row.GMVPaid)
	}
	if row.PartnersTotal != 1 {
		t.Fatalf("partners total want 1 got %d", row.PartnersTotal)
	}
	if row.ActiveProducts != 1 {
		t.Fatalf("active products want 1 got %d", row.ActiveProducts)
	}
}

func TestDashboardGetCommissionStats(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)

	rows := []models.Commission{
		{OrderID: 1, UserID: 1, Level: 1, SourceUserID: 2,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), Status: constants.CommissionStatusPending},
		{OrderID: 2, UserID: 1, Level: 1, SourceUserID: 2,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Status: constants.CommissionStatusPending},
		{OrderID: 3, UserID: 1, Level: 1, SourceUserID: 2,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(7)), Status: constants.CommissionStatusPaid},
	}
	for i := range rows {
		if err := db.Create(&rows[i]).Error; err != nil {
			t.Fatalf("create commission failed: %v", err)
		}
	}

	stats, err := repo.GetCommissionStats()
	if err != nil {
		t.Fatalf("get commission stats failed: %v", err)
	}
	byStatus := map[string]CommissionStatusAggregate{}
	for _, row := range stats {
		byStatus[row.Status] = row
	}
	pending := byStatus[constants.CommissionStatusPending]
	if pending.Count != 2 || !pending.Amount.Equal(decimal.NewFromInt(15)) {
		t.Fatalf("pending aggregate mismatch: %+v", pending)
	}
	paid := byStatus[constants.CommissionStatusPaid]
	if paid.Count != 1 || !paid.Amount.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("paid aggregate mismatch: %+v", paid)
	}
}

func TestDashboardGetNetworkStats(t *testing.T) {
	repo, db := setupDashboardRepositoryTest(t)

	edges := []models.UserNetwork{
		{UserID: 2, ParentID: 1, Level: 1},
		{UserID: 3, ParentID: 1, Level: 1},
		{UserID: 4, ParentID: 2, Level: 1},
	}
	for i := range edges {
		if err := db.Create(&edges[i]).Error; err != nil {
			t.Fatalf("create edge failed: %v", err)
		}
	}

	stats, err := repo.GetNetworkStats()
	if err != nil {
		t.Fatalf("get network stats failed: %v", err)
	}
	if stats.EdgesTotal != 3 {
		t.Fatalf("edges total want 3 got %d", stats.EdgesTotal)
	}
	if stats.ReferrersTotal != 2 {
		t.Fatalf("referrers total want 2 got %d", stats.ReferrersTotal)
	}
}
