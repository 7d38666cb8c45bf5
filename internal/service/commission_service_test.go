package service

import (
	"testing"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
)

func TestCalculateForOrderTwoLevelChain(t *testing.T) {
	env := newServiceTestEnv(t)

	// C 下单，B 为直接上线，A 为二级上线
	a := env.createUser(t, "a@example.com", constants.RoleSales)
	b := env.createUser(t, "b@example.com", constants.RoleSales)
	c := env.createUser(t, "c@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)
	env.linkReferral(t, c.ID, b.ID)

	product := env.createProduct(t, "vitamin-c", 100, 50, true)
	env.createCommissionTemplate(t, product.ID, map[int]float64{1: 10, 2: 5})
	order := env.createPaidOrder(t, c, product, 1)

	created, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if created != 2 {
		t.Fatalf("created records want 2 got %d", created)
	}

	direct, err := env.commRepo.GetByOrderUserLevel(order.ID, b.ID, 1)
	if err != nil || direct == nil {
		t.Fatalf("level 1 commission missing: %v", err)
	}
	if !direct.Amount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("level 1 amount want 10 got %s", direct.Amount.Decimal)
	}
	if direct.Status != constants.CommissionStatusPending {
		t.Fatalf("level 1 status want pending got %s", direct.Status)
	}
	if direct.SourceUserID != c.ID {
		t.Fatalf("level 1 source want %d got %d", c.ID, direct.SourceUserID)
	}

	indirect, err := env.commRepo.GetByOrderUserLevel(order.ID, a.ID, 2)
	if err != nil || indirect == nil {
		t.Fatalf("level 2 commission missing: %v", err)
	}
	if !indirect.Amount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("level 2 amount want 5 got %s", indirect.Amount.Decimal)
	}
}

func TestCalculateForOrderIsIdempotent(t *testing.T) {
	env := newServiceTestEnv(t)

	a := env.createUser(t, "a@example.com", constants.RoleSales)
	b := env.createUser(t, "b@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)

	product := env.createProduct(t, "fish-oil", 50, 20, true)
	env.createCommissionTemplate(t, product.ID, map[int]float64{1: 10})
	order := env.createPaidOrder(t, b, product, 2)

	first, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("first calculate failed: %v", err)
	}
	if first != 1 {
		t.Fatalf("first run want 1 record got %d", first)
	}

	second, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("second calculate failed: %v", err)
	}
	if second != 0 {
		t.Fatalf("second run want 0 new records got %d", second)
	}

	rows, total, err := env.commRepo.List(repository.CommissionListFilter{OrderID: order.ID, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list commissions failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("commission rows want 1 got %d", total)
	}
}

func TestCalculateForOrderSkipsNonQualifyingOrders(t *testing.T) {
	env := newServiceTestEnv(t)

	a := env.createUser(t, "a@example.com", constants.RoleSales)
	b := env.createUser(t, "b@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)

	product := env.createProduct(t, "toothpaste", 10, 0, true)
	env.createCommissionTemplate(t, product.ID, map[int]float64{1: 10})
	order := env.createPaidOrder(t, b, product, 1)
	order.PaymentStatus = constants.PaymentStatusUnpaid
	if err := env.orderRepo.Update(order); err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	created, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("unpaid order should not settle, got %d records", created)
	}
}

func TestCalculateForOrderWithoutUplineCreatesNothing(t *testing.T) {
	env := newServiceTestEnv(t)

	solo := env.createUser(t, "solo@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "monitor", 129, 80, true)
	order := env.createPaidOrder(t, solo, product, 1)

	created, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("orphan buyer should settle nothing, got %d", created)
	}
}

func TestCalculateForOrderSkipsCommissionDisabledProducts(t *testing.T) {
	env := newServiceTestEnv(t)

	a := env.createUser(t, "a@example.com", constants.RoleSales)
	b := env.createUser(t, "b@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)

	product := env.createProduct(t, "plain-soap", 20, 0, false)
	order := env.createPaidOrder(t, b, product, 3)

	created, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if created != 0 {
		t.Fatalf("disabled product should settle nothing, got %d", created)
	}
}

func TestCalculateForOrderFallsBackToRoleRate(t *testing.T) {
	env := newServiceTestEnv(t)

	// sales 默认费率 10%，无商品模板
	a := env.createUser(t, "a@example.com", constants.RoleSales)
	b := env.createUser(t, "b@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)

	product := env.createProduct(t, "collagen", 200, 100, true)
	order := env.createPaidOrder(t, b, product, 1)

	created, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("created want 1 got %d", created)
	}
	row, err := env.commRepo.GetByOrderUserLevel(order.ID, a.ID, 1)
	if err != nil || row == nil {
		t.Fatalf("commission missing: %v", err)
	}
	if !row.Amount.Decimal.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("fallback amount want 20 got %s", row.Amount.Decimal)
	}
}

func TestApproveOnlyMovesPending(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "earner@example.com", constants.RoleSales)
	buyer := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	order := env.createPaidOrder(t, buyer, env.createProduct(t, "p1", 100, 0, true), 1)

	pending := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 1, SourceUserID: buyer.ID,
		BaseAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Status:     constants.CommissionStatusPending,
	}
	paid := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 2, SourceUserID: buyer.ID,
		BaseAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(100)),
		Amount:     models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Status:     constants.CommissionStatusPaid,
	}
	if err := env.commRepo.Create(pending); err != nil {
		t.Fatalf("create pending failed: %v", err)
	}
	if err := env.commRepo.Create(paid); err != nil {
		t.Fatalf("create paid failed: %v", err)
	}

	updated, err := env.commissionService.Approve([]uint{pending.ID, paid.ID, 0, pending.ID})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if updated != 1 {
		t.Fatalf("approve updated want 1 got %d", updated)
	}

	// 重复审批幂等
	updated, err = env.commissionService.Approve([]uint{pending.ID})
	if err != nil {
		t.Fatalf("re-approve failed: %v", err)
	}
	if updated != 0 {
		t.Fatalf("re-approve updated want 0 got %d", updated)
	}

	refreshed, err := env.commRepo.GetByID(paid.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get paid commission failed: %v", err)
	}
	if refreshed.Status != constants.CommissionStatusPaid {
		t.Fatalf("paid record must stay paid, got %s", refreshed.Status)
	}
}

func TestMarkPaidAcceptsPendingAndApproved(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "earner@example.com", constants.RoleSales)
	buyer := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	order := env.createPaidOrder(t, buyer, env.createProduct(t, "p1", 100, 0, true), 1)

	pending := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 1, SourceUserID: buyer.ID,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Status: constants.CommissionStatusPending,
	}
	approved := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 2, SourceUserID: buyer.ID,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Status: constants.CommissionStatusApproved,
	}
	cancelled := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 3, SourceUserID: buyer.ID,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(3)),
		Status: constants.CommissionStatusCancelled,
	}
	for _, row := range []*models.Commission{pending, approved, cancelled} {
		if err := env.commRepo.Create(row); err != nil {
			t.Fatalf("create commission failed: %v", err)
		}
	}

	updated, err := env.commissionService.MarkPaid([]uint{pending.ID, approved.ID, cancelled.ID})
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if updated != 2 {
		t.Fatalf("mark paid updated want 2 got %d", updated)
	}

	refreshed, err := env.commRepo.GetByID(cancelled.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get cancelled commission failed: %v", err)
	}
	if refreshed.Status != constants.CommissionStatusCancelled {
		t.Fatalf("cancelled record must stay cancelled, got %s", refreshed.Status)
	}
}

func TestCancelForOrderVoidsUnpaidOnly(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "earner@example.com", constants.RoleSales)
	buyer := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	order := env.createPaidOrder(t, buyer, env.createProduct(t, "p1", 100, 0, true), 1)

	pending := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 1, SourceUserID: buyer.ID,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		Status: constants.CommissionStatusPending,
	}
	paid := &models.Commission{
		OrderID: order.ID, UserID: user.ID, Level: 2, SourceUserID: buyer.ID,
		Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(5)),
		Status: constants.CommissionStatusPaid,
	}
	if err := env.commRepo.Create(pending); err != nil {
		t.Fatalf("create pending failed: %v", err)
	}
	if err := env.commRepo.Create(paid); err != nil {
		t.Fatalf("create paid failed: %v", err)
	}

	voided, err := env.commissionService.CancelForOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel for order failed: %v", err)
	}
	if voided != 1 {
		t.Fatalf("voided want 1 got %d", voided)
	}

	refreshed, err := env.commRepo.GetByID(paid.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get paid commission failed: %v", err)
	}
	if refreshed.Status != constants.CommissionStatusPaid {
		t.Fatalf("paid commission must not be clawed back, got %s", refreshed.Status)
	}
}

func TestGetUserSummaryExcludesCancelled(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "earner@example.com", constants.RoleSales)
	buyer := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	order := env.createPaidOrder(t, buyer, env.createProduct(t, "p1", 100, 0, true), 1)

	rows := []*models.Commission{
		{OrderID: order.ID, UserID: user.ID, Level: 1, SourceUserID: buyer.ID,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), Status: constants.CommissionStatusPending},
		{OrderID: order.ID, UserID: user.ID, Level: 2, SourceUserID: buyer.ID,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(7)), Status: constants.CommissionStatusPaid},
		{OrderID: order.ID, UserID: user.ID, Level: 3, SourceUserID: buyer.ID,
			Amount: models.NewMoneyFromDecimal(decimal.NewFromInt(4)), Status: constants.CommissionStatusCancelled},
	}
	for _, row := range rows {
		if err := env.commRepo.Create(row); err != nil {
			t.Fatalf("create commission failed: %v", err)
		}
	}

	summary, err := env.commissionService.GetUserSummary(user.ID)
	if err != nil {
		t.Fatalf("summary failed: %v", err)
	}
	if !summary.TotalAmount.Decimal.Equal(decimal.NewFromInt(17)) {
		t.Fatalf("total want 17 got %s", summary.TotalAmount.Decimal)
	}
	if !summary.Pending.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("pending want 10 got %s", summary.Pending.Decimal)
	}
	if !summary.Paid.Decimal.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("paid want 7 got %s", summary.Paid.Decimal)
	}
	if !summary.Cancelled.Decimal.Equal(decimal.NewFromInt(4)) {
		t.Fatalf("cancelled want 4 got %s", summary.Cancelled.Decimal)
	}
	if summary.TotalCount != 2 {
		t.Fatalf("total count want 2 got %d", summary.TotalCount)
	}
}

func TestWalkUplineSkipsDisabledAccounts(t *testing.T) {
	env := newServiceTestEnv(t)

	a := env.createUser(t, "a@example.com", constants.RoleSales)
	b := env.createUser(t, "b@example.com", constants.RoleSales)
	c := env.createUser(t, "c@example.com", constants.RoleCustomer)
	env.linkReferral(t, b.ID, a.ID)
	env.linkReferral(t, c.ID, b.ID)

	b.Status = constants.UserStatusDisabled
	if err := env.userRepo.Update(b); err != nil {
		t.Fatalf("disable user failed: %v", err)
	}

	product := env.createProduct(t, "vitamin-d", 100, 0, true)
	env.createCommissionTemplate(t, product.ID, map[int]float64{1: 10, 2: 5})
	order := env.createPaidOrder(t, c, product, 1)

	created, err := env.commissionService.CalculateForOrder(order.ID)
	if err != nil {
		t.Fatalf("calculate failed: %v", err)
	}
	if created != 1 {
		t.Fatalf("created want 1 got %d", created)
	}

	// 停用的 B 不计佣，A 以一级身份受益
	row, err := env.commRepo.GetByOrderUserLevel(order.ID, a.ID, 1)
	if err != nil || row == nil {
		t.Fatalf("expected level 1 record for active grandparent: %v", err)
	}
	if blocked, _ := env.commRepo.GetByOrderUserLevel(order.ID, b.ID, 1); blocked != nil {
		t.Fatalf("disabled account must not earn commission")
	}
}
