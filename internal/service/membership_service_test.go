package service

import (
	"testing"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"

	"github.com/shopspring/decimal"
)

func seedMembershipTiers(t *testing.T, env *serviceTestEnv) {
	t.Helper()
	tiers := []models.MembershipTier{
		{Name: "Member", MinTotalSpend: models.NewMoneyFromDecimal(decimal.Zero), DiscountPercent: models.NewMoneyFromDecimal(decimal.Zero), Rank: 1},
		{Name: "Silver", MinTotalSpend: models.NewMoneyFromDecimal(decimal.NewFromInt(500)), DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Rank: 2},
		{Name: "Gold", MinTotalSpend: models.NewMoneyFromDecimal(decimal.NewFromInt(2000)), DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(10)), Rank: 3},
	}
	for i := range tiers {
		if err := env.db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("create tier failed: %v", err)
		}
	}
}

func TestGetStatusForUserResolvesTierBySpend(t *testing.T) {
	env := newServiceTestEnv(t)
	seedMembershipTiers(t, env)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 300, 0, false)
	env.createPaidOrder(t, user, product, 2)

	status, err := env.membershipService.GetStatusForUser(user.ID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if !status.TotalSpend.Decimal.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("total spend want 600 got %s", status.TotalSpend.Decimal)
	}
	if status.Tier == nil || status.Tier.Name != "Silver" {
		t.Fatalf("tier want Silver got %+v", status.Tier)
	}
	if status.NextTier == nil || status.NextTier.Name != "Gold" {
		t.Fatalf("next tier want Gold got %+v", status.NextTier)
	}
}

func TestGetStatusForUserWithoutSpendKeepsBaseTier(t *testing.T) {
	env := newServiceTestEnv(t)
	seedMembershipTiers(t, env)

	user := env.createUser(t, "fresh@example.com", constants.RoleCustomer)

	status, err := env.membershipService.GetStatusForUser(user.ID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if status.Tier == nil || status.Tier.Name != "Member" {
		t.Fatalf("tier want Member got %+v", status.Tier)
	}
	if status.NextTier == nil || status.NextTier.Name != "Silver" {
		t.Fatalf("next tier want Silver got %+v", status.NextTier)
	}
}

func TestGetStatusForUserIgnoresUnpaidOrders(t *testing.T) {
	env := newServiceTestEnv(t)
	seedMembershipTiers(t, env)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 600, 0, false)
	order := env.createPaidOrder(t, user, product, 1)
	order.PaymentStatus = constants.PaymentStatusUnpaid
	if err := env.orderRepo.Update(order); err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	status, err := env.membershipService.GetStatusForUser(user.ID)
	if err != nil {
		t.Fatalf("get status failed: %v", err)
	}
	if !status.TotalSpend.Decimal.Equal(decimal.Zero) {
		t.Fatalf("unpaid orders must not count, got %s", status.TotalSpend.Decimal)
	}
	if status.Tier == nil || status.Tier.Name != "Member" {
		t.Fatalf("tier want Member got %+v", status.Tier)
	}
}

func TestResolveDiscountPercentTopTier(t *testing.T) {
	env := newServiceTestEnv(t)
	seedMembershipTiers(t, env)

	user := env.createUser(t, "gold@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "device", 2500, 0, false)
	env.createPaidOrder(t, user, product, 1)

	percent, err := env.membershipService.ResolveDiscountPercent(user.ID)
	if err != nil {
		t.Fatalf("resolve discount failed: %v", err)
	}
	if !percent.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("discount want 10 got %s", percent)
	}
}

func TestResolveDiscountPercentWithoutTiers(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	percent, err := env.membershipService.ResolveDiscountPercent(user.ID)
	if err != nil {
		t.Fatalf("resolve discount failed: %v", err)
	}
	if !percent.Equal(decimal.Zero) {
		t.Fatalf("discount want 0 got %s", percent)
	}
}

func TestResolveDiscountPercentCapsAtHundred(t *testing.T) {
	env := newServiceTestEnv(t)

	tier := models.MembershipTier{
		Name:            "Broken",
		MinTotalSpend:   models.NewMoneyFromDecimal(decimal.Zero),
		DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(150)),
		Rank:            1,
	}
	if err := env.db.Create(&tier).Error; err != nil {
		t.Fatalf("create tier failed: %v", err)
	}

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	percent, err := env.membershipService.ResolveDiscountPercent(user.ID)
	if err != nil {
		t.Fatalf("resolve discount failed: %v", err)
	}
	if !percent.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("discount must cap at 100, got %s", percent)
	}
}
