package service

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"

	"github.com/shopspring/decimal"
)

func TestMergeCreateOrderItems(t *testing.T) {
	items := []CreateOrderItem{
		{ProductID: 1, Quantity: 1},
		{ProductID: 1, Quantity: 2},
		{ProductID: 2, Quantity: 1},
	}
	merged, err := mergeCreateOrderItems(items)
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}
	if len(merged) != 2 {
		t.Fatalf("merged length want 2 got %d", len(merged))
	}
	if merged[0].ProductID != 1 || merged[0].Quantity != 3 {
		t.Fatalf("duplicated product should accumulate, got %+v", merged[0])
	}

	if _, err := mergeCreateOrderItems([]CreateOrderItem{{ProductID: 1, Quantity: 0}}); !errors.Is(err, ErrQuantityInvalid) {
		t.Fatalf("zero quantity want ErrQuantityInvalid got %v", err)
	}
	if _, err := mergeCreateOrderItems([]CreateOrderItem{{ProductID: 0, Quantity: 1}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing product id want ErrNotFound got %v", err)
	}
}

func TestCreateOrderComputesTotalsAndPV(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	vitamin := env.createProduct(t, "vitamin-c", 28.90, 20, true)
	fishOil := env.createProduct(t, "fish-oil", 45.00, 35, true)

	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items: []CreateOrderItem{
			{ProductID: vitamin.ID, Quantity: 2},
			{ProductID: fishOil.ID, Quantity: 1},
		},
		ClientIP: "10.0.0.1",
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if order.Status != constants.OrderStatusPending {
		t.Fatalf("status want pending got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusUnpaid {
		t.Fatalf("payment status want unpaid got %s", order.PaymentStatus)
	}
	if !strings.HasPrefix(order.OrderNo, "GH") {
		t.Fatalf("order no should carry GH prefix, got %s", order.OrderNo)
	}
	want := decimal.NewFromFloat(102.80)
	if !order.TotalAmount.Decimal.Equal(want) {
		t.Fatalf("total want %s got %s", want, order.TotalAmount.Decimal)
	}
	if order.TotalPV != 75 {
		t.Fatalf("total pv want 75 got %d", order.TotalPV)
	}
	if order.ExpiresAt == nil || !order.ExpiresAt.After(time.Now()) {
		t.Fatalf("expires_at should be set in the future")
	}
	if len(order.Items) != 2 {
		t.Fatalf("order items want 2 got %d", len(order.Items))
	}
}

func TestCreateOrderAppliesMembershipDiscount(t *testing.T) {
	env := newServiceTestEnv(t)

	tiers := []models.MembershipTier{
		{Name: "Member", MinTotalSpend: models.NewMoneyFromDecimal(decimal.Zero), DiscountPercent: models.NewMoneyFromDecimal(decimal.Zero), Rank: 1},
		{Name: "Silver", MinTotalSpend: models.NewMoneyFromDecimal(decimal.NewFromInt(500)), DiscountPercent: models.NewMoneyFromDecimal(decimal.NewFromInt(5)), Rank: 2},
	}
	for i := range tiers {
		if err := env.db.Create(&tiers[i]).Error; err != nil {
			t.Fatalf("create tier failed: %v", err)
		}
	}

	user := env.createUser(t, "silver@example.com", constants.RoleCustomer)
	history := env.createProduct(t, "history", 600, 0, false)
	env.createPaidOrder(t, user, history, 1)

	product := env.createProduct(t, "monitor", 100, 0, false)
	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if !order.DiscountAmount.Decimal.Equal(decimal.NewFromInt(5)) {
		t.Fatalf("discount want 5 got %s", order.DiscountAmount.Decimal)
	}
	if !order.TotalAmount.Decimal.Equal(decimal.NewFromInt(95)) {
		t.Fatalf("total want 95 got %s", order.TotalAmount.Decimal)
	}
	if !order.OriginalAmount.Decimal.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("original want 100 got %s", order.OriginalAmount.Decimal)
	}
}

func TestCreateOrderRejectsInactiveProduct(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "retired", 10, 0, false)
	product.IsActive = false
	if err := env.productRepo.Update(product); err != nil {
		t.Fatalf("deactivate product failed: %v", err)
	}

	_, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrProductInactive) {
		t.Fatalf("want ErrProductInactive got %v", err)
	}
}

func TestCheckoutCartCreatesOrderAndClearsCart(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 28.90, 20, true)

	if _, err := env.cartService.AddItem(user.ID, product.ID, 2); err != nil {
		t.Fatalf("add cart item failed: %v", err)
	}

	order, err := env.orderService.CheckoutCart(user.ID, "10.0.0.1")
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("order items mismatch: %+v", order.Items)
	}

	remaining, err := env.cartRepo.ListByUser(user.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("cart should be empty after checkout, got %d items", len(remaining))
	}

	if _, err := env.orderService.CheckoutCart(user.ID, ""); !errors.Is(err, ErrEmptyOrder) {
		t.Fatalf("empty cart checkout want ErrEmptyOrder got %v", err)
	}
}

func TestUpdateOrderStatusTransitions(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 28.90, 20, true)
	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// pending 不可直接发货
	if _, err := env.orderService.UpdateOrderStatus(order.ID, constants.OrderStatusShipped); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("pending -> shipped want ErrOrderStatusInvalid got %v", err)
	}

	updated, err := env.orderService.UpdateOrderStatus(order.ID, constants.OrderStatusProcessing)
	if err != nil {
		t.Fatalf("pending -> processing failed: %v", err)
	}
	if updated.Status != constants.OrderStatusProcessing {
		t.Fatalf("status want processing got %s", updated.Status)
	}

	// 同状态为幂等空操作
	if _, err := env.orderService.UpdateOrderStatus(order.ID, constants.OrderStatusProcessing); err != nil {
		t.Fatalf("same-status update should be a no-op, got %v", err)
	}

	if _, err := env.orderService.UpdateOrderStatus(order.ID, constants.OrderStatusShipped); err != nil {
		t.Fatalf("processing -> shipped failed: %v", err)
	}
	if _, err := env.orderService.UpdateOrderStatus(order.ID, constants.OrderStatusCancelled); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("shipped -> cancelled want ErrOrderStatusInvalid got %v", err)
	}
	final, err := env.orderService.UpdateOrderStatus(order.ID, constants.OrderStatusCompleted)
	if err != nil {
		t.Fatalf("shipped -> completed failed: %v", err)
	}
	if _, err := env.orderService.UpdateOrderStatus(final.ID, constants.OrderStatusProcessing); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("completed is terminal, got %v", err)
	}
}

func TestUpdatePaymentStatusPaidPromotesAndSettles(t *testing.T) {
	env := newServiceTestEnv(t)

	referrer := env.createUser(t, "ref@example.com", constants.RoleSales)
	buyer := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	env.linkReferral(t, buyer.ID, referrer.ID)

	product := env.createProduct(t, "vitamin-c", 100, 20, true)
	env.createCommissionTemplate(t, product.ID, map[int]float64{1: 10})

	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: buyer.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	paid, err := env.orderService.UpdatePaymentStatus(order.ID, constants.PaymentStatusPaid)
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if paid.Status != constants.OrderStatusProcessing {
		t.Fatalf("paid pending order should auto-enter processing, got %s", paid.Status)
	}
	if paid.PaidAt == nil {
		t.Fatalf("paid_at should be set")
	}

	// 队列未启用时同步结算
	row, err := env.commRepo.GetByOrderUserLevel(order.ID, referrer.ID, 1)
	if err != nil || row == nil {
		t.Fatalf("commission should settle on payment: %v", err)
	}
	if !row.Amount.Decimal.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("commission amount want 10 got %s", row.Amount.Decimal)
	}
}

func TestUpdatePaymentStatusRefundVoidsCommissions(t *testing.T) {
	env := newServiceTestEnv(t)

	referrer := env.createUser(t, "ref@example.com", constants.RoleSales)
	buyer := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	env.linkReferral(t, buyer.ID, referrer.ID)

	product := env.createProduct(t, "vitamin-c", 100, 0, true)
	env.createCommissionTemplate(t, product.ID, map[int]float64{1: 10})

	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: buyer.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	if _, err := env.orderService.UpdatePaymentStatus(order.ID, constants.PaymentStatusPaid); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}
	if _, err := env.orderService.UpdatePaymentStatus(order.ID, constants.PaymentStatusRefunded); err != nil {
		t.Fatalf("refund failed: %v", err)
	}

	row, err := env.commRepo.GetByOrderUserLevel(order.ID, referrer.ID, 1)
	if err != nil || row == nil {
		t.Fatalf("commission record missing: %v", err)
	}
	if row.Status != constants.CommissionStatusCancelled {
		t.Fatalf("refund should void pending commission, got %s", row.Status)
	}

	// 已退款订单不可再流转支付状态
	if _, err := env.orderService.UpdatePaymentStatus(order.ID, constants.PaymentStatusPaid); !errors.Is(err, ErrOrderStatusInvalid) {
		t.Fatalf("refunded -> paid want ErrOrderStatusInvalid got %v", err)
	}
}

func TestCancelOrderOwnerAndStateChecks(t *testing.T) {
	env := newServiceTestEnv(t)

	owner := env.createUser(t, "owner@example.com", constants.RoleCustomer)
	stranger := env.createUser(t, "other@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 10, 0, false)

	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: owner.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	if _, err := env.orderService.CancelOrder(order.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign order cancel want ErrNotFound got %v", err)
	}

	cancelled, err := env.orderService.CancelOrder(order.ID, owner.ID)
	if err != nil {
		t.Fatalf("owner cancel failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled || cancelled.CancelledAt == nil {
		t.Fatalf("order should be cancelled, got %s", cancelled.Status)
	}

	// 已支付订单不可由用户取消
	paidOrder := env.createPaidOrder(t, owner, product, 1)
	if _, err := env.orderService.CancelOrder(paidOrder.ID, owner.ID); !errors.Is(err, ErrOrderNotCancellable) {
		t.Fatalf("paid order cancel want ErrOrderNotCancellable got %v", err)
	}
}

func TestCancelExpiredOrderOnlyAfterDeadline(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 10, 0, false)

	order, err := env.orderService.CreateOrder(CreateOrderInput{
		UserID: user.ID,
		Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
	})
	if err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	// 未到期不取消
	untouched, err := env.orderService.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if untouched.Status != constants.OrderStatusPending {
		t.Fatalf("unexpired order must stay pending, got %s", untouched.Status)
	}

	past := time.Now().Add(-time.Minute)
	order.ExpiresAt = &past
	if err := env.orderRepo.Update(order); err != nil {
		t.Fatalf("backdate expiry failed: %v", err)
	}

	expired, err := env.orderService.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("cancel expired failed: %v", err)
	}
	if expired.Status != constants.OrderStatusCancelled {
		t.Fatalf("expired order should be cancelled, got %s", expired.Status)
	}

	// 再次执行幂等
	again, err := env.orderService.CancelExpiredOrder(order.ID)
	if err != nil {
		t.Fatalf("repeated cancel failed: %v", err)
	}
	if again.Status != constants.OrderStatusCancelled {
		t.Fatalf("repeated cancel should keep cancelled, got %s", again.Status)
	}
}

func TestSweepExpiredOrders(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "buyer@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 10, 0, false)

	past := time.Now().Add(-time.Minute)
	for i := 0; i < 3; i++ {
		order, err := env.orderService.CreateOrder(CreateOrderInput{
			UserID: user.ID,
			Items:  []CreateOrderItem{{ProductID: product.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("create order failed: %v", err)
		}
		order.ExpiresAt = &past
		if err := env.orderRepo.Update(order); err != nil {
			t.Fatalf("backdate expiry failed: %v", err)
		}
	}

	cancelled, err := env.orderService.SweepExpiredOrders(10)
	if err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if cancelled != 3 {
		t.Fatalf("sweep cancelled want 3 got %d", cancelled)
	}
}

func TestGetOrderByUserScopesToOwner(t *testing.T) {
	env := newServiceTestEnv(t)

	owner := env.createUser(t, "owner@example.com", constants.RoleCustomer)
	stranger := env.createUser(t, "other@example.com", constants.RoleCustomer)
	product := env.createProduct(t, "vitamin-c", 10, 0, false)
	order := env.createPaidOrder(t, owner, product, 1)

	found, err := env.orderService.GetOrderByUser(order.ID, owner.ID)
	if err != nil || found == nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := env.orderService.GetOrderByUser(order.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign lookup want ErrNotFound got %v", err)
	}

	byNo, err := env.orderService.GetOrderByUserOrderNo(order.OrderNo, owner.ID)
	if err != nil || byNo == nil || byNo.ID != order.ID {
		t.Fatalf("lookup by order no failed: %v", err)
	}
}
