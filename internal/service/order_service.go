package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/queue"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
)

// OrderService 订单业务服务
type OrderService struct {
	orderRepo         repository.OrderRepository
	productRepo       repository.ProductRepository
	cartRepo          repository.CartRepository
	membershipService *MembershipService
	commissionService *CommissionService
	settingService    *SettingService
	queueClient       *queue.Client
	expireMinutes     int
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	cartRepo repository.CartRepository,
	membershipService *MembershipService,
	commissionService *CommissionService,
	settingService *SettingService,
	queueClient *queue.Client,
	expireMinutes int,
) *OrderService {
	if expireMinutes <= 0 {
		expireMinutes = 30
	}
	return &OrderService{
		orderRepo:         orderRepo,
		productRepo:       productRepo,
		cartRepo:          cartRepo,
		membershipService: membershipService,
		commissionService: commissionService,
		settingService:    settingService,
		queueClient:       queueClient,
		expireMinutes:     expireMinutes,
	}
}

// CreateOrderItem 下单商品项
type CreateOrderItem struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// CreateOrderInput 下单参数
type CreateOrderInput struct {
	UserID   uint
	Items    []CreateOrderItem
	ClientIP string
}

// CreateOrder 创建订单，应用会员折扣并累计商品点值
func (s *OrderService) CreateOrder(input CreateOrderInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrNotFound
	}
	items, err := mergeCreateOrderItems(input.Items)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyOrder
	}

	productIDs := make([]uint, 0, len(items))
	for _, item := range items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return nil, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productByID[product.ID] = product
	}

	original := decimal.Zero
	totalPV := 0
	orderItems := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok {
			return nil, ErrNotFound
		}
		if !product.IsActive {
			return nil, ErrProductInactive
		}
		lineTotal := product.PriceAmount.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		original = original.Add(lineTotal)
		totalPV += product.PointValue * item.Quantity
		orderItems = append(orderItems, models.OrderItem{
			ProductID:   product.ID,
			ProductName: product.Name,
			UnitPrice:   product.PriceAmount,
			Quantity:    item.Quantity,
			TotalPrice:  models.NewMoneyFromDecimal(lineTotal),
			PointValue:  product.PointValue * item.Quantity,
		})
	}

	discount := decimal.Zero
	if s.membershipService != nil {
		percent, err := s.membershipService.ResolveDiscountPercent(input.UserID)
		if err != nil {
			logger.Warnw("order_membership_discount_failed",
				"user_id", input.UserID,
				"error", err,
			)
		} else if percent.GreaterThan(decimal.Zero) {
			discount = original.Mul(percent).Div(decimal.NewFromInt(100)).Round(2)
		}
	}
	total := original.Sub(discount)
	if total.LessThan(decimal.Zero) {
		total = decimal.Zero
	}

	now := time.Now()
	expiresAt := now.Add(time.Duration(s.expireMinutes) * time.Minute)
	order := &models.Order{
		OrderNo:        generateOrderNo(),
		UserID:         input.UserID,
		Status:         constants.OrderStatusPending,
		PaymentStatus:  constants.PaymentStatusUnpaid,
		Currency:       s.resolveSiteCurrency(),
		OriginalAmount: models.NewMoneyFromDecimal(original),
		DiscountAmount: models.NewMoneyFromDecimal(discount),
		TotalAmount:    models.NewMoneyFromDecimal(total),
		TotalPV:        totalPV,
		ClientIP:       strings.TrimSpace(input.ClientIP),
		ExpiresAt:      &expiresAt,
		Items:          orderItems,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.orderRepo.Create(order); err != nil {
		return nil, err
	}

	if err := s.queueClient.EnqueueOrderTimeoutCancel(
		queue.OrderTimeoutCancelPayload{OrderID: order.ID},
		time.Until(expiresAt),
	); err != nil {
		logger.Warnw("order_enqueue_timeout_cancel_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
	return order, nil
}

// CheckoutCart 将购物车结算为订单并清空购物车
func (s *OrderService) CheckoutCart(userID uint, clientIP string) (*models.Order, error) {
	if userID == 0 || s.cartRepo == nil {
		return nil, ErrNotFound
	}
	cartItems, err := s.cartRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	if len(cartItems) == 0 {
		return nil, ErrEmptyOrder
	}

	items := make([]CreateOrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		items = append(items, CreateOrderItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	order, err := s.CreateOrder(CreateOrderInput{UserID: userID, Items: items, ClientIP: clientIP})
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.ClearByUser(userID); err != nil {
		logger.Warnw("order_clear_cart_failed",
			"user_id", userID,
			"order_id", order.ID,
			"error", err,
		)
	}
	return order, nil
}

// UpdateOrderStatus 后台更新订单状态。
// 进入 (processing, paid) 组合时触发佣金结算，取消时作废未发放佣金。
func (s *OrderService) UpdateOrderStatus(orderID uint, targetStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	target := strings.TrimSpace(targetStatus)
	if target == "" {
		return nil, ErrOrderStatusInvalid
	}
	if order.Status == target {
		return order, nil
	}
	if !isOrderTransitionAllowed(order.Status, target) {
		return nil, ErrOrderStatusInvalid
	}

	settledBefore := orderQualifiesForSettlement(order)
	now := time.Now()
	order.Status = target
	order.UpdatedAt = now
	if target == constants.OrderStatusCancelled {
		order.CancelledAt = &now
	}
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	if target == constants.OrderStatusCancelled {
		s.cancelCommissions(order.ID)
	} else if !settledBefore && orderQualifiesForSettlement(order) {
		s.triggerCommissionSettle(order)
	}
	return order, nil
}

// UpdatePaymentStatus 更新支付状态（由后台或外部支付回调驱动）。
// 标记已支付时 pending 订单自动进入 processing，退款时作废未发放佣金。
func (s *OrderService) UpdatePaymentStatus(orderID uint, targetStatus string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}

	target := strings.TrimSpace(targetStatus)
	if target == "" {
		return nil, ErrOrderStatusInvalid
	}
	if order.PaymentStatus == target {
		return order, nil
	}
	if !isPaymentTransitionAllowed(order.PaymentStatus, target) {
		return nil, ErrOrderStatusInvalid
	}

	settledBefore := orderQualifiesForSettlement(order)
	now := time.Now()
	order.PaymentStatus = target
	order.UpdatedAt = now
	switch target {
	case constants.PaymentStatusPaid:
		order.PaidAt = &now
		if order.Status == constants.OrderStatusPending {
			order.Status = constants.OrderStatusProcessing
		}
	case constants.PaymentStatusRefunded:
		// 退款不回收已发放佣金，仅作废 pending/approved
	}
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}

	if target == constants.PaymentStatusRefunded {
		s.cancelCommissions(order.ID)
	} else if !settledBefore && orderQualifiesForSettlement(order) {
		s.triggerCommissionSettle(order)
	}
	return order, nil
}

// CancelOrder 用户取消自己的待支付订单
func (s *OrderService) CancelOrder(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusUnpaid {
		return nil, ErrOrderNotCancellable
	}

	now := time.Now()
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	return order, nil
}

// CancelExpiredOrder 取消单个超时未支付订单（队列任务调用）
func (s *OrderService) CancelExpiredOrder(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	if order.Status != constants.OrderStatusPending || order.PaymentStatus != constants.PaymentStatusUnpaid {
		return order, nil
	}
	if order.ExpiresAt == nil || order.ExpiresAt.After(time.Now()) {
		return order, nil
	}

	now := time.Now()
	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	if err := s.orderRepo.Update(order); err != nil {
		return nil, err
	}
	logger.Infow("order_expired_cancelled",
		"order_id", order.ID,
		"order_no", order.OrderNo,
	)
	return order, nil
}

// SweepExpiredOrders 批量取消超时未支付订单（定时任务调用）
func (s *OrderService) SweepExpiredOrders(limit int) (int, error) {
	if limit <= 0 {
		limit = 100
	}
	orders, err := s.orderRepo.ListExpiredUnpaid(time.Now(), limit)
	if err != nil {
		return 0, err
	}
	cancelled := 0
	for i := range orders {
		if _, err := s.CancelExpiredOrder(orders[i].ID); err != nil {
			logger.Warnw("order_expired_cancel_failed",
				"order_id", orders[i].ID,
				"error", err,
			)
			continue
		}
		cancelled++
	}
	return cancelled, nil
}

// GetOrderByUser 查询用户自己的订单
func (s *OrderService) GetOrderByUser(orderID, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// GetOrderByUserOrderNo 按订单号查询用户自己的订单
func (s *OrderService) GetOrderByUserOrderNo(orderNo string, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByOrderNo(strings.TrimSpace(orderNo))
	if err != nil {
		return nil, err
	}
	if order == nil || order.UserID != userID {
		return nil, ErrNotFound
	}
	return order, nil
}

// ListOrdersByUser 查询用户订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.orderRepo.List(filter)
}

// ListOrdersForAdmin 后台订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// GetOrderForAdmin 后台订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrNotFound
	}
	return order, nil
}

// triggerCommissionSettle 触发佣金结算。优先走队列，队列不可用时同步结算，
// 结算失败仅记日志，不阻塞订单状态流转。
func (s *OrderService) triggerCommissionSettle(order *models.Order) {
	if order == nil {
		return
	}
	if s.queueClient.Enabled() {
		err := s.queueClient.EnqueueCommissionSettle(queue.CommissionSettlePayload{OrderID: order.ID})
		if err == nil {
			return
		}
		logger.Warnw("order_enqueue_commission_settle_failed",
			"order_id", order.ID,
			"error", err,
		)
	}
	if s.commissionService == nil {
		return
	}
	if _, err := s.commissionService.CalculateForOrder(order.ID); err != nil {
		logger.Errorw("order_commission_settle_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

func (s *OrderService) cancelCommissions(orderID uint) {
	if s.commissionService == nil {
		return
	}
	if _, err := s.commissionService.CancelForOrder(orderID); err != nil {
		logger.Warnw("order_commission_cancel_failed",
			"order_id", orderID,
			"error", err,
		)
	}
}

func (s *OrderService) resolveSiteCurrency() string {
	if s.settingService == nil {
		return constants.SiteCurrencyDefault
	}
	return s.settingService.GetSiteCurrency()
}

// orderQualifiesForSettlement 订单达到计佣状态
func orderQualifiesForSettlement(order *models.Order) bool {
	return order != nil &&
		order.Status == constants.OrderStatusProcessing &&
		order.PaymentStatus == constants.PaymentStatusPaid
}

func isOrderTransitionAllowed(current, target string) bool {
	allowed, ok := orderStatusTransitions[current]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

var orderStatusTransitions = map[string][]string{
	constants.OrderStatusPending:    {constants.OrderStatusProcessing, constants.OrderStatusCancelled},
	constants.OrderStatusProcessing: {constants.OrderStatusShipped, constants.OrderStatusCompleted, constants.OrderStatusCancelled},
	constants.OrderStatusShipped:    {constants.OrderStatusDelivered, constants.OrderStatusCompleted},
	constants.OrderStatusDelivered:  {constants.OrderStatusCompleted},
}

func isPaymentTransitionAllowed(current, target string) bool {
	allowed, ok := paymentStatusTransitions[current]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

var paymentStatusTransitions = map[string][]string{
	constants.PaymentStatusUnpaid: {constants.PaymentStatusPaid, constants.PaymentStatusFailed},
	constants.PaymentStatusFailed: {constants.PaymentStatusPaid},
	constants.PaymentStatusPaid:   {constants.PaymentStatusRefunded},
}

func mergeCreateOrderItems(items []CreateOrderItem) ([]CreateOrderItem, error) {
	merged := make([]CreateOrderItem, 0, len(items))
	index := make(map[uint]int, len(items))
	for _, item := range items {
		if item.ProductID == 0 {
			return nil, ErrNotFound
		}
		if item.Quantity <= 0 {
			return nil, ErrQuantityInvalid
		}
		if pos, ok := index[item.ProductID]; ok {
			merged[pos].Quantity += item.Quantity
			continue
		}
		index[item.ProductID] = len(merged)
		merged = append(merged, item)
	}
	return merged, nil
}

func generateOrderNo() string {
	return fmt.Sprintf("GH%s%s", time.Now().Format("20060102150405"), randNumeric(6))
}

func randNumeric(length int) string {
	var builder strings.Builder
	builder.Grow(length)
	max := big.NewInt(10)
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			builder.WriteByte('0')
			continue
		}
		builder.WriteByte(byte('0' + n.Int64()))
	}
	return builder.String()
}
