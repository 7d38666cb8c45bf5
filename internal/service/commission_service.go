package service

import (
	"strings"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CommissionService 多层级佣金业务服务
type CommissionService struct {
	repo           repository.CommissionRepository
	orderRepo      repository.OrderRepository
	userRepo       repository.UserRepository
	networkRepo    repository.NetworkRepository
	productRepo    repository.ProductRepository
	templateRepo   repository.CommissionTemplateRepository
	settingService *SettingService
}

// NewCommissionService 创建佣金服务
func NewCommissionService(
	repo repository.CommissionRepository,
	orderRepo repository.OrderRepository,
	userRepo repository.UserRepository,
	networkRepo repository.NetworkRepository,
	productRepo repository.ProductRepository,
	templateRepo repository.CommissionTemplateRepository,
	settingService *SettingService,
) *CommissionService {
	return &CommissionService{
		repo:           repo,
		orderRepo:      orderRepo,
		userRepo:       userRepo,
		networkRepo:    networkRepo,
		productRepo:    productRepo,
		templateRepo:   templateRepo,
		settingService: settingService,
	}
}

// CommissionSummary 用户佣金汇总
type CommissionSummary struct {
	UserID      uint         `json:"user_id"`
	TotalCount  int64        `json:"total_count"`
	TotalAmount models.Money `json:"total_amount"`
	Pending     models.Money `json:"pending"`
	Approved    models.Money `json:"approved"`
	Paid        models.Money `json:"paid"`
	Cancelled   models.Money `json:"cancelled"`
}

// CalculateForOrder 对符合条件的订单按上线链逐层计佣。
// 仅当订单处于 (processing, paid) 时生效；(order_id, user_id, level)
// 唯一索引保证重复触发不会产生重复记录。
func (s *CommissionService) CalculateForOrder(orderID uint) (int, error) {
	if orderID == 0 || s.repo == nil || s.orderRepo == nil {
		return 0, ErrNotFound
	}
	setting, err := s.settingService.GetCommissionSetting()
	if err != nil {
		return 0, err
	}
	if !setting.Enabled {
		return 0, nil
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return 0, err
	}
	if order == nil {
		return 0, ErrNotFound
	}
	if strings.TrimSpace(order.Status) != constants.OrderStatusProcessing ||
		strings.TrimSpace(order.PaymentStatus) != constants.PaymentStatusPaid {
		return 0, nil
	}
	if order.UserID == 0 || len(order.Items) == 0 {
		return 0, nil
	}

	ancestors, err := s.walkUpline(order.UserID, setting.MaxDepth)
	if err != nil {
		return 0, err
	}
	if len(ancestors) == 0 {
		return 0, nil
	}

	productIDs := make([]uint, 0, len(order.Items))
	for _, item := range order.Items {
		productIDs = append(productIDs, item.ProductID)
	}
	products, err := s.productRepo.ListByIDs(productIDs)
	if err != nil {
		return 0, err
	}
	productByID := make(map[uint]models.Product, len(products))
	for _, product := range products {
		productByID[product.ID] = product
	}
	templates, err := s.templateRepo.GetActiveByProductIDs(productIDs)
	if err != nil {
		return 0, err
	}

	created := 0
	for level, ancestor := range ancestors {
		tier := level + 1
		base, amount := s.accrueForTier(order.Items, productByID, templates, setting, ancestor.Role, tier)
		if amount.LessThanOrEqual(decimal.Zero) {
			continue
		}

		existing, err := s.repo.GetByOrderUserLevel(order.ID, ancestor.ID, tier)
		if err != nil {
			return created, err
		}
		if existing != nil {
			continue
		}

		rate := decimal.Zero
		if base.GreaterThan(decimal.Zero) {
			rate = amount.Mul(decimal.NewFromInt(100)).Div(base).Round(2)
		}
		commission := &models.Commission{
			OrderID:      order.ID,
			UserID:       ancestor.ID,
			Level:        tier,
			SourceUserID: order.UserID,
			BaseAmount:   models.NewMoneyFromDecimal(base),
			RatePercent:  models.NewMoneyFromDecimal(rate),
			Amount:       models.NewMoneyFromDecimal(amount),
			Status:       constants.CommissionStatusPending,
		}
		if err := s.repo.Create(commission); err != nil {
			if isUniqueViolation(err) {
				// 并发触发下另一次结算已落库
				continue
			}
			return created, err
		}
		created++
	}

	if created > 0 {
		logger.Infow("commission_settled",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"records", created,
		)
	}
	return created, nil
}

// accrueForTier 按层级汇总订单项的佣金基数与金额。
// 费率优先取商品佣金模板对应层级，缺失时回退到受益人角色默认费率。
func (s *CommissionService) accrueForTier(
	items []models.OrderItem,
	productByID map[uint]models.Product,
	templates map[uint]models.CommissionTemplate,
	setting CommissionSetting,
	ancestorRole string,
	tier int,
) (decimal.Decimal, decimal.Decimal) {
	base := decimal.Zero
	amount := decimal.Zero
	fallbackRate := decimal.NewFromFloat(setting.DefaultRates[strings.ToLower(strings.TrimSpace(ancestorRole))]).Round(2)

	for _, item := range items {
		product, ok := productByID[item.ProductID]
		if !ok || !product.CommissionEnabled {
			continue
		}
		itemValue := item.TotalPrice.Decimal
		if itemValue.LessThanOrEqual(decimal.Zero) {
			continue
		}

		rate := fallbackRate
		if template, ok := templates[item.ProductID]; ok {
			for _, t := range template.Tiers {
				if t.Level == tier {
					rate = t.RatePercent.Decimal.Round(2)
					break
				}
			}
		}
		if rate.LessThanOrEqual(decimal.Zero) {
			continue
		}

		base = base.Add(itemValue)
		amount = amount.Add(itemValue.Mul(rate).Div(decimal.NewFromInt(100)))
	}
	return base.Round(2), amount.Round(2)
}

// walkUpline 沿父指针取受益人链，长度不超过 maxDepth
func (s *CommissionService) walkUpline(userID uint, maxDepth int) ([]models.User, error) {
	if maxDepth <= 0 {
		return nil, nil
	}
	ancestors := make([]models.User, 0, maxDepth)
	currentID := userID
	for i := 0; i < maxDepth; i++ {
		edge, err := s.networkRepo.GetEdgeByUserID(currentID)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			break
		}
		parent, err := s.userRepo.GetByID(edge.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		if strings.TrimSpace(parent.Status) == constants.UserStatusDisabled {
			// 停用账号不计佣，但链条继续向上
			currentID = parent.ID
			i--
			continue
		}
		ancestors = append(ancestors, *parent)
		currentID = parent.ID
	}
	return ancestors, nil
}

// Approve 批量审批佣金：仅 pending -> approved，已发放记录不动，重复调用幂等
func (s *CommissionService) Approve(ids []uint) (int64, error) {
	normalized := normalizeIDs(ids)
	if len(normalized) == 0 || s.repo == nil {
		return 0, nil
	}

	var updated int64
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ListByIDsForUpdate(normalized)
		if err != nil {
			return err
		}
		targets := make([]uint, 0, len(rows))
		for _, row := range rows {
			if row.Status == constants.CommissionStatusPending {
				targets = append(targets, row.ID)
			}
		}
		if len(targets) == 0 {
			return nil
		}
		now := time.Now()
		updated, err = repo.BatchUpdate(targets, map[string]interface{}{
			"status":      constants.CommissionStatusApproved,
			"approved_at": now,
			"updated_at":  now,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// MarkPaid 批量发放佣金：pending/approved -> paid，已发放记录不动。
// 未经审批直接发放是有意放宽的语义，便于线下人工对账后一步到位。
func (s *CommissionService) MarkPaid(ids []uint) (int64, error) {
	normalized := normalizeIDs(ids)
	if len(normalized) == 0 || s.repo == nil {
		return 0, nil
	}

	var updated int64
	err := s.repo.Transaction(func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		rows, err := repo.ListByIDsForUpdate(normalized)
		if err != nil {
			return err
		}
		targets := make([]uint, 0, len(rows))
		for _, row := range rows {
			switch row.Status {
			case constants.CommissionStatusPending, constants.CommissionStatusApproved:
				targets = append(targets, row.ID)
			}
		}
		if len(targets) == 0 {
			return nil
		}
		now := time.Now()
		updated, err = repo.BatchUpdate(targets, map[string]interface{}{
			"status":     constants.CommissionStatusPaid,
			"paid_at":    now,
			"updated_at": now,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return updated, nil
}

// CancelForOrder 订单取消/退款时作废尚未发放的佣金
func (s *CommissionService) CancelForOrder(orderID uint) (int64, error) {
	if orderID == 0 || s.repo == nil {
		return 0, nil
	}
	return s.repo.CancelByOrder(orderID, time.Now())
}

// GetUserSummary 查询用户佣金汇总
func (s *CommissionService) GetUserSummary(userID uint) (CommissionSummary, error) {
	summary := CommissionSummary{
		UserID:      userID,
		TotalAmount: models.NewMoneyFromDecimal(decimal.Zero),
		Pending:     models.NewMoneyFromDecimal(decimal.Zero),
		Approved:    models.NewMoneyFromDecimal(decimal.Zero),
		Paid:        models.NewMoneyFromDecimal(decimal.Zero),
		Cancelled:   models.NewMoneyFromDecimal(decimal.Zero),
	}
	if userID == 0 || s.repo == nil {
		return summary, ErrNotFound
	}

	rows, err := s.repo.SummarizeByUser(userID)
	if err != nil {
		return summary, err
	}
	total := decimal.Zero
	for _, row := range rows {
		amount := row.Amount.Round(2)
		switch row.Status {
		case constants.CommissionStatusPending:
			summary.Pending = models.NewMoneyFromDecimal(amount)
		case constants.CommissionStatusApproved:
			summary.Approved = models.NewMoneyFromDecimal(amount)
		case constants.CommissionStatusPaid:
			summary.Paid = models.NewMoneyFromDecimal(amount)
		case constants.CommissionStatusCancelled:
			summary.Cancelled = models.NewMoneyFromDecimal(amount)
			continue
		}
		summary.TotalCount += row.Count
		if row.Status != constants.CommissionStatusCancelled {
			total = total.Add(amount)
		}
	}
	summary.TotalAmount = models.NewMoneyFromDecimal(total)
	return summary, nil
}

// ListUserCommissions 查询用户佣金明细
func (s *CommissionService) ListUserCommissions(userID uint, page, pageSize int, status string) ([]models.Commission, int64, error) {
	if userID == 0 || s.repo == nil {
		return nil, 0, ErrNotFound
	}
	return s.repo.List(repository.CommissionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   userID,
		Status:   strings.TrimSpace(status),
	})
}

// ListAdminCommissions 后台佣金列表
func (s *CommissionService) ListAdminCommissions(filter repository.CommissionListFilter) ([]models.Commission, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrNotFound
	}
	return s.repo.List(filter)
}

func normalizeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	result := make([]uint, 0, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		result = append(result, id)
	}
	return result
}
