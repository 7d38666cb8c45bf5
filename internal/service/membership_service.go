package service

import (
	"strings"

	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
)

// MembershipService 会员等级业务服务
type MembershipService struct {
	repo      repository.MembershipRepository
	orderRepo repository.OrderRepository
}

// NewMembershipService 创建会员等级服务
func NewMembershipService(repo repository.MembershipRepository, orderRepo repository.OrderRepository) *MembershipService {
	return &MembershipService{repo: repo, orderRepo: orderRepo}
}

// MembershipStatus 用户会员状态
type MembershipStatus struct {
	UserID     uint                   `json:"user_id"`
	TotalSpend models.Money           `json:"total_spend"`
	Tier       *models.MembershipTier `json:"tier"`
	NextTier   *models.MembershipTier `json:"next_tier"`
}

// ListTiers 列出全部会员等级
func (s *MembershipService) ListTiers() ([]models.MembershipTier, error) {
	return s.repo.ListAll()
}

// GetTier 查询会员等级
func (s *MembershipService) GetTier(id uint) (*models.MembershipTier, error) {
	tier, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if tier == nil {
		return nil, ErrNotFound
	}
	return tier, nil
}

// CreateTier 创建会员等级
func (s *MembershipService) CreateTier(tier *models.MembershipTier) error {
	if tier == nil || strings.TrimSpace(tier.Name) == "" {
		return ErrNotFound
	}
	tier.Name = strings.TrimSpace(tier.Name)
	return s.repo.Create(tier)
}

// UpdateTier 更新会员等级
func (s *MembershipService) UpdateTier(tier *models.MembershipTier) error {
	if tier == nil || tier.ID == 0 {
		return ErrNotFound
	}
	existing, err := s.repo.GetByID(tier.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.repo.Update(tier)
}

// DeleteTier 删除会员等级
func (s *MembershipService) DeleteTier(id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// GetStatusForUser 计算用户当前会员状态（按已支付订单累计金额匹配等级）
func (s *MembershipService) GetStatusForUser(userID uint) (MembershipStatus, error) {
	status := MembershipStatus{
		UserID:     userID,
		TotalSpend: models.NewMoneyFromDecimal(decimal.Zero),
	}
	if userID == 0 {
		return status, ErrNotFound
	}

	total, err := s.orderRepo.SumPaidTotalByUser(userID)
	if err != nil {
		return status, err
	}
	status.TotalSpend = models.NewMoneyFromDecimal(total.Round(2))

	tiers, err := s.repo.ListAll()
	if err != nil {
		return status, err
	}
	for i := range tiers {
		tier := tiers[i]
		if total.GreaterThanOrEqual(tier.MinTotalSpend.Decimal) {
			status.Tier = &tier
			continue
		}
		if status.NextTier == nil {
			status.NextTier = &tier
		}
	}
	return status, nil
}

// ResolveDiscountPercent 查询用户当前折扣百分比
func (s *MembershipService) ResolveDiscountPercent(userID uint) (decimal.Decimal, error) {
	if s == nil || userID == 0 {
		return decimal.Zero, nil
	}
	status, err := s.GetStatusForUser(userID)
	if err != nil {
		return decimal.Zero, err
	}
	if status.Tier == nil {
		return decimal.Zero, nil
	}
	percent := status.Tier.DiscountPercent.Decimal
	if percent.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, nil
	}
	if percent.GreaterThan(decimal.NewFromInt(100)) {
		percent = decimal.NewFromInt(100)
	}
	return percent, nil
}
