package service

import (
	"strings"

	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
)

// CommissionTemplateService 商品佣金模板业务服务
type CommissionTemplateService struct {
	repo        repository.CommissionTemplateRepository
	productRepo repository.ProductRepository
}

// NewCommissionTemplateService 创建佣金模板服务
func NewCommissionTemplateService(repo repository.CommissionTemplateRepository, productRepo repository.ProductRepository) *CommissionTemplateService {
	return &CommissionTemplateService{repo: repo, productRepo: productRepo}
}

// CommissionTierInput 模板层级参数
type CommissionTierInput struct {
	Level       int     `json:"level" binding:"required"`
	RatePercent float64 `json:"rate_percent"`
}

// CommissionTemplateInput 模板参数
type CommissionTemplateInput struct {
	ProductID uint                  `json:"product_id" binding:"required"`
	Name      string                `json:"name"`
	IsActive  *bool                 `json:"is_active"`
	Tiers     []CommissionTierInput `json:"tiers" binding:"required"`
}

// List 模板列表
func (s *CommissionTemplateService) List(page, pageSize int) ([]models.CommissionTemplate, int64, error) {
	return s.repo.List(page, pageSize)
}

// GetByID 查询模板
func (s *CommissionTemplateService) GetByID(id uint) (*models.CommissionTemplate, error) {
	template, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrNotFound
	}
	return template, nil
}

// GetByProductID 查询商品模板
func (s *CommissionTemplateService) GetByProductID(productID uint) (*models.CommissionTemplate, error) {
	if productID == 0 {
		return nil, ErrNotFound
	}
	template, err := s.repo.GetByProductID(productID)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrNotFound
	}
	return template, nil
}

// Create 创建模板（每个商品至多一个模板）
func (s *CommissionTemplateService) Create(input CommissionTemplateInput) (*models.CommissionTemplate, error) {
	tiers, err := buildCommissionTiers(input.Tiers)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}

	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}
	template := &models.CommissionTemplate{
		ProductID: input.ProductID,
		Name:      strings.TrimSpace(input.Name),
		IsActive:  isActive,
		Tiers:     tiers,
	}
	if err := s.repo.Create(template); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrCommissionTemplateInvalid
		}
		return nil, err
	}
	return s.GetByID(template.ID)
}

// Update 更新模板并整体替换层级
func (s *CommissionTemplateService) Update(id uint, input CommissionTemplateInput) (*models.CommissionTemplate, error) {
	template, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, ErrNotFound
	}

	tiers, err := buildCommissionTiers(input.Tiers)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		template.Name = name
	}
	if input.IsActive != nil {
		template.IsActive = *input.IsActive
	}
	template.Tiers = nil
	if err := s.repo.Update(template); err != nil {
		return nil, err
	}
	if err := s.repo.ReplaceTiers(template.ID, tiers); err != nil {
		return nil, err
	}
	return s.GetByID(template.ID)
}

// Delete 删除模板及其层级
func (s *CommissionTemplateService) Delete(id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	template, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if template == nil {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

// buildCommissionTiers 校验并构建模板层级。层级从 1 开始且不可重复，
// 费率限定在 0-100。
func buildCommissionTiers(inputs []CommissionTierInput) ([]models.CommissionTier, error) {
	if len(inputs) == 0 {
		return nil, ErrCommissionTemplateInvalid
	}
	seen := make(map[int]struct{}, len(inputs))
	tiers := make([]models.CommissionTier, 0, len(inputs))
	for _, input := range inputs {
		if input.Level <= 0 {
			return nil, ErrCommissionTemplateInvalid
		}
		if _, ok := seen[input.Level]; ok {
			return nil, ErrCommissionTemplateInvalid
		}
		seen[input.Level] = struct{}{}

		rate := decimal.NewFromFloat(input.RatePercent).Round(2)
		if rate.LessThan(decimal.Zero) || rate.GreaterThan(decimal.NewFromInt(100)) {
			return nil, ErrCommissionTemplateInvalid
		}
		tiers = append(tiers, models.CommissionTier{
			Level:       input.Level,
			RatePercent: models.NewMoneyFromDecimal(rate),
		})
	}
	return tiers, nil
}
