package repository

import (
	"errors"

	"github.com/grabhealth-next/internal/models"

	"gorm.io/gorm"
)

// MembershipRepository 会员等级数据访问接口
type MembershipRepository interface {
	GetByID(id uint) (*models.MembershipTier, error)
	Create(tier *models.MembershipTier) error
	Update(tier *models.MembershipTier) error
	Delete(id uint) error
	ListAll() ([]models.MembershipTier, error)
}

// GormMembershipRepository GORM 会员等级仓储
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository 创建会员等级仓储
func NewMembershipRepository(db *gorm.DB) *GormMembershipRepository {
	return &GormMembershipRepository{db: db}
}

// GetByID 按ID查询会员等级
func (r *GormMembershipRepository) GetByID(id uint) (*models.MembershipTier, error) {
	if id == 0 {
		return nil, nil
	}
	var tier models.MembershipTier
	if err := r.db.First(&tier, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &tier, nil
}

// Create 创建会员等级
func (r *GormMembershipRepository) Create(tier *models.MembershipTier) error {
	return r.db.Create(tier).Error
}

// Update 更新会员等级
func (r *GormMembershipRepository) Update(tier *models.MembershipTier) error {
	return r.db.Save(tier).Error
}

// Delete 删除会员等级
func (r *GormMembershipRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.MembershipTier{}, id).Error
}

// ListAll 查询全部会员等级（门槛升序）
func (r *GormMembershipRepository) ListAll() ([]models.MembershipTier, error) {
	var tiers []models.MembershipTier
	if err := r.db.Order("rank asc, min_total_spend asc").Find(&tiers).Error; err != nil {
		return nil, err
	}
	return tiers, nil
}
