package repository

import (
	"errors"
	"strings"

	"github.com/grabhealth-next/internal/models"

	"gorm.io/gorm"
)

// PartnerRepository 合作诊所数据访问接口
type PartnerRepository interface {
	GetByID(id uint) (*models.Partner, error)
	GetByOwnerID(ownerID uint) (*models.Partner, error)
	Create(partner *models.Partner) error
	Update(partner *models.Partner) error
	Delete(id uint) error
	List(filter PartnerListFilter) ([]models.Partner, int64, error)
	Count() (int64, error)
}

// GormPartnerRepository GORM 合作诊所仓储
type GormPartnerRepository struct {
	db *gorm.DB
}

// NewPartnerRepository 创建合作诊所仓储
func NewPartnerRepository(db *gorm.DB) *GormPartnerRepository {
	return &GormPartnerRepository{db: db}
}

// GetByID 按ID查询合作诊所
func (r *GormPartnerRepository) GetByID(id uint) (*models.Partner, error) {
	if id == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.First(&partner, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// GetByOwnerID 按归属用户查询合作诊所
func (r *GormPartnerRepository) GetByOwnerID(ownerID uint) (*models.Partner, error) {
	if ownerID == 0 {
		return nil, nil
	}
	var partner models.Partner
	if err := r.db.Where("owner_id = ?", ownerID).First(&partner).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &partner, nil
}

// Create 创建合作诊所
func (r *GormPartnerRepository) Create(partner *models.Partner) error {
	return r.db.Create(partner).Error
}

// Update 更新合作诊所
func (r *GormPartnerRepository) Update(partner *models.Partner) error {
	return r.db.Save(partner).Error
}

// Delete 删除合作诊所
func (r *GormPartnerRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Partner{}, id).Error
}

// List 合作诊所列表
func (r *GormPartnerRepository) List(filter PartnerListFilter) ([]models.Partner, int64, error) {
	query := r.db.Model(&models.Partner{})

	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		condition, argCount := buildLikeCondition(r.db, []string{"name", "address", "email"})
		query = query.Where(condition, repeatLikeArgs(like, argCount)...)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var partners []models.Partner
	if err := query.Order("name asc, id asc").Find(&partners).Error; err != nil {
		return nil, 0, err
	}
	return partners, total, nil
}

// Count 统计合作诊所总数
func (r *GormPartnerRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Partner{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
