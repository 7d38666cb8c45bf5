package repository

import (
	"errors"

	"github.com/grabhealth-next/internal/models"

	"gorm.io/gorm"
)

// CommissionTemplateRepository 佣金模板数据访问接口
type CommissionTemplateRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionTemplateRepository

	GetByID(id uint) (*models.CommissionTemplate, error)
	GetByProductID(productID uint) (*models.CommissionTemplate, error)
	GetActiveByProductIDs(productIDs []uint) (map[uint]models.CommissionTemplate, error)
	Create(template *models.CommissionTemplate) error
	Update(template *models.CommissionTemplate) error
	Delete(id uint) error
	ReplaceTiers(templateID uint, tiers []models.CommissionTier) error
	List(page, pageSize int) ([]models.CommissionTemplate, int64, error)
}

// GormCommissionTemplateRepository GORM 佣金模板仓储
type GormCommissionTemplateRepository struct {
	db *gorm.DB
}

// NewCommissionTemplateRepository 创建佣金模板仓储
func NewCommissionTemplateRepository(db *gorm.DB) *GormCommissionTemplateRepository {
	return &GormCommissionTemplateRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionTemplateRepository) WithTx(tx *gorm.DB) CommissionTemplateRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionTemplateRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionTemplateRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID查询模板
func (r *GormCommissionTemplateRepository) GetByID(id uint) (*models.CommissionTemplate, error) {
	if id == 0 {
		return nil, nil
	}
	var template models.CommissionTemplate
	if err := r.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("level asc")
	}).First(&template, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetByProductID 按商品查询模板
func (r *GormCommissionTemplateRepository) GetByProductID(productID uint) (*models.CommissionTemplate, error) {
	if productID == 0 {
		return nil, nil
	}
	var template models.CommissionTemplate
	if err := r.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("level asc")
	}).Where("product_id = ?", productID).First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}

// GetActiveByProductIDs 批量查询启用中的模板（含层级费率）
func (r *GormCommissionTemplateRepository) GetActiveByProductIDs(productIDs []uint) (map[uint]models.CommissionTemplate, error) {
	result := make(map[uint]models.CommissionTemplate, len(productIDs))
	if len(productIDs) == 0 {
		return result, nil
	}
	var templates []models.CommissionTemplate
	if err := r.db.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("level asc")
	}).Where("product_id IN ? AND is_active = ?", productIDs, true).Find(&templates).Error; err != nil {
		return nil, err
	}
	for _, template := range templates {
		result[template.ProductID] = template
	}
	return result, nil
}

// Create 创建模板
func (r *GormCommissionTemplateRepository) Create(template *models.CommissionTemplate) error {
	return r.db.Create(template).Error
}

// Update 更新模板
func (r *GormCommissionTemplateRepository) Update(template *models.CommissionTemplate) error {
	return r.db.Save(template).Error
}

// Delete 删除模板及其层级费率
func (r *GormCommissionTemplateRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", id).Delete(&models.CommissionTier{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.CommissionTemplate{}, id).Error
	})
}

// ReplaceTiers 全量替换模板的层级费率
func (r *GormCommissionTemplateRepository) ReplaceTiers(templateID uint, tiers []models.CommissionTier) error {
	if templateID == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("template_id = ?", templateID).Delete(&models.CommissionTier{}).Error; err != nil {
			return err
		}
		if len(tiers) == 0 {
			return nil
		}
		for i := range tiers {
			tiers[i].ID = 0
			tiers[i].TemplateID = templateID
		}
		return tx.Create(&tiers).Error
	})
}

// List 模板列表
func (r *GormCommissionTemplateRepository) List(page, pageSize int) ([]models.CommissionTemplate, int64, error) {
	query := r.db.Model(&models.CommissionTemplate{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, page, pageSize)

	var templates []models.CommissionTemplate
	if err := query.Preload("Tiers", func(db *gorm.DB) *gorm.DB {
		return db.Order("level asc")
	}).Order("id desc").Find(&templates).Error; err != nil {
		return nil, 0, err
	}
	return templates, total, nil
}
