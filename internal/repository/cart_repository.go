package repository

import (
	"errors"

	"github.com/grabhealth-next/internal/models"

	"gorm.io/gorm"
)

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByUser(userID uint) ([]models.CartItem, error)
	GetByUserAndProduct(userID, productID uint) (*models.CartItem, error)
	Create(item *models.CartItem) error
	Update(item *models.CartItem) error
	Delete(userID, itemID uint) error
	ClearByUser(userID uint) error
}

// GormCartRepository GORM 购物车仓储
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓储
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// ListByUser 查询用户购物车
func (r *GormCartRepository) ListByUser(userID uint) ([]models.CartItem, error) {
	if userID == 0 {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// GetByUserAndProduct 查询用户购物车中指定商品
func (r *GormCartRepository) GetByUserAndProduct(userID, productID uint) (*models.CartItem, error) {
	if userID == 0 || productID == 0 {
		return nil, nil
	}
	var item models.CartItem
	if err := r.db.Where("user_id = ? AND product_id = ?", userID, productID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// Create 创建购物车项
func (r *GormCartRepository) Create(item *models.CartItem) error {
	return r.db.Create(item).Error
}

// Update 更新购物车项
func (r *GormCartRepository) Update(item *models.CartItem) error {
	return r.db.Save(item).Error
}

// Delete 删除用户的购物车项
func (r *GormCartRepository) Delete(userID, itemID uint) error {
	if userID == 0 || itemID == 0 {
		return nil
	}
	return r.db.Where("user_id = ? AND id = ?", userID, itemID).Delete(&models.CartItem{}).Error
}

// ClearByUser 清空用户购物车
func (r *GormCartRepository) ClearByUser(userID uint) error {
	if userID == 0 {
		return nil
	}
	return r.db.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}
