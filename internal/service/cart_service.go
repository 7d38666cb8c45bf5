package service

import (
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
)

// CartService 购物车业务服务
type CartService struct {
	repo        repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(repo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{repo: repo, productRepo: productRepo}
}

// ListItems 查询用户购物车
func (s *CartService) ListItems(userID uint) ([]models.CartItem, error) {
	if userID == 0 {
		return nil, ErrNotFound
	}
	return s.repo.ListByUser(userID)
}

// AddItem 添加商品到购物车，已存在时累加数量
func (s *CartService) AddItem(userID, productID uint, quantity int) (*models.CartItem, error) {
	if userID == 0 || productID == 0 {
		return nil, ErrNotFound
	}
	if quantity <= 0 {
		return nil, ErrQuantityInvalid
	}

	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	if !product.IsActive {
		return nil, ErrProductInactive
	}

	existing, err := s.repo.GetByUserAndProduct(userID, productID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		existing.Quantity += quantity
		if err := s.repo.Update(existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	item := &models.CartItem{
		UserID:    userID,
		ProductID: productID,
		Quantity:  quantity,
	}
	if err := s.repo.Create(item); err != nil {
		if isUniqueViolation(err) {
			// 并发添加同一商品，重新累加
			return s.AddItem(userID, productID, quantity)
		}
		return nil, err
	}
	return item, nil
}

// UpdateQuantity 调整购物车商品数量，0 表示移除
func (s *CartService) UpdateQuantity(userID, itemID uint, quantity int) (*models.CartItem, error) {
	if userID == 0 || itemID == 0 {
		return nil, ErrNotFound
	}
	if quantity < 0 {
		return nil, ErrQuantityInvalid
	}

	items, err := s.repo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	var target *models.CartItem
	for i := range items {
		if items[i].ID == itemID {
			target = &items[i]
			break
		}
	}
	if target == nil {
		return nil, ErrNotFound
	}

	if quantity == 0 {
		if err := s.repo.Delete(userID, itemID); err != nil {
			return nil, err
		}
		return nil, nil
	}

	target.Quantity = quantity
	if err := s.repo.Update(target); err != nil {
		return nil, err
	}
	return target, nil
}

// RemoveItem 移除购物车商品
func (s *CartService) RemoveItem(userID, itemID uint) error {
	if userID == 0 || itemID == 0 {
		return ErrNotFound
	}
	return s.repo.Delete(userID, itemID)
}

// Clear 清空购物车
func (s *CartService) Clear(userID uint) error {
	if userID == 0 {
		return ErrNotFound
	}
	return s.repo.ClearByUser(userID)
}
