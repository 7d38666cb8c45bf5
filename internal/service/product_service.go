package service

import (
	"strings"

	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
)

// ProductService 商品业务服务
type ProductService struct {
	repo         repository.ProductRepository
	categoryRepo repository.CategoryRepository
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, categoryRepo repository.CategoryRepository) *ProductService {
	return &ProductService{repo: repo, categoryRepo: categoryRepo}
}

// List 商品列表
func (s *ProductService) List(filter repository.ProductListFilter) ([]models.Product, int64, error) {
	return s.repo.List(filter)
}

// GetByID 查询商品
func (s *ProductService) GetByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// GetPublicByID 前台查询商品（仅上架商品可见）
func (s *ProductService) GetPublicByID(id uint) (*models.Product, error) {
	product, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if !product.IsActive {
		return nil, ErrNotFound
	}
	return product, nil
}

// GetBySlug 按标识查询商品
func (s *ProductService) GetBySlug(slug string) (*models.Product, error) {
	product, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(product *models.Product) error {
	if product == nil || strings.TrimSpace(product.Name) == "" {
		return ErrNotFound
	}
	if err := s.validateProduct(product); err != nil {
		return err
	}
	return s.repo.Create(product)
}

// Update 更新商品
func (s *ProductService) Update(product *models.Product) error {
	if product == nil || product.ID == 0 {
		return ErrNotFound
	}
	existing, err := s.repo.GetByID(product.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if err := s.validateProduct(product); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// Delete 删除商品
func (s *ProductService) Delete(id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func (s *ProductService) validateProduct(product *models.Product) error {
	product.Name = strings.TrimSpace(product.Name)
	product.Slug = strings.ToLower(strings.TrimSpace(product.Slug))
	if product.PriceAmount.Decimal.LessThan(decimal.Zero) {
		return ErrProductPriceInvalid
	}
	if product.PointValue < 0 {
		return ErrProductPriceInvalid
	}
	if product.CategoryID != 0 && s.categoryRepo != nil {
		category, err := s.categoryRepo.GetByID(product.CategoryID)
		if err != nil {
			return err
		}
		if category == nil {
			return ErrNotFound
		}
	}
	return nil
}
