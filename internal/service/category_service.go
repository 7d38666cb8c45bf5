package service

import (
	"strings"

	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
)

// CategoryService 商品分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// ListAll 列出全部分类
func (s *CategoryService) ListAll() ([]models.Category, error) {
	return s.repo.ListAll()
}

// GetByID 查询分类
func (s *CategoryService) GetByID(id uint) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// GetBySlug 按标识查询分类
func (s *CategoryService) GetBySlug(slug string) (*models.Category, error) {
	category, err := s.repo.GetBySlug(strings.TrimSpace(slug))
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return category, nil
}

// Create 创建分类
func (s *CategoryService) Create(category *models.Category) error {
	if category == nil || strings.TrimSpace(category.Name) == "" {
		return ErrNotFound
	}
	category.Name = strings.TrimSpace(category.Name)
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	return s.repo.Create(category)
}

// Update 更新分类
func (s *CategoryService) Update(category *models.Category) error {
	if category == nil || category.ID == 0 {
		return ErrNotFound
	}
	existing, err := s.repo.GetByID(category.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	category.Slug = strings.ToLower(strings.TrimSpace(category.Slug))
	return s.repo.Update(category)
}

// Delete 删除分类（仍有商品时拒绝）
func (s *CategoryService) Delete(id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryInUse
	}
	return s.repo.Delete(id)
}
