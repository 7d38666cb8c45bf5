package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Slug        string `json:"slug" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	SortOrder   int    `json:"sort_order"`
}

// ListCategories 获取分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.ListAll()
	if err != nil {
		respondError(c, response.CodeInternal, "category fetch failed", err)
		return
	}

	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	category := models.Category{
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		SortOrder:   req.SortOrder,
	}
	if err := h.CategoryService.Create(&category); err != nil {
		respondError(c, response.CodeInternal, "category save failed", err)
		return
	}

	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || categoryID == 0 {
		respondError(c, response.CodeBadRequest, "category id invalid", nil)
		return
	}
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	category := models.Category{
		ID:          uint(categoryID),
		Slug:        strings.ToLower(strings.TrimSpace(req.Slug)),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Icon:        strings.TrimSpace(req.Icon),
		SortOrder:   req.SortOrder,
	}
	if err := h.CategoryService.Update(&category); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "category not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "category save failed", err)
		return
	}

	response.Success(c, category)
}

// DeleteCategory 删除分类（分类下仍有商品时拒绝）
func (h *Handler) DeleteCategory(c *gin.Context) {
	categoryID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || categoryID == 0 {
		respondError(c, response.CodeBadRequest, "category id invalid", nil)
		return
	}

	if err := h.CategoryService.Delete(uint(categoryID)); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryInUse):
			respondError(c, response.CodeBadRequest, "category still has products", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		default:
			respondError(c, response.CodeInternal, "category delete failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
