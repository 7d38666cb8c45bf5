package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	CategoryID        uint               `json:"category_id" binding:"required"`
	Slug              string             `json:"slug" binding:"required"`
	Name              string             `json:"name" binding:"required"`
	Description       string             `json:"description"`
	PriceAmount       models.Money       `json:"price_amount"`
	PointValue        int                `json:"point_value"`
	Images            models.StringArray `json:"images"`
	Tags              models.StringArray `json:"tags"`
	CommissionEnabled *bool              `json:"commission_enabled"`
	IsActive          *bool              `json:"is_active"`
	SortOrder         int                `json:"sort_order"`
}

func (r ProductRequest) toModel(id uint) models.Product {
	product := models.Product{
		ID:                id,
		CategoryID:        r.CategoryID,
		Slug:              strings.ToLower(strings.TrimSpace(r.Slug)),
		Name:              strings.TrimSpace(r.Name),
		Description:       strings.TrimSpace(r.Description),
		PriceAmount:       r.PriceAmount,
		PointValue:        r.PointValue,
		Images:            r.Images,
		Tags:              r.Tags,
		CommissionEnabled: true,
		IsActive:          true,
		SortOrder:         r.SortOrder,
	}
	if r.CommissionEnabled != nil {
		product.CommissionEnabled = *r.CommissionEnabled
	}
	if r.IsActive != nil {
		product.IsActive = *r.IsActive
	}
	return product
}

// ListProducts 获取商品列表（含下架商品）
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	products, total, err := h.ProductService.List(repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   c.Query("category_id"),
		Search:       strings.TrimSpace(c.Query("search")),
		WithCategory: true,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, products, pagination)
}

// GetProduct 获取商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	product, err := h.ProductService.GetByID(uint(productID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product := req.toModel(0)
	if err := h.ProductService.Create(&product); err != nil {
		respondProductSaveError(c, err)
		return
	}

	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product := req.toModel(uint(productID))
	if err := h.ProductService.Update(&product); err != nil {
		respondProductSaveError(c, err)
		return
	}

	response.Success(c, product)
}

func respondProductSaveError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductPriceInvalid):
		respondError(c, response.CodeBadRequest, "product price or point value invalid", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "product or category not found", nil)
	default:
		respondError(c, response.CodeInternal, "product save failed", err)
	}
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	productID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "product id invalid", nil)
		return
	}

	if err := h.ProductService.Delete(uint(productID)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "product not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "product delete failed", err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
