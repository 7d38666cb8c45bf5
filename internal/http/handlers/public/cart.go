package public

import (
	"errors"
	"strconv"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 添加购物车项请求
type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpdateCartItemRequest 更新购物车项请求
type UpdateCartItemRequest struct {
	Quantity int `json:"quantity"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.CartService.ListItems(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}

	response.Success(c, gin.H{"items": items})
}

// AddCartItem 添加购物车项，已存在时叠加数量
func (h *Handler) AddCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.CartService.AddItem(uid, req.ProductID, req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuantityInvalid):
			respondError(c, response.CodeBadRequest, "quantity must be positive", nil)
		case errors.Is(err, service.ErrProductInactive):
			respondError(c, response.CodeBadRequest, "product is not available", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}

	response.Success(c, item)
}

// UpdateCartItem 更新购物车项数量，数量为 0 时移除
func (h *Handler) UpdateCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "cart item id invalid", nil)
		return
	}
	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.CartService.UpdateQuantity(uid, uint(itemID), req.Quantity)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrQuantityInvalid):
			respondError(c, response.CodeBadRequest, "quantity must be positive", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "cart item not found", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	if item == nil {
		response.Success(c, gin.H{"removed": true})
		return
	}

	response.Success(c, item)
}

// DeleteCartItem 删除购物车项
func (h *Handler) DeleteCartItem(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	itemID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || itemID == 0 {
		respondError(c, response.CodeBadRequest, "cart item id invalid", nil)
		return
	}

	if err := h.CartService.RemoveItem(uid, uint(itemID)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "cart item not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	if err := h.CartService.Clear(uid); err != nil {
		respondError(c, response.CodeInternal, "cart update failed", err)
		return
	}

	response.Success(c, gin.H{"cleared": true})
}
