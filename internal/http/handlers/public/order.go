package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateOrderRequest 下单请求
type CreateOrderRequest struct {
	Items []service.CreateOrderItem `json:"items" binding:"required"`
}

// CreateOrder 创建订单
func (h *Handler) CreateOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CreateOrder(service.CreateOrderInput{
		UserID:   uid,
		Items:    req.Items,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

// CheckoutCart 购物车结算下单
func (h *Handler) CheckoutCart(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	order, err := h.OrderService.CheckoutCart(uid, c.ClientIP())
	if err != nil {
		respondOrderCreateError(c, err)
		return
	}

	response.Success(c, order)
}

func respondOrderCreateError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyOrder):
		respondError(c, response.CodeBadRequest, "order has no items", nil)
	case errors.Is(err, service.ErrQuantityInvalid):
		respondError(c, response.CodeBadRequest, "quantity must be positive", nil)
	case errors.Is(err, service.ErrProductInactive):
		respondError(c, response.CodeBadRequest, "product is not available", nil)
	case errors.Is(err, service.ErrNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	default:
		respondError(c, response.CodeInternal, "order create failed", err)
	}
}

// ListOrders 获取用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, orders, pagination)
}

// GetOrder 获取用户订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderByUser(uint(orderID), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号获取用户订单详情
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		respondError(c, response.CodeBadRequest, "order no invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderByUserOrderNo(orderNo, uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.Success(c, order)
}

// CancelOrder 用户取消待支付订单
func (h *Handler) CancelOrder(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, cancelErr := h.OrderService.CancelOrder(uint(orderID), uid)
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(cancelErr, service.ErrOrderNotCancellable):
			respondError(c, response.CodeBadRequest, "order cannot be cancelled", nil)
		default:
			respondError(c, response.CodeInternal, "order cancel failed", cancelErr)
		}
		return
	}

	response.Success(c, order)
}
