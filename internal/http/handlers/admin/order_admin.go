package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListOrders 获取订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	orders, total, err := h.OrderService.ListOrdersForAdmin(repository.OrderListFilter{
		Page:          page,
		PageSize:      pageSize,
		UserID:        uint(userID),
		Status:        strings.TrimSpace(c.Query("status")),
		PaymentStatus: strings.TrimSpace(c.Query("payment_status")),
		OrderNo:       strings.TrimSpace(c.Query("order_no")),
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

// GetOrder 获取订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	order, err := h.OrderService.GetOrderForAdmin(uint(orderID))
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

// UpdateOrderStatusRequest 更新订单状态请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus 更新订单状态
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}
	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, updateErr := h.OrderService.UpdateOrderStatus(uint(orderID), strings.TrimSpace(req.Status))
	if updateErr != nil {
		switch {
		case errors.Is(updateErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(updateErr, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "order status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", updateErr)
		}
		return
	}

	response.Success(c, order)
}

// UpdateOrderPaymentStatusRequest 更新支付状态请求
type UpdateOrderPaymentStatusRequest struct {
	PaymentStatus string `json:"payment_status" binding:"required"`
}

// UpdateOrderPaymentStatus 更新订单支付状态
func (h *Handler) UpdateOrderPaymentStatus(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}
	var req UpdateOrderPaymentStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, updateErr := h.OrderService.UpdatePaymentStatus(uint(orderID), strings.TrimSpace(req.PaymentStatus))
	if updateErr != nil {
		switch {
		case errors.Is(updateErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(updateErr, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "payment status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "order update failed", updateErr)
		}
		return
	}

	response.Success(c, order)
}
