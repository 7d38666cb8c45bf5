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

// ListCommissions 获取佣金记录列表
func (h *Handler) ListCommissions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)
	level, _ := strconv.Atoi(c.Query("level"))

	commissions, total, err := h.CommissionService.ListAdminCommissions(repository.CommissionListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		OrderID:  uint(orderID),
		OrderNo:  strings.TrimSpace(c.Query("order_no")),
		Status:   strings.TrimSpace(c.Query("status")),
		Level:    level,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "commission fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, commissions, pagination)
}

// CalculateCommissions 手动触发订单佣金结算
func (h *Handler) CalculateCommissions(c *gin.Context) {
	orderID, err := strconv.ParseUint(c.Param("order_id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "order id invalid", nil)
		return
	}

	created, calcErr := h.CommissionService.CalculateForOrder(uint(orderID))
	if calcErr != nil {
		switch {
		case errors.Is(calcErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(calcErr, service.ErrOrderStatusInvalid):
			respondError(c, response.CodeBadRequest, "order not eligible for settlement", nil)
		default:
			respondError(c, response.CodeInternal, "commission settle failed", calcErr)
		}
		return
	}

	response.Success(c, gin.H{"created": created})
}

// GetUserCommissionSummary 获取指定用户的佣金汇总
func (h *Handler) GetUserCommissionSummary(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || userID == 0 {
		respondError(c, response.CodeBadRequest, "user id invalid", nil)
		return
	}

	summary, sumErr := h.CommissionService.GetUserSummary(uint(userID))
	if sumErr != nil {
		respondError(c, response.CodeInternal, "commission summary fetch failed", sumErr)
		return
	}

	response.Success(c, summary)
}

// CommissionBatchRequest 批量佣金操作请求
type CommissionBatchRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

// ApproveCommissions 批量审批佣金（仅 pending 可审批）
func (h *Handler) ApproveCommissions(c *gin.Context) {
	var req CommissionBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	approved, err := h.CommissionService.Approve(req.IDs)
	if err != nil {
		if errors.Is(err, service.ErrCommissionStatusInvalid) {
			respondError(c, response.CodeBadRequest, "commission status transition not allowed", nil)
			return
		}
		respondError(c, response.CodeInternal, "commission approve failed", err)
		return
	}

	response.Success(c, gin.H{"approved": approved})
}

// MarkCommissionsPaid 批量标记佣金已发放
func (h *Handler) MarkCommissionsPaid(c *gin.Context) {
	var req CommissionBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	paid, err := h.CommissionService.MarkPaid(req.IDs)
	if err != nil {
		if errors.Is(err, service.ErrCommissionStatusInvalid) {
			respondError(c, response.CodeBadRequest, "commission status transition not allowed", nil)
			return
		}
		respondError(c, response.CodeInternal, "commission mark paid failed", err)
		return
	}

	response.Success(c, gin.H{"paid": paid})
}
