package public

import (
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetCommissionSummary 获取本人佣金汇总
func (h *Handler) GetCommissionSummary(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	summary, err := h.CommissionService.GetUserSummary(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "commission summary fetch failed", err)
		return
	}

	response.Success(c, summary)
}

// ListCommissions 获取本人佣金明细
func (h *Handler) ListCommissions(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)
	status := strings.TrimSpace(c.Query("status"))

	commissions, total, err := h.CommissionService.ListUserCommissions(uid, page, pageSize, status)
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
