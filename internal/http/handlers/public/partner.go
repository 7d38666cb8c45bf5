package public

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetPartners 获取营业中的合作门店列表
func (h *Handler) GetPartners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	partners, total, err := h.PartnerService.List(repository.PartnerListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   constants.PartnerStatusActive,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "partner fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, partners, pagination)
}

// GetPartner 获取合作门店详情
func (h *Handler) GetPartner(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || partnerID == 0 {
		respondError(c, response.CodeBadRequest, "partner id invalid", nil)
		return
	}

	partner, err := h.PartnerService.GetActiveByID(uint(partnerID))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "partner not found", nil)
		case errors.Is(err, service.ErrPartnerInactive):
			respondError(c, response.CodeNotFound, "partner not found", nil)
		default:
			respondError(c, response.CodeInternal, "partner fetch failed", err)
		}
		return
	}

	response.Success(c, partner)
}
