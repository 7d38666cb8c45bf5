package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// PartnerRequest 合作门店创建/更新请求
type PartnerRequest struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Status  string `json:"status"`
	OwnerID *uint  `json:"owner_id"`
}

func (r PartnerRequest) toModel(id uint) models.Partner {
	status := strings.TrimSpace(r.Status)
	if status == "" {
		status = constants.PartnerStatusActive
	}
	return models.Partner{
		ID:      id,
		Name:    strings.TrimSpace(r.Name),
		Email:   strings.TrimSpace(r.Email),
		Phone:   strings.TrimSpace(r.Phone),
		Address: strings.TrimSpace(r.Address),
		Status:  status,
		OwnerID: r.OwnerID,
	}
}

// ListPartners 获取合作门店列表
func (h *Handler) ListPartners(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	partners, total, err := h.PartnerService.List(repository.PartnerListFilter{
		Page:     page,
		PageSize: pageSize,
		Search:   strings.TrimSpace(c.Query("search")),
		Status:   strings.TrimSpace(c.Query("status")),
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

	partner, err := h.PartnerService.GetByID(uint(partnerID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "partner not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "partner fetch failed", err)
		return
	}

	response.Success(c, partner)
}

// CreatePartner 创建合作门店，关联负责人时自动升级其角色
func (h *Handler) CreatePartner(c *gin.Context) {
	var req PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	partner := req.toModel(0)
	if err := h.PartnerService.Create(&partner); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "owner not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "partner save failed", err)
		return
	}

	response.Success(c, partner)
}

// UpdatePartner 更新合作门店
func (h *Handler) UpdatePartner(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || partnerID == 0 {
		respondError(c, response.CodeBadRequest, "partner id invalid", nil)
		return
	}
	var req PartnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	partner := req.toModel(uint(partnerID))
	if err := h.PartnerService.Update(&partner); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "partner not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "partner save failed", err)
		return
	}

	response.Success(c, partner)
}

// DeletePartner 删除合作门店
func (h *Handler) DeletePartner(c *gin.Context) {
	partnerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || partnerID == 0 {
		respondError(c, response.CodeBadRequest, "partner id invalid", nil)
		return
	}

	if err := h.PartnerService.Delete(uint(partnerID)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "partner not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "partner delete failed", err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
