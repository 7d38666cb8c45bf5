package admin

import (
	"errors"
	"strconv"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// ListCommissionTemplates 获取佣金模板列表
func (h *Handler) ListCommissionTemplates(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	templates, total, err := h.CommissionTemplateService.List(page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "commission template fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, templates, pagination)
}

// GetCommissionTemplate 获取佣金模板详情
func (h *Handler) GetCommissionTemplate(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || templateID == 0 {
		respondError(c, response.CodeBadRequest, "template id invalid", nil)
		return
	}

	template, err := h.CommissionTemplateService.GetByID(uint(templateID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "commission template not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "commission template fetch failed", err)
		return
	}

	response.Success(c, template)
}

// CreateCommissionTemplate 创建佣金模板（每商品一个）
func (h *Handler) CreateCommissionTemplate(c *gin.Context) {
	var req service.CommissionTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	template, err := h.CommissionTemplateService.Create(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCommissionTemplateInvalid):
			respondError(c, response.CodeBadRequest, "commission template invalid", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "commission template save failed", err)
		}
		return
	}

	response.Success(c, template)
}

// UpdateCommissionTemplate 更新佣金模板及层级费率
func (h *Handler) UpdateCommissionTemplate(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || templateID == 0 {
		respondError(c, response.CodeBadRequest, "template id invalid", nil)
		return
	}
	var req service.CommissionTemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	template, updateErr := h.CommissionTemplateService.Update(uint(templateID), req)
	if updateErr != nil {
		switch {
		case errors.Is(updateErr, service.ErrCommissionTemplateInvalid):
			respondError(c, response.CodeBadRequest, "commission template invalid", nil)
		case errors.Is(updateErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "commission template not found", nil)
		default:
			respondError(c, response.CodeInternal, "commission template save failed", updateErr)
		}
		return
	}

	response.Success(c, template)
}

// DeleteCommissionTemplate 删除佣金模板
func (h *Handler) DeleteCommissionTemplate(c *gin.Context) {
	templateID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || templateID == 0 {
		respondError(c, response.CodeBadRequest, "template id invalid", nil)
		return
	}

	if err := h.CommissionTemplateService.Delete(uint(templateID)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "commission template not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "commission template delete failed", err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
