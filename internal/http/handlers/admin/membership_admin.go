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

// MembershipTierRequest 会员等级创建/更新请求
type MembershipTierRequest struct {
	Name            string       `json:"name" binding:"required"`
	MinTotalSpend   models.Money `json:"min_total_spend"`
	DiscountPercent models.Money `json:"discount_percent"`
	Rank            int          `json:"rank"`
}

// ListMembershipTiers 获取会员等级列表
func (h *Handler) ListMembershipTiers(c *gin.Context) {
	tiers, err := h.MembershipService.ListTiers()
	if err != nil {
		respondError(c, response.CodeInternal, "membership tier fetch failed", err)
		return
	}

	response.Success(c, tiers)
}

// CreateMembershipTier 创建会员等级
func (h *Handler) CreateMembershipTier(c *gin.Context) {
	var req MembershipTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	tier := models.MembershipTier{
		Name:            strings.TrimSpace(req.Name),
		MinTotalSpend:   req.MinTotalSpend,
		DiscountPercent: req.DiscountPercent,
		Rank:            req.Rank,
	}
	if err := h.MembershipService.CreateTier(&tier); err != nil {
		respondError(c, response.CodeInternal, "membership tier save failed", err)
		return
	}

	response.Success(c, tier)
}

// UpdateMembershipTier 更新会员等级
func (h *Handler) UpdateMembershipTier(c *gin.Context) {
	tierID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tierID == 0 {
		respondError(c, response.CodeBadRequest, "tier id invalid", nil)
		return
	}
	var req MembershipTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	tier := models.MembershipTier{
		ID:              uint(tierID),
		Name:            strings.TrimSpace(req.Name),
		MinTotalSpend:   req.MinTotalSpend,
		DiscountPercent: req.DiscountPercent,
		Rank:            req.Rank,
	}
	if err := h.MembershipService.UpdateTier(&tier); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "membership tier not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "membership tier save failed", err)
		return
	}

	response.Success(c, tier)
}

// DeleteMembershipTier 删除会员等级
func (h *Handler) DeleteMembershipTier(c *gin.Context) {
	tierID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tierID == 0 {
		respondError(c, response.CodeBadRequest, "tier id invalid", nil)
		return
	}

	if err := h.MembershipService.DeleteTier(uint(tierID)); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "membership tier not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "membership tier delete failed", err)
		return
	}

	response.Success(c, gin.H{"deleted": true})
}
