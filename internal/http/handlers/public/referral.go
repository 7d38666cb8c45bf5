package public

import (
	"errors"
	"strings"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetReferralCode 获取本人推荐码，未生成时惰性生成
func (h *Handler) GetReferralCode(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	code, err := h.ReferralService.EnsureReferralCode(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "referral code fetch failed", err)
		return
	}

	response.Success(c, gin.H{"referral_code": code})
}

// ApplyReferralCodeRequest 补绑推荐关系请求
type ApplyReferralCodeRequest struct {
	ReferralCode string `json:"referral_code" binding:"required"`
}

// ApplyReferralCode 注册后补绑上级
func (h *Handler) ApplyReferralCode(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req ApplyReferralCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.ReferralService.AttachReferral(uid, strings.TrimSpace(req.ReferralCode)); err != nil {
		switch {
		case errors.Is(err, service.ErrReferralCodeInvalid):
			respondError(c, response.CodeBadRequest, "referral code invalid", nil)
		case errors.Is(err, service.ErrSelfReferral):
			respondError(c, response.CodeBadRequest, "cannot refer yourself", nil)
		case errors.Is(err, service.ErrAlreadyReferred):
			respondError(c, response.CodeBadRequest, "user already has an upline", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "referral attach failed", err)
		}
		return
	}

	response.Success(c, gin.H{"attached": true})
}

// GetUpline 获取推荐上级链（由近及远）
func (h *Handler) GetUpline(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	entries, err := h.ReferralService.GetUpline(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "upline fetch failed", err)
		return
	}

	response.Success(c, gin.H{"upline": entries})
}

// GetDownline 获取推荐下级网络（按层级排序）
func (h *Handler) GetDownline(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	entries, err := h.ReferralService.GetDownline(uid)
	if err != nil {
		respondError(c, response.CodeInternal, "downline fetch failed", err)
		return
	}

	response.Success(c, gin.H{"downline": entries})
}
