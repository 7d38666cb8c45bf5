package public

import (
	"errors"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// GetMembershipTiers 获取会员等级列表
func (h *Handler) GetMembershipTiers(c *gin.Context) {
	tiers, err := h.MembershipService.ListTiers()
	if err != nil {
		respondError(c, response.CodeInternal, "membership tier fetch failed", err)
		return
	}

	response.Success(c, tiers)
}

// GetMembershipStatus 获取本人会员等级状态
func (h *Handler) GetMembershipStatus(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	status, err := h.MembershipService.GetStatusForUser(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "user not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "membership status fetch failed", err)
		return
	}

	response.Success(c, status)
}
