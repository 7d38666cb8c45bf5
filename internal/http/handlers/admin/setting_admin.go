package admin

import (
	"errors"
	"strings"

	"github.com/grabhealth-next/internal/cache"
	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

const publicConfigCacheKey = "public:config"

var adminSettingKeys = map[string]bool{
	constants.SettingKeySiteConfig:       true,
	constants.SettingKeyOrderConfig:      true,
	constants.SettingKeyCommissionConfig: true,
}

// GetSetting 获取指定设置项
func (h *Handler) GetSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if !adminSettingKeys[key] {
		respondError(c, response.CodeBadRequest, "setting key invalid", nil)
		return
	}

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Success(c, gin.H{})
			return
		}
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}

	response.Success(c, value)
}

// UpdateSetting 更新指定设置项（入库前按键归一化）
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if !adminSettingKeys[key] {
		respondError(c, response.CodeBadRequest, "setting key invalid", nil)
		return
	}

	var req map[string]interface{}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	value, err := h.SettingService.Update(key, req)
	if err != nil {
		if errors.Is(err, service.ErrCommissionConfigInvalid) {
			respondError(c, response.CodeBadRequest, "commission config invalid", nil)
			return
		}
		respondError(c, response.CodeInternal, "settings save failed", err)
		return
	}

	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)
	requestLog(c).Infow("admin_setting_updated", "key", key)
	response.Success(c, value)
}

// GetCaptchaSettings 获取验证码配置
func (h *Handler) GetCaptchaSettings(c *gin.Context) {
	setting, err := h.SettingService.GetCaptchaSetting(h.Config.Captcha)
	if err != nil {
		respondError(c, response.CodeInternal, "settings fetch failed", err)
		return
	}
	response.Success(c, setting)
}

// UpdateCaptchaSettings 更新验证码配置
func (h *Handler) UpdateCaptchaSettings(c *gin.Context) {
	var req service.CaptchaSetting
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	setting, err := h.SettingService.UpdateCaptchaSetting(req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCaptchaConfigInvalid):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "settings save failed", err)
		}
		return
	}

	if h.CaptchaService != nil {
		h.CaptchaService.InvalidateCache()
	}
	_ = cache.Del(c.Request.Context(), publicConfigCacheKey)

	response.Success(c, setting)
}
