package service

import (
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
)

// normalizeSettingValueByKey 按设置键执行归一化，避免非法值入库。
func normalizeSettingValueByKey(key string, value map[string]interface{}) models.JSON {
	switch key {
	case constants.SettingKeyOrderConfig:
		return normalizeOrderSetting(value)
	case constants.SettingKeySiteConfig:
		return normalizeSiteSetting(value)
	case constants.SettingKeyCommissionConfig:
		setting := commissionSettingFromJSON(models.JSON(value), CommissionDefaultSetting())
		return CommissionSettingToMap(setting)
	default:
		return models.JSON(value)
	}
}

// normalizeOrderSetting 归一化订单设置。
func normalizeOrderSetting(value map[string]interface{}) models.JSON {
	normalized := make(models.JSON, len(value)+1)
	for key, raw := range value {
		normalized[key] = raw
	}

	expireMinutes := 30
	if raw, ok := value[constants.SettingFieldPaymentExpireMinutes]; ok {
		if parsed, err := parseSettingInt(raw); err == nil {
			if parsed > 0 {
				expireMinutes = parsed
			}
		}
	}
	if expireMinutes > 10080 {
		expireMinutes = 10080
	}
	normalized[constants.SettingFieldPaymentExpireMinutes] = expireMinutes
	return normalized
}

// normalizeSiteSetting 归一化站点配置结构。
func normalizeSiteSetting(value map[string]interface{}) models.JSON {
	normalized := make(models.JSON, len(value)+3)
	for key, raw := range value {
		normalized[key] = raw
	}

	normalized["brand"] = normalizeSiteBrand(value["brand"])
	normalized["contact"] = normalizeSiteContact(value["contact"])

	currency := strings.ToUpper(normalizeSettingText(value[constants.SettingFieldSiteCurrency]))
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}
	normalized[constants.SettingFieldSiteCurrency] = currency

	return normalized
}

func normalizeSiteBrand(raw interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"site_name": "",
	}
	brandMap, ok := raw.(map[string]interface{})
	if !ok {
		return result
	}
	result["site_name"] = normalizeSettingText(brandMap["site_name"])
	return result
}

func normalizeSiteContact(raw interface{}) map[string]interface{} {
	result := map[string]interface{}{
		"email":    "",
		"phone":    "",
		"whatsapp": "",
	}
	contactMap, ok := raw.(map[string]interface{})
	if !ok {
		return result
	}
	result["email"] = normalizeSettingText(contactMap["email"])
	result["phone"] = normalizeSettingText(contactMap["phone"])
	result["whatsapp"] = normalizeSettingText(contactMap["whatsapp"])
	return result
}

func normalizeSettingText(raw interface{}) string {
	text, ok := raw.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(text)
}

func toStringAnyMap(value interface{}) map[string]interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		return v
	case models.JSON:
		result := make(map[string]interface{}, len(v))
		for key, item := range v {
			result[key] = item
		}
		return result
	default:
		return nil
	}
}

func readString(source map[string]interface{}, key, fallback string) string {
	value, ok := source[key]
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return fallback
	}
}

func readBool(source map[string]interface{}, key string, fallback bool) bool {
	value, ok := source[key]
	if !ok {
		return fallback
	}
	switch v := value.(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		default:
			return fallback
		}
	default:
		return fallback
	}
}

func readInt(source map[string]interface{}, key string, fallback int) int {
	value, ok := source[key]
	if !ok {
		return fallback
	}
	parsed, err := parseSettingInt(value)
	if err != nil {
		return fallback
	}
	return parsed
}
