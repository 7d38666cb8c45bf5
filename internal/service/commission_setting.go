package service

import (
	"fmt"
	"math"
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
)

const (
	commissionRateMin     = 0
	commissionRateMax     = 100
	commissionMaxDepthMin = 1
	commissionMaxDepthMax = 10
)

// CommissionSetting 佣金结算配置
type CommissionSetting struct {
	Enabled      bool               `json:"enabled"`
	MaxDepth     int                `json:"max_depth"`
	DefaultRates map[string]float64 `json:"default_rates"` // 角色 -> 默认费率（百分比）
}

// CommissionDefaultSetting 默认佣金结算配置
func CommissionDefaultSetting() CommissionSetting {
	return NormalizeCommissionSetting(CommissionSetting{
		Enabled:  true,
		MaxDepth: 5,
		DefaultRates: map[string]float64{
			constants.RoleCustomer: 0,
			constants.RoleSales:    10,
			constants.RoleLeader:   5,
			constants.RoleManager:  3,
			constants.RoleCompany:  1,
		},
	})
}

// NormalizeCommissionSetting 归一化佣金结算配置
func NormalizeCommissionSetting(setting CommissionSetting) CommissionSetting {
	if setting.MaxDepth < commissionMaxDepthMin {
		setting.MaxDepth = commissionMaxDepthMin
	}
	if setting.MaxDepth > commissionMaxDepthMax {
		setting.MaxDepth = commissionMaxDepthMax
	}

	normalized := make(map[string]float64, len(setting.DefaultRates))
	for role, rate := range setting.DefaultRates {
		key := strings.ToLower(strings.TrimSpace(role))
		if key == "" {
			continue
		}
		rounded := roundCommissionRate(rate)
		if rounded < commissionRateMin {
			rounded = commissionRateMin
		}
		if rounded > commissionRateMax {
			rounded = commissionRateMax
		}
		normalized[key] = rounded
	}
	setting.DefaultRates = normalized
	return setting
}

// ValidateCommissionSetting 校验佣金结算配置
func ValidateCommissionSetting(setting CommissionSetting) error {
	if setting.MaxDepth < commissionMaxDepthMin || setting.MaxDepth > commissionMaxDepthMax {
		return fmt.Errorf("%w: max_depth must be between %d and %d",
			ErrCommissionConfigInvalid, commissionMaxDepthMin, commissionMaxDepthMax)
	}
	for role, rate := range setting.DefaultRates {
		if rate < commissionRateMin || rate > commissionRateMax {
			return fmt.Errorf("%w: rate for role %q must be between 0 and 100", ErrCommissionConfigInvalid, role)
		}
	}
	return nil
}

// CommissionSettingToMap 将佣金结算配置转换为 settings 存储结构
func CommissionSettingToMap(setting CommissionSetting) map[string]interface{} {
	normalized := NormalizeCommissionSetting(setting)
	rates := make(map[string]interface{}, len(normalized.DefaultRates))
	for role, rate := range normalized.DefaultRates {
		rates[role] = rate
	}
	return map[string]interface{}{
		"enabled":       normalized.Enabled,
		"max_depth":     normalized.MaxDepth,
		"default_rates": rates,
	}
}

func commissionSettingFromJSON(raw models.JSON, fallback CommissionSetting) CommissionSetting {
	result := fallback

	if enabledRaw, ok := raw["enabled"]; ok {
		result.Enabled = parseSettingBool(enabledRaw)
	}
	if depthRaw, ok := raw["max_depth"]; ok {
		if parsed, err := parseSettingInt(depthRaw); err == nil {
			result.MaxDepth = parsed
		}
	}
	if ratesRaw, ok := raw["default_rates"]; ok {
		if rateMap, ok := ratesRaw.(map[string]interface{}); ok {
			rates := make(map[string]float64, len(rateMap))
			for role, rateRaw := range rateMap {
				if parsed, err := parseSettingFloat(rateRaw); err == nil {
					rates[strings.ToLower(strings.TrimSpace(role))] = parsed
				}
			}
			result.DefaultRates = rates
		}
	}
	return NormalizeCommissionSetting(result)
}

// GetCommissionSetting 获取佣金结算配置（合并默认值）
func (s *SettingService) GetCommissionSetting() (CommissionSetting, error) {
	fallback := CommissionDefaultSetting()
	if s == nil {
		return fallback, nil
	}
	raw, err := s.GetByKey(constants.SettingKeyCommissionConfig)
	if err != nil {
		return fallback, err
	}
	if raw == nil {
		return fallback, nil
	}
	return commissionSettingFromJSON(raw, fallback), nil
}

// UpdateCommissionSetting 更新佣金结算配置
func (s *SettingService) UpdateCommissionSetting(setting CommissionSetting) (CommissionSetting, error) {
	normalized := NormalizeCommissionSetting(setting)
	if err := ValidateCommissionSetting(normalized); err != nil {
		return normalized, err
	}
	if _, err := s.Update(constants.SettingKeyCommissionConfig, CommissionSettingToMap(normalized)); err != nil {
		return normalized, err
	}
	return normalized, nil
}

func roundCommissionRate(value float64) float64 {
	return math.Round(value*100) / 100
}
