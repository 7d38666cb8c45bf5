package service

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig 获取站点配置（合并默认值）
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for k, v := range defaults {
		data[k] = v
	}

	setting, err := s.repo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return data, nil
	}

	for k, v := range setting.ValueJSON {
		data[k] = v
	}
	return data, nil
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值（入库前按键归一化）
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, normalizeSettingValueByKey(key, value))
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetSiteCurrency 获取站点币种
func (s *SettingService) GetSiteCurrency() string {
	if s == nil {
		return constants.SiteCurrencyDefault
	}
	value, err := s.GetByKey(constants.SettingKeySiteConfig)
	if err != nil || value == nil {
		return constants.SiteCurrencyDefault
	}
	raw, ok := value[constants.SettingFieldSiteCurrency]
	if !ok {
		return constants.SiteCurrencyDefault
	}
	currency := strings.TrimSpace(parseSettingString(raw))
	if currency == "" {
		return constants.SiteCurrencyDefault
	}
	return strings.ToUpper(currency)
}

func parseSettingString(raw interface{}) string {
	switch v := raw.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return ""
	}
}

func parseSettingBool(raw interface{}) bool {
	switch v := raw.(type) {
	case bool:
		return v
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(v))
		return err == nil && parsed
	case float64:
		return v != 0
	case json.Number:
		parsed, err := v.Float64()
		return err == nil && parsed != 0
	default:
		return false
	}
}

func parseSettingFloat(raw interface{}) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		return v.Float64()
	case string:
		return strconv.ParseFloat(strings.TrimSpace(v), 64)
	default:
		return 0, strconv.ErrSyntax
	}
}

func parseSettingInt(raw interface{}) (int, error) {
	parsed, err := parseSettingFloat(raw)
	if err != nil {
		return 0, err
	}
	return int(parsed), nil
}
