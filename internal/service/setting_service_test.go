package service

import (
	"testing"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
)

type mockSettingRepo struct {
	store map[string]models.JSON
}

func newMockSettingRepo() *mockSettingRepo {
	return &mockSettingRepo{store: map[string]models.JSON{}}
}

func (m *mockSettingRepo) GetByKey(key string) (*models.Setting, error) {
	value, ok := m.store[key]
	if !ok {
		return nil, nil
	}
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func (m *mockSettingRepo) Upsert(key string, value models.JSON) (*models.Setting, error) {
	m.store[key] = value
	return &models.Setting{Key: key, ValueJSON: value}, nil
}

func TestUpdateOrderSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeyOrderConfig, map[string]interface{}{
		constants.SettingFieldPaymentExpireMinutes: "20000",
		"extra": "keep",
	})
	if err != nil {
		t.Fatalf("update order config failed: %v", err)
	}

	minutes, err := parseSettingInt(result[constants.SettingFieldPaymentExpireMinutes])
	if err != nil {
		t.Fatalf("parse payment_expire_minutes failed: %v", err)
	}
	if minutes != 10080 {
		t.Fatalf("payment_expire_minutes want 10080 got %d", minutes)
	}
	if result["extra"] != "keep" {
		t.Fatalf("unexpected extra field: %v", result["extra"])
	}
}

func TestUpdateSiteSettingNormalized(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	result, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		"brand": map[string]interface{}{
			"site_name": "  GrabHealth  ",
		},
		"contact": map[string]interface{}{
			"email":    "  hello@grabhealth.local  ",
			"whatsapp": 123,
		},
		constants.SettingFieldSiteCurrency: " sgd ",
	})
	if err != nil {
		t.Fatalf("update site config failed: %v", err)
	}

	brand, ok := result["brand"].(map[string]interface{})
	if !ok {
		t.Fatalf("brand should be a map, got %T", result["brand"])
	}
	if brand["site_name"] != "GrabHealth" {
		t.Fatalf("site_name should be trimmed, got %v", brand["site_name"])
	}

	contact, ok := result["contact"].(map[string]interface{})
	if !ok {
		t.Fatalf("contact should be a map, got %T", result["contact"])
	}
	if contact["email"] != "hello@grabhealth.local" {
		t.Fatalf("contact email should be trimmed, got %v", contact["email"])
	}
	if contact["whatsapp"] != "" {
		t.Fatalf("non-string contact field should reset, got %v", contact["whatsapp"])
	}

	if result[constants.SettingFieldSiteCurrency] != "SGD" {
		t.Fatalf("currency should be uppercased, got %v", result[constants.SettingFieldSiteCurrency])
	}
}

func TestGetSiteCurrencyFallsBackToDefault(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	if got := svc.GetSiteCurrency(); got != constants.SiteCurrencyDefault {
		t.Fatalf("empty store currency want %s got %s", constants.SiteCurrencyDefault, got)
	}

	if _, err := svc.Update(constants.SettingKeySiteConfig, map[string]interface{}{
		constants.SettingFieldSiteCurrency: "myr",
	}); err != nil {
		t.Fatalf("update site config failed: %v", err)
	}
	if got := svc.GetSiteCurrency(); got != "MYR" {
		t.Fatalf("currency want MYR got %s", got)
	}
}

func TestGetCommissionSettingDefaults(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	setting, err := svc.GetCommissionSetting()
	if err != nil {
		t.Fatalf("get commission setting failed: %v", err)
	}
	if !setting.Enabled {
		t.Fatalf("commission should default to enabled")
	}
	if setting.MaxDepth != 5 {
		t.Fatalf("max depth want 5 got %d", setting.MaxDepth)
	}
	if setting.DefaultRates[constants.RoleSales] != 10 {
		t.Fatalf("sales rate want 10 got %v", setting.DefaultRates[constants.RoleSales])
	}
}

func TestUpdateCommissionSettingNormalizesDepth(t *testing.T) {
	repo := newMockSettingRepo()
	svc := NewSettingService(repo)

	updated, err := svc.UpdateCommissionSetting(CommissionSetting{
		Enabled:  true,
		MaxDepth: 99,
		DefaultRates: map[string]float64{
			" Sales ": 12.5,
			"leader":  150,
		},
	})
	if err != nil {
		t.Fatalf("update commission setting failed: %v", err)
	}
	if updated.MaxDepth != 10 {
		t.Fatalf("max depth should clamp to 10, got %d", updated.MaxDepth)
	}
	if updated.DefaultRates[constants.RoleSales] != 12.5 {
		t.Fatalf("rate key should normalize, got %v", updated.DefaultRates)
	}
	if updated.DefaultRates[constants.RoleLeader] != 100 {
		t.Fatalf("rate should clamp to 100, got %v", updated.DefaultRates)
	}
}
