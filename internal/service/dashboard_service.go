package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grabhealth-next/internal/cache"
	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	dashboardCacheTTL      = 45 * time.Second
	dashboardCustomMaxDays = 90
)

// DashboardService 仪表盘服务
// 说明：聚合后台首页核心经营数据。
type DashboardService struct {
	repo           repository.DashboardRepository
	settingService *SettingService
}

// NewDashboardService 创建仪表盘服务
func NewDashboardService(repo repository.DashboardRepository, settingService *SettingService) *DashboardService {
	return &DashboardService{repo: repo, settingService: settingService}
}

// DashboardQueryInput 仪表盘查询输入
type DashboardQueryInput struct {
	Range        string
	From         *time.Time
	To           *time.Time
	ForceRefresh bool
}

// DashboardOverviewResponse 仪表盘总览响应
type DashboardOverviewResponse struct {
	Range      string                    `json:"range"`
	From       string                    `json:"from"`
	To         string                    `json:"to"`
	Currency   string                    `json:"currency,omitempty"`
	KPI        DashboardKPI              `json:"kpi"`
	Commission DashboardCommissionBlock  `json:"commission"`
	Network    DashboardNetworkBlock     `json:"network"`
	Statuses   []DashboardCommissionItem `json:"commission_breakdown"`
}

// DashboardKPI 仪表盘核心指标
type DashboardKPI struct {
	UsersTotal      int64  `json:"users_total"`
	NewUsers        int64  `json:"new_users"`
	OrdersTotal     int64  `json:"orders_total"`
	PaidOrders      int64  `json:"paid_orders"`
	CancelledOrders int64  `json:"cancelled_orders"`
	GMVPaid         string `json:"gmv_paid"`
	PaidRate        string `json:"paid_rate"`
	ActiveProducts  int64  `json:"active_products"`
	PartnersTotal   int64  `json:"partners_total"`
	BookingsTotal   int64  `json:"bookings_total"`
}

// DashboardCommissionBlock 佣金汇总块
type DashboardCommissionBlock struct {
	TotalCount    int64  `json:"total_count"`
	TotalAmount   string `json:"total_amount"`
	PendingAmount string `json:"pending_amount"`
	PaidAmount    string `json:"paid_amount"`
}

// DashboardCommissionItem 按状态的佣金统计
type DashboardCommissionItem struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
	Amount string `json:"amount"`
}

// DashboardNetworkBlock 推荐网络块
type DashboardNetworkBlock struct {
	EdgesTotal     int64 `json:"edges_total"`
	ReferrersTotal int64 `json:"referrers_total"`
}

type dashboardWindow struct {
	rangeKey string
	startAt  time.Time
	endAt    time.Time
}

// GetOverview 获取仪表盘总览
func (s *DashboardService) GetOverview(ctx context.Context, input DashboardQueryInput) (*DashboardOverviewResponse, error) {
	if s == nil || s.repo == nil {
		return &DashboardOverviewResponse{}, nil
	}

	window, err := resolveDashboardWindow(input, time.Now())
	if err != nil {
		return nil, err
	}

	cacheKey := fmt.Sprintf("dashboard:overview:%s:%d:%d",
		window.rangeKey,
		window.startAt.Unix(),
		window.endAt.Unix(),
	)
	if !input.ForceRefresh {
		var cached DashboardOverviewResponse
		hit, cacheErr := cache.GetJSON(ctx, cacheKey, &cached)
		if cacheErr == nil && hit {
			return &cached, nil
		}
	}

	overview, err := s.repo.GetOverview(window.startAt, window.endAt)
	if err != nil {
		return nil, err
	}
	commissionStats, err := s.repo.GetCommissionStats()
	if err != nil {
		return nil, err
	}
	networkStats, err := s.repo.GetNetworkStats()
	if err != nil {
		return nil, err
	}

	paidRate := 0.0
	if overview.OrdersTotal > 0 {
		paidRate = float64(overview.PaidOrders) / float64(overview.OrdersTotal) * 100
	}

	commissionBlock := DashboardCommissionBlock{
		TotalAmount:   formatMoneyValue(decimal.Zero),
		PendingAmount: formatMoneyValue(decimal.Zero),
		PaidAmount:    formatMoneyValue(decimal.Zero),
	}
	breakdown := make([]DashboardCommissionItem, 0, len(commissionStats))
	totalAmount := decimal.Zero
	for _, row := range commissionStats {
		amount := row.Amount.Round(2)
		breakdown = append(breakdown, DashboardCommissionItem{
			Status: row.Status,
			Count:  row.Count,
			Amount: formatMoneyValue(amount),
		})
		if row.Status == constants.CommissionStatusCancelled {
			continue
		}
		commissionBlock.TotalCount += row.Count
		totalAmount = totalAmount.Add(amount)
		switch row.Status {
		case constants.CommissionStatusPending:
			commissionBlock.PendingAmount = formatMoneyValue(amount)
		case constants.CommissionStatusPaid:
			commissionBlock.PaidAmount = formatMoneyValue(amount)
		}
	}
	commissionBlock.TotalAmount = formatMoneyValue(totalAmount)

	currency := constants.SiteCurrencyDefault
	if s.settingService != nil {
		currency = s.settingService.GetSiteCurrency()
	}

	response := &DashboardOverviewResponse{
		Range:    window.rangeKey,
		From:     window.startAt.Format(time.RFC3339),
		To:       window.endAt.Add(-time.Second).Format(time.RFC3339),
		Currency: currency,
		KPI: DashboardKPI{
			UsersTotal:      overview.UsersTotal,
			NewUsers:        overview.NewUsers,
			OrdersTotal:     overview.OrdersTotal,
			PaidOrders:      overview.PaidOrders,
			CancelledOrders: overview.CancelledOrders,
			GMVPaid:         formatMoneyValue(overview.GMVPaid),
			PaidRate:        formatPercentValue(paidRate),
			ActiveProducts:  overview.ActiveProducts,
			PartnersTotal:   overview.PartnersTotal,
			BookingsTotal:   overview.BookingsTotal,
		},
		Commission: commissionBlock,
		Network: DashboardNetworkBlock{
			EdgesTotal:     networkStats.EdgesTotal,
			ReferrersTotal: networkStats.ReferrersTotal,
		},
		Statuses: breakdown,
	}

	_ = cache.SetJSON(ctx, cacheKey, response, dashboardCacheTTL)
	return response, nil
}

// resolveDashboardWindow 解析统计窗口，自定义区间限制在 90 天内
func resolveDashboardWindow(input DashboardQueryInput, now time.Time) (dashboardWindow, error) {
	rangeKey := strings.ToLower(strings.TrimSpace(input.Range))
	endAt := now.Truncate(time.Hour).Add(time.Hour)

	switch rangeKey {
	case "", "7d":
		return dashboardWindow{rangeKey: "7d", startAt: endAt.AddDate(0, 0, -7), endAt: endAt}, nil
	case "24h":
		return dashboardWindow{rangeKey: "24h", startAt: endAt.Add(-24 * time.Hour), endAt: endAt}, nil
	case "30d":
		return dashboardWindow{rangeKey: "30d", startAt: endAt.AddDate(0, 0, -30), endAt: endAt}, nil
	case "custom":
		if input.From == nil || input.To == nil {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		startAt := input.From.Truncate(time.Hour)
		customEnd := input.To.Truncate(time.Hour).Add(time.Hour)
		if !customEnd.After(startAt) {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		if customEnd.Sub(startAt) > time.Duration(dashboardCustomMaxDays)*24*time.Hour {
			return dashboardWindow{}, ErrDashboardRangeInvalid
		}
		return dashboardWindow{rangeKey: "custom", startAt: startAt, endAt: customEnd}, nil
	default:
		return dashboardWindow{}, ErrDashboardRangeInvalid
	}
}

func formatMoneyValue(value decimal.Decimal) string {
	return value.Round(2).StringFixed(2)
}

func formatPercentValue(value float64) string {
	return decimal.NewFromFloat(value).Round(2).StringFixed(2)
}
