package repository

import (
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// DashboardRepository 仪表盘聚合查询接口
// 说明：仅聚合统计数据，不承载业务规则。
type DashboardRepository interface {
	GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error)
	GetCommissionStats() ([]CommissionStatusAggregate, error)
	GetNetworkStats() (DashboardNetworkRow, error)
}

// DashboardOverviewRow 仪表盘总览原始统计结果
type DashboardOverviewRow struct {
	UsersTotal      int64
	NewUsers        int64
	OrdersTotal     int64
	PaidOrders      int64
	CancelledOrders int64
	GMVPaid         decimal.Decimal
	PartnersTotal   int64
	BookingsTotal   int64
	ActiveProducts  int64
}

// DashboardNetworkRow 推荐网络统计
type DashboardNetworkRow struct {
	EdgesTotal     int64
	ReferrersTotal int64
}

// GormDashboardRepository GORM 仪表盘聚合实现
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewDashboardRepository 创建仪表盘仓库
func NewDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

// GetOverview 获取总览统计
func (r *GormDashboardRepository) GetOverview(startAt, endAt time.Time) (DashboardOverviewRow, error) {
	result := DashboardOverviewRow{GMVPaid: decimal.Zero}

	if err := r.db.Model(&models.User{}).Count(&result.UsersTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.User{}).
		Where("created_at >= ? AND created_at < ?", startAt, endAt).
		Count(&result.NewUsers).Error; err != nil {
		return result, err
	}

	orderBase := func() *gorm.DB {
		return r.db.Model(&models.Order{}).
			Where("created_at >= ? AND created_at < ?", startAt, endAt)
	}
	if err := orderBase().Count(&result.OrdersTotal).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("payment_status = ?", constants.PaymentStatusPaid).
		Count(&result.PaidOrders).Error; err != nil {
		return result, err
	}
	if err := orderBase().Where("status = ?", constants.OrderStatusCancelled).
		Count(&result.CancelledOrders).Error; err != nil {
		return result, err
	}

	var gmvRow struct {
		Total decimal.Decimal `gorm:"column:total"`
	}
	if err := orderBase().
		Select("COALESCE(SUM(total_amount), 0) AS total").
		Where("payment_status = ?", constants.PaymentStatusPaid).
		Scan(&gmvRow).Error; err != nil {
		return result, err
	}
	result.GMVPaid = gmvRow.Total.Round(2)

	if err := r.db.Model(&models.Partner{}).Count(&result.PartnersTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Booking{}).Count(&result.BookingsTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.Product{}).Where("is_active = ?", true).
		Count(&result.ActiveProducts).Error; err != nil {
		return result, err
	}

	return result, nil
}

// GetCommissionStats 按状态汇总全站佣金
func (r *GormDashboardRepository) GetCommissionStats() ([]CommissionStatusAggregate, error) {
	var rows []CommissionStatusAggregate
	if err := r.db.Model(&models.Commission{}).
		Select("status, COUNT(*) AS total_count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// GetNetworkStats 推荐网络规模统计
func (r *GormDashboardRepository) GetNetworkStats() (DashboardNetworkRow, error) {
	result := DashboardNetworkRow{}
	if err := r.db.Model(&models.UserNetwork{}).Count(&result.EdgesTotal).Error; err != nil {
		return result, err
	}
	if err := r.db.Model(&models.UserNetwork{}).
		Distinct("parent_id").
		Count(&result.ReferrersTotal).Error; err != nil {
		return result, err
	}
	return result, nil
}
