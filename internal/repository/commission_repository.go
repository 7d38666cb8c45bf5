package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommissionStatusAggregate 按状态汇总的佣金统计
type CommissionStatusAggregate struct {
	Status string          `gorm:"column:status" json:"status"`
	Count  int64           `gorm:"column:total_count" json:"count"`
	Amount decimal.Decimal `gorm:"column:total_amount" json:"amount"`
}

// CommissionRepository 佣金数据访问接口
type CommissionRepository interface {
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) CommissionRepository

	GetByID(id uint) (*models.Commission, error)
	GetByOrderUserLevel(orderID, userID uint, level int) (*models.Commission, error)
	Create(commission *models.Commission) error
	Update(commission *models.Commission) error
	List(filter CommissionListFilter) ([]models.Commission, int64, error)
	ListByOrder(orderID uint) ([]models.Commission, error)
	ListByIDsForUpdate(ids []uint) ([]models.Commission, error)
	BatchUpdate(ids []uint, updates map[string]interface{}) (int64, error)
	CancelByOrder(orderID uint, now time.Time) (int64, error)
	SummarizeByUser(userID uint) ([]CommissionStatusAggregate, error)
	SummarizeAll() ([]CommissionStatusAggregate, error)
}

// GormCommissionRepository GORM 佣金仓储
type GormCommissionRepository struct {
	db *gorm.DB
}

// NewCommissionRepository 创建佣金仓储
func NewCommissionRepository(db *gorm.DB) *GormCommissionRepository {
	return &GormCommissionRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCommissionRepository) WithTx(tx *gorm.DB) CommissionRepository {
	if tx == nil {
		return r
	}
	return &GormCommissionRepository{db: tx}
}

// Transaction 执行事务
func (r *GormCommissionRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

// GetByID 按ID查询佣金记录
func (r *GormCommissionRepository) GetByID(id uint) (*models.Commission, error) {
	if id == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Preload("User").Preload("Order").First(&commission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// GetByOrderUserLevel 按 (订单, 受益人, 层级) 查询佣金记录
func (r *GormCommissionRepository) GetByOrderUserLevel(orderID, userID uint, level int) (*models.Commission, error) {
	if orderID == 0 || userID == 0 {
		return nil, nil
	}
	var commission models.Commission
	if err := r.db.Where("order_id = ? AND user_id = ? AND level = ?", orderID, userID, level).
		First(&commission).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &commission, nil
}

// Create 创建佣金记录，(order_id, user_id, level) 唯一索引兜底去重
func (r *GormCommissionRepository) Create(commission *models.Commission) error {
	return r.db.Create(commission).Error
}

// Update 更新佣金记录
func (r *GormCommissionRepository) Update(commission *models.Commission) error {
	return r.db.Save(commission).Error
}

// List 查询佣金记录列表
func (r *GormCommissionRepository) List(filter CommissionListFilter) ([]models.Commission, int64, error) {
	query := r.db.Model(&models.Commission{}).
		Preload("User").
		Preload("SourceUser").
		Preload("Order")
	if filter.UserID != 0 {
		query = query.Where("commissions.user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("commissions.order_id = ?", filter.OrderID)
	}
	if orderNo := strings.TrimSpace(filter.OrderNo); orderNo != "" {
		query = query.Joins("LEFT JOIN orders ON orders.id = commissions.order_id").
			Where("orders.order_no LIKE ?", "%"+orderNo+"%")
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("commissions.status = ?", status)
	}
	if filter.Level > 0 {
		query = query.Where("commissions.level = ?", filter.Level)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("commissions.created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("commissions.created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var rows []models.Commission
	if err := query.Order("commissions.id desc").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ListByOrder 按订单查询佣金记录
func (r *GormCommissionRepository) ListByOrder(orderID uint) ([]models.Commission, error) {
	if orderID == 0 {
		return []models.Commission{}, nil
	}
	var rows []models.Commission
	if err := r.db.Where("order_id = ?", orderID).Order("level asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ListByIDsForUpdate 按ID查询并锁定佣金记录
func (r *GormCommissionRepository) ListByIDsForUpdate(ids []uint) ([]models.Commission, error) {
	if len(ids) == 0 {
		return []models.Commission{}, nil
	}
	var rows []models.Commission
	if err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// BatchUpdate 批量更新佣金记录
func (r *GormCommissionRepository) BatchUpdate(ids []uint, updates map[string]interface{}) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Commission{}).Where("id IN ?", ids).Updates(updates)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CancelByOrder 作废订单下尚未发放的佣金
func (r *GormCommissionRepository) CancelByOrder(orderID uint, now time.Time) (int64, error) {
	if orderID == 0 {
		return 0, nil
	}
	result := r.db.Model(&models.Commission{}).
		Where("order_id = ? AND status IN ?", orderID, []string{
			constants.CommissionStatusPending,
			constants.CommissionStatusApproved,
		}).
		Updates(map[string]interface{}{
			"status":     constants.CommissionStatusCancelled,
			"updated_at": now,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// SummarizeByUser 汇总单个用户各状态佣金
func (r *GormCommissionRepository) SummarizeByUser(userID uint) ([]CommissionStatusAggregate, error) {
	if userID == 0 {
		return []CommissionStatusAggregate{}, nil
	}
	var rows []CommissionStatusAggregate
	if err := r.db.Model(&models.Commission{}).
		Select("status, COUNT(*) AS total_count, COALESCE(SUM(amount), 0) AS total_amount").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SummarizeAll 汇总全站各状态佣金
func (r *GormCommissionRepository) SummarizeAll() ([]CommissionStatusAggregate, error) {
	var rows []CommissionStatusAggregate
	if err := r.db.Model(&models.Commission{}).
		Select("status, COUNT(*) AS total_count, COALESCE(SUM(amount), 0) AS total_amount").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
