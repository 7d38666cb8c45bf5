package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/grabhealth-next/internal/models"

	"gorm.io/gorm"
)

// BookingRepository 预约数据访问接口
type BookingRepository interface {
	GetByID(id uint) (*models.Booking, error)
	Create(booking *models.Booking) error
	Update(booking *models.Booking) error
	List(filter BookingListFilter) ([]models.Booking, int64, error)
	MarkReminderSent(id uint, sentAt time.Time) error
	Count() (int64, error)
}

// GormBookingRepository GORM 预约仓储
type GormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预约仓储
func NewBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// GetByID 按ID查询预约
func (r *GormBookingRepository) GetByID(id uint) (*models.Booking, error) {
	if id == 0 {
		return nil, nil
	}
	var booking models.Booking
	if err := r.db.Preload("Partner").Preload("User").First(&booking, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &booking, nil
}

// Create 创建预约
func (r *GormBookingRepository) Create(booking *models.Booking) error {
	return r.db.Create(booking).Error
}

// Update 更新预约
func (r *GormBookingRepository) Update(booking *models.Booking) error {
	return r.db.Save(booking).Error
}

// List 预约列表
func (r *GormBookingRepository) List(filter BookingListFilter) ([]models.Booking, int64, error) {
	query := r.db.Model(&models.Booking{}).Preload("Partner")

	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.PartnerID != 0 {
		query = query.Where("partner_id = ?", filter.PartnerID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.ScheduledFrom != nil {
		query = query.Where("scheduled_at >= ?", *filter.ScheduledFrom)
	}
	if filter.ScheduledTo != nil {
		query = query.Where("scheduled_at <= ?", *filter.ScheduledTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query = applyPagination(query, filter.Page, filter.PageSize)

	var bookings []models.Booking
	if err := query.Order("scheduled_at desc, id desc").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

// MarkReminderSent 记录提醒发送时间
func (r *GormBookingRepository) MarkReminderSent(id uint, sentAt time.Time) error {
	if id == 0 {
		return nil
	}
	return r.db.Model(&models.Booking{}).
		Where("id = ? AND reminder_sent_at IS NULL", id).
		Update("reminder_sent_at", sentAt).Error
}

// Count 统计预约总数
func (r *GormBookingRepository) Count() (int64, error) {
	var total int64
	if err := r.db.Model(&models.Booking{}).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}
