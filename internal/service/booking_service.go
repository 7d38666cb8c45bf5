package service

import (
	"strings"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/logger"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/queue"
	"github.com/grabhealth-next/internal/repository"
)

// BookingService 门店预约业务服务
type BookingService struct {
	repo                repository.BookingRepository
	partnerRepo         repository.PartnerRepository
	queueClient         *queue.Client
	reminderLeadMinutes int
}

// NewBookingService 创建预约服务
func NewBookingService(repo repository.BookingRepository, partnerRepo repository.PartnerRepository, queueClient *queue.Client, reminderLeadMinutes int) *BookingService {
	if reminderLeadMinutes <= 0 {
		reminderLeadMinutes = 120
	}
	return &BookingService{
		repo:                repo,
		partnerRepo:         partnerRepo,
		queueClient:         queueClient,
		reminderLeadMinutes: reminderLeadMinutes,
	}
}

// CreateBookingInput 创建预约参数
type CreateBookingInput struct {
	UserID      uint
	PartnerID   uint
	ServiceName string
	ScheduledAt time.Time
	Notes       string
}

// Create 创建预约（仅营业中门店可约，时间必须在未来）
func (s *BookingService) Create(input CreateBookingInput) (*models.Booking, error) {
	if input.UserID == 0 || input.PartnerID == 0 {
		return nil, ErrNotFound
	}
	if input.ScheduledAt.Before(time.Now()) {
		return nil, ErrBookingTimeInvalid
	}

	partner, err := s.partnerRepo.GetByID(input.PartnerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNotFound
	}
	if partner.Status != constants.PartnerStatusActive {
		return nil, ErrPartnerInactive
	}

	booking := &models.Booking{
		UserID:      input.UserID,
		PartnerID:   input.PartnerID,
		ServiceName: strings.TrimSpace(input.ServiceName),
		ScheduledAt: input.ScheduledAt,
		Status:      constants.BookingStatusPending,
		Notes:       strings.TrimSpace(input.Notes),
	}
	if err := s.repo.Create(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Confirm 确认预约并排定提醒任务
func (s *BookingService) Confirm(bookingID uint) (*models.Booking, error) {
	booking, err := s.getByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != constants.BookingStatusPending {
		return nil, ErrBookingStatusInvalid
	}

	booking.Status = constants.BookingStatusConfirmed
	booking.UpdatedAt = time.Now()
	if err := s.repo.Update(booking); err != nil {
		return nil, err
	}

	remindAt := booking.ScheduledAt.Add(-time.Duration(s.reminderLeadMinutes) * time.Minute)
	if err := s.queueClient.EnqueueBookingReminder(
		queue.BookingReminderPayload{BookingID: booking.ID},
		time.Until(remindAt),
	); err != nil {
		logger.Warnw("booking_enqueue_reminder_failed",
			"booking_id", booking.ID,
			"error", err,
		)
	}
	return booking, nil
}

// Complete 完成预约
func (s *BookingService) Complete(bookingID uint) (*models.Booking, error) {
	booking, err := s.getByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.Status != constants.BookingStatusConfirmed {
		return nil, ErrBookingStatusInvalid
	}
	booking.Status = constants.BookingStatusCompleted
	booking.UpdatedAt = time.Now()
	if err := s.repo.Update(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// Cancel 取消预约（已完成不可取消，本人或后台调用）
func (s *BookingService) Cancel(bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.getByID(bookingID)
	if err != nil {
		return nil, err
	}
	if userID != 0 && booking.UserID != userID {
		return nil, ErrNotFound
	}
	switch booking.Status {
	case constants.BookingStatusPending, constants.BookingStatusConfirmed:
	default:
		return nil, ErrBookingStatusInvalid
	}
	booking.Status = constants.BookingStatusCancelled
	booking.UpdatedAt = time.Now()
	if err := s.repo.Update(booking); err != nil {
		return nil, err
	}
	return booking, nil
}

// SendReminder 发送预约提醒（队列任务调用）。
// reminder_sent_at 条件更新保证重复投递只提醒一次。
func (s *BookingService) SendReminder(bookingID uint) error {
	booking, err := s.getByID(bookingID)
	if err != nil {
		return err
	}
	if booking.Status != constants.BookingStatusConfirmed {
		return nil
	}
	if booking.ReminderSentAt != nil {
		return nil
	}

	if err := s.repo.MarkReminderSent(booking.ID, time.Now()); err != nil {
		return err
	}
	logger.Infow("booking_reminder_sent",
		"booking_id", booking.ID,
		"user_id", booking.UserID,
		"partner_id", booking.PartnerID,
		"scheduled_at", booking.ScheduledAt,
	)
	return nil
}

// GetByUser 查询用户自己的预约
func (s *BookingService) GetByUser(bookingID, userID uint) (*models.Booking, error) {
	booking, err := s.getByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking.UserID != userID {
		return nil, ErrNotFound
	}
	return booking, nil
}

// ListByUser 查询用户预约列表
func (s *BookingService) ListByUser(filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	if filter.UserID == 0 {
		return nil, 0, ErrNotFound
	}
	return s.repo.List(filter)
}

// ListForAdmin 后台预约列表
func (s *BookingService) ListForAdmin(filter repository.BookingListFilter) ([]models.Booking, int64, error) {
	return s.repo.List(filter)
}

// GetForAdmin 后台预约详情
func (s *BookingService) GetForAdmin(bookingID uint) (*models.Booking, error) {
	return s.getByID(bookingID)
}

func (s *BookingService) getByID(bookingID uint) (*models.Booking, error) {
	if bookingID == 0 {
		return nil, ErrNotFound
	}
	booking, err := s.repo.GetByID(bookingID)
	if err != nil {
		return nil, err
	}
	if booking == nil {
		return nil, ErrNotFound
	}
	return booking, nil
}
