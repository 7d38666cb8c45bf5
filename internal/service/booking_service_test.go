package service

import (
	"errors"
	"testing"
	"time"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
)

func createActivePartner(t *testing.T, env *serviceTestEnv, name string) *models.Partner {
	t.Helper()
	partner := &models.Partner{
		Name:   name,
		Email:  name + "@example.com",
		Status: constants.PartnerStatusActive,
	}
	if err := env.partnerRepo.Create(partner); err != nil {
		t.Fatalf("create partner failed: %v", err)
	}
	return partner
}

func TestCreateBookingValidations(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	partner := createActivePartner(t, env, "wellness-center")
	future := time.Now().Add(24 * time.Hour)

	booking, err := env.bookingService.Create(CreateBookingInput{
		UserID:      user.ID,
		PartnerID:   partner.ID,
		ServiceName: "  Health Screening  ",
		ScheduledAt: future,
		Notes:       "first visit",
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}
	if booking.Status != constants.BookingStatusPending {
		t.Fatalf("status want pending got %s", booking.Status)
	}
	if booking.ServiceName != "Health Screening" {
		t.Fatalf("service name should be trimmed, got %q", booking.ServiceName)
	}

	// 过去时间不可约
	_, err = env.bookingService.Create(CreateBookingInput{
		UserID:      user.ID,
		PartnerID:   partner.ID,
		ScheduledAt: time.Now().Add(-time.Hour),
	})
	if !errors.Is(err, ErrBookingTimeInvalid) {
		t.Fatalf("past time want ErrBookingTimeInvalid got %v", err)
	}

	// 停业门店不可约
	partner.Status = constants.PartnerStatusInactive
	if err := env.partnerRepo.Update(partner); err != nil {
		t.Fatalf("deactivate partner failed: %v", err)
	}
	_, err = env.bookingService.Create(CreateBookingInput{
		UserID:      user.ID,
		PartnerID:   partner.ID,
		ScheduledAt: future,
	})
	if !errors.Is(err, ErrPartnerInactive) {
		t.Fatalf("inactive partner want ErrPartnerInactive got %v", err)
	}
}

func TestBookingLifecycleTransitions(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	partner := createActivePartner(t, env, "wellness-center")

	booking, err := env.bookingService.Create(CreateBookingInput{
		UserID:      user.ID,
		PartnerID:   partner.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	// pending 不可直接完成
	if _, err := env.bookingService.Complete(booking.ID); !errors.Is(err, ErrBookingStatusInvalid) {
		t.Fatalf("pending -> completed want ErrBookingStatusInvalid got %v", err)
	}

	confirmed, err := env.bookingService.Confirm(booking.ID)
	if err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if confirmed.Status != constants.BookingStatusConfirmed {
		t.Fatalf("status want confirmed got %s", confirmed.Status)
	}
	if _, err := env.bookingService.Confirm(booking.ID); !errors.Is(err, ErrBookingStatusInvalid) {
		t.Fatalf("double confirm want ErrBookingStatusInvalid got %v", err)
	}

	completed, err := env.bookingService.Complete(booking.ID)
	if err != nil {
		t.Fatalf("complete failed: %v", err)
	}
	if completed.Status != constants.BookingStatusCompleted {
		t.Fatalf("status want completed got %s", completed.Status)
	}

	// 已完成不可取消
	if _, err := env.bookingService.Cancel(booking.ID, 0); !errors.Is(err, ErrBookingStatusInvalid) {
		t.Fatalf("completed cancel want ErrBookingStatusInvalid got %v", err)
	}
}

func TestCancelBookingOwnerCheck(t *testing.T) {
	env := newServiceTestEnv(t)

	owner := env.createUser(t, "owner@example.com", constants.RoleCustomer)
	stranger := env.createUser(t, "other@example.com", constants.RoleCustomer)
	partner := createActivePartner(t, env, "wellness-center")

	booking, err := env.bookingService.Create(CreateBookingInput{
		UserID:      owner.ID,
		PartnerID:   partner.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	if _, err := env.bookingService.Cancel(booking.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign cancel want ErrNotFound got %v", err)
	}

	// userID 为 0 表示后台调用，跳过归属校验
	cancelled, err := env.bookingService.Cancel(booking.ID, 0)
	if err != nil {
		t.Fatalf("admin cancel failed: %v", err)
	}
	if cancelled.Status != constants.BookingStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
}

func TestSendReminderIsIdempotent(t *testing.T) {
	env := newServiceTestEnv(t)

	user := env.createUser(t, "user@example.com", constants.RoleCustomer)
	partner := createActivePartner(t, env, "wellness-center")

	booking, err := env.bookingService.Create(CreateBookingInput{
		UserID:      user.ID,
		PartnerID:   partner.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	// 未确认的预约不提醒
	if err := env.bookingService.SendReminder(booking.ID); err != nil {
		t.Fatalf("reminder on pending should be a no-op, got %v", err)
	}
	refreshed, err := env.bookingRepo.GetByID(booking.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if refreshed.ReminderSentAt != nil {
		t.Fatalf("pending booking must not be reminded")
	}

	if _, err := env.bookingService.Confirm(booking.ID); err != nil {
		t.Fatalf("confirm failed: %v", err)
	}
	if err := env.bookingService.SendReminder(booking.ID); err != nil {
		t.Fatalf("send reminder failed: %v", err)
	}
	refreshed, err = env.bookingRepo.GetByID(booking.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if refreshed.ReminderSentAt == nil {
		t.Fatalf("reminder_sent_at should be set")
	}
	sentAt := *refreshed.ReminderSentAt

	// 重复投递不重置时间
	if err := env.bookingService.SendReminder(booking.ID); err != nil {
		t.Fatalf("repeated reminder failed: %v", err)
	}
	refreshed, err = env.bookingRepo.GetByID(booking.ID)
	if err != nil || refreshed == nil {
		t.Fatalf("get booking failed: %v", err)
	}
	if !refreshed.ReminderSentAt.Equal(sentAt) {
		t.Fatalf("reminder_sent_at must not change on redelivery")
	}
}

func TestGetBookingByUserScopesToOwner(t *testing.T) {
	env := newServiceTestEnv(t)

	owner := env.createUser(t, "owner@example.com", constants.RoleCustomer)
	stranger := env.createUser(t, "other@example.com", constants.RoleCustomer)
	partner := createActivePartner(t, env, "wellness-center")

	booking, err := env.bookingService.Create(CreateBookingInput{
		UserID:      owner.ID,
		PartnerID:   partner.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create booking failed: %v", err)
	}

	found, err := env.bookingService.GetByUser(booking.ID, owner.ID)
	if err != nil || found == nil {
		t.Fatalf("owner lookup failed: %v", err)
	}
	if _, err := env.bookingService.GetByUser(booking.ID, stranger.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign lookup want ErrNotFound got %v", err)
	}
}
