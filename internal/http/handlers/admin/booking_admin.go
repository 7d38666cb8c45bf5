package admin

import (
	"errors"
	"strconv"
	"strings"

	"github.com/grabhealth-next/internal/constants"
	handlershared "github.com/grabhealth-next/internal/http/handlers/shared"
	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// resolveBookingScope 解析预约可见范围。
// partner 角色只能看到自己门店的预约，其余后台角色不限。
func (h *Handler) resolveBookingScope(c *gin.Context) (uint, bool) {
	role := handlershared.GetContextString(c, "user_role")
	if role != constants.RolePartner {
		return 0, true
	}
	uid, ok := getOperatorID(c)
	if !ok {
		return 0, false
	}
	partner, err := h.PartnerService.GetByOwner(uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeForbidden, "no partner bound to this account", nil)
			return 0, false
		}
		respondError(c, response.CodeInternal, "booking fetch failed", err)
		return 0, false
	}
	return partner.ID, true
}

func (h *Handler) bookingInScope(c *gin.Context, booking *models.Booking, scopePartnerID uint) bool {
	if scopePartnerID == 0 || booking == nil {
		return true
	}
	if booking.PartnerID == scopePartnerID {
		return true
	}
	respondError(c, response.CodeForbidden, "permission denied", nil)
	return false
}

// ListBookings 获取预约列表
func (h *Handler) ListBookings(c *gin.Context) {
	scopePartnerID, ok := h.resolveBookingScope(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	partnerID := scopePartnerID
	if partnerID == 0 {
		parsed, _ := strconv.ParseUint(c.Query("partner_id"), 10, 64)
		partnerID = uint(parsed)
	}

	bookings, total, err := h.BookingService.ListForAdmin(repository.BookingListFilter{
		Page:      page,
		PageSize:  pageSize,
		PartnerID: partnerID,
		Status:    strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "booking fetch failed", err)
		return
	}

	pagination := response.Pagination{
		Page:      page,
		PageSize:  pageSize,
		Total:     total,
		TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
	}
	response.SuccessWithPage(c, bookings, pagination)
}

// GetBooking 获取预约详情
func (h *Handler) GetBooking(c *gin.Context) {
	scopePartnerID, ok := h.resolveBookingScope(c)
	if !ok {
		return
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		respondError(c, response.CodeBadRequest, "booking id invalid", nil)
		return
	}

	booking, err := h.BookingService.GetForAdmin(uint(bookingID))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "booking not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "booking fetch failed", err)
		return
	}
	if !h.bookingInScope(c, booking, scopePartnerID) {
		return
	}

	response.Success(c, booking)
}

// ConfirmBooking 确认预约并调度提醒
func (h *Handler) ConfirmBooking(c *gin.Context) {
	h.transitionBooking(c, func(bookingID uint) (*models.Booking, error) {
		return h.BookingService.Confirm(bookingID)
	})
}

// CompleteBooking 完成预约
func (h *Handler) CompleteBooking(c *gin.Context) {
	h.transitionBooking(c, func(bookingID uint) (*models.Booking, error) {
		return h.BookingService.Complete(bookingID)
	})
}

// CancelBooking 后台取消预约
func (h *Handler) CancelBooking(c *gin.Context) {
	h.transitionBooking(c, func(bookingID uint) (*models.Booking, error) {
		return h.BookingService.Cancel(bookingID, 0)
	})
}

func (h *Handler) transitionBooking(c *gin.Context, fn func(bookingID uint) (*models.Booking, error)) {
	scopePartnerID, ok := h.resolveBookingScope(c)
	if !ok {
		return
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		respondError(c, response.CodeBadRequest, "booking id invalid", nil)
		return
	}

	if scopePartnerID != 0 {
		booking, err := h.BookingService.GetForAdmin(uint(bookingID))
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				respondError(c, response.CodeNotFound, "booking not found", nil)
				return
			}
			respondError(c, response.CodeInternal, "booking fetch failed", err)
			return
		}
		if !h.bookingInScope(c, booking, scopePartnerID) {
			return
		}
	}

	booking, transErr := fn(uint(bookingID))
	if transErr != nil {
		switch {
		case errors.Is(transErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "booking not found", nil)
		case errors.Is(transErr, service.ErrBookingStatusInvalid):
			respondError(c, response.CodeBadRequest, "booking status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "booking update failed", transErr)
		}
		return
	}

	response.Success(c, booking)
}
