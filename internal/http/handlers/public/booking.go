package public

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/grabhealth-next/internal/http/response"
	"github.com/grabhealth-next/internal/repository"
	"github.com/grabhealth-next/internal/service"

	"github.com/gin-gonic/gin"
)

// CreateBookingRequest 创建预约请求
type CreateBookingRequest struct {
	PartnerID   uint      `json:"partner_id" binding:"required"`
	ServiceName string    `json:"service_name" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes"`
}

// CreateBooking 创建预约
func (h *Handler) CreateBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	booking, err := h.BookingService.Create(service.CreateBookingInput{
		UserID:      uid,
		PartnerID:   req.PartnerID,
		ServiceName: strings.TrimSpace(req.ServiceName),
		ScheduledAt: req.ScheduledAt,
		Notes:       strings.TrimSpace(req.Notes),
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingTimeInvalid):
			respondError(c, response.CodeBadRequest, "booking time must be in the future", nil)
		case errors.Is(err, service.ErrPartnerInactive):
			respondError(c, response.CodeBadRequest, "partner is not active", nil)
		case errors.Is(err, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "partner not found", nil)
		default:
			respondError(c, response.CodeInternal, "booking create failed", err)
		}
		return
	}

	response.Success(c, booking)
}

// ListBookings 获取本人预约列表
func (h *Handler) ListBookings(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = normalizePagination(page, pageSize)

	bookings, total, err := h.BookingService.ListByUser(repository.BookingListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uid,
		Status:   strings.TrimSpace(c.Query("status")),
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

// GetBooking 获取本人预约详情
func (h *Handler) GetBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		respondError(c, response.CodeBadRequest, "booking id invalid", nil)
		return
	}

	booking, err := h.BookingService.GetByUser(uint(bookingID), uid)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondError(c, response.CodeNotFound, "booking not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "booking fetch failed", err)
		return
	}

	response.Success(c, booking)
}

// CancelBooking 用户取消预约
func (h *Handler) CancelBooking(c *gin.Context) {
	uid, ok := getUserID(c)
	if !ok {
		return
	}
	bookingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || bookingID == 0 {
		respondError(c, response.CodeBadRequest, "booking id invalid", nil)
		return
	}

	booking, cancelErr := h.BookingService.Cancel(uint(bookingID), uid)
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrNotFound):
			respondError(c, response.CodeNotFound, "booking not found", nil)
		case errors.Is(cancelErr, service.ErrBookingStatusInvalid):
			respondError(c, response.CodeBadRequest, "booking status transition not allowed", nil)
		default:
			respondError(c, response.CodeInternal, "booking cancel failed", cancelErr)
		}
		return
	}

	response.Success(c, booking)
}
