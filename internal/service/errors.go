package service

import "errors"

// 业务哨兵错误，handler 层据此映射响应码
var (
	ErrNotFound           = errors.New("resource not found")
	ErrPermissionDenied   = errors.New("permission denied")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserDisabled       = errors.New("user account disabled")
	ErrRoleInvalid        = errors.New("role invalid")
	ErrUserStatusInvalid  = errors.New("user status invalid")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password does not meet the policy")
	ErrInvalidPassword    = errors.New("current password incorrect")
	ErrProfileEmpty       = errors.New("nothing to update")

	ErrCaptchaRequired      = errors.New("captcha required")
	ErrCaptchaInvalid       = errors.New("captcha verification failed")
	ErrCaptchaConfigInvalid = errors.New("captcha config invalid")

	ErrReferralCodeInvalid = errors.New("referral code invalid")
	ErrSelfReferral        = errors.New("cannot refer yourself")
	ErrAlreadyReferred     = errors.New("user already has an upline")

	ErrCategoryInUse       = errors.New("category still has products")
	ErrProductInactive     = errors.New("product is not available")
	ErrProductPriceInvalid = errors.New("product price or point value invalid")
	ErrQuantityInvalid     = errors.New("quantity must be positive")
	ErrEmptyOrder          = errors.New("order has no items")

	ErrOrderStatusInvalid  = errors.New("order status transition not allowed")
	ErrOrderNotCancellable = errors.New("order cannot be cancelled")

	ErrCommissionStatusInvalid   = errors.New("commission status transition not allowed")
	ErrCommissionConfigInvalid   = errors.New("commission config invalid")
	ErrCommissionTemplateInvalid = errors.New("commission template invalid")

	ErrDashboardRangeInvalid = errors.New("dashboard range invalid")

	ErrPartnerInactive      = errors.New("partner is not active")
	ErrBookingStatusInvalid = errors.New("booking status transition not allowed")
	ErrBookingTimeInvalid   = errors.New("booking time must be in the future")
)
