package constants

// 用户角色常量
const (
	RoleCustomer = "customer"
	RoleSales    = "sales"
	RoleLeader   = "leader"
	RoleManager  = "manager"
	RoleCompany  = "company"
	RoleAdmin    = "admin"
	RolePartner  = "partner"
)

// 可参与佣金结算的角色顺序（由低到高）
var CommissionRoles = []string{RoleCustomer, RoleSales, RoleLeader, RoleManager, RoleCompany}

// 后台可分配的角色集合
var AssignableRoles = []string{RoleCustomer, RoleSales, RoleLeader, RoleManager, RoleCompany, RoleAdmin, RolePartner}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 订单状态常量
const (
	OrderStatusPending    = "pending"
	OrderStatusProcessing = "processing"
	OrderStatusShipped    = "shipped"
	OrderStatusDelivered  = "delivered"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusUnpaid   = "unpaid"
	PaymentStatusPaid     = "paid"
	PaymentStatusFailed   = "failed"
	PaymentStatusRefunded = "refunded"
)

// 佣金状态常量
const (
	CommissionStatusPending   = "pending"
	CommissionStatusApproved  = "approved"
	CommissionStatusPaid      = "paid"
	CommissionStatusCancelled = "cancelled"
)

// 预约状态常量
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

// 合作诊所状态常量
const (
	PartnerStatusActive   = "active"
	PartnerStatusInactive = "inactive"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin = "login"
)

// 推荐网络常量
const (
	ReferralCodeLength    = 8
	ReferralMaxUplineHops = 64
)

// 队列常量
const (
	QueueDefault           = "default"
	TaskCommissionSettle   = "commission:settle"
	TaskBookingReminder    = "booking:reminder"
	TaskOrderTimeoutCancel = "order:timeout_cancel"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "gh"
)

// 设置键常量
const (
	SettingKeySiteConfig       = "site_config"
	SettingKeyOrderConfig      = "order_config"
	SettingKeyCaptchaConfig    = "captcha_config"
	SettingKeyCommissionConfig = "commission_config"

	SettingFieldSiteCurrency         = "currency"
	SettingFieldPaymentExpireMinutes = "payment_expire_minutes"
)

// 币种常量
const (
	SiteCurrencyDefault = "SGD"
)
