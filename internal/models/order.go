package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID             uint           `gorm:"primarykey" json:"id"`                                         // 主键
	OrderNo        string         `gorm:"uniqueIndex;not null" json:"order_no"`                         // 订单编号
	UserID         uint           `gorm:"index;not null" json:"user_id"`                                // 用户ID
	Status         string         `gorm:"index;not null" json:"status"`                                 // 订单状态
	PaymentStatus  string         `gorm:"index;not null;default:'unpaid'" json:"payment_status"`        // 支付状态（由外部回调或管理员写入）
	Currency       string         `gorm:"not null" json:"currency"`                                     // 币种
	OriginalAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"original_amount"` // 原始金额
	DiscountAmount Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 会员折扣金额
	TotalAmount    Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`    // 实付金额
	TotalPV        int            `gorm:"not null;default:0" json:"total_pv"`                           // 订单积分值合计
	ClientIP       string         `gorm:"type:varchar(64)" json:"client_ip,omitempty"`                  // 下单客户端IP
	ExpiresAt      *time.Time     `gorm:"index" json:"expires_at"`                                      // 未付款过期时间
	PaidAt         *time.Time     `gorm:"index" json:"paid_at"`                                         // 支付时间
	CancelledAt    *time.Time     `gorm:"index" json:"cancelled_at"`                                    // 取消时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                                      // 创建时间
	UpdatedAt      time.Time      `gorm:"index" json:"updated_at"`                                      // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                                               // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	User  *User       `gorm:"foreignKey:UserID" json:"user,omitempty"`   // 下单用户
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
