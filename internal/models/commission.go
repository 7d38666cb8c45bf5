package models

import (
	"time"

	"gorm.io/gorm"
)

// Commission 佣金记录（每订单 × 受益人 × 层级一条）
type Commission struct {
	ID           uint           `gorm:"primarykey" json:"id"`                                                         // 主键
	OrderID      uint           `gorm:"not null;index;uniqueIndex:idx_commission_unique" json:"order_id"`             // 触发订单ID
	UserID       uint           `gorm:"not null;index;uniqueIndex:idx_commission_unique" json:"user_id"`              // 受益人用户ID
	Level        int            `gorm:"not null;uniqueIndex:idx_commission_unique" json:"level"`                      // 相对买家的层级（1 为直接上线）
	SourceUserID uint           `gorm:"not null;index" json:"source_user_id"`                                         // 买家用户ID
	BaseAmount   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"base_amount"`                     // 佣金基数金额
	RatePercent  Money          `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"`                    // 有效费率（百分比，多订单项时为加权结果）
	Amount       Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`                          // 佣金金额
	Status       string         `gorm:"type:varchar(32);not null;index;default:'pending'" json:"status"`              // 佣金状态
	ApprovedAt   *time.Time     `gorm:"index" json:"approved_at,omitempty"`                                           // 审批通过时间
	PaidAt       *time.Time     `gorm:"index" json:"paid_at,omitempty"`                                               // 发放时间
	CreatedAt    time.Time      `gorm:"index" json:"created_at"`                                                      // 创建时间
	UpdatedAt    time.Time      `gorm:"index" json:"updated_at"`                                                      // 更新时间
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`                                                               // 软删除时间

	Order      Order `gorm:"foreignKey:OrderID" json:"order,omitempty"`            // 关联订单
	User       *User `gorm:"foreignKey:UserID" json:"user,omitempty"`              // 受益人
	SourceUser *User `gorm:"foreignKey:SourceUserID" json:"source_user,omitempty"` // 买家
}

// TableName 指定表名
func (Commission) TableName() string {
	return "commissions"
}
