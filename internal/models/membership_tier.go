package models

import (
	"time"

	"gorm.io/gorm"
)

// MembershipTier 会员等级（按累计实付金额晋级）
type MembershipTier struct {
	ID              uint           `gorm:"primarykey" json:"id"`                                           // 主键
	Name            string         `gorm:"uniqueIndex;not null" json:"name"`                               // 等级名称
	MinTotalSpend   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"min_total_spend"`   // 累计实付门槛
	DiscountPercent Money          `gorm:"type:decimal(10,2);not null;default:0" json:"discount_percent"`  // 下单折扣（百分比）
	Rank            int            `gorm:"not null;default:0;index" json:"rank"`                           // 等级顺序（越大越高）
	CreatedAt       time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt       time.Time      `json:"updated_at"`                                                     // 更新时间
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间
}

// TableName 指定表名
func (MembershipTier) TableName() string {
	return "membership_tiers"
}
