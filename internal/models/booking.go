package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking 合作诊所预约
type Booking struct {
	ID             uint           `gorm:"primarykey" json:"id"`                   // 主键
	UserID         uint           `gorm:"not null;index" json:"user_id"`          // 预约用户ID
	PartnerID      uint           `gorm:"not null;index" json:"partner_id"`       // 合作诊所ID
	ServiceName    string         `gorm:"not null" json:"service_name"`           // 预约服务名称
	ScheduledAt    time.Time      `gorm:"not null;index" json:"scheduled_at"`     // 预约时间
	Status         string         `gorm:"default:'pending';index" json:"status"`  // 预约状态
	Notes          string         `gorm:"type:varchar(1000)" json:"notes"`        // 备注
	ReminderSentAt *time.Time     `json:"reminder_sent_at,omitempty"`             // 提醒发送时间
	CreatedAt      time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt      time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	User    *User    `gorm:"foreignKey:UserID" json:"user,omitempty"`       // 预约用户
	Partner *Partner `gorm:"foreignKey:PartnerID" json:"partner,omitempty"` // 合作诊所
}

// TableName 指定表名
func (Booking) TableName() string {
	return "bookings"
}
