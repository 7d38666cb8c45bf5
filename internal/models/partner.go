package models

import (
	"time"

	"gorm.io/gorm"
)

// Partner 合作诊所/门店
type Partner struct {
	ID        uint           `gorm:"primarykey" json:"id"`                    // 主键
	Name      string         `gorm:"not null;index" json:"name"`              // 名称
	Email     string         `gorm:"type:varchar(255)" json:"email"`          // 联系邮箱
	Phone     string         `gorm:"type:varchar(64)" json:"phone"`           // 联系电话
	Address   string         `gorm:"type:varchar(500)" json:"address"`        // 地址
	Status    string         `gorm:"default:'active';index" json:"status"`    // 状态
	OwnerID   *uint          `gorm:"index" json:"owner_id,omitempty"`         // 关联的 partner 角色用户
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                 // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                              // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                          // 软删除时间
}

// TableName 指定表名
func (Partner) TableName() string {
	return "partners"
}
