package models

import (
	"time"
)

// UserNetwork 推荐网络边（子节点指向直接上线）
type UserNetwork struct {
	ID        uint      `gorm:"primarykey" json:"id"`                  // 主键
	UserID    uint      `gorm:"not null;uniqueIndex" json:"user_id"`   // 用户ID（每个用户至多一个上线）
	ParentID  uint      `gorm:"not null;index" json:"parent_id"`       // 直接上线用户ID
	Level     int       `gorm:"not null;default:1" json:"level"`       // 相对层级（直接推荐恒为 1）
	CreatedAt time.Time `gorm:"index" json:"created_at"`               // 创建时间

	User   *User `gorm:"foreignKey:UserID" json:"user,omitempty"`     // 下线用户
	Parent *User `gorm:"foreignKey:ParentID" json:"parent,omitempty"` // 上线用户
}

// TableName 指定表名
func (UserNetwork) TableName() string {
	return "user_networks"
}
