package models

import (
	"time"

	"gorm.io/gorm"
)

// Category 商品分类表
type Category struct {
	ID          uint           `gorm:"primarykey" json:"id"`              // 主键
	Slug        string         `gorm:"uniqueIndex;not null" json:"slug"`  // 唯一标识
	Name        string         `gorm:"not null" json:"name"`              // 分类名称
	Description string         `gorm:"type:varchar(500)" json:"description"` // 分类描述
	Icon        string         `gorm:"type:varchar(500)" json:"icon"`     // 分类图标（图片路径）
	SortOrder   int            `gorm:"default:0;index" json:"sort_order"` // 排序权重
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`           // 创建时间
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`                    // 软删除时间
}

// TableName 指定表名
func (Category) TableName() string {
	return "categories"
}
