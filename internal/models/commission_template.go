package models

import (
	"time"

	"gorm.io/gorm"
)

// CommissionTemplate 商品佣金模板（每商品至多一个）
type CommissionTemplate struct {
	ID        uint           `gorm:"primarykey" json:"id"`                   // 主键
	ProductID uint           `gorm:"not null;uniqueIndex" json:"product_id"` // 商品ID
	Name      string         `gorm:"not null" json:"name"`                   // 模板名称
	IsActive  bool           `gorm:"default:true" json:"is_active"`          // 是否启用
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                // 创建时间
	UpdatedAt time.Time      `json:"updated_at"`                             // 更新时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                         // 软删除时间

	Tiers []CommissionTier `gorm:"foreignKey:TemplateID" json:"tiers,omitempty"` // 各层级费率
}

// TableName 指定表名
func (CommissionTemplate) TableName() string {
	return "commission_templates"
}

// CommissionTier 佣金模板层级费率
type CommissionTier struct {
	ID          uint  `gorm:"primarykey" json:"id"`                                                  // 主键
	TemplateID  uint  `gorm:"not null;index;uniqueIndex:idx_commission_tier_unique" json:"template_id"` // 模板ID
	Level       int   `gorm:"not null;uniqueIndex:idx_commission_tier_unique" json:"level"`          // 层级（1 为直接上线）
	RatePercent Money `gorm:"type:decimal(10,2);not null;default:0" json:"rate_percent"`             // 费率（百分比）
}

// TableName 指定表名
func (CommissionTier) TableName() string {
	return "commission_tiers"
}
