package repository

import (
	"errors"

	"github.com/grabhealth-next/internal/models"

	"gorm.io/gorm"
)

// DownlineEntry 下线树成员（含相对层级）
type DownlineEntry struct {
	UserID      uint   `gorm:"column:user_id" json:"user_id"`
	ParentID    uint   `gorm:"column:parent_id" json:"parent_id"`
	Level       int    `gorm:"column:level" json:"level"`
	DisplayName string `gorm:"column:display_name" json:"display_name"`
	Email       string `gorm:"column:email" json:"email"`
	Role        string `gorm:"column:role" json:"role"`
}

// NetworkRepository 推荐网络数据访问接口
type NetworkRepository interface {
	CreateEdge(edge *models.UserNetwork) error
	GetEdgeByUserID(userID uint) (*models.UserNetwork, error)
	ListDirectChildren(parentID uint) ([]models.UserNetwork, error)
	CountDirectChildren(parentID uint) (int64, error)
	ListDescendants(rootID uint) ([]DownlineEntry, error)
}

// GormNetworkRepository GORM 推荐网络仓储
type GormNetworkRepository struct {
	db *gorm.DB
}

// NewNetworkRepository 创建推荐网络仓储
func NewNetworkRepository(db *gorm.DB) *GormNetworkRepository {
	return &GormNetworkRepository{db: db}
}

// CreateEdge 创建推荐边，user_id 唯一索引保证每个用户至多一个上线
func (r *GormNetworkRepository) CreateEdge(edge *models.UserNetwork) error {
	return r.db.Create(edge).Error
}

// GetEdgeByUserID 查询用户的直接上线边
func (r *GormNetworkRepository) GetEdgeByUserID(userID uint) (*models.UserNetwork, error) {
	if userID == 0 {
		return nil, nil
	}
	var edge models.UserNetwork
	if err := r.db.Where("user_id = ?", userID).First(&edge).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &edge, nil
}

// ListDirectChildren 查询直接下线
func (r *GormNetworkRepository) ListDirectChildren(parentID uint) ([]models.UserNetwork, error) {
	if parentID == 0 {
		return []models.UserNetwork{}, nil
	}
	var edges []models.UserNetwork
	if err := r.db.Preload("User").Where("parent_id = ?", parentID).Order("id asc").Find(&edges).Error; err != nil {
		return nil, err
	}
	return edges, nil
}

// CountDirectChildren 统计直接下线数量
func (r *GormNetworkRepository) CountDirectChildren(parentID uint) (int64, error) {
	if parentID == 0 {
		return 0, nil
	}
	var total int64
	if err := r.db.Model(&models.UserNetwork{}).Where("parent_id = ?", parentID).Count(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// ListDescendants 递归查询全部下线，按层级与昵称排序。
// WITH RECURSIVE 在 sqlite 与 postgres 下语法一致。
func (r *GormNetworkRepository) ListDescendants(rootID uint) ([]DownlineEntry, error) {
	if rootID == 0 {
		return []DownlineEntry{}, nil
	}
	const query = `
WITH RECURSIVE descendants(user_id, parent_id, level) AS (
    SELECT user_id, parent_id, 1
    FROM user_networks
    WHERE parent_id = ?
    UNION ALL
    SELECT un.user_id, un.parent_id, d.level + 1
    FROM user_networks un
    JOIN descendants d ON un.parent_id = d.user_id
)
SELECT d.user_id, d.parent_id, d.level, u.display_name, u.email, u.role
FROM descendants d
JOIN users u ON u.id = d.user_id
WHERE u.deleted_at IS NULL
ORDER BY d.level ASC, u.display_name ASC, d.user_id ASC`

	var rows []DownlineEntry
	if err := r.db.Raw(query, rootID).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
