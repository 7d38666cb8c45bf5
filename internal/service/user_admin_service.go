package service

import (
	"context"
	"strings"

	"github.com/grabhealth-next/internal/cache"
	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
)

// UserAdminService 后台用户管理服务
type UserAdminService struct {
	userRepo        repository.UserRepository
	referralService *ReferralService
}

// NewUserAdminService 创建后台用户管理服务
func NewUserAdminService(userRepo repository.UserRepository, referralService *ReferralService) *UserAdminService {
	return &UserAdminService{userRepo: userRepo, referralService: referralService}
}

// List 用户列表
func (s *UserAdminService) List(filter repository.UserListFilter) ([]models.User, int64, error) {
	return s.userRepo.List(filter)
}

// GetDetail 用户详情（附带直接下线数量）
func (s *UserAdminService) GetDetail(userID uint) (*models.User, int64, error) {
	if userID == 0 {
		return nil, 0, ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, 0, err
	}
	if user == nil {
		return nil, 0, ErrNotFound
	}

	var directDownline int64
	if s.referralService != nil {
		directDownline, err = s.referralService.CountDirectDownline(userID)
		if err != nil {
			return nil, 0, err
		}
	}
	return user, directDownline, nil
}

// UpdateRole 调整用户角色
func (s *UserAdminService) UpdateRole(userID uint, role string) (*models.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(role))
	if !isAssignableRole(normalized) {
		return nil, ErrRoleInvalid
	}

	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	if user.Role == normalized {
		return user, nil
	}
	if err := s.userRepo.UpdateRole(userID, normalized); err != nil {
		return nil, err
	}
	user.Role = normalized
	_ = cache.SetUserAuthState(context.Background(), cache.BuildUserAuthState(user))
	return user, nil
}

// BatchUpdateStatus 批量启用/停用用户。停用会递增 token_version 使已签发 token 失效。
func (s *UserAdminService) BatchUpdateStatus(userIDs []uint, status string) error {
	normalized := strings.ToLower(strings.TrimSpace(status))
	switch normalized {
	case constants.UserStatusActive, constants.UserStatusDisabled:
	default:
		return ErrUserStatusInvalid
	}

	ids := normalizeIDs(userIDs)
	if len(ids) == 0 {
		return nil
	}
	if err := s.userRepo.BatchUpdateStatus(ids, normalized); err != nil {
		return err
	}
	for _, id := range ids {
		_ = cache.DelUserAuthState(context.Background(), id)
	}
	return nil
}

func isAssignableRole(role string) bool {
	for _, candidate := range constants.AssignableRoles {
		if candidate == role {
			return true
		}
	}
	return false
}
