package service

import (
	"crypto/rand"
	"math/big"
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
)

// ReferralService 推荐网络业务服务
type ReferralService struct {
	userRepo    repository.UserRepository
	networkRepo repository.NetworkRepository
	maxHops     int
}

// NewReferralService 创建推荐网络服务
func NewReferralService(userRepo repository.UserRepository, networkRepo repository.NetworkRepository, maxHops int) *ReferralService {
	if maxHops <= 0 {
		maxHops = constants.ReferralMaxUplineHops
	}
	return &ReferralService{
		userRepo:    userRepo,
		networkRepo: networkRepo,
		maxHops:     maxHops,
	}
}

// UplineEntry 上线链成员（level=1 为直接上线）
type UplineEntry struct {
	Level       int    `json:"level"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// EnsureReferralCode 惰性生成用户推荐码，已存在时直接返回
func (s *ReferralService) EnsureReferralCode(userID uint) (string, error) {
	if userID == 0 || s.userRepo == nil {
		return "", ErrNotFound
	}
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrNotFound
	}
	if user.ReferralCode != nil && strings.TrimSpace(*user.ReferralCode) != "" {
		return *user.ReferralCode, nil
	}

	const maxRetry = 8
	for i := 0; i < maxRetry; i++ {
		code, genErr := generateReferralCode()
		if genErr != nil {
			return "", genErr
		}
		if err := s.userRepo.UpdateReferralCode(userID, code); err != nil {
			if isUniqueViolation(err) {
				continue
			}
			return "", err
		}
		// 并发下可能有另一请求先写入，以库内值为准
		refreshed, err := s.userRepo.GetByID(userID)
		if err != nil {
			return "", err
		}
		if refreshed != nil && refreshed.ReferralCode != nil && *refreshed.ReferralCode != "" {
			return *refreshed.ReferralCode, nil
		}
	}
	return "", ErrReferralCodeInvalid
}

// ResolveReferrer 按推荐码解析推荐人
func (s *ReferralService) ResolveReferrer(code string) (*models.User, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return nil, nil
	}
	referrer, err := s.userRepo.GetByReferralCode(normalized)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return nil, ErrReferralCodeInvalid
	}
	if strings.TrimSpace(referrer.Status) == constants.UserStatusDisabled {
		return nil, ErrReferralCodeInvalid
	}
	return referrer, nil
}

// AttachReferral 将用户挂到推荐人名下（注册时调用，每用户至多一条边）
func (s *ReferralService) AttachReferral(userID uint, code string) error {
	if userID == 0 || s.networkRepo == nil {
		return ErrNotFound
	}
	referrer, err := s.ResolveReferrer(code)
	if err != nil {
		return err
	}
	if referrer == nil {
		return ErrReferralCodeInvalid
	}
	if referrer.ID == userID {
		return ErrSelfReferral
	}

	existing, err := s.networkRepo.GetEdgeByUserID(userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrAlreadyReferred
	}

	edge := &models.UserNetwork{
		UserID:   userID,
		ParentID: referrer.ID,
		Level:    1,
	}
	if err := s.networkRepo.CreateEdge(edge); err != nil {
		if isUniqueViolation(err) {
			return ErrAlreadyReferred
		}
		return err
	}
	return nil
}

// GetUpline 查询上线链，按距离由近到远排序。
// 边在注册时指向已存在用户，结构上无环；步数上限仅作防御。
func (s *ReferralService) GetUpline(userID uint) ([]UplineEntry, error) {
	if userID == 0 || s.networkRepo == nil {
		return nil, ErrNotFound
	}

	entries := make([]UplineEntry, 0, 4)
	currentID := userID
	for level := 1; level <= s.maxHops; level++ {
		edge, err := s.networkRepo.GetEdgeByUserID(currentID)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			break
		}
		parent, err := s.userRepo.GetByID(edge.ParentID)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			break
		}
		entries = append(entries, UplineEntry{
			Level:       level,
			UserID:      parent.ID,
			DisplayName: parent.DisplayName,
			Email:       parent.Email,
			Role:        parent.Role,
		})
		currentID = parent.ID
	}
	return entries, nil
}

// GetDownline 查询全部下线（含间接），按层级与昵称排序
func (s *ReferralService) GetDownline(userID uint) ([]repository.DownlineEntry, error) {
	if userID == 0 || s.networkRepo == nil {
		return nil, ErrNotFound
	}
	return s.networkRepo.ListDescendants(userID)
}

// CountDirectDownline 统计直接下线数量
func (s *ReferralService) CountDirectDownline(userID uint) (int64, error) {
	if userID == 0 || s.networkRepo == nil {
		return 0, nil
	}
	return s.networkRepo.CountDirectChildren(userID)
}

func generateReferralCode() (string, error) {
	const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	var builder strings.Builder
	builder.Grow(constants.ReferralCodeLength)
	max := big.NewInt(int64(len(alphabet)))
	for i := 0; i < constants.ReferralCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		builder.WriteByte(alphabet[n.Int64()])
	}
	return builder.String(), nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
