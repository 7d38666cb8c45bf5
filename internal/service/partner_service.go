package service

import (
	"strings"

	"github.com/grabhealth-next/internal/constants"
	"github.com/grabhealth-next/internal/models"
	"github.com/grabhealth-next/internal/repository"
)

// PartnerService 合作门店业务服务
type PartnerService struct {
	repo     repository.PartnerRepository
	userRepo repository.UserRepository
}

// NewPartnerService 创建合作门店服务
func NewPartnerService(repo repository.PartnerRepository, userRepo repository.UserRepository) *PartnerService {
	return &PartnerService{repo: repo, userRepo: userRepo}
}

// List 门店列表
func (s *PartnerService) List(filter repository.PartnerListFilter) ([]models.Partner, int64, error) {
	return s.repo.List(filter)
}

// GetByID 查询门店
func (s *PartnerService) GetByID(id uint) (*models.Partner, error) {
	partner, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNotFound
	}
	return partner, nil
}

// GetActiveByID 查询营业中门店
func (s *PartnerService) GetActiveByID(id uint) (*models.Partner, error) {
	partner, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if partner.Status != constants.PartnerStatusActive {
		return nil, ErrPartnerInactive
	}
	return partner, nil
}

// GetByOwner 查询用户名下门店
func (s *PartnerService) GetByOwner(ownerID uint) (*models.Partner, error) {
	if ownerID == 0 {
		return nil, ErrNotFound
	}
	partner, err := s.repo.GetByOwnerID(ownerID)
	if err != nil {
		return nil, err
	}
	if partner == nil {
		return nil, ErrNotFound
	}
	return partner, nil
}

// Create 创建门店。指定 owner 时将其角色提升为 partner。
func (s *PartnerService) Create(partner *models.Partner) error {
	if partner == nil || strings.TrimSpace(partner.Name) == "" {
		return ErrNotFound
	}
	partner.Name = strings.TrimSpace(partner.Name)
	if partner.Status == "" {
		partner.Status = constants.PartnerStatusActive
	}
	if partner.OwnerID != nil {
		if err := s.promoteOwner(*partner.OwnerID); err != nil {
			return err
		}
	}
	return s.repo.Create(partner)
}

// Update 更新门店
func (s *PartnerService) Update(partner *models.Partner) error {
	if partner == nil || partner.ID == 0 {
		return ErrNotFound
	}
	existing, err := s.repo.GetByID(partner.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	if partner.OwnerID != nil && (existing.OwnerID == nil || *existing.OwnerID != *partner.OwnerID) {
		if err := s.promoteOwner(*partner.OwnerID); err != nil {
			return err
		}
	}
	return s.repo.Update(partner)
}

// Delete 删除门店
func (s *PartnerService) Delete(id uint) error {
	if id == 0 {
		return ErrNotFound
	}
	return s.repo.Delete(id)
}

func (s *PartnerService) promoteOwner(ownerID uint) error {
	if s.userRepo == nil {
		return nil
	}
	owner, err := s.userRepo.GetByID(ownerID)
	if err != nil {
		return err
	}
	if owner == nil {
		return ErrNotFound
	}
	if owner.Role == constants.RolePartner || owner.Role == constants.RoleAdmin {
		return nil
	}
	return s.userRepo.UpdateRole(ownerID, constants.RolePartner)
}
