package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "altvest/internal/errors"
	"altvest/internal/models"
)

// accessService resolves effective permissions for a (caller, structure)
// pair. Ownership and delegated grants are independent of hierarchy edges:
// holding a capability on a parent structure grants nothing on its children,
// and vice versa.
type accessService struct {
	db *gorm.DB
}

// NewAccessService creates a new AccessServicer.
func NewAccessService(db *gorm.DB) AccessServicer {
	return &accessService{db: db}
}

// ResolveCapability evaluates, in order, first match wins:
//  1. Root role: every capability on every structure.
//  2. Structure creator: every capability on that structure only.
//  3. A StructureAdmin grant on (structure, caller): view unconditionally,
//     other capabilities per the grant's boolean flags.
//  4. Otherwise: denied.
func (s *accessService) ResolveCapability(caller Caller, structure *models.Structure, capability Capability) (bool, error) {
	if caller.Role == models.RoleRoot {
		return true, nil
	}

	if caller.ID == structure.CreatedBy {
		return true, nil
	}

	var grant models.StructureAdmin
	err := s.db.Where("structure_id = ? AND user_id = ?", structure.ID, caller.ID).First(&grant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	switch capability {
	case CapabilityView:
		return true, nil
	case CapabilityEdit:
		return grant.CanEdit, nil
	case CapabilityDelete:
		return grant.CanDelete, nil
	case CapabilityManageInvestors:
		return grant.CanManageInvestors, nil
	case CapabilityManageDocuments:
		return grant.CanManageDocuments, nil
	}
	return false, nil
}

// Authorize resolves the capability and converts a denial into ErrForbidden.
// Callers must invoke this before any mutation; a denial is a terminal,
// client-visible decision and is never retried.
func (s *accessService) Authorize(caller Caller, structure *models.Structure, capability Capability) error {
	allowed, err := s.ResolveCapability(caller, structure, capability)
	if err != nil {
		return err
	}
	if !allowed {
		return apperrors.ErrForbidden
	}
	return nil
}

// CanViewStructure resolves view access including the investor path: a user
// linked to the structure as an investor may read it even without a grant.
func (s *accessService) CanViewStructure(caller Caller, structure *models.Structure) (bool, error) {
	allowed, err := s.ResolveCapability(caller, structure, CapabilityView)
	if err != nil {
		return false, err
	}
	if allowed {
		return true, nil
	}

	var count int64
	if err := s.db.Model(&models.StructureInvestorLink{}).
		Where("structure_id = ? AND user_id = ?", structure.ID, caller.ID).
		Count(&count).Error; err != nil {
		return false, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return count > 0, nil
}
