package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "altvest/internal/errors"
	"altvest/internal/models"
	"altvest/internal/pagination"
)

// structureService manages the structure tree and its delegated grants.
type structureService struct {
	db     *gorm.DB
	access AccessServicer
}

// NewStructureService creates a new StructureServicer.
func NewStructureService(db *gorm.DB, access AccessServicer) StructureServicer {
	return &structureService{db: db, access: access}
}

// findStructure loads a structure by ID without any access checks.
func (s *structureService) findStructure(structureID string) (*models.Structure, error) {
	var structure models.Structure
	if err := s.db.First(&structure, "id = ?", structureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStructureNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &structure, nil
}

// CreateStructure creates a structure, optionally attached under a parent.
// Only the parent's direct owner (or Root) may attach a child, and the tree
// never exceeds MaxHierarchyLevel. Financial totals start at zero.
func (s *structureService) CreateStructure(caller Caller, input CreateStructureInput) (*models.Structure, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "structure name is required")
	}

	level := 1
	if input.ParentStructureID != nil && *input.ParentStructureID != "" {
		var parent models.Structure
		if err := s.db.First(&parent, "id = ?", *input.ParentStructureID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, apperrors.ErrParentNotFound
			}
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}

		// Attaching a child requires owning the parent. A grant on the parent
		// is not enough: delegated access never crosses hierarchy edges.
		if parent.CreatedBy != caller.ID && caller.Role != models.RoleRoot {
			return nil, apperrors.ErrForbidden
		}

		if parent.HierarchyLevel >= models.MaxHierarchyLevel {
			return nil, apperrors.ErrMaxDepthExceeded
		}
		level = parent.HierarchyLevel + 1
	} else {
		input.ParentStructureID = nil
	}

	currency := input.BaseCurrency
	if currency == "" {
		currency = "USD"
	}
	waterfall := input.Waterfall
	if waterfall == "" {
		waterfall = models.WaterfallEuropean
	}

	structure := &models.Structure{
		Name:              input.Name,
		Description:       input.Description,
		Status:            models.StructureStatusActive,
		ParentStructureID: input.ParentStructureID,
		HierarchyLevel:    level,
		CreatedBy:         caller.ID,
		BaseCurrency:      currency,
		ManagementFee:     input.ManagementFee,
		CarriedInterest:   input.CarriedInterest,
		HurdleRate:        input.HurdleRate,
		Waterfall:         waterfall,
		TermYears:         input.TermYears,
		ExtensionYears:    input.ExtensionYears,
		VintageDate:       input.VintageDate,
		FinalCloseDate:    input.FinalCloseDate,
	}

	if err := s.db.Create(structure).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return structure, nil
}

// GetStructure returns a structure the caller may view, including
// read-only investor visibility.
func (s *structureService) GetStructure(caller Caller, structureID string) (*models.Structure, error) {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	allowed, err := s.access.CanViewStructure(caller, structure)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperrors.ErrForbidden
	}
	return structure, nil
}

// ListRootStructures returns top-level structures owned by the caller.
// Root sees every top-level structure.
func (s *structureService) ListRootStructures(caller Caller, page pagination.PageRequest) (*pagination.PageResponse[models.Structure], error) {
	page.Defaults()

	base := s.db.Model(&models.Structure{}).Where("parent_structure_id IS NULL")
	if caller.Role != models.RoleRoot {
		base = base.Where("created_by = ?", caller.ID)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var structures []models.Structure
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&structures).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(structures, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// FindChildren returns the direct children of a structure the caller may view.
func (s *structureService) FindChildren(caller Caller, structureID string, page pagination.PageRequest) (*pagination.PageResponse[models.Structure], error) {
	if _, err := s.GetStructure(caller, structureID); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Structure{}).Where("parent_structure_id = ?", structureID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var children []models.Structure
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&children).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(children, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// UpdateStructure patches the declared-updatable fields. Financial totals
// are excluded from this path; see UpdateFinancials.
func (s *structureService) UpdateStructure(caller Caller, structureID string, input UpdateStructureInput) (*models.Structure, error) {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(caller, structure, CapabilityEdit); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "structure name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		updates["status"] = *input.Status
	}
	if input.CurrentNAV != nil {
		updates["current_nav"] = *input.CurrentNAV
	}
	if input.ManagementFee != nil {
		updates["management_fee"] = *input.ManagementFee
	}
	if input.CarriedInterest != nil {
		updates["carried_interest"] = *input.CarriedInterest
	}
	if input.HurdleRate != nil {
		updates["hurdle_rate"] = *input.HurdleRate
	}
	if input.Waterfall != nil {
		updates["waterfall"] = *input.Waterfall
	}
	if input.TermYears != nil {
		updates["term_years"] = *input.TermYears
	}
	if input.ExtensionYears != nil {
		updates["extension_years"] = *input.ExtensionYears
	}
	if input.VintageDate != nil {
		updates["vintage_date"] = *input.VintageDate
	}
	if input.FinalCloseDate != nil {
		updates["final_close_date"] = *input.FinalCloseDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(structure).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return structure, nil
}

// UpdateFinancials persists a partial update of the rollup totals. This is
// the single sanctioned mutation path for totals; the caller is trusted to
// keep them consistent with the recorded allocations.
func (s *structureService) UpdateFinancials(caller Caller, structureID string, input UpdateFinancialsInput) (*models.Structure, error) {
	if input.TotalCalled == nil && input.TotalDistributed == nil && input.TotalInvested == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one financial field is required")
	}

	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(caller, structure, CapabilityEdit); err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.TotalCalled != nil {
		if *input.TotalCalled < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_called must be non-negative")
		}
		updates["total_called"] = *input.TotalCalled
	}
	if input.TotalDistributed != nil {
		if *input.TotalDistributed < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_distributed must be non-negative")
		}
		updates["total_distributed"] = *input.TotalDistributed
	}
	if input.TotalInvested != nil {
		if *input.TotalInvested < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "total_invested must be non-negative")
		}
		updates["total_invested"] = *input.TotalInvested
	}

	if err := s.db.Model(structure).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return structure, nil
}

// DeleteStructure soft-deletes a structure. Deletion is blocked while child
// structures exist; the structure's own investments, investor links, and
// grants are soft-deleted with it in the same transaction so no record keeps
// pointing at a deleted structure.
func (s *structureService) DeleteStructure(caller Caller, structureID string) error {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return err
	}

	if err := s.access.Authorize(caller, structure, CapabilityDelete); err != nil {
		return err
	}

	var childCount int64
	if err := s.db.Model(&models.Structure{}).Where("parent_structure_id = ?", structureID).Count(&childCount).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if childCount > 0 {
		return apperrors.ErrStructureHasChildren
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if txErr := tx.Where("structure_id = ?", structureID).Delete(&models.Investment{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Where("structure_id = ?", structureID).Delete(&models.StructureInvestorLink{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Where("structure_id = ?", structureID).Delete(&models.StructureAdmin{}).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		if txErr := tx.Delete(structure).Error; txErr != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, txErr)
		}
		return nil
	})
	return err
}

// GrantAdmin delegates structure access to a user. Only the structure's
// owner or Root may create grants; one grant per (structure, user).
func (s *structureService) GrantAdmin(caller Caller, structureID string, input GrantInput) (*models.StructureAdmin, error) {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	if caller.ID != structure.CreatedBy && caller.Role != models.RoleRoot {
		return nil, apperrors.ErrForbidden
	}

	if input.Role != models.GrantRoleAdmin && input.Role != models.GrantRoleSupport {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "grant role must be admin or support")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var count int64
	if err := s.db.Model(&models.StructureAdmin{}).
		Where("structure_id = ? AND user_id = ?", structureID, input.UserID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateGrant
	}

	caps := models.DefaultGrantCapabilities
	if input.Capabilities != nil {
		caps = *input.Capabilities
	}

	grant := &models.StructureAdmin{
		StructureID:        structureID,
		UserID:             input.UserID,
		Role:               input.Role,
		GrantedBy:          caller.ID,
		CanEdit:            caps.CanEdit,
		CanDelete:          caps.CanDelete,
		CanManageInvestors: caps.CanManageInvestors,
		CanManageDocuments: caps.CanManageDocuments,
	}

	if err := s.db.Create(grant).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return grant, nil
}

// ListAdmins returns the grants on a structure the caller may view.
func (s *structureService) ListAdmins(caller Caller, structureID string) ([]models.StructureAdmin, error) {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(caller, structure, CapabilityView); err != nil {
		return nil, err
	}

	var grants []models.StructureAdmin
	if err := s.db.Preload("User").Where("structure_id = ?", structureID).Find(&grants).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return grants, nil
}

// RevokeAdmin deletes a grant. Only the structure's owner or Root may revoke.
func (s *structureService) RevokeAdmin(caller Caller, structureID, userID string) error {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return err
	}

	if caller.ID != structure.CreatedBy && caller.Role != models.RoleRoot {
		return apperrors.ErrForbidden
	}

	result := s.db.Where("structure_id = ? AND user_id = ?", structureID, userID).Delete(&models.StructureAdmin{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrGrantNotFound
	}
	return nil
}

// AddInvestor links an investor to a structure with their commitment.
func (s *structureService) AddInvestor(caller Caller, structureID string, input InvestorInput) (*models.StructureInvestorLink, error) {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(caller, structure, CapabilityManageInvestors); err != nil {
		return nil, err
	}

	if input.CommitmentAmount < 0 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "commitment_amount must be non-negative")
	}
	if input.OwnershipPercent < 0 || input.OwnershipPercent > 100 {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "ownership_percent must be between 0 and 100")
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", input.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !user.Role.IsAtLeast(models.RoleInvestor) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "guest users cannot be linked as investors")
	}

	var count int64
	if err := s.db.Model(&models.StructureInvestorLink{}).
		Where("structure_id = ? AND user_id = ?", structureID, input.UserID).
		Count(&count).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if count > 0 {
		return nil, apperrors.ErrDuplicateInvestor
	}

	link := &models.StructureInvestorLink{
		StructureID:      structureID,
		UserID:           input.UserID,
		CommitmentAmount: input.CommitmentAmount,
		OwnershipPercent: input.OwnershipPercent,
	}

	if err := s.db.Create(link).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return link, nil
}

// ListInvestors returns the investor links on a structure.
func (s *structureService) ListInvestors(caller Caller, structureID string) ([]models.StructureInvestorLink, error) {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return nil, err
	}

	if err := s.access.Authorize(caller, structure, CapabilityManageInvestors); err != nil {
		return nil, err
	}

	var links []models.StructureInvestorLink
	if err := s.db.Preload("User").Where("structure_id = ?", structureID).Find(&links).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return links, nil
}

// RemoveInvestor unlinks an investor from a structure.
func (s *structureService) RemoveInvestor(caller Caller, structureID, userID string) error {
	structure, err := s.findStructure(structureID)
	if err != nil {
		return err
	}

	if err := s.access.Authorize(caller, structure, CapabilityManageInvestors); err != nil {
		return err
	}

	result := s.db.Where("structure_id = ? AND user_id = ?", structureID, userID).Delete(&models.StructureInvestorLink{})
	if result.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrInvestorLinkNotFound
	}
	return nil
}
