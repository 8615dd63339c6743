package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "altvest/internal/errors"
	"altvest/internal/models"
	"altvest/internal/pagination"
)

// investmentService manages investment records scoped to a structure.
type investmentService struct {
	db     *gorm.DB
	access AccessServicer
}

// NewInvestmentService creates a new InvestmentServicer.
func NewInvestmentService(db *gorm.DB, access AccessServicer) InvestmentServicer {
	return &investmentService{db: db, access: access}
}

// validateTypeFields enforces the type-conditional required fields:
// EQUITY and MIXED need equityInvested > 0, DEBT and MIXED need
// principalProvided > 0 and a non-negative interest rate.
func validateTypeFields(input CreateInvestmentInput) error {
	switch input.Type {
	case models.InvestmentTypeEquity, models.InvestmentTypeDebt, models.InvestmentTypeMixed:
	default:
		return apperrors.WithMessage(apperrors.ErrInvalidInput, "investment_type must be EQUITY, DEBT, or MIXED")
	}

	if input.Type == models.InvestmentTypeEquity || input.Type == models.InvestmentTypeMixed {
		if input.EquityInvested <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "equity_invested must be greater than zero")
		}
	}
	if input.Type == models.InvestmentTypeDebt || input.Type == models.InvestmentTypeMixed {
		if input.PrincipalProvided <= 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "principal_provided must be greater than zero")
		}
		if input.InterestRate < 0 {
			return apperrors.WithMessage(apperrors.ErrInvalidInput, "interest_rate must be non-negative")
		}
	}
	return nil
}

// loadAuthorized loads an investment and authorizes the capability against
// its owning structure.
func (s *investmentService) loadAuthorized(caller Caller, investmentID string, capability Capability) (*models.Investment, error) {
	var investment models.Investment
	if err := s.db.Preload("Structure").First(&investment, "id = ?", investmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrInvestmentNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// The investment's own creator keeps full access, same escalation rule
	// as structure ownership.
	if investment.UserID == caller.ID {
		return &investment, nil
	}

	if err := s.access.Authorize(caller, &investment.Structure, capability); err != nil {
		return nil, err
	}
	return &investment, nil
}

// CreateInvestment records a new investment under a structure.
func (s *investmentService) CreateInvestment(caller Caller, input CreateInvestmentInput) (*models.Investment, error) {
	if input.Name == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investment name is required")
	}
	if err := validateTypeFields(input); err != nil {
		return nil, err
	}

	var structure models.Structure
	if err := s.db.First(&structure, "id = ?", input.StructureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStructureNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.access.Authorize(caller, &structure, CapabilityEdit); err != nil {
		return nil, err
	}

	investment := &models.Investment{
		StructureID:       input.StructureID,
		UserID:            caller.ID,
		Name:              input.Name,
		Type:              input.Type,
		Status:            models.InvestmentStatusActive,
		EquityInvested:    input.EquityInvested,
		PrincipalProvided: input.PrincipalProvided,
		InterestRate:      input.InterestRate,
		CurrentValue:      input.CurrentValue,
		TotalInvested:     input.TotalInvested,
		InvestedDate:      input.InvestedDate,
	}

	if err := s.db.Create(investment).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investment, nil
}

// GetInvestment returns an investment the caller may view.
func (s *investmentService) GetInvestment(caller Caller, investmentID string) (*models.Investment, error) {
	return s.loadAuthorized(caller, investmentID, CapabilityView)
}

func (s *investmentService) listByStructure(caller Caller, structureID string, page pagination.PageRequest, activeOnly bool) (*pagination.PageResponse[models.Investment], error) {
	var structure models.Structure
	if err := s.db.First(&structure, "id = ?", structureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStructureNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.access.Authorize(caller, &structure, CapabilityView); err != nil {
		return nil, err
	}

	page.Defaults()

	base := s.db.Model(&models.Investment{}).Where("structure_id = ?", structureID)
	if activeOnly {
		base = base.Where("status = ?", models.InvestmentStatusActive)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var investments []models.Investment
	if err := base.Order("created_at").Scopes(pagination.Paginate(page)).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(investments, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// ListInvestments returns a paginated list of a structure's investments.
func (s *investmentService) ListInvestments(caller Caller, structureID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	return s.listByStructure(caller, structureID, page, false)
}

// ListActiveInvestments returns only the investments not yet exited.
func (s *investmentService) ListActiveInvestments(caller Caller, structureID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error) {
	return s.listByStructure(caller, structureID, page, true)
}

// UpdateInvestment patches general-purpose fields of an investment.
func (s *investmentService) UpdateInvestment(caller Caller, investmentID string, input UpdateInvestmentInput) (*models.Investment, error) {
	investment, err := s.loadAuthorized(caller, investmentID, CapabilityEdit)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.Name != nil {
		if *input.Name == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "investment name cannot be empty")
		}
		updates["name"] = *input.Name
	}
	if input.InterestRate != nil {
		if *input.InterestRate < 0 {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "interest_rate must be non-negative")
		}
		updates["interest_rate"] = *input.InterestRate
	}
	if input.InvestedDate != nil {
		updates["invested_date"] = *input.InvestedDate
	}

	if len(updates) > 0 {
		if err := s.db.Model(investment).Updates(updates).Error; err != nil {
			return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
	}
	return investment, nil
}

// UpdatePerformance patches the performance metrics of an investment.
func (s *investmentService) UpdatePerformance(caller Caller, investmentID string, input UpdatePerformanceInput) (*models.Investment, error) {
	if input.IRR == nil && input.MOIC == nil && input.CurrentValue == nil && input.TotalInvested == nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "at least one performance field is required")
	}

	investment, err := s.loadAuthorized(caller, investmentID, CapabilityEdit)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if input.IRR != nil {
		updates["irr"] = *input.IRR
	}
	if input.MOIC != nil {
		updates["moic"] = *input.MOIC
	}
	if input.CurrentValue != nil {
		updates["current_value"] = *input.CurrentValue
	}
	if input.TotalInvested != nil {
		updates["total_invested"] = *input.TotalInvested
	}

	if err := s.db.Model(investment).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investment, nil
}

// MarkExited performs the one-way Active -> Exited transition. Exiting an
// already-exited investment fails with INVESTMENT_EXITED.
func (s *investmentService) MarkExited(caller Caller, investmentID string, exitDate time.Time, equityExitValue *float64) (*models.Investment, error) {
	investment, err := s.loadAuthorized(caller, investmentID, CapabilityEdit)
	if err != nil {
		return nil, err
	}

	if investment.Status == models.InvestmentStatusExited {
		return nil, apperrors.ErrInvestmentExited
	}

	updates := map[string]interface{}{
		"status":    models.InvestmentStatusExited,
		"exit_date": exitDate,
	}
	if equityExitValue != nil {
		updates["equity_exit_value"] = *equityExitValue
	}

	if err := s.db.Model(investment).Updates(updates).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return investment, nil
}

// DeleteInvestment soft-deletes an investment.
func (s *investmentService) DeleteInvestment(caller Caller, investmentID string) error {
	investment, err := s.loadAuthorized(caller, investmentID, CapabilityDelete)
	if err != nil {
		return err
	}

	if err := s.db.Delete(investment).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// StructurePortfolioSummary aggregates the investments held by a structure.
// IRR and MOIC are weighted by invested capital.
func (s *investmentService) StructurePortfolioSummary(caller Caller, structureID string) (*StructurePortfolio, error) {
	var structure models.Structure
	if err := s.db.First(&structure, "id = ?", structureID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrStructureNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	if err := s.access.Authorize(caller, &structure, CapabilityView); err != nil {
		return nil, err
	}

	var investments []models.Investment
	if err := s.db.Where("structure_id = ?", structureID).Find(&investments).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	summary := &StructurePortfolio{StructureID: structureID}
	var weightedIRR, weightedMOIC float64
	for i := range investments {
		inv := &investments[i]
		if inv.Status == models.InvestmentStatusActive {
			summary.ActiveCount++
		} else {
			summary.ExitedCount++
		}
		summary.TotalInvested += inv.TotalInvested
		summary.TotalValue += inv.CurrentValue
		summary.EquityInvested += inv.EquityInvested
		if inv.Status == models.InvestmentStatusActive {
			summary.DebtOutstanding += inv.PrincipalProvided
		}
		weightedIRR += inv.IRR * inv.TotalInvested
		weightedMOIC += inv.MOIC * inv.TotalInvested
	}

	summary.UnrealizedGain = summary.TotalValue - summary.TotalInvested
	if summary.TotalInvested > 0 {
		summary.WeightedIRR = weightedIRR / summary.TotalInvested
		summary.WeightedMOIC = weightedMOIC / summary.TotalInvested
	}
	return summary, nil
}
