package services

import (
	"math"

	"gorm.io/gorm"

	apperrors "altvest/internal/errors"
	"altvest/internal/models"
)

// unknownStructureLabel is attached to a distribution whose structure is not
// among the investor's linked structures. Degraded data is surfaced, never
// silently dropped.
const unknownStructureLabel = "Unknown Structure"

// dashboardService builds consolidated investor views by fanning out over
// investor links, capital-call allocations, and distribution allocations.
// It is read-only and idempotent: unchanged records yield identical output.
type dashboardService struct {
	db *gorm.DB
}

// NewDashboardService creates a new DashboardServicer.
func NewDashboardService(db *gorm.DB) DashboardServicer {
	return &dashboardService{db: db}
}

// round2 rounds to 2 decimal places. Applied only at the output boundary;
// all internal arithmetic runs at full precision.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// BuildDashboard computes the consolidated financial position of one
// investor across every structure they are linked to.
func (s *dashboardService) BuildDashboard(investorUserID string) (*InvestorDashboard, error) {
	var links []models.StructureInvestorLink
	if err := s.db.Preload("Structure").Where("user_id = ?", investorUserID).
		Order("created_at").Find(&links).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	// Called capital per structure: sum the investor's capital-call
	// allocations grouped by the call's structure.
	var callAllocations []models.CapitalCallAllocation
	if err := s.db.Preload("CapitalCall").Where("user_id = ?", investorUserID).
		Find(&callAllocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	calledByStructure := make(map[string]float64)
	for i := range callAllocations {
		alloc := &callAllocations[i]
		calledByStructure[alloc.CapitalCall.StructureID] += alloc.AllocatedAmount
	}

	dashboard := &InvestorDashboard{
		Structures:    make([]DashboardStructure, 0, len(links)),
		Distributions: []DashboardDistribution{},
	}

	structureNames := make(map[string]string, len(links))
	var totalCommitment, totalCalled, totalValue float64

	for i := range links {
		link := &links[i]
		structure := &link.Structure
		structureNames[structure.ID] = structure.Name

		called := calledByStructure[structure.ID]

		// A structure with no NAV mark is valued at cost.
		currentValue := called
		if structure.CurrentNAV != nil {
			currentValue = *structure.CurrentNAV
		}

		totalCommitment += link.CommitmentAmount
		totalCalled += called
		totalValue += currentValue

		dashboard.Structures = append(dashboard.Structures, DashboardStructure{
			StructureID:      structure.ID,
			Name:             structure.Name,
			Commitment:       round2(link.CommitmentAmount),
			OwnershipPercent: round2(link.OwnershipPercent),
			CalledCapital:    round2(called),
			CurrentValue:     round2(currentValue),
			UnrealizedGain:   round2(currentValue - called),
		})
	}

	var distAllocations []models.DistributionAllocation
	if err := s.db.Preload("Distribution").Where("user_id = ?", investorUserID).
		Find(&distAllocations).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var totalDistributed float64
	for i := range distAllocations {
		alloc := &distAllocations[i]
		dist := &alloc.Distribution

		name, ok := structureNames[dist.StructureID]
		if !ok {
			name = unknownStructureLabel
		}

		if dist.Status == models.DistributionStatusPaid {
			totalDistributed += alloc.AllocatedAmount
		}

		dashboard.Distributions = append(dashboard.Distributions, DashboardDistribution{
			StructureID:   dist.StructureID,
			StructureName: name,
			Amount:        round2(alloc.AllocatedAmount),
			Date:          dist.DistributionDate,
			Source:        string(dist.Source),
			Status:        string(dist.Status),
		})
	}

	totalReturn := (totalDistributed + totalValue) - totalCalled
	var totalReturnPercent float64
	if totalCalled > 0 {
		totalReturnPercent = 100 * totalReturn / totalCalled
	}

	dashboard.Summary = DashboardSummary{
		TotalCommitment:    round2(totalCommitment),
		TotalCalledCapital: round2(totalCalled),
		TotalCurrentValue:  round2(totalValue),
		TotalDistributed:   round2(totalDistributed),
		TotalReturn:        round2(totalReturn),
		TotalReturnPercent: round2(totalReturnPercent),
	}

	return dashboard, nil
}
