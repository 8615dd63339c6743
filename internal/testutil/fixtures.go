package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"altvest/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates an active user with the given role and a unique email.
func CreateTestUser(t *testing.T, db *gorm.DB, role models.Role) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    fmt.Sprintf("user%d@test.com", nextID()),
		Password: string(hash),
		Role:     role,
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestStructure creates a root-level structure owned by ownerID.
func CreateTestStructure(t *testing.T, db *gorm.DB, ownerID string) *models.Structure {
	t.Helper()
	return CreateTestChildStructure(t, db, ownerID, nil, 1)
}

// CreateTestChildStructure creates a structure at the given level under the
// given parent.
func CreateTestChildStructure(t *testing.T, db *gorm.DB, ownerID string, parentID *string, level int) *models.Structure {
	t.Helper()

	structure := &models.Structure{
		Name:              fmt.Sprintf("Test Fund %d", nextID()),
		Status:            models.StructureStatusActive,
		ParentStructureID: parentID,
		HierarchyLevel:    level,
		CreatedBy:         ownerID,
		BaseCurrency:      "USD",
		Waterfall:         models.WaterfallEuropean,
	}
	if err := db.Create(structure).Error; err != nil {
		t.Fatalf("failed to create test structure: %v", err)
	}
	return structure
}

// CreateTestGrant creates a fully-capable admin grant on the structure.
func CreateTestGrant(t *testing.T, db *gorm.DB, structureID, userID, grantedBy string) *models.StructureAdmin {
	t.Helper()
	return CreateTestGrantWithCapabilities(t, db, structureID, userID, grantedBy, models.DefaultGrantCapabilities)
}

// CreateTestGrantWithCapabilities creates an admin grant with explicit flags.
func CreateTestGrantWithCapabilities(t *testing.T, db *gorm.DB, structureID, userID, grantedBy string, caps models.GrantCapabilities) *models.StructureAdmin {
	t.Helper()

	grant := &models.StructureAdmin{
		StructureID:        structureID,
		UserID:             userID,
		Role:               models.GrantRoleAdmin,
		GrantedBy:          grantedBy,
		CanEdit:            caps.CanEdit,
		CanDelete:          caps.CanDelete,
		CanManageInvestors: caps.CanManageInvestors,
		CanManageDocuments: caps.CanManageDocuments,
	}
	if err := db.Create(grant).Error; err != nil {
		t.Fatalf("failed to create test grant: %v", err)
	}
	return grant
}

// CreateTestInvestorLink links an investor to a structure.
func CreateTestInvestorLink(t *testing.T, db *gorm.DB, structureID, userID string, commitment float64) *models.StructureInvestorLink {
	t.Helper()

	link := &models.StructureInvestorLink{
		StructureID:      structureID,
		UserID:           userID,
		CommitmentAmount: commitment,
		OwnershipPercent: 10,
	}
	if err := db.Create(link).Error; err != nil {
		t.Fatalf("failed to create test investor link: %v", err)
	}
	return link
}

// CreateTestInvestment creates an active equity investment under the structure.
func CreateTestInvestment(t *testing.T, db *gorm.DB, structureID, userID string) *models.Investment {
	t.Helper()

	inv := &models.Investment{
		StructureID:    structureID,
		UserID:         userID,
		Name:           fmt.Sprintf("Test Holding %d", nextID()),
		Type:           models.InvestmentTypeEquity,
		Status:         models.InvestmentStatusActive,
		EquityInvested: 100000,
		TotalInvested:  100000,
		CurrentValue:   100000,
	}
	if err := db.Create(inv).Error; err != nil {
		t.Fatalf("failed to create test investment: %v", err)
	}
	return inv
}

// CreateTestCapitalCall creates a capital call with one allocation for userID.
func CreateTestCapitalCall(t *testing.T, db *gorm.DB, structureID, userID string, allocated float64) *models.CapitalCall {
	t.Helper()

	call := &models.CapitalCall{
		StructureID: structureID,
		CallNumber:  int(nextID()),
		TotalAmount: allocated,
		Status:      models.CapitalCallStatusFunded,
		CallDate:    time.Now(),
	}
	if err := db.Create(call).Error; err != nil {
		t.Fatalf("failed to create test capital call: %v", err)
	}

	alloc := &models.CapitalCallAllocation{
		CapitalCallID:   call.ID,
		UserID:          userID,
		AllocatedAmount: allocated,
	}
	if err := db.Create(alloc).Error; err != nil {
		t.Fatalf("failed to create test capital call allocation: %v", err)
	}
	return call
}

// CreateTestDistribution creates a distribution with one allocation for userID.
func CreateTestDistribution(t *testing.T, db *gorm.DB, structureID, userID string, allocated float64, status models.DistributionStatus) *models.Distribution {
	t.Helper()

	dist := &models.Distribution{
		StructureID:      structureID,
		TotalAmount:      allocated,
		Source:           models.DistributionSourceIncome,
		Status:           status,
		DistributionDate: time.Now(),
	}
	if err := db.Create(dist).Error; err != nil {
		t.Fatalf("failed to create test distribution: %v", err)
	}

	alloc := &models.DistributionAllocation{
		DistributionID:  dist.ID,
		UserID:          userID,
		AllocatedAmount: allocated,
	}
	if err := db.Create(alloc).Error; err != nil {
		t.Fatalf("failed to create test distribution allocation: %v", err)
	}
	return dist
}
