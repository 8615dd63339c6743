package services

import (
	"time"

	"altvest/internal/models"
	"altvest/internal/pagination"
)

// Caller is the authenticated identity performing an operation, as resolved
// by the auth middleware. Services never look the role up again.
type Caller struct {
	ID   string
	Role models.Role
}

// Capability is a structure-scoped permission that can be delegated
// through a StructureAdmin grant.
type Capability string

const (
	CapabilityView            Capability = "view"
	CapabilityEdit            Capability = "edit"
	CapabilityDelete          Capability = "delete"
	CapabilityManageInvestors Capability = "manageInvestors"
	CapabilityManageDocuments Capability = "manageDocuments"
)

// AccessServicer resolves effective permissions for a caller on a structure.
type AccessServicer interface {
	// ResolveCapability reports whether the caller holds the capability on the
	// structure. Root always does; the structure's creator always does; other
	// callers only through a grant on that exact structure.
	ResolveCapability(caller Caller, structure *models.Structure, capability Capability) (bool, error)
	// Authorize is ResolveCapability that fails with ErrForbidden on denial.
	Authorize(caller Caller, structure *models.Structure, capability Capability) error
	// CanViewStructure additionally allows read-only visibility for investors
	// linked to the structure.
	CanViewStructure(caller Caller, structure *models.Structure) (bool, error)
}

// CreateStructureInput holds the fields accepted when creating a structure.
type CreateStructureInput struct {
	Name              string
	Description       string
	ParentStructureID *string
	BaseCurrency      string
	ManagementFee     float64
	CarriedInterest   float64
	HurdleRate        float64
	Waterfall         models.WaterfallType
	TermYears         int
	ExtensionYears    int
	VintageDate       *time.Time
	FinalCloseDate    *time.Time
}

// UpdateStructureInput holds the declared-updatable fields of a structure.
// Financial totals are deliberately absent; they go through
// UpdateFinancials only.
type UpdateStructureInput struct {
	Name            *string
	Description     *string
	Status          *models.StructureStatus
	CurrentNAV      *float64
	ManagementFee   *float64
	CarriedInterest *float64
	HurdleRate      *float64
	Waterfall       *models.WaterfallType
	TermYears       *int
	ExtensionYears  *int
	VintageDate     *time.Time
	FinalCloseDate  *time.Time
}

// UpdateFinancialsInput is a partial update of the rollup totals. At least
// one field must be set.
type UpdateFinancialsInput struct {
	TotalCalled      *float64
	TotalDistributed *float64
	TotalInvested    *float64
}

// GrantInput holds the fields for delegating structure access to a user.
type GrantInput struct {
	UserID       string
	Role         models.GrantRole
	Capabilities *models.GrantCapabilities
}

// InvestorInput holds the fields for linking an investor to a structure.
type InvestorInput struct {
	UserID           string
	CommitmentAmount float64
	OwnershipPercent float64
}

// StructureServicer manages the structure hierarchy and its delegated
// grants and investor links.
type StructureServicer interface {
	CreateStructure(caller Caller, input CreateStructureInput) (*models.Structure, error)
	GetStructure(caller Caller, structureID string) (*models.Structure, error)
	ListRootStructures(caller Caller, page pagination.PageRequest) (*pagination.PageResponse[models.Structure], error)
	FindChildren(caller Caller, structureID string, page pagination.PageRequest) (*pagination.PageResponse[models.Structure], error)
	UpdateStructure(caller Caller, structureID string, input UpdateStructureInput) (*models.Structure, error)
	UpdateFinancials(caller Caller, structureID string, input UpdateFinancialsInput) (*models.Structure, error)
	DeleteStructure(caller Caller, structureID string) error

	GrantAdmin(caller Caller, structureID string, input GrantInput) (*models.StructureAdmin, error)
	ListAdmins(caller Caller, structureID string) ([]models.StructureAdmin, error)
	RevokeAdmin(caller Caller, structureID, userID string) error

	AddInvestor(caller Caller, structureID string, input InvestorInput) (*models.StructureInvestorLink, error)
	ListInvestors(caller Caller, structureID string) ([]models.StructureInvestorLink, error)
	RemoveInvestor(caller Caller, structureID, userID string) error
}

// CreateInvestmentInput holds the fields accepted when recording an investment.
type CreateInvestmentInput struct {
	StructureID       string
	Name              string
	Type              models.InvestmentType
	EquityInvested    float64
	PrincipalProvided float64
	InterestRate      float64
	CurrentValue      float64
	TotalInvested     float64
	InvestedDate      *time.Time
}

// UpdateInvestmentInput holds the general-purpose updatable fields.
type UpdateInvestmentInput struct {
	Name         *string
	InterestRate *float64
	InvestedDate *time.Time
}

// UpdatePerformanceInput is a partial update of performance metrics.
type UpdatePerformanceInput struct {
	IRR           *float64
	MOIC          *float64
	CurrentValue  *float64
	TotalInvested *float64
}

// StructurePortfolio summarizes the investments held by one structure.
type StructurePortfolio struct {
	StructureID     string  `json:"structure_id"`
	ActiveCount     int     `json:"active_count"`
	ExitedCount     int     `json:"exited_count"`
	TotalInvested   float64 `json:"total_invested"`
	TotalValue      float64 `json:"total_value"`
	UnrealizedGain  float64 `json:"unrealized_gain"`
	WeightedIRR     float64 `json:"weighted_irr"`
	WeightedMOIC    float64 `json:"weighted_moic"`
	EquityInvested  float64 `json:"equity_invested"`
	DebtOutstanding float64 `json:"debt_outstanding"`
}

// InvestmentServicer manages investment records scoped to a structure.
type InvestmentServicer interface {
	CreateInvestment(caller Caller, input CreateInvestmentInput) (*models.Investment, error)
	GetInvestment(caller Caller, investmentID string) (*models.Investment, error)
	ListInvestments(caller Caller, structureID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	ListActiveInvestments(caller Caller, structureID string, page pagination.PageRequest) (*pagination.PageResponse[models.Investment], error)
	UpdateInvestment(caller Caller, investmentID string, input UpdateInvestmentInput) (*models.Investment, error)
	UpdatePerformance(caller Caller, investmentID string, input UpdatePerformanceInput) (*models.Investment, error)
	MarkExited(caller Caller, investmentID string, exitDate time.Time, equityExitValue *float64) (*models.Investment, error)
	DeleteInvestment(caller Caller, investmentID string) error
	StructurePortfolioSummary(caller Caller, structureID string) (*StructurePortfolio, error)
}

// DashboardStructure is one structure row in an investor dashboard.
type DashboardStructure struct {
	StructureID      string  `json:"structure_id"`
	Name             string  `json:"name"`
	Commitment       float64 `json:"commitment"`
	OwnershipPercent float64 `json:"ownership_percent"`
	CalledCapital    float64 `json:"called_capital"`
	CurrentValue     float64 `json:"current_value"`
	UnrealizedGain   float64 `json:"unrealized_gain"`
}

// DashboardDistribution is one distribution row in an investor dashboard.
type DashboardDistribution struct {
	StructureID   string    `json:"structure_id"`
	StructureName string    `json:"structure_name"`
	Amount        float64   `json:"amount"`
	Date          time.Time `json:"date"`
	Source        string    `json:"source"`
	Status        string    `json:"status"`
}

// DashboardSummary is the consolidated position across all structures.
type DashboardSummary struct {
	TotalCommitment    float64 `json:"total_commitment"`
	TotalCalledCapital float64 `json:"total_called_capital"`
	TotalCurrentValue  float64 `json:"total_current_value"`
	TotalDistributed   float64 `json:"total_distributed"`
	TotalReturn        float64 `json:"total_return"`
	TotalReturnPercent float64 `json:"total_return_percent"`
}

// InvestorDashboard is the full consolidated view for one investor.
type InvestorDashboard struct {
	Structures    []DashboardStructure    `json:"structures"`
	Summary       DashboardSummary        `json:"summary"`
	Distributions []DashboardDistribution `json:"distributions"`
}

// DashboardServicer builds consolidated investor views.
type DashboardServicer interface {
	BuildDashboard(investorUserID string) (*InvestorDashboard, error)
}

// UserServicer defines the contract for user-related business logic.
type UserServicer interface {
	CreateUser(email, password, firstName, lastName string) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByID(id string) (*models.User, error)
	VerifyPassword(user *models.User, password string) bool
	UpdateRole(caller Caller, userID string, role models.Role) (*models.User, error)
}

// AuditServicer defines the contract for audit logging.
type AuditServicer interface {
	Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{})
}
