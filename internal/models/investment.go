package models

import "time"

// InvestmentType distinguishes the instrument of an investment.
type InvestmentType string

const (
	InvestmentTypeEquity InvestmentType = "EQUITY"
	InvestmentTypeDebt   InvestmentType = "DEBT"
	InvestmentTypeMixed  InvestmentType = "MIXED"
)

// InvestmentStatus is the lifecycle state of an investment.
// The only transition is Active -> Exited.
type InvestmentStatus string

const (
	InvestmentStatusActive InvestmentStatus = "active"
	InvestmentStatusExited InvestmentStatus = "exited"
)

// Investment is a portfolio position held by exactly one structure.
// Equity fields are required for EQUITY and MIXED types, debt fields for
// DEBT and MIXED.
type Investment struct {
	Base
	StructureID string           `gorm:"type:uuid;not null;index" json:"structure_id"`
	UserID      string           `gorm:"type:uuid;not null;index" json:"user_id"`
	Name        string           `gorm:"not null" json:"name"`
	Type        InvestmentType   `gorm:"not null" json:"investment_type"`
	Status      InvestmentStatus `gorm:"not null;default:'active'" json:"status"`

	// Equity leg
	EquityInvested  float64  `json:"equity_invested,omitempty"`
	EquityExitValue *float64 `json:"equity_exit_value,omitempty"`

	// Debt leg
	PrincipalProvided float64 `json:"principal_provided,omitempty"`
	InterestRate      float64 `json:"interest_rate,omitempty"`

	// Performance
	IRR           float64    `json:"irr"`
	MOIC          float64    `json:"moic"`
	CurrentValue  float64    `json:"current_value"`
	TotalInvested float64    `json:"total_invested"`
	InvestedDate  *time.Time `json:"invested_date,omitempty"`
	ExitDate      *time.Time `json:"exit_date,omitempty"`

	// Relationships
	Structure Structure `gorm:"foreignKey:StructureID" json:"structure,omitempty"`
}
