package models

import "time"

// DistributionStatus is the payout state of a distribution.
type DistributionStatus string

const (
	DistributionStatusPending DistributionStatus = "Pending"
	DistributionStatusPaid    DistributionStatus = "Paid"
)

// DistributionSource names where the distributed capital came from.
type DistributionSource string

const (
	DistributionSourceExit     DistributionSource = "exit"
	DistributionSourceIncome   DistributionSource = "income"
	DistributionSourceInterest DistributionSource = "interest"
)

// Distribution is a payout event from a structure to its investors.
// Append-mostly: the aggregation engine reads these, it never writes them.
type Distribution struct {
	Base
	StructureID      string             `gorm:"type:uuid;not null;index" json:"structure_id"`
	TotalAmount      float64            `gorm:"not null" json:"total_amount"`
	Source           DistributionSource `gorm:"not null;default:'income'" json:"source"`
	Status           DistributionStatus `gorm:"not null;default:'Pending'" json:"status"`
	DistributionDate time.Time          `gorm:"not null" json:"distribution_date"`

	// Relationships
	Structure   Structure                `gorm:"foreignKey:StructureID" json:"structure,omitempty"`
	Allocations []DistributionAllocation `gorm:"foreignKey:DistributionID" json:"allocations,omitempty"`
}

// DistributionAllocation splits a distribution across investors.
type DistributionAllocation struct {
	Base
	DistributionID  string  `gorm:"type:uuid;not null;index" json:"distribution_id"`
	UserID          string  `gorm:"type:uuid;not null;index" json:"user_id"`
	AllocatedAmount float64 `gorm:"not null" json:"allocated_amount"`

	// Relationships
	Distribution Distribution `gorm:"foreignKey:DistributionID" json:"distribution,omitempty"`
}
