package models

import "time"

// CapitalCallStatus is the settlement state of a capital call.
type CapitalCallStatus string

const (
	CapitalCallStatusPending CapitalCallStatus = "Pending"
	CapitalCallStatusFunded  CapitalCallStatus = "Funded"
)

// CapitalCall asks the investors of a structure to fund a portion of their
// commitment. Append-mostly: the aggregation engine reads these, it never
// writes them.
type CapitalCall struct {
	Base
	StructureID string            `gorm:"type:uuid;not null;index" json:"structure_id"`
	CallNumber  int               `gorm:"not null" json:"call_number"`
	TotalAmount float64           `gorm:"not null" json:"total_amount"`
	Purpose     string            `json:"purpose"`
	Status      CapitalCallStatus `gorm:"not null;default:'Pending'" json:"status"`
	CallDate    time.Time         `gorm:"not null" json:"call_date"`
	DueDate     *time.Time        `json:"due_date,omitempty"`

	// Relationships
	Structure   Structure               `gorm:"foreignKey:StructureID" json:"structure,omitempty"`
	Allocations []CapitalCallAllocation `gorm:"foreignKey:CapitalCallID" json:"allocations,omitempty"`
}

// CapitalCallAllocation splits a capital call across investors.
type CapitalCallAllocation struct {
	Base
	CapitalCallID   string  `gorm:"type:uuid;not null;index" json:"capital_call_id"`
	UserID          string  `gorm:"type:uuid;not null;index" json:"user_id"`
	AllocatedAmount float64 `gorm:"not null" json:"allocated_amount"`

	// Relationships
	CapitalCall CapitalCall `gorm:"foreignKey:CapitalCallID" json:"capital_call,omitempty"`
}
