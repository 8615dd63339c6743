package models

import "time"

// StructureStatus represents the lifecycle state of a structure.
type StructureStatus string

const (
	StructureStatusActive StructureStatus = "active"
	StructureStatusClosed StructureStatus = "closed"
)

// WaterfallType represents the distribution waterfall model of a structure.
type WaterfallType string

const (
	WaterfallEuropean WaterfallType = "european"
	WaterfallAmerican WaterfallType = "american"
)

// MaxHierarchyLevel bounds the depth of the structure tree. A structure at
// this level cannot have children.
const MaxHierarchyLevel = 5

// Structure represents an investment vehicle (fund, SPV, or trust),
// optionally nested under a parent vehicle. The parent reference is weak:
// it never implies ownership of, or access to, the child.
type Structure struct {
	Base
	Name              string          `gorm:"not null" json:"name"`
	Description       string          `json:"description"`
	Status            StructureStatus `gorm:"not null;default:'active'" json:"status"`
	ParentStructureID *string         `gorm:"type:uuid;index" json:"parent_structure_id,omitempty"`
	HierarchyLevel    int             `gorm:"not null;default:1" json:"hierarchy_level"`
	CreatedBy         string          `gorm:"type:uuid;not null;index" json:"created_by"`

	// Rollup totals in BaseCurrency. Mutated only through the financials
	// update path so they stay consistent with recorded allocations.
	BaseCurrency     string  `gorm:"not null;default:'USD'" json:"base_currency"`
	TotalCommitment  float64 `gorm:"not null;default:0" json:"total_commitment"`
	TotalCalled      float64 `gorm:"not null;default:0" json:"total_called"`
	TotalDistributed float64 `gorm:"not null;default:0" json:"total_distributed"`
	TotalInvested    float64 `gorm:"not null;default:0" json:"total_invested"`

	// CurrentNAV is the marked value of the structure. Nil means no mark has
	// been taken yet; consumers fall back to called capital.
	CurrentNAV *float64 `json:"current_nav,omitempty"`

	// Fund terms.
	ManagementFee   float64       `json:"management_fee"`
	CarriedInterest float64       `json:"carried_interest"`
	HurdleRate      float64       `json:"hurdle_rate"`
	Waterfall       WaterfallType `gorm:"default:'european'" json:"waterfall_type"`
	TermYears       int           `json:"term_years"`
	ExtensionYears  int           `json:"extension_years"`
	VintageDate     *time.Time    `json:"vintage_date,omitempty"`
	FinalCloseDate  *time.Time    `json:"final_close_date,omitempty"`

	// Relationships
	Parent      *Structure              `gorm:"foreignKey:ParentStructureID" json:"parent,omitempty"`
	Children    []Structure             `gorm:"foreignKey:ParentStructureID" json:"children,omitempty"`
	Admins      []StructureAdmin        `gorm:"foreignKey:StructureID" json:"admins,omitempty"`
	Investors   []StructureInvestorLink `gorm:"foreignKey:StructureID" json:"investors,omitempty"`
	Investments []Investment            `gorm:"foreignKey:StructureID" json:"investments,omitempty"`
}
