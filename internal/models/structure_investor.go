package models

// StructureInvestorLink records the membership of an investor in a
// structure together with their committed amount and ownership share.
// The aggregation engine consumes these read-only.
type StructureInvestorLink struct {
	Base
	StructureID      string  `gorm:"type:uuid;not null;uniqueIndex:idx_structure_investor" json:"structure_id"`
	UserID           string  `gorm:"type:uuid;not null;uniqueIndex:idx_structure_investor" json:"user_id"`
	CommitmentAmount float64 `gorm:"not null;default:0" json:"commitment_amount"`
	OwnershipPercent float64 `gorm:"not null;default:0" json:"ownership_percent"`

	// Relationships
	Structure Structure `gorm:"foreignKey:StructureID" json:"structure,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
