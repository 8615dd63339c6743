package models

// GrantRole is the delegated role carried by a structure admin grant.
// Only Admin and Support may be delegated.
type GrantRole string

const (
	GrantRoleAdmin   GrantRole = "admin"
	GrantRoleSupport GrantRole = "support"
)

// StructureAdmin is a delegated, structure-scoped permission grant. A grant
// applies to exactly one structure: it never extends to the structure's
// parent or children. At most one grant exists per (structure, user) pair.
type StructureAdmin struct {
	Base
	StructureID string    `gorm:"type:uuid;not null;uniqueIndex:idx_structure_admin" json:"structure_id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_structure_admin" json:"user_id"`
	Role        GrantRole `gorm:"not null" json:"role"`
	GrantedBy   string    `gorm:"type:uuid;not null" json:"granted_by"`

	// No column defaults here: GORM omits zero-value fields when a default
	// tag is present, which would silently widen a grant created with a
	// withheld flag. DefaultGrantCapabilities is applied by the service.
	CanEdit            bool `gorm:"not null" json:"can_edit"`
	CanDelete          bool `gorm:"not null" json:"can_delete"`
	CanManageInvestors bool `gorm:"not null" json:"can_manage_investors"`
	CanManageDocuments bool `gorm:"not null" json:"can_manage_documents"`

	// Relationships
	Structure Structure `gorm:"foreignKey:StructureID" json:"structure,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// GrantCapabilities holds the capability flags of a grant. Used to apply
// explicit named defaults instead of inline literals when creating grants.
type GrantCapabilities struct {
	CanEdit            bool `json:"can_edit"`
	CanDelete          bool `json:"can_delete"`
	CanManageInvestors bool `json:"can_manage_investors"`
	CanManageDocuments bool `json:"can_manage_documents"`
}

// DefaultGrantCapabilities are applied when a grant is created without
// explicit flags: a fresh grant is fully capable until narrowed.
var DefaultGrantCapabilities = GrantCapabilities{
	CanEdit:            true,
	CanDelete:          true,
	CanManageInvestors: true,
	CanManageDocuments: true,
}
