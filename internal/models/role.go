package models

import "fmt"

// Role is the global privilege level of a user. Lower values carry broader
// privilege: Root outranks Admin, Admin outranks Support, and so on.
type Role int

const (
	RoleRoot     Role = 0
	RoleAdmin    Role = 1
	RoleSupport  Role = 2
	RoleInvestor Role = 3
	RoleGuest    Role = 4
)

// Valid reports whether r is one of the five defined roles.
func (r Role) Valid() bool {
	return r >= RoleRoot && r <= RoleGuest
}

// IsAtLeast reports whether r carries at least the privilege of threshold.
// Privilege comparisons must go through this method; raw numeric comparison
// outside the Role type is not allowed.
func (r Role) IsAtLeast(threshold Role) bool {
	return r <= threshold
}

// String returns the role name for logging and API responses.
func (r Role) String() string {
	switch r {
	case RoleRoot:
		return "root"
	case RoleAdmin:
		return "admin"
	case RoleSupport:
		return "support"
	case RoleInvestor:
		return "investor"
	case RoleGuest:
		return "guest"
	}
	return fmt.Sprintf("unknown(%d)", int(r))
}

// ParseRole converts an externally supplied role code into a Role.
func ParseRole(code int) (Role, error) {
	r := Role(code)
	if !r.Valid() {
		return 0, fmt.Errorf("invalid role code %d", code)
	}
	return r, nil
}
