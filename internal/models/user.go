package models

import "time"

// User represents the user model in the database
type User struct {
	Base
	Email       string     `gorm:"uniqueIndex;not null" json:"email"`
	Password    string     `gorm:"not null" json:"-"`
	FirstName   string     `json:"first_name"`
	LastName    string     `json:"last_name"`
	Role        Role       `gorm:"not null;default:3" json:"role"`
	IsActive    bool       `gorm:"default:true" json:"is_active"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Structures  []Structure  `gorm:"foreignKey:CreatedBy" json:"structures,omitempty"`
	Investments []Investment `gorm:"foreignKey:UserID" json:"investments,omitempty"`
}
