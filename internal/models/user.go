package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents any party in the supply chain: farmers who deliver milk,
// collectors who record deliveries in the field, staff who approve batches
// and admins. Identity and sessions live in the external identity provider;
// this table only carries the profile the ledger needs to reference.
type User struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	Email      string     `gorm:"uniqueIndex;not null" json:"email"`
	Role       string     `gorm:"default:farmer;index" json:"role"`
	FullName   string     `json:"full_name"`
	Phone      string     `json:"phone"`
	MemberCode string     `gorm:"uniqueIndex" json:"member_code"`
	Route      *string    `json:"route"`
	Status     string     `gorm:"default:active" json:"status"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	DiscardedAt *time.Time `gorm:"index" json:"-"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}

// Role constants
const (
	RoleAdmin     = "admin"
	RoleStaff     = "staff"
	RoleCollector = "collector"
	RoleFarmer    = "farmer"
)

// Status constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// BeforeCreate hook for setting defaults
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Role == "" {
		u.Role = RoleFarmer
	}
	if u.Status == "" {
		u.Status = StatusActive
	}
	return nil
}

// IsAdmin returns true if user has admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsStaff returns true if user has staff or admin role
func (u *User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// IsActive returns true if user status is active
func (u *User) IsActive() bool {
	return u.Status == StatusActive && u.DiscardedAt == nil
}
