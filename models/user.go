package models

import (
	"time"
)

// Role values. Roles are fixed at account creation and never change.
const (
	RoleStudent    = "student"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "admin"
)

type User struct {
	UserID    uint      `gorm:"primaryKey;column:user_id" json:"user_id"`
	Email     string    `gorm:"column:email;unique" json:"email"`
	Password  string    `gorm:"column:password" json:"-"`
	FirstName string    `gorm:"column:first_name" json:"first_name"`
	LastName  string    `gorm:"column:last_name" json:"last_name"`
	Role      string    `gorm:"column:role" json:"role"`
	CreatedAt time.Time `gorm:"column:created_at" json:"created_at"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (u *User) IsStudent() bool {
	return u != nil && u.Role == RoleStudent
}

func (u *User) IsSupervisor() bool {
	return u != nil && u.Role == RoleSupervisor
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// IsStaff reports whether the user holds a supervisor or admin role.
func (u *User) IsStaff() bool {
	return u.IsSupervisor() || u.IsAdmin()
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	switch role {
	case RoleStudent, RoleSupervisor, RoleAdmin:
		return true
	}
	return false
}
