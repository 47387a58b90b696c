// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// Role is the capability level of an account.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents an account that can browse the catalog and file requests.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FullName  string    `gorm:"size:200;not null" json:"full_name"`
	Role      Role      `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	GoogleID  *string   `gorm:"size:128;index" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
