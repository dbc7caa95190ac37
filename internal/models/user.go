package models

import (
	"time"
)

type User struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	Name         string     `gorm:"type:varchar(255);index;not null" json:"name"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"type:varchar(255);not null" json:"-"`
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin    *time.Time `json:"last_login"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`

	// Relations
	Todos       []Todo           `gorm:"foreignKey:OwnerID" json:"-"`
	Projects    []Project        `gorm:"foreignKey:OwnerID" json:"-"`
	Teams       []Team           `gorm:"foreignKey:OwnerID" json:"-"`
	Memberships []TeamMembership `gorm:"foreignKey:MemberID" json:"-"`
}
