package models

import (
	"time"

	"gorm.io/gorm"
)

type Team struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	InviteCode  string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	Deleted     bool           `gorm:"not null;default:false" json:"deleted"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	Owner    User             `gorm:"foreignKey:OwnerID" json:"-"`
	Members  []TeamMembership `gorm:"foreignKey:TeamID" json:"members,omitempty"`
	Projects []Project        `gorm:"foreignKey:TeamID" json:"-"`
	Todos    []Todo           `gorm:"foreignKey:TeamID" json:"-"`
}
