package models

import (
	"time"

	"gorm.io/gorm"
)

type ProjectType string

const (
	ProjectTypePersonal ProjectType = "personal"
	ProjectTypeTeam     ProjectType = "team"
)

func (t ProjectType) Valid() bool {
	switch t {
	case ProjectTypePersonal, ProjectTypeTeam:
		return true
	}
	return false
}

type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Type        ProjectType    `gorm:"type:varchar(20);not null;default:'personal'" json:"type"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	TeamID      *uint64        `gorm:"index" json:"team_id"`
	Deleted     bool           `gorm:"not null;default:false" json:"deleted"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	Owner        User                 `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Team         *Team                `gorm:"foreignKey:TeamID" json:"-"`
	Todos        []Todo               `gorm:"foreignKey:ProjectID" json:"-"`
	Participants []ProjectParticipant `gorm:"foreignKey:ProjectID" json:"participants,omitempty"`
}
