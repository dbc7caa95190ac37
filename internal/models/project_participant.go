package models

import "time"

type ProjectParticipant struct {
	ID            uint64    `gorm:"primarykey" json:"id"`
	ProjectID     uint64    `gorm:"not null;uniqueIndex:idx_project_participant" json:"project_id"`
	ParticipantID uint64    `gorm:"not null;uniqueIndex:idx_project_participant;index" json:"participant_id"`
	JoinedAt      time.Time `json:"joined_at"`

	// Relations
	Project     Project `gorm:"foreignKey:ProjectID" json:"-"`
	Participant User    `gorm:"foreignKey:ParticipantID" json:"participant,omitempty"`
}
