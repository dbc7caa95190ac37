package models

import "time"

type TeamRole string

const (
	RoleBasic TeamRole = "basic"
	RoleAdmin TeamRole = "admin"
)

func (r TeamRole) Valid() bool {
	switch r {
	case RoleBasic, RoleAdmin:
		return true
	}
	return false
}

// TeamMembership is unique per (team, member). The id gives delegate
// resolution a stable order.
type TeamMembership struct {
	ID       uint64    `gorm:"primarykey" json:"id"`
	TeamID   uint64    `gorm:"not null;uniqueIndex:idx_team_member" json:"team_id"`
	MemberID uint64    `gorm:"not null;uniqueIndex:idx_team_member;index" json:"member_id"`
	Role     TeamRole  `gorm:"type:varchar(20);not null;default:'basic'" json:"role"`
	JoinedAt time.Time `json:"joined_at"`

	// Relations
	Team   Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	Member User `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
