package dto

import (
	"time"

	"github.com/yukikurage/todo-team-api/internal/models"
)

// TeamDTO represents a team in API responses
type TeamDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     uint64    `json:"owner_id"`
	InviteCode  string    `json:"invite_code,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// TeamWithRoleDTO represents a team with the caller's role
type TeamWithRoleDTO struct {
	TeamDTO
	Role models.TeamRole `json:"role"`
}

// TeamMemberDTO represents a member of a team
type TeamMemberDTO struct {
	User     UserSummaryDTO  `json:"user"`
	Role     models.TeamRole `json:"role"`
	JoinedAt time.Time       `json:"joined_at"`
}

// TeamDetailDTO represents detailed team information
type TeamDetailDTO struct {
	TeamDTO
	Members  []TeamMemberDTO `json:"members"`
	YourRole models.TeamRole `json:"your_role"`
}

type CreateTeamRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateTeamRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type JoinTeamRequest struct {
	InviteCode string `json:"invite_code" binding:"required"`
}

type AddMemberRequest struct {
	UserID uint64          `json:"user_id" binding:"required"`
	Role   models.TeamRole `json:"role"`
}

// ToTeamDTO converts a Team model. Invite codes are shown to admins only.
func ToTeamDTO(team models.Team, includeInviteCode bool) TeamDTO {
	dto := TeamDTO{
		ID:          team.ID,
		Title:       team.Title,
		Description: team.Description,
		OwnerID:     team.OwnerID,
		CreatedAt:   team.CreatedAt,
	}
	if includeInviteCode {
		dto.InviteCode = team.InviteCode
	}
	return dto
}

// ToTeamWithRoleDTO converts a membership whose team is preloaded
func ToTeamWithRoleDTO(member models.TeamMembership) TeamWithRoleDTO {
	return TeamWithRoleDTO{
		TeamDTO: ToTeamDTO(member.Team, member.Role == models.RoleAdmin),
		Role:    member.Role,
	}
}

// ToTeamMemberDTO converts a membership whose member is preloaded
func ToTeamMemberDTO(member models.TeamMembership) TeamMemberDTO {
	return TeamMemberDTO{
		User:     UserSummaryDTO{ID: member.MemberID, Name: member.Member.Name},
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToTeamDetailDTO converts a team with its members
func ToTeamDetailDTO(team models.Team, members []models.TeamMembership, yourRole models.TeamRole) TeamDetailDTO {
	memberDTOs := make([]TeamMemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToTeamMemberDTO(member)
	}

	return TeamDetailDTO{
		TeamDTO:  ToTeamDTO(team, yourRole == models.RoleAdmin),
		Members:  memberDTOs,
		YourRole: yourRole,
	}
}
