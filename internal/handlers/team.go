package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/dto"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/middleware"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/services"
)

type TeamHandler struct {
	teamService *services.TeamService
}

func NewTeamHandler(teamService *services.TeamService) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
	}
}

// CreateTeam creates a team with the caller as its first admin
func (h *TeamHandler) CreateTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.CreateTeam(c.Request.Context(), services.CreateTeamInput{
		Title:       req.Title,
		Description: req.Description,
		OwnerID:     userID,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTeamDTO(*team, true))
}

// ListTeams returns all teams the user is a member of
func (h *TeamHandler) ListTeams(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	memberships, err := h.teamService.ListTeamsForUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	teams := make([]dto.TeamWithRoleDTO, len(memberships))
	for i, m := range memberships {
		teams[i] = dto.ToTeamWithRoleDTO(m)
	}

	c.JSON(http.StatusOK, gin.H{
		"teams": teams,
	})
}

// GetTeam returns team details. The team is loaded by RequireTeamMember.
func (h *TeamHandler) GetTeam(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}

	_, members, err := h.teamService.GetTeamWithMembers(c.Request.Context(), team.ID, member.MemberID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDetailDTO(*team, members, member.Role))
}

func (h *TeamHandler) UpdateTeam(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}

	var req dto.UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	updated, err := h.teamService.UpdateTeam(c.Request.Context(), team.ID, member.MemberID, services.UpdateTeamInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamDTO(*updated, true))
}

// DeleteTeam soft-deletes the team with its projects and todos
func (h *TeamHandler) DeleteTeam(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}

	if err := h.teamService.DeleteTeam(c.Request.Context(), team.ID, member.MemberID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Team deleted successfully",
	})
}

// JoinTeam allows a user to join via invite code
func (h *TeamHandler) JoinTeam(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.JoinTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.JoinTeam(c.Request.Context(), userID, req.InviteCode)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTeamWithRoleDTO(models.TeamMembership{
		Team: *team,
		Role: models.RoleBasic,
	}))
}

// RegenerateInviteCode replaces the team's invite code
func (h *TeamHandler) RegenerateInviteCode(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}

	updated, err := h.teamService.RegenerateInviteCode(c.Request.Context(), team.ID, member.MemberID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"invite_code": updated.InviteCode,
	})
}

func (h *TeamHandler) AddMember(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}

	var req dto.AddMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	added, err := h.teamService.AddMember(c.Request.Context(), services.AddMemberInput{
		TeamID:   team.ID,
		ActorID:  member.MemberID,
		MemberID: req.UserID,
		Role:     req.Role,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"team_id":   added.TeamID,
		"user_id":   added.MemberID,
		"role":      added.Role,
		"joined_at": added.JoinedAt,
	})
}

// RemoveMember removes a member; members may remove themselves
func (h *TeamHandler) RemoveMember(c *gin.Context) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "user ID")
	if !ok {
		return
	}

	if err := h.teamService.RemoveMember(c.Request.Context(), team.ID, member.MemberID, targetID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// GrantAdmin promotes a member to admin
func (h *TeamHandler) GrantAdmin(c *gin.Context) {
	h.changeRole(c, h.teamService.AssignRole, models.RoleAdmin)
}

// RevokeAdmin demotes an admin to basic
func (h *TeamHandler) RevokeAdmin(c *gin.Context) {
	h.changeRole(c, h.teamService.RevokeAdmin, models.RoleBasic)
}

type roleChange func(ctx context.Context, changerID, targetID, teamID uint64) error

func (h *TeamHandler) changeRole(c *gin.Context, change roleChange, role models.TeamRole) {
	team, member, ok := teamFromContext(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "user_id", "user ID")
	if !ok {
		return
	}

	if err := change(c.Request.Context(), member.MemberID, targetID, team.ID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"team_id": team.ID,
		"user_id": targetID,
		"role":    role,
	})
}

func teamFromContext(c *gin.Context) (*models.Team, *models.TeamMembership, bool) {
	team, ok := middleware.GetTeam(c)
	if !ok {
		apierrors.InternalError(c, "Team not found in context")
		return nil, nil, false
	}
	member, ok := middleware.GetTeamMember(c)
	if !ok {
		apierrors.InternalError(c, "Team membership not found in context")
		return nil, nil, false
	}
	return team, member, true
}
