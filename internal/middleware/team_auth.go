package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/constants"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

// RequireTeamMember checks that the caller belongs to the team named by the
// :id parameter and stores the team and membership in the context.
// Non-members get 404 so team ids are not leaked.
func RequireTeamMember(store repository.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		teamID, ok := utils.ParseID(c.Param("id"))
		if !ok {
			apierrors.BadRequest(c, "Invalid team ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		repos := store.Repositories()
		team, err := repos.Teams.FindByID(c.Request.Context(), teamID)
		if err != nil {
			respondLookupError(c, err, "Team not found")
			return
		}

		member, err := repos.Teams.FindMember(c.Request.Context(), teamID, userID)
		if err != nil {
			respondLookupError(c, err, "Team not found")
			return
		}

		c.Set(constants.ContextKeyTeam, team)
		c.Set(constants.ContextKeyMember, member)
		c.Next()
	}
}

// RequireTeamAdmin must run after RequireTeamMember.
func RequireTeamAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		member, ok := GetTeamMember(c)
		if !ok {
			apierrors.Forbidden(c, "Team access required")
			return
		}
		if member.Role != models.RoleAdmin {
			apierrors.Forbidden(c, "Only team admins can perform this action")
			return
		}
		c.Next()
	}
}

// GetTeam returns the team loaded by RequireTeamMember
func GetTeam(c *gin.Context) (*models.Team, bool) {
	v, exists := c.Get(constants.ContextKeyTeam)
	if !exists {
		return nil, false
	}
	team, ok := v.(*models.Team)
	return team, ok
}

// GetTeamMember returns the caller's membership loaded by RequireTeamMember
func GetTeamMember(c *gin.Context) (*models.TeamMembership, bool) {
	v, exists := c.Get(constants.ContextKeyMember)
	if !exists {
		return nil, false
	}
	member, ok := v.(*models.TeamMembership)
	return member, ok
}
