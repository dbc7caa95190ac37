package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/dto"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/logging"
	"github.com/yukikurage/todo-team-api/internal/services"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

type UserHandler struct {
	authService  *services.AuthService
	deactivation *services.DeactivationService
}

func NewUserHandler(authService *services.AuthService, deactivation *services.DeactivationService) *UserHandler {
	return &UserHandler{
		authService:  authService,
		deactivation: deactivation,
	}
}

// ListUsers returns active users, one page at a time
func (h *UserHandler) ListUsers(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	users, total, err := h.authService.ListUsers(c.Request.Context(), params)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserListResponse(users, params, total))
}

// GetUser returns an active user
func (h *UserHandler) GetUser(c *gin.Context) {
	userID, ok := pathID(c, "id", "user ID")
	if !ok {
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), userID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// UpdateMe changes the caller's profile
func (h *UserHandler) UpdateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, services.UpdateProfileInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToUserDTO(*user))
}

// DeactivateMe deactivates the caller. With delegate=true owned team
// entities are handed to another team admin instead of being soft-deleted.
func (h *UserHandler) DeactivateMe(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	delegate := false
	if raw := c.Query("delegate"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			apierrors.BadRequest(c, "Invalid delegate flag")
			return
		}
		delegate = v
	}

	if err := h.deactivation.DeactivateUser(c.Request.Context(), userID, delegate); err != nil {
		apierrors.FromService(c, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		logging.WithField("user_id", userID).WithError(err).Warn("Failed to clear session after deactivation")
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User deactivated successfully",
	})
}
