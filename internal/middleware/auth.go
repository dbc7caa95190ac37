package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/auth"
	"github.com/yukikurage/todo-team-api/internal/constants"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/metrics"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/services"
)

// RequireAuth resolves the caller from a bearer token, falling back to the
// session cookie, and rejects requests without an active user.
func RequireAuth(tokens *auth.TokenService, users *services.AuthService, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, reason := resolveUserID(c, tokens)
		if reason != "" {
			m.IncAuthFailure(reason)
			if reason == "token_expired" {
				apierrors.RespondWithError(c, http.StatusUnauthorized, apierrors.NewAPIError(apierrors.ErrCodeTokenExpired, "Access token expired"))
				return
			}
			apierrors.Unauthorized(c, "")
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, services.ErrUserNotFound) {
				m.IncAuthFailure("inactive_user")
				apierrors.Unauthorized(c, "")
				return
			}
			apierrors.FromService(c, err)
			return
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyUser, user)
		c.Next()
	}
}

func resolveUserID(c *gin.Context, tokens *auth.TokenService) (uint64, string) {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, constants.TokenType) || token == "" {
			return 0, "malformed_header"
		}

		claims, err := tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, auth.ErrTokenExpired) {
				return 0, "token_expired"
			}
			return 0, "invalid_token"
		}
		id, err := claims.UserID()
		if err != nil {
			return 0, "invalid_token"
		}
		return id, ""
	}

	session := sessions.Default(c)
	if id, ok := toUserID(session.Get(constants.ContextKeyUserID)); ok {
		return id, ""
	}
	return 0, "missing_credentials"
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUserID(userID)
}

// GetUser retrieves the authenticated user loaded by RequireAuth
func GetUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(constants.ContextKeyUser)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}

func toUserID(v interface{}) (uint64, bool) {
	switch id := v.(type) {
	case uint64:
		return id, id != 0
	case uint:
		return uint64(id), id != 0
	case int:
		if id <= 0 {
			return 0, false
		}
		return uint64(id), true
	default:
		return 0, false
	}
}
