package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/middleware"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

// currentUserID aborts with 401 when the request carries no user.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}

func pathID(c *gin.Context, name, label string) (uint64, bool) {
	id, ok := utils.ParseID(c.Param(name))
	if !ok {
		apierrors.BadRequest(c, "Invalid "+label)
		return 0, false
	}
	return id, true
}

// optionalQueryID parses an optional numeric filter. A malformed value
// aborts with 400.
func optionalQueryID(c *gin.Context, name string) (*uint64, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, ok := utils.ParseID(raw)
	if !ok {
		apierrors.BadRequest(c, "Invalid "+name)
		return nil, false
	}
	return &id, true
}

// fieldError describes one failed binding rule.
type fieldError struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
	Param string `json:"param,omitempty"`
}

// bindJSON decodes the request body into req and aborts with 400 when the
// body is malformed or fails its binding rules.
func bindJSON(c *gin.Context, req interface{}) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]fieldError, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldError{Field: fe.Field(), Rule: fe.Tag(), Param: fe.Param()})
		}
		apierrors.BadRequestWithDetails(c, "Invalid request body", gin.H{"fields": fields})
		return false
	}

	apierrors.BadRequest(c, "Invalid request body")
	return false
}
