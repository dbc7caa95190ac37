package errors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/logging"
	"github.com/yukikurage/todo-team-api/internal/services"
)

// FromService writes the response matching a service error. Errors without
// a known kind are logged and reported as opaque 500s.
func FromService(c *gin.Context, err error) {
	var missing *services.MissingAdminsError

	switch {
	case errors.As(err, &missing):
		MissingAdmins(c, missing.Teams)
	case errors.Is(err, services.ErrPasswordTooShort):
		BadRequest(c, fmt.Sprintf("Password must be at least %d characters", constants.MinPasswordLength))
	case errors.Is(err, services.ErrValidation):
		BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		InvalidCredentials(c)
	case errors.Is(err, services.ErrUnauthorized):
		Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrForbidden):
		Forbidden(c, err.Error())
	case errors.Is(err, services.ErrNotFound):
		NotFound(c, err.Error())
	case errors.Is(err, services.ErrConflict):
		Conflict(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTodosGenerated),
		errors.Is(err, services.ErrAITooManyTodos),
		errors.Is(err, services.ErrAINoValidTodos):
		RespondWithError(c, http.StatusUnprocessableEntity, NewAPIError(ErrCodeInvalidInput, err.Error()))
	default:
		logging.WithField("path", c.FullPath()).WithError(err).Error("Request failed")
		InternalError(c, "")
	}
}
