package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/constants"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/services"
	"github.com/yukikurage/todo-team-api/internal/utils"
	"gorm.io/gorm"
)

// RequireTodoAccess loads the todo named by the :id parameter if the caller
// can see it. Invisible todos are reported as missing.
func RequireTodoAccess(todos *services.TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		todoID, ok := utils.ParseID(c.Param("id"))
		if !ok {
			apierrors.BadRequest(c, "Invalid todo ID")
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			return
		}

		todo, err := todos.GetTodo(c.Request.Context(), todoID, userID)
		if err != nil {
			if errors.Is(err, services.ErrTodoAccessDenied) {
				apierrors.NotFound(c, "Todo not found")
				return
			}
			apierrors.FromService(c, err)
			return
		}

		c.Set(constants.ContextKeyTodo, todo)
		c.Next()
	}
}

// GetTodo returns the todo loaded by RequireTodoAccess
func GetTodo(c *gin.Context) (*models.Todo, bool) {
	v, exists := c.Get(constants.ContextKeyTodo)
	if !exists {
		return nil, false
	}
	todo, ok := v.(*models.Todo)
	return todo, ok
}

func respondLookupError(c *gin.Context, err error, notFound string) {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		apierrors.NotFound(c, notFound)
		return
	}
	apierrors.FromService(c, err)
}
