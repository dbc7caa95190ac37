package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/dto"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/middleware"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/services"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

type TodoHandler struct {
	todoService *services.TodoService
}

func NewTodoHandler(todoService *services.TodoService) *TodoHandler {
	return &TodoHandler{
		todoService: todoService,
	}
}

// ListTodos returns the todos visible to the current user.
// Filters: type, status, team_id, project_id, assigned_to_me.
func (h *TodoHandler) ListTodos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	input := services.ListTodosInput{
		UserID:     userID,
		Pagination: utils.GetPaginationParams(c),
	}
	if v := c.Query("type"); v != "" {
		t := models.TodoType(v)
		input.Type = &t
	}
	if v := c.Query("status"); v != "" {
		s := models.TodoStatus(v)
		input.Status = &s
	}
	if input.TeamID, ok = optionalQueryID(c, "team_id"); !ok {
		return
	}
	if input.ProjectID, ok = optionalQueryID(c, "project_id"); !ok {
		return
	}
	if v := c.Query("assigned_to_me"); v != "" {
		mine, err := strconv.ParseBool(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assigned_to_me")
			return
		}
		input.AssignedToMe = mine
	}

	todos, total, err := h.todoService.ListTodos(c.Request.Context(), input)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoListResponse(todos, input.Pagination, total))
}

// CreateTodo creates a todo owned by the current user
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateTodoRequest
	if !bindJSON(c, &req) {
		return
	}

	todo, err := h.todoService.CreateTodo(c.Request.Context(), req.ToInput(userID))
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTodoDTO(*todo))
}

// GetTodo returns the todo loaded by RequireTodoAccess
func (h *TodoHandler) GetTodo(c *gin.Context) {
	todo, ok := middleware.GetTodo(c)
	if !ok {
		apierrors.InternalError(c, "Todo not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*todo))
}

// UpdateTodo applies a partial update
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	todo, ok := middleware.GetTodo(c)
	if !ok {
		apierrors.InternalError(c, "Todo not found in context")
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}
	req, err := dto.ParseUpdateTodoRequest(body)
	if err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.todoService.UpdateTodo(c.Request.Context(), todo.ID, userID, req.ToInput())
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTodoDTO(*updated))
}

// DeleteTodo soft-deletes a todo
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	todo, ok := middleware.GetTodo(c)
	if !ok {
		apierrors.InternalError(c, "Todo not found in context")
		return
	}

	if err := h.todoService.DeleteTodo(c.Request.Context(), todo.ID, userID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Todo deleted successfully",
	})
}

// GenerateTodos drafts todos from free text. Nothing is stored.
func (h *TodoHandler) GenerateTodos(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.GenerateTodosRequest
	if !bindJSON(c, &req) {
		return
	}

	drafts, err := h.todoService.GenerateTodos(c.Request.Context(), services.GenerateTodosInput{
		Text:    req.Text,
		OwnerID: userID,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.GenerateTodosResponse{Todos: drafts})
}
