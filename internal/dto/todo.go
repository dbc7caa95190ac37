package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/services"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

// TodoDTO represents a todo in API responses
type TodoDTO struct {
	ID          uint64              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TodoStatus   `json:"status"`
	Priority    models.TodoPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	Type        models.TodoType     `json:"type"`
	OwnerID     uint64              `json:"owner_id"`
	AssigneeID  *uint64             `json:"assignee_id"`
	TeamID      *uint64             `json:"team_id"`
	ProjectID   *uint64             `json:"project_id"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
	Owner       *UserSummaryDTO     `json:"owner,omitempty"`
	Assignee    *UserSummaryDTO     `json:"assignee,omitempty"`
}

// TodoListResponse represents a paginated list of todos
type TodoListResponse struct {
	Todos      []TodoDTO                `json:"todos"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type CreateTodoRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Status      models.TodoStatus   `json:"status"`
	Priority    models.TodoPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
	Type        models.TodoType     `json:"type"`
	TeamID      *uint64             `json:"team_id"`
	ProjectID   *uint64             `json:"project_id"`
	AssigneeID  *uint64             `json:"assignee_id"`
}

// ToInput builds the service input for the given owner
func (r CreateTodoRequest) ToInput(ownerID uint64) services.CreateTodoInput {
	return services.CreateTodoInput{
		Title:       r.Title,
		Description: r.Description,
		Status:      r.Status,
		Priority:    r.Priority,
		DueDate:     r.DueDate,
		Type:        r.Type,
		TeamID:      r.TeamID,
		ProjectID:   r.ProjectID,
		AssigneeID:  r.AssigneeID,
		OwnerID:     ownerID,
	}
}

// UpdateTodoRequest is a partial update. Absent keys leave the stored value
// alone; an explicit null clears due_date or assignee_id.
type UpdateTodoRequest struct {
	Title       *string              `json:"title"`
	Description *string              `json:"description"`
	Status      *models.TodoStatus   `json:"status"`
	Priority    *models.TodoPriority `json:"priority"`
	DueDate     *time.Time           `json:"due_date"`
	AssigneeID  *uint64              `json:"assignee_id"`

	clearDueDate  bool
	clearAssignee bool
}

// ParseUpdateTodoRequest decodes a PATCH body, telling explicit nulls apart
// from absent keys.
func ParseUpdateTodoRequest(body []byte) (UpdateTodoRequest, error) {
	var req UpdateTodoRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return req, err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return req, err
	}
	req.clearDueDate = isNull(raw, "due_date")
	req.clearAssignee = isNull(raw, "assignee_id")
	return req, nil
}

func isNull(raw map[string]json.RawMessage, key string) bool {
	v, ok := raw[key]
	return ok && string(v) == "null"
}

// ToInput builds the service input
func (r UpdateTodoRequest) ToInput() services.UpdateTodoInput {
	return services.UpdateTodoInput{
		Title:         r.Title,
		Description:   r.Description,
		Status:        r.Status,
		Priority:      r.Priority,
		DueDate:       r.DueDate,
		ClearDueDate:  r.clearDueDate,
		AssigneeID:    r.AssigneeID,
		ClearAssignee: r.clearAssignee,
	}
}

type GenerateTodosRequest struct {
	Text string `json:"text" binding:"required"`
}

// GenerateTodosResponse carries drafts; nothing is persisted
type GenerateTodosResponse struct {
	Todos []services.TodoDraft `json:"todos"`
}

// ToTodoDTO converts a Todo model to TodoDTO
func ToTodoDTO(todo models.Todo) TodoDTO {
	return TodoDTO{
		ID:          todo.ID,
		Title:       todo.Title,
		Description: todo.Description,
		Status:      todo.Status,
		Priority:    todo.Priority,
		DueDate:     todo.DueDate,
		Type:        todo.Type,
		OwnerID:     todo.OwnerID,
		AssigneeID:  todo.AssigneeID,
		TeamID:      todo.TeamID,
		ProjectID:   todo.ProjectID,
		CreatedAt:   todo.CreatedAt,
		UpdatedAt:   todo.UpdatedAt,
		Owner:       ToUserSummaryDTO(&todo.Owner),
		Assignee:    ToUserSummaryDTO(todo.Assignee),
	}
}

// ToTodoListResponse converts a page of todos
func ToTodoListResponse(todos []models.Todo, params utils.PaginationParams, total int64) TodoListResponse {
	items := make([]TodoDTO, len(todos))
	for i, todo := range todos {
		items[i] = ToTodoDTO(todo)
	}
	return TodoListResponse{
		Todos:      items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
