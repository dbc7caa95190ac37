package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTodosGenerated     = errors.New("AI could not find any todos in the text")
	ErrAITooManyTodos         = errors.New("AI generated too many todos")
	ErrAINoValidTodos         = errors.New("AI generated no valid todos")
	ErrGenerateTextRequired   = fmt.Errorf("%w: text is required", ErrValidation)
)

// TodoService provides business logic for todos.
type TodoService struct {
	store     repository.Store
	generator TodoGenerator
	now       Clock
}

// NewTodoService creates a new TodoService. generator may be nil, which
// disables GenerateTodos.
func NewTodoService(store repository.Store, generator TodoGenerator) *TodoService {
	return &TodoService{
		store:     store,
		generator: generator,
		now:       time.Now,
	}
}

// ListTodosInput represents filters for listing todos.
type ListTodosInput struct {
	UserID       uint64
	Type         *models.TodoType
	Status       *models.TodoStatus
	TeamID       *uint64
	ProjectID    *uint64
	AssignedToMe bool
	Pagination   utils.PaginationParams
}

// ListTodos lists the todos visible to a user.
func (s *TodoService) ListTodos(ctx context.Context, input ListTodosInput) ([]models.Todo, int64, error) {
	if input.Type != nil && !input.Type.Valid() {
		return nil, 0, ErrInvalidTodoType
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidStatus
	}

	filter := repository.TodoFilter{
		VisibleTo:  input.UserID,
		Type:       input.Type,
		Status:     input.Status,
		TeamID:     input.TeamID,
		ProjectID:  input.ProjectID,
		Pagination: input.Pagination,
	}
	if input.AssignedToMe {
		filter.AssignedUserID = &input.UserID
	}

	todos, total, err := s.store.Repositories().Todos.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list todos: %w", err)
	}
	return todos, total, nil
}

// GetTodo returns a todo the actor can see.
func (s *TodoService) GetTodo(ctx context.Context, todoID, actorID uint64) (*models.Todo, error) {
	repos := s.store.Repositories()

	todo, err := findTodo(ctx, repos.Todos, todoID, "Owner", "Assignee")
	if err != nil {
		return nil, err
	}
	ok, err := canViewTodo(ctx, repos, todo, actorID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTodoAccessDenied
	}
	return todo, nil
}

// CreateTodoInput represents parameters to create a new todo.
type CreateTodoInput struct {
	Title       string
	Description string
	Status      models.TodoStatus
	Priority    models.TodoPriority
	DueDate     *time.Time
	Type        models.TodoType
	TeamID      *uint64
	ProjectID   *uint64
	AssigneeID  *uint64
	OwnerID     uint64
}

// CreateTodo validates the scope of a new todo and stores it.
func (s *TodoService) CreateTodo(ctx context.Context, input CreateTodoInput) (*models.Todo, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	todo := &models.Todo{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Type:        input.Type,
		OwnerID:     input.OwnerID,
		AssigneeID:  input.AssigneeID,
		TeamID:      input.TeamID,
		ProjectID:   input.ProjectID,
	}
	if todo.Status == "" {
		todo.Status = models.TodoStatusTodo
	}
	if todo.Priority == "" {
		todo.Priority = models.TodoPriorityMedium
	}
	if todo.Type == "" {
		todo.Type = models.TodoTypeTask
	}
	if !todo.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if !todo.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	err = s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := validateTodoScope(ctx, repos, todo); err != nil {
			return err
		}
		if todo.AssigneeID != nil {
			if err := validateAssignee(ctx, repos, todo, *todo.AssigneeID); err != nil {
				return err
			}
		}
		if err := repos.Todos.Create(ctx, todo); err != nil {
			return fmt.Errorf("failed to create todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, todo.ID)
}

// UpdateTodoInput carries a partial update. Nil pointers leave fields
// untouched; the Clear flags null out the nullable ones.
type UpdateTodoInput struct {
	Title         *string
	Description   *string
	Status        *models.TodoStatus
	Priority      *models.TodoPriority
	DueDate       *time.Time
	ClearDueDate  bool
	AssigneeID    *uint64
	ClearAssignee bool
}

// apply merges the set fields into todo.
func (in UpdateTodoInput) apply(todo *models.Todo) error {
	if in.Title != nil {
		title, err := normalizeTitle(*in.Title)
		if err != nil {
			return err
		}
		todo.Title = title
	}
	if in.Description != nil {
		todo.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		if !in.Status.Valid() {
			return ErrInvalidStatus
		}
		todo.Status = *in.Status
	}
	if in.Priority != nil {
		if !in.Priority.Valid() {
			return ErrInvalidPriority
		}
		todo.Priority = *in.Priority
	}
	if in.ClearDueDate {
		todo.DueDate = nil
	} else if in.DueDate != nil {
		todo.DueDate = in.DueDate
	}
	if in.ClearAssignee {
		todo.AssigneeID = nil
	} else if in.AssigneeID != nil {
		todo.AssigneeID = in.AssigneeID
	}
	return nil
}

// UpdateTodo applies a partial update. The owner and the assignee may
// update; only the owner may change the assignee.
func (s *TodoService) UpdateTodo(ctx context.Context, todoID, actorID uint64, input UpdateTodoInput) (*models.Todo, error) {
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		todo, err := findTodo(ctx, repos.Todos, todoID)
		if err != nil {
			return err
		}

		isOwner := todo.OwnerID == actorID
		isAssignee := todo.AssigneeID != nil && *todo.AssigneeID == actorID
		if !isOwner && !isAssignee {
			return ErrNotTodoOwner
		}
		if !isOwner && (input.AssigneeID != nil || input.ClearAssignee) {
			return ErrNotTodoOwner
		}

		if err := input.apply(todo); err != nil {
			return err
		}
		if input.AssigneeID != nil && !input.ClearAssignee {
			if err := validateAssignee(ctx, repos, todo, *input.AssigneeID); err != nil {
				return err
			}
		}

		if err := repos.Todos.Update(ctx, todo); err != nil {
			return fmt.Errorf("failed to update todo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.reload(ctx, todoID)
}

// DeleteTodo soft-deletes a todo. Owner only.
func (s *TodoService) DeleteTodo(ctx context.Context, todoID, actorID uint64) error {
	return s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		todo, err := findTodo(ctx, repos.Todos, todoID)
		if err != nil {
			return err
		}
		if todo.OwnerID != actorID {
			return ErrNotTodoOwner
		}

		if err := repos.Todos.SoftDeleteByIDs(ctx, []uint64{todo.ID}, s.now()); err != nil {
			return fmt.Errorf("failed to delete todo: %w", err)
		}
		return nil
	})
}

// GenerateTodosInput represents input for AI todo drafting.
type GenerateTodosInput struct {
	Text    string
	OwnerID uint64
}

// GenerateTodos drafts todos from text. Nothing is stored; drafts with an
// empty title are dropped and deadlines more than a day in the past are
// cleared.
func (s *TodoService) GenerateTodos(ctx context.Context, input GenerateTodosInput) ([]TodoDraft, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(input.Text) == "" {
		return nil, ErrGenerateTextRequired
	}

	drafts, err := s.generator.GenerateTodosFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate todos: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTodosGenerated
	}
	if len(drafts) > constants.MaxAIGeneratedTodos {
		return nil, ErrAITooManyTodos
	}

	valid := make([]TodoDraft, 0, len(drafts))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, d := range drafts {
		d.Title = strings.TrimSpace(d.Title)
		if d.Title == "" {
			continue
		}
		if !models.TodoPriority(d.Priority).Valid() {
			d.Priority = string(models.TodoPriorityMedium)
		}
		if d.DueDate != nil && d.DueDate.Before(cutoff) {
			d.DueDate = nil
		}
		valid = append(valid, d)
	}

	if len(valid) == 0 {
		return nil, ErrAINoValidTodos
	}
	return valid, nil
}

func (s *TodoService) reload(ctx context.Context, todoID uint64) (*models.Todo, error) {
	todo, err := s.store.Repositories().Todos.FindByID(ctx, todoID, "Owner", "Assignee")
	if err != nil {
		return nil, fmt.Errorf("failed to reload todo: %w", err)
	}
	return todo, nil
}

func findTodo(ctx context.Context, todos repository.TodoRepository, id uint64, preload ...string) (*models.Todo, error) {
	todo, err := todos.FindByID(ctx, id, preload...)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTodoNotFound
		}
		return nil, fmt.Errorf("failed to find todo: %w", err)
	}
	return todo, nil
}

// validateTodoScope checks the type against the team and project columns
// and that the owner may use them.
func validateTodoScope(ctx context.Context, repos repository.Repositories, todo *models.Todo) error {
	switch todo.Type {
	case models.TodoTypeTask, models.TodoTypeTeam, models.TodoTypeProject, models.TodoTypeProjectTeam:
	default:
		return ErrInvalidTodoType
	}

	switch {
	case todo.Type.NeedsTeam() && todo.TeamID == nil:
		return ErrTeamRequired
	case !todo.Type.NeedsTeam() && todo.TeamID != nil:
		return ErrTeamNotAllowed
	case todo.Type.NeedsProject() && todo.ProjectID == nil:
		return ErrProjectRequired
	case !todo.Type.NeedsProject() && todo.ProjectID != nil:
		return ErrProjectNotAllowed
	}

	if todo.TeamID != nil {
		if _, err := findTeam(ctx, repos.Teams, *todo.TeamID); err != nil {
			return err
		}
		if _, err := requireTeamMember(ctx, repos.Teams, *todo.TeamID, todo.OwnerID); err != nil {
			return err
		}
	}

	if todo.ProjectID != nil {
		project, err := findProject(ctx, repos.Projects, *todo.ProjectID)
		if err != nil {
			return err
		}
		ok, err := canViewProject(ctx, repos, project, todo.OwnerID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrProjectAccessDeny
		}

		switch todo.Type {
		case models.TodoTypeProject:
			if project.Type != models.ProjectTypePersonal {
				return ErrProjectTeamMismatch
			}
		case models.TodoTypeProjectTeam:
			if project.Type != models.ProjectTypeTeam || project.TeamID == nil || *project.TeamID != *todo.TeamID {
				return ErrProjectTeamMismatch
			}
		}
	}
	return nil
}

// validateAssignee requires an active user who can see the todo's scope.
func validateAssignee(ctx context.Context, repos repository.Repositories, todo *models.Todo, assigneeID uint64) error {
	if _, err := findActiveUser(ctx, repos.Users, assigneeID); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return ErrInvalidAssignee
		}
		return err
	}

	if todo.TeamID != nil {
		member, err := findMembership(ctx, repos.Teams, *todo.TeamID, assigneeID)
		if err != nil {
			return err
		}
		if member == nil {
			return ErrInvalidAssignee
		}
	}
	if todo.ProjectID != nil {
		project, err := findProject(ctx, repos.Projects, *todo.ProjectID)
		if err != nil {
			return err
		}
		ok, err := canViewProject(ctx, repos, project, assigneeID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidAssignee
		}
	}
	return nil
}

// canViewTodo mirrors the visibility rule of the todo listing.
func canViewTodo(ctx context.Context, repos repository.Repositories, todo *models.Todo, userID uint64) (bool, error) {
	if todo.OwnerID == userID || (todo.AssigneeID != nil && *todo.AssigneeID == userID) {
		return true, nil
	}
	if todo.TeamID != nil {
		member, err := findMembership(ctx, repos.Teams, *todo.TeamID, userID)
		if err != nil {
			return false, err
		}
		if member != nil {
			return true, nil
		}
	}
	if todo.ProjectID != nil {
		participant, err := findParticipant(ctx, repos.Projects, *todo.ProjectID, userID)
		if err != nil {
			return false, err
		}
		if participant != nil {
			return true, nil
		}
	}
	return false, nil
}
