package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-team-api/internal/database"
	"github.com/yukikurage/todo-team-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTodoRepository is a GORM implementation of TodoRepository
type GormTodoRepository struct {
	db *gorm.DB
}

// NewTodoRepository creates a new TodoRepository
func NewTodoRepository(db *gorm.DB) TodoRepository {
	return &GormTodoRepository{db: db}
}

// Create creates a new todo
func (r *GormTodoRepository) Create(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Create(todo).Error
}

// FindByID finds a todo by ID with optional preloading
func (r *GormTodoRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Todo, error) {
	var todo models.Todo
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&todo, id).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// List retrieves todos with filtering and pagination
func (r *GormTodoRepository) List(ctx context.Context, filter TodoFilter) ([]models.Todo, int64, error) {
	var todos []models.Todo

	db := r.db.WithContext(ctx)
	teamSubQuery := db.Model(&models.TeamMembership{}).
		Select("team_id").
		Where("member_id = ?", filter.VisibleTo)
	projectSubQuery := db.Model(&models.ProjectParticipant{}).
		Select("project_id").
		Where("participant_id = ?", filter.VisibleTo)

	query := db.Model(&models.Todo{}).
		Where(db.Where("todos.owner_id = ?", filter.VisibleTo).
			Or("todos.assignee_id = ?", filter.VisibleTo).
			Or("todos.team_id IN (?)", teamSubQuery).
			Or("todos.project_id IN (?)", projectSubQuery))

	// Apply filters
	if filter.Type != nil {
		query = query.Where("todos.type = ?", *filter.Type)
	}
	if filter.Status != nil {
		query = query.Where("todos.status = ?", *filter.Status)
	}
	if filter.TeamID != nil {
		query = query.Where("todos.team_id = ?", *filter.TeamID)
	}
	if filter.ProjectID != nil {
		query = query.Where("todos.project_id = ?", *filter.ProjectID)
	}
	if filter.AssignedUserID != nil {
		query = query.Where("todos.assignee_id = ?", *filter.AssignedUserID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("todos.created_at DESC").Order("todos.id DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.Preload("Owner").Find(&todos).Error; err != nil {
		return nil, 0, err
	}

	return todos, total, nil
}

// Update updates a todo
func (r *GormTodoRepository) Update(ctx context.Context, todo *models.Todo) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(todo).Error
}

// ListOwnedActive lists every non-deleted todo owned by the user
func (r *GormTodoRepository) ListOwnedActive(ctx context.Context, ownerID uint64) ([]models.Todo, error) {
	var todos []models.Todo
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&todos).Error; err != nil {
		return nil, err
	}
	return todos, nil
}

// SoftDeleteByIDs marks the given todos deleted
func (r *GormTodoRepository) SoftDeleteByIDs(ctx context.Context, ids []uint64, at time.Time) error {
	return softDeleteByIDs(ctx, r.db, &models.Todo{}, ids, at)
}

// ReassignOwner moves the given todos to a new owner
func (r *GormTodoRepository) ReassignOwner(ctx context.Context, ids []uint64, ownerID uint64) error {
	return reassignOwner(ctx, r.db, &models.Todo{}, ids, ownerID)
}

// SoftDeleteByTeam soft-deletes all of a team's todos
func (r *GormTodoRepository) SoftDeleteByTeam(ctx context.Context, teamID uint64, batchSize int, at time.Time) (int64, error) {
	return softDeleteInBatches(ctx, r.db, &models.Todo{}, batchSize, at, "team_id = ?", teamID)
}

// SoftDeleteByProject soft-deletes all of a project's todos
func (r *GormTodoRepository) SoftDeleteByProject(ctx context.Context, projectID uint64, batchSize int, at time.Time) (int64, error) {
	return softDeleteInBatches(ctx, r.db, &models.Todo{}, batchSize, at, "project_id = ?", projectID)
}
