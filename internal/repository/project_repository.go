package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-team-api/internal/database"
	"github.com/yukikurage/todo-team-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// Create creates a new project
func (r *GormProjectRepository) Create(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Create(project).Error
}

// FindByID finds a project by ID with optional preloading
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Project, error) {
	var project models.Project
	query := r.db.WithContext(ctx)

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// List retrieves projects the user owns, participates in, or sees through a team
func (r *GormProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error) {
	var projects []models.Project

	db := r.db.WithContext(ctx)
	participantSubQuery := db.Model(&models.ProjectParticipant{}).
		Select("project_id").
		Where("participant_id = ?", filter.VisibleTo)

	teamSubQuery := db.Model(&models.TeamMembership{}).
		Select("team_id").
		Where("member_id = ?", filter.VisibleTo)

	query := db.Model(&models.Project{}).
		Where(db.Where("projects.owner_id = ?", filter.VisibleTo).
			Or("projects.id IN (?)", participantSubQuery).
			Or("projects.team_id IN (?)", teamSubQuery))

	if filter.Type != nil {
		query = query.Where("projects.type = ?", *filter.Type)
	}
	if filter.TeamID != nil {
		query = query.Where("projects.team_id = ?", *filter.TeamID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("projects.created_at DESC").Order("projects.id DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.Find(&projects).Error; err != nil {
		return nil, 0, err
	}
	return projects, total, nil
}

// Update updates a project
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(project).Error
}

// ListOwnedActive lists every non-deleted project owned by the user
func (r *GormProjectRepository) ListOwnedActive(ctx context.Context, ownerID uint64) ([]models.Project, error) {
	var projects []models.Project
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&projects).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

// ListActiveIDsByTeam returns one window of a team's project ids
func (r *GormProjectRepository) ListActiveIDsByTeam(ctx context.Context, teamID, afterID uint64, limit int) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.Project{}).
		Where("team_id = ?", teamID).
		Scopes(database.After(afterID, limit)).
		Pluck("id", &ids).Error
	return ids, err
}

// SoftDeleteByIDs marks the given projects deleted
func (r *GormProjectRepository) SoftDeleteByIDs(ctx context.Context, ids []uint64, at time.Time) error {
	return softDeleteByIDs(ctx, r.db, &models.Project{}, ids, at)
}

// ReassignOwner moves the given projects to a new owner
func (r *GormProjectRepository) ReassignOwner(ctx context.Context, ids []uint64, ownerID uint64) error {
	return reassignOwner(ctx, r.db, &models.Project{}, ids, ownerID)
}

// AddParticipant inserts a participant row
func (r *GormProjectRepository) AddParticipant(ctx context.Context, participant *models.ProjectParticipant) error {
	return r.db.WithContext(ctx).Create(participant).Error
}

// RemoveParticipant deletes a participant row
func (r *GormProjectRepository) RemoveParticipant(ctx context.Context, projectID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("project_id = ? AND participant_id = ?", projectID, userID).
		Delete(&models.ProjectParticipant{}).Error
}

// FindParticipant finds a specific participant row
func (r *GormProjectRepository) FindParticipant(ctx context.Context, projectID, userID uint64) (*models.ProjectParticipant, error) {
	var participant models.ProjectParticipant
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND participant_id = ?", projectID, userID).
		First(&participant).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}

// ListParticipants lists the participants of a project
func (r *GormProjectRepository) ListParticipants(ctx context.Context, projectID uint64) ([]models.ProjectParticipant, error) {
	var participants []models.ProjectParticipant
	if err := r.db.WithContext(ctx).Preload("Participant").
		Where("project_id = ?", projectID).
		Order("id ASC").
		Find(&participants).Error; err != nil {
		return nil, err
	}
	return participants, nil
}
