package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/metrics"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

// ProjectService provides business logic for projects and participants.
type ProjectService struct {
	store     repository.Store
	metrics   *metrics.Metrics
	batchSize int
	now       Clock
}

// NewProjectService creates a new ProjectService.
func NewProjectService(store repository.Store, m *metrics.Metrics, batchSize int) *ProjectService {
	if batchSize <= 0 {
		batchSize = constants.CascadeBatchSize
	}
	return &ProjectService{
		store:     store,
		metrics:   m,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Title       string
	Description string
	Type        models.ProjectType
	TeamID      *uint64
	OwnerID     uint64
}

// CreateProject creates a project and registers the owner as its first
// participant. Team projects require the owner to be a team member.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	projectType := input.Type
	if projectType == "" {
		projectType = models.ProjectTypePersonal
	}
	switch projectType {
	case models.ProjectTypePersonal:
		if input.TeamID != nil {
			return nil, ErrTeamNotAllowed
		}
	case models.ProjectTypeTeam:
		if input.TeamID == nil {
			return nil, ErrTeamRequired
		}
	default:
		return nil, ErrInvalidProjectType
	}

	project := &models.Project{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Type:        projectType,
		OwnerID:     input.OwnerID,
		TeamID:      input.TeamID,
	}

	err = s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if project.TeamID != nil {
			if _, err := findTeam(ctx, repos.Teams, *project.TeamID); err != nil {
				return err
			}
			if _, err := requireTeamMember(ctx, repos.Teams, *project.TeamID, input.OwnerID); err != nil {
				return err
			}
		}

		if err := repos.Projects.Create(ctx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		participant := &models.ProjectParticipant{
			ProjectID:     project.ID,
			ParticipantID: input.OwnerID,
			JoinedAt:      s.now(),
		}
		if err := repos.Projects.AddParticipant(ctx, participant); err != nil {
			return fmt.Errorf("failed to add owner to project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return project, nil
}

// ListProjectsInput holds the options for listing projects.
type ListProjectsInput struct {
	UserID     uint64
	Type       *models.ProjectType
	TeamID     *uint64
	Pagination utils.PaginationParams
}

// ListProjects lists the projects visible to a user.
func (s *ProjectService) ListProjects(ctx context.Context, input ListProjectsInput) ([]models.Project, int64, error) {
	if input.Type != nil && !input.Type.Valid() {
		return nil, 0, ErrInvalidProjectType
	}

	projects, total, err := s.store.Repositories().Projects.List(ctx, repository.ProjectFilter{
		VisibleTo:  input.UserID,
		Type:       input.Type,
		TeamID:     input.TeamID,
		Pagination: input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, total, nil
}

// GetProject returns a project with its participants.
func (s *ProjectService) GetProject(ctx context.Context, projectID, actorID uint64) (*models.Project, []models.ProjectParticipant, error) {
	repos := s.store.Repositories()

	project, err := findProject(ctx, repos.Projects, projectID)
	if err != nil {
		return nil, nil, err
	}
	ok, err := canViewProject(ctx, repos, project, actorID)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, ErrProjectAccessDeny
	}

	participants, err := repos.Projects.ListParticipants(ctx, projectID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return project, participants, nil
}

// canViewProject reports whether the user owns the project, participates
// in it, or belongs to its team.
func canViewProject(ctx context.Context, repos repository.Repositories, project *models.Project, userID uint64) (bool, error) {
	if project.OwnerID == userID {
		return true, nil
	}
	participant, err := findParticipant(ctx, repos.Projects, project.ID, userID)
	if err != nil {
		return false, err
	}
	if participant != nil {
		return true, nil
	}
	if project.Type == models.ProjectTypeTeam && project.TeamID != nil {
		member, err := findMembership(ctx, repos.Teams, *project.TeamID, userID)
		if err != nil {
			return false, err
		}
		return member != nil, nil
	}
	return false, nil
}

// UpdateProjectInput carries the fields to change; nil leaves a field as is.
type UpdateProjectInput struct {
	Title       *string
	Description *string
}

// UpdateProject changes the title or description. Owner only.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID, actorID uint64, input UpdateProjectInput) (*models.Project, error) {
	var project *models.Project
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		if project, err = findProject(ctx, repos.Projects, projectID); err != nil {
			return err
		}
		if project.OwnerID != actorID {
			return ErrNotProjectOwner
		}

		if input.Title != nil {
			title, err := normalizeTitle(*input.Title)
			if err != nil {
				return err
			}
			project.Title = title
		}
		if input.Description != nil {
			project.Description = strings.TrimSpace(*input.Description)
		}

		if err := repos.Projects.Update(ctx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject soft-deletes a project and all of its todos. Owner only.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID, actorID uint64) error {
	var res cascadeResult
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		project, err := findProject(ctx, repos.Projects, projectID)
		if err != nil {
			return err
		}
		if project.OwnerID != actorID {
			return ErrNotProjectOwner
		}

		res, err = cascadeDeleteProject(ctx, repos, projectID, s.batchSize, s.now())
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.AddCascadeDeleted("todos", res.todos)
	s.metrics.AddCascadeDeleted("projects", res.projects)
	return nil
}

// AddProjectParticipant adds an active user to a project. The actor must
// already participate.
func (s *ProjectService) AddProjectParticipant(ctx context.Context, projectID, actorID, participantID uint64) (*models.ProjectParticipant, error) {
	var participant *models.ProjectParticipant
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := findProject(ctx, repos.Projects, projectID); err != nil {
			return err
		}

		actor, err := findParticipant(ctx, repos.Projects, projectID, actorID)
		if err != nil {
			return err
		}
		if actor == nil {
			return ErrNotParticipant
		}

		if _, err := findActiveUser(ctx, repos.Users, participantID); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidParticipant
			}
			return err
		}

		existing, err := findParticipant(ctx, repos.Projects, projectID, participantID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyParticipant
		}

		participant = &models.ProjectParticipant{
			ProjectID:     projectID,
			ParticipantID: participantID,
			JoinedAt:      s.now(),
		}
		if err := repos.Projects.AddParticipant(ctx, participant); err != nil {
			return fmt.Errorf("failed to add participant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return participant, nil
}

// RemoveProjectParticipant removes a participant. For team projects the
// actor must be an admin of the team; for personal projects, the owner.
func (s *ProjectService) RemoveProjectParticipant(ctx context.Context, projectID, actorID, participantID uint64) error {
	return s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		project, err := findProject(ctx, repos.Projects, projectID)
		if err != nil {
			return err
		}

		switch project.Type {
		case models.ProjectTypeTeam:
			if project.TeamID == nil {
				return ErrNotTeamAdmin
			}
			if _, err := requireTeamAdmin(ctx, repos.Teams, *project.TeamID, actorID); err != nil {
				return err
			}
		case models.ProjectTypePersonal:
			if project.OwnerID != actorID {
				return ErrNotProjectOwner
			}
		default:
			return fmt.Errorf("project %d has unknown type %q", project.ID, project.Type)
		}

		existing, err := findParticipant(ctx, repos.Projects, projectID, participantID)
		if err != nil {
			return err
		}
		if existing == nil {
			return ErrParticipantNotFound
		}
		if participantID == project.OwnerID {
			return ErrCannotRemoveOwner
		}

		if err := repos.Projects.RemoveParticipant(ctx, projectID, participantID); err != nil {
			return fmt.Errorf("failed to remove participant: %w", err)
		}
		return nil
	})
}
