package dto

import (
	"time"

	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64             `json:"id"`
	Title       string             `json:"title"`
	Description string             `json:"description"`
	Type        models.ProjectType `json:"type"`
	OwnerID     uint64             `json:"owner_id"`
	TeamID      *uint64            `json:"team_id"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// ParticipantDTO represents a project participant
type ParticipantDTO struct {
	User     UserSummaryDTO `json:"user"`
	JoinedAt time.Time      `json:"joined_at"`
}

// ProjectDetailDTO is a project with its participants
type ProjectDetailDTO struct {
	ProjectDTO
	Participants []ParticipantDTO `json:"participants"`
}

// ProjectListResponse represents a paginated list of projects
type ProjectListResponse struct {
	Projects   []ProjectDTO             `json:"projects"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type CreateProjectRequest struct {
	Title       string             `json:"title" binding:"required"`
	Description string             `json:"description"`
	Type        models.ProjectType `json:"type"`
	TeamID      *uint64            `json:"team_id"`
}

type UpdateProjectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
}

type AddParticipantRequest struct {
	UserID uint64 `json:"user_id" binding:"required"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Title:       project.Title,
		Description: project.Description,
		Type:        project.Type,
		OwnerID:     project.OwnerID,
		TeamID:      project.TeamID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToParticipantDTO converts a participant row; the user must be preloaded
func ToParticipantDTO(participant models.ProjectParticipant) ParticipantDTO {
	return ParticipantDTO{
		User:     UserSummaryDTO{ID: participant.ParticipantID, Name: participant.Participant.Name},
		JoinedAt: participant.JoinedAt,
	}
}

// ToProjectDetailDTO converts a project with its participants
func ToProjectDetailDTO(project models.Project, participants []models.ProjectParticipant) ProjectDetailDTO {
	items := make([]ParticipantDTO, len(participants))
	for i, p := range participants {
		items[i] = ToParticipantDTO(p)
	}
	return ProjectDetailDTO{
		ProjectDTO:   ToProjectDTO(project),
		Participants: items,
	}
}

// ToProjectListResponse converts a page of projects
func ToProjectListResponse(projects []models.Project, params utils.PaginationParams, total int64) ProjectListResponse {
	items := make([]ProjectDTO, len(projects))
	for i, project := range projects {
		items[i] = ToProjectDTO(project)
	}
	return ProjectListResponse{
		Projects:   items,
		Pagination: utils.NewPaginationResponse(params, total),
	}
}
