package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/dto"
	apierrors "github.com/yukikurage/todo-team-api/internal/errors"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/services"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// ListProjects returns the projects visible to the current user
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	input := services.ListProjectsInput{
		UserID:     userID,
		Pagination: utils.GetPaginationParams(c),
	}
	if v := c.Query("type"); v != "" {
		t := models.ProjectType(v)
		input.Type = &t
	}
	if input.TeamID, ok = optionalQueryID(c, "team_id"); !ok {
		return
	}

	projects, total, err := h.projectService.ListProjects(c.Request.Context(), input)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(projects, input.Pagination, total))
}

func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		TeamID:      req.TeamID,
		OwnerID:     userID,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project ID")
	if !ok {
		return
	}

	h.respondDetail(c, http.StatusOK, projectID, userID)
}

func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project ID")
	if !ok {
		return
	}

	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, userID, services.UpdateProjectInput{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject soft-deletes the project and its todos
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project ID")
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

func (h *ProjectHandler) AddParticipant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project ID")
	if !ok {
		return
	}

	var req dto.AddParticipantRequest
	if !bindJSON(c, &req) {
		return
	}

	if _, err := h.projectService.AddProjectParticipant(c.Request.Context(), projectID, userID, req.UserID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	h.respondDetail(c, http.StatusCreated, projectID, userID)
}

func (h *ProjectHandler) RemoveParticipant(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	projectID, ok := pathID(c, "id", "project ID")
	if !ok {
		return
	}
	participantID, ok := pathID(c, "user_id", "user ID")
	if !ok {
		return
	}

	if err := h.projectService.RemoveProjectParticipant(c.Request.Context(), projectID, userID, participantID); err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Participant removed successfully",
	})
}

func (h *ProjectHandler) respondDetail(c *gin.Context, status int, projectID, userID uint64) {
	project, participants, err := h.projectService.GetProject(c.Request.Context(), projectID, userID)
	if err != nil {
		apierrors.FromService(c, err)
		return
	}

	c.JSON(status, dto.ToProjectDetailDTO(*project, participants))
}
