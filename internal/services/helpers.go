package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"gorm.io/gorm"
)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > constants.MaxTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

// findActiveUser treats deactivated users as absent.
func findActiveUser(ctx context.Context, users repository.UserRepository, id uint64) (*models.User, error) {
	user, err := users.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func findTeam(ctx context.Context, teams repository.TeamRepository, id uint64) (*models.Team, error) {
	team, err := teams.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to find team: %w", err)
	}
	return team, nil
}

func findProject(ctx context.Context, projects repository.ProjectRepository, id uint64) (*models.Project, error) {
	project, err := projects.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// findMembership returns nil without error when the user is not a member.
func findMembership(ctx context.Context, teams repository.TeamRepository, teamID, userID uint64) (*models.TeamMembership, error) {
	member, err := teams.FindMember(ctx, teamID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}
	return member, nil
}

func requireTeamMember(ctx context.Context, teams repository.TeamRepository, teamID, userID uint64) (*models.TeamMembership, error) {
	member, err := findMembership(ctx, teams, teamID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, ErrNotTeamMember
	}
	return member, nil
}

func requireTeamAdmin(ctx context.Context, teams repository.TeamRepository, teamID, userID uint64) (*models.TeamMembership, error) {
	member, err := findMembership(ctx, teams, teamID, userID)
	if err != nil {
		return nil, err
	}
	if member == nil || member.Role != models.RoleAdmin {
		return nil, ErrNotTeamAdmin
	}
	return member, nil
}

// findParticipant returns nil without error when the user does not
// participate in the project.
func findParticipant(ctx context.Context, projects repository.ProjectRepository, projectID, userID uint64) (*models.ProjectParticipant, error) {
	participant, err := projects.FindParticipant(ctx, projectID, userID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify participant: %w", err)
	}
	return participant, nil
}
