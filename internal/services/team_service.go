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

// TeamService provides business logic for teams and their memberships.
type TeamService struct {
	store     repository.Store
	metrics   *metrics.Metrics
	batchSize int
	now       Clock
}

// NewTeamService creates a new TeamService. batchSize bounds every cascade
// query; zero or less uses the default.
func NewTeamService(store repository.Store, m *metrics.Metrics, batchSize int) *TeamService {
	if batchSize <= 0 {
		batchSize = constants.CascadeBatchSize
	}
	return &TeamService{
		store:     store,
		metrics:   m,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// CreateTeamInput represents parameters to create a new team.
type CreateTeamInput struct {
	Title       string
	Description string
	OwnerID     uint64
}

// CreateTeam creates a team and makes the owner its first admin.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return nil, err
	}

	inviteCode, err := utils.GenerateInviteCode()
	if err != nil {
		return nil, ErrInviteCodeGeneration
	}

	team := &models.Team{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		OwnerID:     input.OwnerID,
		InviteCode:  inviteCode,
	}

	err = s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if err := repos.Teams.Create(ctx, team); err != nil {
			return fmt.Errorf("failed to create team: %w", err)
		}
		member := &models.TeamMembership{
			TeamID:   team.ID,
			MemberID: input.OwnerID,
			Role:     models.RoleAdmin,
			JoinedAt: s.now(),
		}
		if err := repos.Teams.AddMember(ctx, member); err != nil {
			return fmt.Errorf("failed to add owner to team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return team, nil
}

// ListTeamsForUser returns the memberships of a user in live teams.
func (s *TeamService) ListTeamsForUser(ctx context.Context, userID uint64) ([]models.TeamMembership, error) {
	memberships, err := s.store.Repositories().Teams.ListMembershipsByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return memberships, nil
}

// GetTeamWithMembers returns a team and its members. Only members may look.
func (s *TeamService) GetTeamWithMembers(ctx context.Context, teamID, actorID uint64) (*models.Team, []models.TeamMembership, error) {
	teams := s.store.Repositories().Teams

	team, err := findTeam(ctx, teams, teamID)
	if err != nil {
		return nil, nil, err
	}
	if _, err := requireTeamMember(ctx, teams, teamID, actorID); err != nil {
		return nil, nil, err
	}

	members, err := teams.ListMembers(ctx, teamID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list team members: %w", err)
	}

	return team, members, nil
}

// UpdateTeamInput carries the fields to change; nil leaves a field as is.
type UpdateTeamInput struct {
	Title       *string
	Description *string
}

// UpdateTeam changes the title or description of a team. Admins only.
func (s *TeamService) UpdateTeam(ctx context.Context, teamID, actorID uint64, input UpdateTeamInput) (*models.Team, error) {
	var team *models.Team
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		if team, err = findTeam(ctx, repos.Teams, teamID); err != nil {
			return err
		}
		if _, err := requireTeamAdmin(ctx, repos.Teams, teamID, actorID); err != nil {
			return err
		}

		if input.Title != nil {
			title, err := normalizeTitle(*input.Title)
			if err != nil {
				return err
			}
			team.Title = title
		}
		if input.Description != nil {
			team.Description = strings.TrimSpace(*input.Description)
		}

		if err := repos.Teams.Update(ctx, team); err != nil {
			return fmt.Errorf("failed to update team: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam soft-deletes a team together with every project and todo
// scoped to it. Only the owner may delete.
func (s *TeamService) DeleteTeam(ctx context.Context, teamID, actorID uint64) error {
	var res cascadeResult
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		team, err := findTeam(ctx, repos.Teams, teamID)
		if err != nil {
			return err
		}
		if team.OwnerID != actorID {
			return ErrNotTeamOwner
		}

		res, err = cascadeDeleteTeam(ctx, repos, teamID, s.batchSize, s.now())
		return err
	})
	if err != nil {
		return err
	}

	s.metrics.AddCascadeDeleted("todos", res.todos)
	s.metrics.AddCascadeDeleted("projects", res.projects)
	s.metrics.AddCascadeDeleted("teams", 1)
	return nil
}

// JoinTeam adds a user to a team as a basic member via invite code.
func (s *TeamService) JoinTeam(ctx context.Context, userID uint64, inviteCode string) (*models.Team, error) {
	code := strings.TrimSpace(inviteCode)
	if code == "" {
		return nil, ErrInvalidInviteCode
	}

	var team *models.Team
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		team, err = repos.Teams.FindByInviteCode(ctx, code)
		if err != nil {
			if isNotFound(err) {
				return ErrInvalidInviteCode
			}
			return fmt.Errorf("failed to find team by invite code: %w", err)
		}

		member, err := findMembership(ctx, repos.Teams, team.ID, userID)
		if err != nil {
			return err
		}
		if member != nil {
			return ErrAlreadyTeamMember
		}

		return s.addMembership(ctx, repos, team.ID, userID, models.RoleBasic)
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// RegenerateInviteCode replaces the invite code of a team. Admins only.
func (s *TeamService) RegenerateInviteCode(ctx context.Context, teamID, actorID uint64) (*models.Team, error) {
	var team *models.Team
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		if team, err = findTeam(ctx, repos.Teams, teamID); err != nil {
			return err
		}
		if _, err := requireTeamAdmin(ctx, repos.Teams, teamID, actorID); err != nil {
			return err
		}

		code, err := utils.GenerateInviteCode()
		if err != nil {
			return ErrInviteCodeGeneration
		}
		team.InviteCode = code
		if err := repos.Teams.Update(ctx, team); err != nil {
			return fmt.Errorf("failed to update invite code: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return team, nil
}

// AddMemberInput represents parameters to add a user to a team.
type AddMemberInput struct {
	TeamID   uint64
	ActorID  uint64
	MemberID uint64
	Role     models.TeamRole
}

// AddMember adds an active user to a team. Admins only.
func (s *TeamService) AddMember(ctx context.Context, input AddMemberInput) (*models.TeamMembership, error) {
	role := input.Role
	if role == "" {
		role = models.RoleBasic
	}
	if !role.Valid() {
		return nil, ErrInvalidRole
	}

	var member *models.TeamMembership
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := findTeam(ctx, repos.Teams, input.TeamID); err != nil {
			return err
		}
		if _, err := requireTeamAdmin(ctx, repos.Teams, input.TeamID, input.ActorID); err != nil {
			return err
		}
		if _, err := findActiveUser(ctx, repos.Users, input.MemberID); err != nil {
			if errors.Is(err, ErrUserNotFound) {
				return ErrInvalidMember
			}
			return err
		}

		existing, err := findMembership(ctx, repos.Teams, input.TeamID, input.MemberID)
		if err != nil {
			return err
		}
		if existing != nil {
			return ErrAlreadyTeamMember
		}

		if err := s.addMembership(ctx, repos, input.TeamID, input.MemberID, role); err != nil {
			return err
		}
		member, err = repos.Teams.FindMember(ctx, input.TeamID, input.MemberID)
		if err != nil {
			return fmt.Errorf("failed to load membership: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return member, nil
}

func (s *TeamService) addMembership(ctx context.Context, repos repository.Repositories, teamID, userID uint64, role models.TeamRole) error {
	member := &models.TeamMembership{
		TeamID:   teamID,
		MemberID: userID,
		Role:     role,
		JoinedAt: s.now(),
	}
	if err := repos.Teams.AddMember(ctx, member); err != nil {
		return fmt.Errorf("failed to add member to team: %w", err)
	}
	return nil
}

// RemoveMember removes a membership. Admins may remove anyone but the
// owner; any member may remove themselves. The last admin cannot go.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, actorID, memberID uint64) error {
	return s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		team, err := findTeam(ctx, repos.Teams, teamID)
		if err != nil {
			return err
		}

		if actorID == memberID {
			if _, err := requireTeamMember(ctx, repos.Teams, teamID, actorID); err != nil {
				return err
			}
		} else if _, err := requireTeamAdmin(ctx, repos.Teams, teamID, actorID); err != nil {
			return err
		}

		target, err := findMembership(ctx, repos.Teams, teamID, memberID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrTeamMemberNotFound
		}
		if memberID == team.OwnerID {
			return ErrCannotRemoveOwner
		}
		if err := ensureAnotherAdmin(ctx, repos, target); err != nil {
			return err
		}

		if err := repos.Teams.RemoveMember(ctx, teamID, memberID); err != nil {
			return fmt.Errorf("failed to remove team member: %w", err)
		}
		return nil
	})
}

// AssignRole promotes the target member to admin. The changer must be an
// admin of the team.
func (s *TeamService) AssignRole(ctx context.Context, changerID, targetID, teamID uint64) error {
	return s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := findTeam(ctx, repos.Teams, teamID); err != nil {
			return err
		}
		if _, err := requireTeamAdmin(ctx, repos.Teams, teamID, changerID); err != nil {
			return err
		}

		target, err := findMembership(ctx, repos.Teams, teamID, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrTeamMemberNotFound
		}
		if target.Role == models.RoleAdmin {
			return nil
		}

		if err := repos.Teams.UpdateMemberRole(ctx, teamID, targetID, models.RoleAdmin); err != nil {
			return fmt.Errorf("failed to update member role: %w", err)
		}
		return nil
	})
}

// RevokeAdmin demotes an admin to basic unless that would leave the team
// without admins.
func (s *TeamService) RevokeAdmin(ctx context.Context, changerID, targetID, teamID uint64) error {
	return s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := findTeam(ctx, repos.Teams, teamID); err != nil {
			return err
		}
		if _, err := requireTeamAdmin(ctx, repos.Teams, teamID, changerID); err != nil {
			return err
		}

		target, err := findMembership(ctx, repos.Teams, teamID, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return ErrTeamMemberNotFound
		}
		if target.Role != models.RoleAdmin {
			return nil
		}
		if err := ensureAnotherAdmin(ctx, repos, target); err != nil {
			return err
		}

		if err := repos.Teams.UpdateMemberRole(ctx, teamID, targetID, models.RoleBasic); err != nil {
			return fmt.Errorf("failed to update member role: %w", err)
		}
		return nil
	})
}

// ensureAnotherAdmin fails when member is the only active admin of its
// team. Admin rows of deactivated users never count.
func ensureAnotherAdmin(ctx context.Context, repos repository.Repositories, member *models.TeamMembership) error {
	if member.Role != models.RoleAdmin {
		return nil
	}
	user, err := repos.Users.FindByID(ctx, member.MemberID)
	if err != nil {
		return fmt.Errorf("failed to load member: %w", err)
	}
	if !user.IsActive {
		return nil
	}
	count, err := repos.Teams.CountAdmins(ctx, member.TeamID)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count <= 1 {
		return ErrLastTeamAdmin
	}
	return nil
}
