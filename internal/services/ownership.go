package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"gorm.io/gorm"
)

// OwnedEntities is everything a user owns that is not soft-deleted.
type OwnedEntities struct {
	Todos    []models.Todo
	Projects []models.Project
	Teams    []models.Team
}

// TeamIDs returns, in ascending order and without duplicates, every team
// whose admins could take over part of the owned entities.
func (o OwnedEntities) TeamIDs() []uint64 {
	seen := make(map[uint64]struct{})
	for _, t := range o.Todos {
		if t.Type.NeedsTeam() && t.TeamID != nil {
			seen[*t.TeamID] = struct{}{}
		}
	}
	for _, p := range o.Projects {
		if p.Type == models.ProjectTypeTeam && p.TeamID != nil {
			seen[*p.TeamID] = struct{}{}
		}
	}
	for _, t := range o.Teams {
		seen[t.ID] = struct{}{}
	}

	ids := make([]uint64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Empty reports whether nothing is owned.
func (o OwnedEntities) Empty() bool {
	return len(o.Todos) == 0 && len(o.Projects) == 0 && len(o.Teams) == 0
}

// DelegationPlan maps a team id to the user who inherits the departing
// user's entities in that team.
type DelegationPlan map[uint64]uint64

// DelegateFor returns the delegate planned for a team.
func (p DelegationPlan) DelegateFor(teamID uint64) (uint64, bool) {
	id, ok := p[teamID]
	return id, ok
}

// OwnershipResolver answers delegate questions against the shared pool.
// DeactivationService runs the same logic on its own transaction.
type OwnershipResolver struct {
	store repository.Store
}

// NewOwnershipResolver creates a new OwnershipResolver.
func NewOwnershipResolver(store repository.Store) *OwnershipResolver {
	return &OwnershipResolver{store: store}
}

// ResolveDelegate returns the first admin of the team, in membership
// order, who is active and is not the departing user. It returns nil when
// there is none.
func (r *OwnershipResolver) ResolveDelegate(ctx context.Context, teamID, departingUserID uint64) (*uint64, error) {
	return resolveDelegate(ctx, r.store.Repositories().Teams, teamID, departingUserID)
}

// PlanDelegations collects every team touched by the user's owned entities
// and resolves a delegate for each. If any team has none it returns a
// *MissingAdminsError naming all of them.
func (r *OwnershipResolver) PlanDelegations(ctx context.Context, departingUserID uint64) (DelegationPlan, error) {
	repos := r.store.Repositories()
	owned, err := loadOwnedEntities(ctx, repos, departingUserID)
	if err != nil {
		return nil, err
	}
	return planDelegations(ctx, repos.Teams, departingUserID, owned)
}

func loadOwnedEntities(ctx context.Context, repos repository.Repositories, userID uint64) (OwnedEntities, error) {
	var (
		owned OwnedEntities
		err   error
	)
	if owned.Todos, err = repos.Todos.ListOwnedActive(ctx, userID); err != nil {
		return owned, fmt.Errorf("failed to list owned todos: %w", err)
	}
	if owned.Projects, err = repos.Projects.ListOwnedActive(ctx, userID); err != nil {
		return owned, fmt.Errorf("failed to list owned projects: %w", err)
	}
	if owned.Teams, err = repos.Teams.ListOwnedActive(ctx, userID); err != nil {
		return owned, fmt.Errorf("failed to list owned teams: %w", err)
	}
	return owned, nil
}

func resolveDelegate(ctx context.Context, teams repository.TeamRepository, teamID, departingUserID uint64) (*uint64, error) {
	member, err := teams.FindDelegate(ctx, teamID, departingUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to resolve delegate for team %d: %w", teamID, err)
	}
	id := member.MemberID
	return &id, nil
}

func planDelegations(ctx context.Context, teams repository.TeamRepository, departingUserID uint64, owned OwnedEntities) (DelegationPlan, error) {
	plan := make(DelegationPlan)
	var missing []uint64

	for _, teamID := range owned.TeamIDs() {
		delegate, err := resolveDelegate(ctx, teams, teamID, departingUserID)
		if err != nil {
			return nil, err
		}
		if delegate == nil {
			missing = append(missing, teamID)
			continue
		}
		plan[teamID] = *delegate
	}

	if len(missing) > 0 {
		titles, err := teams.TitlesByIDs(ctx, missing)
		if err != nil {
			return nil, fmt.Errorf("failed to load team titles: %w", err)
		}
		names := make([]string, 0, len(missing))
		for _, id := range missing {
			title, ok := titles[id]
			if !ok {
				title = fmt.Sprintf("team #%d", id)
			}
			names = append(names, title)
		}
		return nil, &MissingAdminsError{Teams: names}
	}

	return plan, nil
}
