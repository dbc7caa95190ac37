package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/yukikurage/todo-team-api/internal/logging"
	"github.com/yukikurage/todo-team-api/internal/metrics"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"gorm.io/gorm"
)

// Clock supplies the timestamps written by services.
type Clock func() time.Time

// DeactivationService retires user accounts together with what they own.
type DeactivationService struct {
	store   repository.Store
	metrics *metrics.Metrics
	now     Clock
}

// NewDeactivationService creates a new DeactivationService. A nil clock
// falls back to time.Now.
func NewDeactivationService(store repository.Store, m *metrics.Metrics, now Clock) *DeactivationService {
	if now == nil {
		now = time.Now
	}
	return &DeactivationService{store: store, metrics: m, now: now}
}

// ownershipChanges is the set of writes a deactivation performs. Reassign
// maps are keyed by the new owner.
type ownershipChanges struct {
	deleteTodos    []uint64
	deleteProjects []uint64
	deleteTeams    []uint64

	reassignTodos    map[uint64][]uint64
	reassignProjects map[uint64][]uint64
	reassignTeams    map[uint64][]uint64
}

func newOwnershipChanges() *ownershipChanges {
	return &ownershipChanges{
		reassignTodos:    make(map[uint64][]uint64),
		reassignProjects: make(map[uint64][]uint64),
		reassignTeams:    make(map[uint64][]uint64),
	}
}

// DeactivateUser retires a user. With delegate set, team-scoped entities
// go to a team admin and the rest is soft-deleted; otherwise everything the
// user owns is soft-deleted. Either all writes land or none do.
func (s *DeactivationService) DeactivateUser(ctx context.Context, userID uint64, delegate bool) error {
	mode := "soft_delete"
	if delegate {
		mode = "delegate"
	}
	log := logging.WithFields(logrus.Fields{"user_id": userID, "mode": mode})

	var changes *ownershipChanges
	err := s.store.WithinTransaction(ctx, func(repos repository.Repositories) error {
		if _, err := repos.Users.FindActiveForUpdate(ctx, userID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to lock user: %w", err)
		}

		owned, err := loadOwnedEntities(ctx, repos, userID)
		if err != nil {
			return err
		}

		if delegate {
			plan, err := planDelegations(ctx, repos.Teams, userID, owned)
			if err != nil {
				return err
			}
			changes, err = delegatedChanges(owned, plan)
			if err != nil {
				return err
			}
		} else {
			changes = softDeleteChanges(owned)
		}

		now := s.now()
		if err := applyOwnershipChanges(ctx, repos, changes, now); err != nil {
			return err
		}
		if err := repos.Users.Deactivate(ctx, userID, now); err != nil {
			return fmt.Errorf("failed to deactivate user: %w", err)
		}
		return nil
	})

	if err != nil {
		result := "error"
		var missing *MissingAdminsError
		switch {
		case errors.As(err, &missing):
			result = "missing_admins"
			log.WithField("teams", missing.Teams).Info("deactivation refused: teams without an eligible admin")
		case errors.Is(err, ErrUserNotFound):
			result = "not_found"
		default:
			log.WithError(err).Error("deactivation failed")
		}
		s.metrics.ObserveDeactivation(mode, result)
		return err
	}

	s.metrics.ObserveDeactivation(mode, "ok")
	log.WithFields(logrus.Fields{
		"deleted_todos":       len(changes.deleteTodos),
		"deleted_projects":    len(changes.deleteProjects),
		"deleted_teams":       len(changes.deleteTeams),
		"reassigned_todos":    countReassigned(changes.reassignTodos),
		"reassigned_projects": countReassigned(changes.reassignProjects),
		"reassigned_teams":    countReassigned(changes.reassignTeams),
	}).Info("user deactivated")
	return nil
}

func softDeleteChanges(owned OwnedEntities) *ownershipChanges {
	changes := newOwnershipChanges()
	for _, t := range owned.Todos {
		changes.deleteTodos = append(changes.deleteTodos, t.ID)
	}
	for _, p := range owned.Projects {
		changes.deleteProjects = append(changes.deleteProjects, p.ID)
	}
	for _, t := range owned.Teams {
		changes.deleteTeams = append(changes.deleteTeams, t.ID)
	}
	return changes
}

func delegatedChanges(owned OwnedEntities, plan DelegationPlan) (*ownershipChanges, error) {
	changes := newOwnershipChanges()

	for _, t := range owned.Todos {
		switch t.Type {
		case models.TodoTypeTask, models.TodoTypeProject:
			changes.deleteTodos = append(changes.deleteTodos, t.ID)
		case models.TodoTypeTeam, models.TodoTypeProjectTeam:
			if t.TeamID == nil {
				changes.deleteTodos = append(changes.deleteTodos, t.ID)
				continue
			}
			to, ok := plan.DelegateFor(*t.TeamID)
			if !ok {
				return nil, fmt.Errorf("no delegate planned for team %d", *t.TeamID)
			}
			changes.reassignTodos[to] = append(changes.reassignTodos[to], t.ID)
		default:
			return nil, fmt.Errorf("todo %d has unknown type %q", t.ID, t.Type)
		}
	}

	for _, p := range owned.Projects {
		switch p.Type {
		case models.ProjectTypePersonal:
			changes.deleteProjects = append(changes.deleteProjects, p.ID)
		case models.ProjectTypeTeam:
			if p.TeamID == nil {
				changes.deleteProjects = append(changes.deleteProjects, p.ID)
				continue
			}
			to, ok := plan.DelegateFor(*p.TeamID)
			if !ok {
				return nil, fmt.Errorf("no delegate planned for team %d", *p.TeamID)
			}
			changes.reassignProjects[to] = append(changes.reassignProjects[to], p.ID)
		default:
			return nil, fmt.Errorf("project %d has unknown type %q", p.ID, p.Type)
		}
	}

	for _, t := range owned.Teams {
		to, ok := plan.DelegateFor(t.ID)
		if !ok {
			return nil, fmt.Errorf("no delegate planned for team %d", t.ID)
		}
		changes.reassignTeams[to] = append(changes.reassignTeams[to], t.ID)
	}

	return changes, nil
}

func applyOwnershipChanges(ctx context.Context, repos repository.Repositories, changes *ownershipChanges, at time.Time) error {
	if err := repos.Todos.SoftDeleteByIDs(ctx, changes.deleteTodos, at); err != nil {
		return fmt.Errorf("failed to delete todos: %w", err)
	}
	for _, to := range sortedKeys(changes.reassignTodos) {
		if err := repos.Todos.ReassignOwner(ctx, changes.reassignTodos[to], to); err != nil {
			return fmt.Errorf("failed to reassign todos: %w", err)
		}
	}

	if err := repos.Projects.SoftDeleteByIDs(ctx, changes.deleteProjects, at); err != nil {
		return fmt.Errorf("failed to delete projects: %w", err)
	}
	for _, to := range sortedKeys(changes.reassignProjects) {
		if err := repos.Projects.ReassignOwner(ctx, changes.reassignProjects[to], to); err != nil {
			return fmt.Errorf("failed to reassign projects: %w", err)
		}
		for _, projectID := range changes.reassignProjects[to] {
			if err := ensureParticipant(ctx, repos.Projects, projectID, to, at); err != nil {
				return err
			}
		}
	}

	if err := repos.Teams.SoftDeleteByIDs(ctx, changes.deleteTeams, at); err != nil {
		return fmt.Errorf("failed to delete teams: %w", err)
	}
	for _, to := range sortedKeys(changes.reassignTeams) {
		if err := repos.Teams.ReassignOwner(ctx, changes.reassignTeams[to], to); err != nil {
			return fmt.Errorf("failed to reassign teams: %w", err)
		}
	}
	return nil
}

// ensureParticipant keeps a project's owner among its participants.
func ensureParticipant(ctx context.Context, projects repository.ProjectRepository, projectID, userID uint64, at time.Time) error {
	existing, err := findParticipant(ctx, projects, projectID, userID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	if err := projects.AddParticipant(ctx, &models.ProjectParticipant{
		ProjectID:     projectID,
		ParticipantID: userID,
		JoinedAt:      at,
	}); err != nil {
		return fmt.Errorf("failed to add project participant: %w", err)
	}
	return nil
}

func sortedKeys(m map[uint64][]uint64) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func countReassigned(m map[uint64][]uint64) int {
	n := 0
	for _, ids := range m {
		n += len(ids)
	}
	return n
}
