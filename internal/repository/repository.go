package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID regardless of activation state
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindActiveForUpdate finds an active user and locks the row until the
	// surrounding transaction ends
	FindActiveForUpdate(ctx context.Context, id uint64) (*models.User, error)

	// List retrieves active users with pagination
	List(ctx context.Context, params utils.PaginationParams) ([]models.User, int64, error)

	// Update persists all fields of a user
	Update(ctx context.Context, user *models.User) error

	// Deactivate flips is_active off and stamps last_login
	Deactivate(ctx context.Context, id uint64, at time.Time) error
}

// TodoFilter holds filtering options for listing todos
type TodoFilter struct {
	VisibleTo      uint64
	Type           *models.TodoType
	Status         *models.TodoStatus
	TeamID         *uint64
	ProjectID      *uint64
	AssignedUserID *uint64
	Pagination     utils.PaginationParams
}

// TodoRepository defines the interface for todo data access
type TodoRepository interface {
	// Create creates a new todo
	Create(ctx context.Context, todo *models.Todo) error

	// FindByID finds a non-deleted todo by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Todo, error)

	// List retrieves non-deleted todos visible to a user
	List(ctx context.Context, filter TodoFilter) ([]models.Todo, int64, error)

	// Update persists all fields of a todo
	Update(ctx context.Context, todo *models.Todo) error

	// ListOwnedActive lists every non-deleted todo owned by the user
	ListOwnedActive(ctx context.Context, ownerID uint64) ([]models.Todo, error)

	// SoftDeleteByIDs marks the given todos deleted
	SoftDeleteByIDs(ctx context.Context, ids []uint64, at time.Time) error

	// ReassignOwner moves the given todos to a new owner
	ReassignOwner(ctx context.Context, ids []uint64, ownerID uint64) error

	// SoftDeleteByTeam soft-deletes every non-deleted todo of a team,
	// batchSize rows at a time, and returns how many rows it marked
	SoftDeleteByTeam(ctx context.Context, teamID uint64, batchSize int, at time.Time) (int64, error)

	// SoftDeleteByProject soft-deletes every non-deleted todo of a project,
	// batchSize rows at a time, and returns how many rows it marked
	SoftDeleteByProject(ctx context.Context, projectID uint64, batchSize int, at time.Time) (int64, error)
}

// ProjectFilter holds filtering options for listing projects
type ProjectFilter struct {
	VisibleTo  uint64
	Type       *models.ProjectType
	TeamID     *uint64
	Pagination utils.PaginationParams
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(ctx context.Context, project *models.Project) error

	// FindByID finds a non-deleted project by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Project, error)

	// List retrieves non-deleted projects visible to a user
	List(ctx context.Context, filter ProjectFilter) ([]models.Project, int64, error)

	// Update persists all fields of a project
	Update(ctx context.Context, project *models.Project) error

	// ListOwnedActive lists every non-deleted project owned by the user
	ListOwnedActive(ctx context.Context, ownerID uint64) ([]models.Project, error)

	// ListActiveIDsByTeam returns up to limit ids of the team's non-deleted
	// projects with an id above afterID, in id order
	ListActiveIDsByTeam(ctx context.Context, teamID, afterID uint64, limit int) ([]uint64, error)

	// SoftDeleteByIDs marks the given projects deleted
	SoftDeleteByIDs(ctx context.Context, ids []uint64, at time.Time) error

	// ReassignOwner moves the given projects to a new owner
	ReassignOwner(ctx context.Context, ids []uint64, ownerID uint64) error

	// AddParticipant inserts a participant row
	AddParticipant(ctx context.Context, participant *models.ProjectParticipant) error

	// RemoveParticipant deletes a participant row
	RemoveParticipant(ctx context.Context, projectID, userID uint64) error

	// FindParticipant finds a specific participant row
	FindParticipant(ctx context.Context, projectID, userID uint64) (*models.ProjectParticipant, error)

	// ListParticipants lists the participants of a project
	ListParticipants(ctx context.Context, projectID uint64) ([]models.ProjectParticipant, error)
}

// TeamRepository defines the interface for team data access
type TeamRepository interface {
	// Create creates a new team
	Create(ctx context.Context, team *models.Team) error

	// FindByID finds a non-deleted team by ID
	FindByID(ctx context.Context, id uint64) (*models.Team, error)

	// FindByInviteCode finds a non-deleted team by invite code
	FindByInviteCode(ctx context.Context, code string) (*models.Team, error)

	// Update persists all fields of a team
	Update(ctx context.Context, team *models.Team) error

	// ListOwnedActive lists every non-deleted team owned by the user
	ListOwnedActive(ctx context.Context, ownerID uint64) ([]models.Team, error)

	// TitlesByIDs returns team titles keyed by id, soft-deleted teams included
	TitlesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error)

	// SoftDeleteByIDs marks the given teams deleted
	SoftDeleteByIDs(ctx context.Context, ids []uint64, at time.Time) error

	// ReassignOwner moves the given teams to a new owner
	ReassignOwner(ctx context.Context, ids []uint64, ownerID uint64) error

	// AddMember adds a member to a team
	AddMember(ctx context.Context, member *models.TeamMembership) error

	// RemoveMember removes a member from a team
	RemoveMember(ctx context.Context, teamID, userID uint64) error

	// FindMember finds a specific team membership
	FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMembership, error)

	// UpdateMemberRole sets the role of a membership
	UpdateMemberRole(ctx context.Context, teamID, userID uint64, role models.TeamRole) error

	// CountAdmins counts the admin memberships of a team held by active users
	CountAdmins(ctx context.Context, teamID uint64) (int64, error)

	// FindDelegate returns the lowest-id admin membership of the team whose
	// member is active and is not excludedUserID, locking the rows it reads
	FindDelegate(ctx context.Context, teamID, excludedUserID uint64) (*models.TeamMembership, error)

	// ListMembers lists all members of a team
	ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMembership, error)

	// ListMembershipsByUserID lists the memberships of a user in non-deleted teams
	ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.TeamMembership, error)
}

// Repositories bundles the repositories bound to one database handle,
// either the shared pool or a single transaction.
type Repositories struct {
	Users    UserRepository
	Todos    TodoRepository
	Projects ProjectRepository
	Teams    TeamRepository
}

// Store hands out repositories and scopes work to a transaction.
type Store interface {
	// Repositories returns repositories bound to the shared pool
	Repositories() Repositories

	// WithinTransaction runs fn with repositories bound to one transaction.
	// A returned error or a panic rolls the transaction back.
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}
