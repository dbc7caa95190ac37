package repository

import (
	"context"
	"time"

	"github.com/yukikurage/todo-team-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTeamRepository is a GORM implementation of TeamRepository
type GormTeamRepository struct {
	db *gorm.DB
}

// NewTeamRepository creates a new TeamRepository
func NewTeamRepository(db *gorm.DB) TeamRepository {
	return &GormTeamRepository{db: db}
}

// Create creates a new team
func (r *GormTeamRepository) Create(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Create(team).Error
}

// FindByID finds a team by ID
func (r *GormTeamRepository) FindByID(ctx context.Context, id uint64) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).First(&team, id).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// FindByInviteCode finds a team by invite code
func (r *GormTeamRepository) FindByInviteCode(ctx context.Context, code string) (*models.Team, error) {
	var team models.Team
	if err := r.db.WithContext(ctx).Where("invite_code = ?", code).First(&team).Error; err != nil {
		return nil, err
	}
	return &team, nil
}

// Update updates a team
func (r *GormTeamRepository) Update(ctx context.Context, team *models.Team) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(team).Error
}

// ListOwnedActive lists every non-deleted team owned by the user
func (r *GormTeamRepository) ListOwnedActive(ctx context.Context, ownerID uint64) ([]models.Team, error) {
	var teams []models.Team
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("id ASC").
		Find(&teams).Error; err != nil {
		return nil, err
	}
	return teams, nil
}

// TitlesByIDs returns team titles keyed by id
func (r *GormTeamRepository) TitlesByIDs(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	titles := make(map[uint64]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}

	var teams []models.Team
	if err := r.db.WithContext(ctx).Unscoped().
		Select("id", "title").
		Where("id IN ?", ids).
		Find(&teams).Error; err != nil {
		return nil, err
	}
	for _, t := range teams {
		titles[t.ID] = t.Title
	}
	return titles, nil
}

// SoftDeleteByIDs marks the given teams deleted
func (r *GormTeamRepository) SoftDeleteByIDs(ctx context.Context, ids []uint64, at time.Time) error {
	return softDeleteByIDs(ctx, r.db, &models.Team{}, ids, at)
}

// ReassignOwner moves the given teams to a new owner
func (r *GormTeamRepository) ReassignOwner(ctx context.Context, ids []uint64, ownerID uint64) error {
	return reassignOwner(ctx, r.db, &models.Team{}, ids, ownerID)
}

// AddMember adds a member to a team
func (r *GormTeamRepository) AddMember(ctx context.Context, member *models.TeamMembership) error {
	return r.db.WithContext(ctx).Create(member).Error
}

// RemoveMember removes a member from a team
func (r *GormTeamRepository) RemoveMember(ctx context.Context, teamID, userID uint64) error {
	return r.db.WithContext(ctx).
		Where("team_id = ? AND member_id = ?", teamID, userID).
		Delete(&models.TeamMembership{}).Error
}

// FindMember finds a specific team membership
func (r *GormTeamRepository) FindMember(ctx context.Context, teamID, userID uint64) (*models.TeamMembership, error) {
	var member models.TeamMembership
	if err := r.db.WithContext(ctx).
		Where("team_id = ? AND member_id = ?", teamID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// UpdateMemberRole sets the role of a membership
func (r *GormTeamRepository) UpdateMemberRole(ctx context.Context, teamID, userID uint64, role models.TeamRole) error {
	return r.db.WithContext(ctx).Model(&models.TeamMembership{}).
		Where("team_id = ? AND member_id = ?", teamID, userID).
		Update("role", role).Error
}

// CountAdmins counts the admin memberships of a team held by active users
func (r *GormTeamRepository) CountAdmins(ctx context.Context, teamID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.TeamMembership{}).
		Joins("JOIN users ON users.id = team_memberships.member_id").
		Where("team_memberships.team_id = ?", teamID).
		Where("team_memberships.role = ?", models.RoleAdmin).
		Where("users.is_active = ?", true).
		Count(&count).Error
	return count, err
}

// FindDelegate returns the first eligible admin of a team. The membership
// and user rows are locked so a concurrent deactivation of the delegate
// waits for this transaction.
func (r *GormTeamRepository) FindDelegate(ctx context.Context, teamID, excludedUserID uint64) (*models.TeamMembership, error) {
	var member models.TeamMembership
	if err := forUpdate(r.db.WithContext(ctx)).
		Joins("JOIN users ON users.id = team_memberships.member_id").
		Where("team_memberships.team_id = ?", teamID).
		Where("team_memberships.role = ?", models.RoleAdmin).
		Where("team_memberships.member_id <> ?", excludedUserID).
		Where("users.is_active = ?", true).
		Order("team_memberships.id ASC").
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// ListMembers lists all members of a team
func (r *GormTeamRepository) ListMembers(ctx context.Context, teamID uint64) ([]models.TeamMembership, error) {
	var members []models.TeamMembership
	if err := r.db.WithContext(ctx).Preload("Member").
		Where("team_id = ?", teamID).
		Order("id ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// ListMembershipsByUserID lists the teams a user is a member of
func (r *GormTeamRepository) ListMembershipsByUserID(ctx context.Context, userID uint64) ([]models.TeamMembership, error) {
	var memberships []models.TeamMembership
	db := r.db.WithContext(ctx)
	activeTeams := db.Model(&models.Team{}).Select("id")
	if err := db.Preload("Team").
		Where("member_id = ? AND team_id IN (?)", userID, activeTeams).
		Order("id ASC").
		Find(&memberships).Error; err != nil {
		return nil, err
	}
	return memberships, nil
}
