package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-team-api/internal/database"
	"github.com/yukikurage/todo-team-api/internal/metrics"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)

// ServiceTestSuite wires every service onto a private in-memory database.
type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	db      *gorm.DB
	store   repository.Store
	metrics *metrics.Metrics

	auth         *AuthService
	todos        *TodoService
	projects     *ProjectService
	teams        *TeamService
	resolver     *OwnershipResolver
	deactivation *DeactivationService
}

// SetupTest runs before each test
func (suite *ServiceTestSuite) SetupTest() {
	var err error

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	suite.db, err = gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	suite.Require().NoError(err)

	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	suite.Require().NoError(database.MigrateDatabase(suite.db))

	suite.ctx = context.Background()
	suite.store = repository.NewStore(suite.db)
	suite.metrics = metrics.New()

	suite.auth = NewAuthService(suite.store)
	suite.auth.cost = 4
	suite.todos = NewTodoService(suite.store, nil)
	suite.projects = NewProjectService(suite.store, suite.metrics, 0)
	suite.teams = NewTeamService(suite.store, suite.metrics, 0)
	suite.resolver = NewOwnershipResolver(suite.store)
	suite.deactivation = NewDeactivationService(suite.store, suite.metrics, func() time.Time { return fixedNow })

	clock := func() time.Time { return fixedNow }
	suite.todos.now = clock
	suite.projects.now = clock
	suite.teams.now = clock
}

// TearDownTest runs after each test
func (suite *ServiceTestSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *ServiceTestSuite) createUser(name string) *models.User {
	user := &models.User{
		Name:         name,
		Email:        name + "@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *ServiceTestSuite) deactivateDirectly(user *models.User) {
	suite.Require().NoError(suite.db.Model(user).Update("is_active", false).Error)
}

func (suite *ServiceTestSuite) createTeam(title string, owner *models.User) *models.Team {
	team := &models.Team{
		Title:      title,
		OwnerID:    owner.ID,
		InviteCode: uuid.NewString(),
	}
	suite.Require().NoError(suite.db.Create(team).Error)
	suite.addMember(team, owner, models.RoleAdmin)
	return team
}

func (suite *ServiceTestSuite) addMember(team *models.Team, user *models.User, role models.TeamRole) *models.TeamMembership {
	member := &models.TeamMembership{
		TeamID:   team.ID,
		MemberID: user.ID,
		Role:     role,
		JoinedAt: fixedNow,
	}
	suite.Require().NoError(suite.db.Create(member).Error)
	return member
}

func (suite *ServiceTestSuite) createProject(title string, owner *models.User, team *models.Team) *models.Project {
	project := &models.Project{
		Title:   title,
		Type:    models.ProjectTypePersonal,
		OwnerID: owner.ID,
	}
	if team != nil {
		project.Type = models.ProjectTypeTeam
		project.TeamID = &team.ID
	}
	suite.Require().NoError(suite.db.Create(project).Error)
	suite.Require().NoError(suite.db.Create(&models.ProjectParticipant{
		ProjectID:     project.ID,
		ParticipantID: owner.ID,
		JoinedAt:      fixedNow,
	}).Error)
	return project
}

func (suite *ServiceTestSuite) createTodo(title string, owner *models.User, todoType models.TodoType, team *models.Team, project *models.Project) *models.Todo {
	todo := &models.Todo{
		Title:    title,
		Status:   models.TodoStatusTodo,
		Priority: models.TodoPriorityMedium,
		Type:     todoType,
		OwnerID:  owner.ID,
	}
	if team != nil {
		todo.TeamID = &team.ID
	}
	if project != nil {
		todo.ProjectID = &project.ID
	}
	suite.Require().NoError(suite.db.Create(todo).Error)
	return todo
}

func (suite *ServiceTestSuite) reloadTodo(id uint64) models.Todo {
	var todo models.Todo
	suite.Require().NoError(suite.db.Unscoped().First(&todo, id).Error)
	return todo
}

func (suite *ServiceTestSuite) reloadProject(id uint64) models.Project {
	var project models.Project
	suite.Require().NoError(suite.db.Unscoped().First(&project, id).Error)
	return project
}

func (suite *ServiceTestSuite) reloadTeam(id uint64) models.Team {
	var team models.Team
	suite.Require().NoError(suite.db.Unscoped().First(&team, id).Error)
	return team
}

func (suite *ServiceTestSuite) reloadUser(id uint64) models.User {
	var user models.User
	suite.Require().NoError(suite.db.First(&user, id).Error)
	return user
}

func (suite *ServiceTestSuite) memberRole(team *models.Team, user *models.User) models.TeamRole {
	var member models.TeamMembership
	suite.Require().NoError(suite.db.Where("team_id = ? AND member_id = ?", team.ID, user.ID).First(&member).Error)
	return member.Role
}

func (suite *ServiceTestSuite) assertSoftDeleted(deleted bool, deletedAt gorm.DeletedAt) {
	suite.True(deleted)
	suite.Require().True(deletedAt.Valid)
	suite.WithinDuration(fixedNow, deletedAt.Time, time.Second)
}

func (suite *ServiceTestSuite) assertLive(deleted bool, deletedAt gorm.DeletedAt) {
	suite.False(deleted)
	suite.False(deletedAt.Valid)
}
