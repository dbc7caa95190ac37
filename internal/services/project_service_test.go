package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

type ProjectServiceTestSuite struct {
	ServiceTestSuite
}

func TestProjectServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ProjectServiceTestSuite))
}

func (suite *ProjectServiceTestSuite) TestCreateProject_ValidatesScope() {
	owner := suite.createUser("owner")
	outsider := suite.createUser("outsider")
	team := suite.createTeam("T", owner)

	personal, err := suite.projects.CreateProject(suite.ctx, CreateProjectInput{Title: "Mine", OwnerID: owner.ID})
	suite.Require().NoError(err)
	suite.Equal(models.ProjectTypePersonal, personal.Type)

	var participants int64
	suite.Require().NoError(suite.db.Model(&models.ProjectParticipant{}).Where("project_id = ?", personal.ID).Count(&participants).Error)
	suite.Equal(int64(1), participants)

	_, err = suite.projects.CreateProject(suite.ctx, CreateProjectInput{Title: "X", Type: models.ProjectTypePersonal, TeamID: &team.ID, OwnerID: owner.ID})
	suite.ErrorIs(err, ErrTeamNotAllowed)

	_, err = suite.projects.CreateProject(suite.ctx, CreateProjectInput{Title: "X", Type: models.ProjectTypeTeam, OwnerID: owner.ID})
	suite.ErrorIs(err, ErrTeamRequired)

	_, err = suite.projects.CreateProject(suite.ctx, CreateProjectInput{Title: "X", Type: models.ProjectTypeTeam, TeamID: &team.ID, OwnerID: outsider.ID})
	suite.ErrorIs(err, ErrNotTeamMember)

	_, err = suite.projects.CreateProject(suite.ctx, CreateProjectInput{Title: "X", Type: "galaxy", OwnerID: owner.ID})
	suite.ErrorIs(err, ErrInvalidProjectType)

	shared, err := suite.projects.CreateProject(suite.ctx, CreateProjectInput{Title: "Shared", Type: models.ProjectTypeTeam, TeamID: &team.ID, OwnerID: owner.ID})
	suite.Require().NoError(err)
	suite.Equal(team.ID, *shared.TeamID)
}

func (suite *ProjectServiceTestSuite) TestDeleteProject_CascadesTodos() {
	owner := suite.createUser("owner")
	other := suite.createUser("other")
	project := suite.createProject("P", owner, nil)
	keep := suite.createProject("Keep", owner, nil)

	var ids []uint64
	for i := 0; i < 130; i++ {
		ids = append(ids, suite.createTodo("t", owner, models.TodoTypeProject, nil, project).ID)
	}
	kept := suite.createTodo("k", owner, models.TodoTypeProject, nil, keep)

	suite.ErrorIs(suite.projects.DeleteProject(suite.ctx, project.ID, other.ID), ErrNotProjectOwner)
	suite.Require().NoError(suite.projects.DeleteProject(suite.ctx, project.ID, owner.ID))

	for _, id := range ids {
		todo := suite.reloadTodo(id)
		suite.assertSoftDeleted(todo.Deleted, todo.DeletedAt)
	}
	deleted := suite.reloadProject(project.ID)
	suite.assertSoftDeleted(deleted.Deleted, deleted.DeletedAt)

	live := suite.reloadTodo(kept.ID)
	suite.assertLive(live.Deleted, live.DeletedAt)

	suite.ErrorIs(suite.projects.DeleteProject(suite.ctx, project.ID, owner.ID), ErrProjectNotFound)
}

func (suite *ProjectServiceTestSuite) TestParticipants_TeamProject() {
	owner := suite.createUser("owner")
	admin := suite.createUser("admin")
	basic := suite.createUser("basic")
	guest := suite.createUser("guest")
	team := suite.createTeam("T", owner)
	suite.addMember(team, admin, models.RoleAdmin)
	suite.addMember(team, basic, models.RoleBasic)
	project := suite.createProject("P", owner, team)

	_, err := suite.projects.AddProjectParticipant(suite.ctx, project.ID, basic.ID, guest.ID)
	suite.ErrorIs(err, ErrNotParticipant)

	added, err := suite.projects.AddProjectParticipant(suite.ctx, project.ID, owner.ID, basic.ID)
	suite.Require().NoError(err)
	suite.Equal(basic.ID, added.ParticipantID)

	_, err = suite.projects.AddProjectParticipant(suite.ctx, project.ID, basic.ID, guest.ID)
	suite.Require().NoError(err)

	_, err = suite.projects.AddProjectParticipant(suite.ctx, project.ID, owner.ID, guest.ID)
	suite.ErrorIs(err, ErrAlreadyParticipant)

	suite.ErrorIs(suite.projects.RemoveProjectParticipant(suite.ctx, project.ID, basic.ID, guest.ID), ErrNotTeamAdmin)
	suite.Require().NoError(suite.projects.RemoveProjectParticipant(suite.ctx, project.ID, admin.ID, guest.ID))
	suite.ErrorIs(suite.projects.RemoveProjectParticipant(suite.ctx, project.ID, admin.ID, guest.ID), ErrParticipantNotFound)
	suite.ErrorIs(suite.projects.RemoveProjectParticipant(suite.ctx, project.ID, admin.ID, owner.ID), ErrCannotRemoveOwner)
}

func (suite *ProjectServiceTestSuite) TestParticipants_PersonalProject() {
	owner := suite.createUser("owner")
	friend := suite.createUser("friend")
	inactive := suite.createUser("inactive")
	suite.deactivateDirectly(inactive)
	project := suite.createProject("P", owner, nil)

	_, err := suite.projects.AddProjectParticipant(suite.ctx, project.ID, owner.ID, inactive.ID)
	suite.ErrorIs(err, ErrInvalidParticipant)

	_, err = suite.projects.AddProjectParticipant(suite.ctx, project.ID, owner.ID, friend.ID)
	suite.Require().NoError(err)

	suite.ErrorIs(suite.projects.RemoveProjectParticipant(suite.ctx, project.ID, friend.ID, friend.ID), ErrNotProjectOwner)
	suite.Require().NoError(suite.projects.RemoveProjectParticipant(suite.ctx, project.ID, owner.ID, friend.ID))
}

func (suite *ProjectServiceTestSuite) TestGetListUpdate() {
	owner := suite.createUser("owner")
	member := suite.createUser("member")
	stranger := suite.createUser("stranger")
	team := suite.createTeam("T", owner)
	suite.addMember(team, member, models.RoleBasic)

	shared := suite.createProject("Shared", owner, team)
	suite.createProject("Private", owner, nil)

	_, participants, err := suite.projects.GetProject(suite.ctx, shared.ID, member.ID)
	suite.Require().NoError(err)
	suite.Len(participants, 1)

	_, _, err = suite.projects.GetProject(suite.ctx, shared.ID, stranger.ID)
	suite.ErrorIs(err, ErrProjectAccessDeny)

	list, total, err := suite.projects.ListProjects(suite.ctx, ListProjectsInput{UserID: member.ID, Pagination: utils.NewPaginationParams(1, 10)})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(list, 1)
	suite.Equal(shared.ID, list[0].ID)

	_, total, err = suite.projects.ListProjects(suite.ctx, ListProjectsInput{UserID: owner.ID, Pagination: utils.NewPaginationParams(1, 10)})
	suite.Require().NoError(err)
	suite.Equal(int64(2), total)

	title := "Renamed"
	_, err = suite.projects.UpdateProject(suite.ctx, shared.ID, member.ID, UpdateProjectInput{Title: &title})
	suite.ErrorIs(err, ErrNotProjectOwner)

	updated, err := suite.projects.UpdateProject(suite.ctx, shared.ID, owner.ID, UpdateProjectInput{Title: &title})
	suite.Require().NoError(err)
	suite.Equal("Renamed", updated.Title)
	suite.Equal(models.ProjectTypeTeam, updated.Type)
}
