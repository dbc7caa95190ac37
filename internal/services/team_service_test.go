package services

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-team-api/internal/models"
)

type TeamServiceTestSuite struct {
	ServiceTestSuite
}

func TestTeamServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TeamServiceTestSuite))
}

func (suite *TeamServiceTestSuite) TestCreateTeam_OwnerBecomesAdmin() {
	owner := suite.createUser("owner")

	team, err := suite.teams.CreateTeam(suite.ctx, CreateTeamInput{Title: "  Core  ", OwnerID: owner.ID})
	suite.Require().NoError(err)
	suite.Equal("Core", team.Title)
	suite.NotEmpty(team.InviteCode)
	suite.Equal(models.RoleAdmin, suite.memberRole(team, owner))

	_, err = suite.teams.CreateTeam(suite.ctx, CreateTeamInput{Title: " ", OwnerID: owner.ID})
	suite.ErrorIs(err, ErrTitleRequired)
}

func (suite *TeamServiceTestSuite) TestDeleteTeam_CascadesBeyondOneBatch() {
	owner := suite.createUser("owner")
	team := suite.createTeam("Big", owner)
	other := suite.createTeam("Other", owner)

	// batch of 7 against 3 projects with 10 todos each and 25 loose todos
	suite.teams = NewTeamService(suite.store, suite.metrics, 7)
	suite.teams.now = suite.projects.now

	var todoIDs, projectIDs []uint64
	for p := 0; p < 3; p++ {
		project := suite.createProject("project", owner, team)
		projectIDs = append(projectIDs, project.ID)
		for i := 0; i < 10; i++ {
			todoIDs = append(todoIDs, suite.createTodo("pt", owner, models.TodoTypeProjectTeam, team, project).ID)
		}
	}
	for i := 0; i < 25; i++ {
		todoIDs = append(todoIDs, suite.createTodo("t", owner, models.TodoTypeTeam, team, nil).ID)
	}
	untouched := suite.createTodo("elsewhere", owner, models.TodoTypeTeam, other, nil)

	suite.Require().NoError(suite.teams.DeleteTeam(suite.ctx, team.ID, owner.ID))

	var remaining int64
	suite.Require().NoError(suite.db.Model(&models.Todo{}).Where("team_id = ?", team.ID).Count(&remaining).Error)
	suite.Zero(remaining)

	for _, id := range todoIDs {
		todo := suite.reloadTodo(id)
		suite.assertSoftDeleted(todo.Deleted, todo.DeletedAt)
	}
	for _, id := range projectIDs {
		project := suite.reloadProject(id)
		suite.assertSoftDeleted(project.Deleted, project.DeletedAt)
	}
	deleted := suite.reloadTeam(team.ID)
	suite.assertSoftDeleted(deleted.Deleted, deleted.DeletedAt)

	kept := suite.reloadTodo(untouched.ID)
	suite.assertLive(kept.Deleted, kept.DeletedAt)

	suite.Equal(55.0, testutil.ToFloat64(suite.metrics.CascadeDeletedTotal.WithLabelValues("todos")))
	suite.Equal(3.0, testutil.ToFloat64(suite.metrics.CascadeDeletedTotal.WithLabelValues("projects")))
}

func (suite *TeamServiceTestSuite) TestDeleteTeam_Authorization() {
	owner := suite.createUser("owner")
	admin := suite.createUser("admin")
	team := suite.createTeam("T", owner)
	suite.addMember(team, admin, models.RoleAdmin)

	suite.ErrorIs(suite.teams.DeleteTeam(suite.ctx, team.ID, admin.ID), ErrNotTeamOwner)
	suite.ErrorIs(suite.teams.DeleteTeam(suite.ctx, 999, owner.ID), ErrTeamNotFound)

	suite.Require().NoError(suite.teams.DeleteTeam(suite.ctx, team.ID, owner.ID))
	suite.ErrorIs(suite.teams.DeleteTeam(suite.ctx, team.ID, owner.ID), ErrTeamNotFound)
}

func (suite *TeamServiceTestSuite) TestAssignRole_NonAdminIsForbidden() {
	owner := suite.createUser("owner")
	basic := suite.createUser("basic")
	target := suite.createUser("target")
	team := suite.createTeam("T", owner)
	suite.addMember(team, basic, models.RoleBasic)
	suite.addMember(team, target, models.RoleBasic)

	err := suite.teams.AssignRole(suite.ctx, basic.ID, target.ID, team.ID)
	suite.ErrorIs(err, ErrNotTeamAdmin)
	suite.ErrorIs(err, ErrForbidden)
	suite.Equal(models.RoleBasic, suite.memberRole(team, target))
	suite.Equal(models.RoleBasic, suite.memberRole(team, basic))

	outsider := suite.createUser("outsider")
	suite.ErrorIs(suite.teams.AssignRole(suite.ctx, outsider.ID, target.ID, team.ID), ErrNotTeamAdmin)
}

func (suite *TeamServiceTestSuite) TestAssignRole_PromotesMember() {
	owner := suite.createUser("owner")
	target := suite.createUser("target")
	team := suite.createTeam("T", owner)
	suite.addMember(team, target, models.RoleBasic)

	suite.Require().NoError(suite.teams.AssignRole(suite.ctx, owner.ID, target.ID, team.ID))
	suite.Equal(models.RoleAdmin, suite.memberRole(team, target))

	suite.Require().NoError(suite.teams.AssignRole(suite.ctx, owner.ID, target.ID, team.ID))

	stranger := suite.createUser("stranger")
	suite.ErrorIs(suite.teams.AssignRole(suite.ctx, owner.ID, stranger.ID, team.ID), ErrTeamMemberNotFound)
}

func (suite *TeamServiceTestSuite) TestRevokeAdmin_KeepsOneAdmin() {
	owner := suite.createUser("owner")
	second := suite.createUser("second")
	team := suite.createTeam("T", owner)
	suite.addMember(team, second, models.RoleAdmin)

	suite.Require().NoError(suite.teams.RevokeAdmin(suite.ctx, owner.ID, second.ID, team.ID))
	suite.Equal(models.RoleBasic, suite.memberRole(team, second))

	err := suite.teams.RevokeAdmin(suite.ctx, owner.ID, owner.ID, team.ID)
	suite.ErrorIs(err, ErrLastTeamAdmin)
	suite.Equal(models.RoleAdmin, suite.memberRole(team, owner))
}

func (suite *TeamServiceTestSuite) TestRevokeAdmin_IgnoresDeactivatedAdmins() {
	u1 := suite.createUser("u1")
	u2 := suite.createUser("u2")

	team := suite.createTeam("Team", u1)
	suite.addMember(team, u2, models.RoleAdmin)

	suite.Require().NoError(suite.deactivation.DeactivateUser(suite.ctx, u1.ID, true))
	suite.Equal(u2.ID, suite.reloadTeam(team.ID).OwnerID)

	err := suite.teams.RevokeAdmin(suite.ctx, u2.ID, u2.ID, team.ID)
	suite.ErrorIs(err, ErrLastTeamAdmin)
	suite.Equal(models.RoleAdmin, suite.memberRole(team, u2))

	delegate, err := suite.resolver.ResolveDelegate(suite.ctx, team.ID, 0)
	suite.Require().NoError(err)
	suite.Require().NotNil(delegate)
	suite.Equal(u2.ID, *delegate)
}

func (suite *TeamServiceTestSuite) TestRemoveMember_LastActiveAdminCannotLeave() {
	owner := suite.createUser("owner")
	u2 := suite.createUser("u2")
	u3 := suite.createUser("u3")

	team := suite.createTeam("Team", owner)
	suite.addMember(team, u2, models.RoleAdmin)
	suite.addMember(team, u3, models.RoleAdmin)
	suite.deactivateDirectly(u3)
	suite.Require().NoError(suite.teams.RevokeAdmin(suite.ctx, owner.ID, owner.ID, team.ID))

	err := suite.teams.RemoveMember(suite.ctx, team.ID, u2.ID, u2.ID)
	suite.ErrorIs(err, ErrLastTeamAdmin)

	suite.NoError(suite.teams.RemoveMember(suite.ctx, team.ID, u2.ID, u3.ID))
	suite.Equal(models.RoleAdmin, suite.memberRole(team, u2))
}

func (suite *TeamServiceTestSuite) TestAddMember() {
	owner := suite.createUser("owner")
	newcomer := suite.createUser("newcomer")
	inactive := suite.createUser("inactive")
	suite.deactivateDirectly(inactive)
	team := suite.createTeam("T", owner)

	member, err := suite.teams.AddMember(suite.ctx, AddMemberInput{TeamID: team.ID, ActorID: owner.ID, MemberID: newcomer.ID})
	suite.Require().NoError(err)
	suite.Equal(models.RoleBasic, member.Role)

	_, err = suite.teams.AddMember(suite.ctx, AddMemberInput{TeamID: team.ID, ActorID: owner.ID, MemberID: newcomer.ID})
	suite.ErrorIs(err, ErrAlreadyTeamMember)

	_, err = suite.teams.AddMember(suite.ctx, AddMemberInput{TeamID: team.ID, ActorID: owner.ID, MemberID: inactive.ID})
	suite.ErrorIs(err, ErrInvalidMember)

	_, err = suite.teams.AddMember(suite.ctx, AddMemberInput{TeamID: team.ID, ActorID: newcomer.ID, MemberID: inactive.ID})
	suite.ErrorIs(err, ErrNotTeamAdmin)

	_, err = suite.teams.AddMember(suite.ctx, AddMemberInput{TeamID: team.ID, ActorID: owner.ID, MemberID: inactive.ID, Role: "root"})
	suite.ErrorIs(err, ErrInvalidRole)
}

func (suite *TeamServiceTestSuite) TestRemoveMember() {
	owner := suite.createUser("owner")
	admin := suite.createUser("admin")
	basic := suite.createUser("basic")
	team := suite.createTeam("T", owner)
	suite.addMember(team, admin, models.RoleAdmin)
	suite.addMember(team, basic, models.RoleBasic)

	suite.ErrorIs(suite.teams.RemoveMember(suite.ctx, team.ID, basic.ID, admin.ID), ErrNotTeamAdmin)
	suite.ErrorIs(suite.teams.RemoveMember(suite.ctx, team.ID, admin.ID, owner.ID), ErrCannotRemoveOwner)

	suite.Require().NoError(suite.teams.RemoveMember(suite.ctx, team.ID, basic.ID, basic.ID))
	suite.ErrorIs(suite.teams.RemoveMember(suite.ctx, team.ID, admin.ID, basic.ID), ErrTeamMemberNotFound)

	suite.Require().NoError(suite.teams.RevokeAdmin(suite.ctx, owner.ID, admin.ID, team.ID))
	suite.Require().NoError(suite.teams.RemoveMember(suite.ctx, team.ID, owner.ID, admin.ID))
}

func (suite *TeamServiceTestSuite) TestRemoveMember_LastAdminLeaving() {
	founder := suite.createUser("founder")
	admin := suite.createUser("admin")
	team := suite.createTeam("T", founder)
	suite.addMember(team, admin, models.RoleAdmin)
	suite.Require().NoError(suite.teams.RevokeAdmin(suite.ctx, admin.ID, founder.ID, team.ID))

	err := suite.teams.RemoveMember(suite.ctx, team.ID, admin.ID, admin.ID)
	suite.ErrorIs(err, ErrLastTeamAdmin)
}

func (suite *TeamServiceTestSuite) TestJoinTeam() {
	owner := suite.createUser("owner")
	joiner := suite.createUser("joiner")
	team := suite.createTeam("T", owner)

	joined, err := suite.teams.JoinTeam(suite.ctx, joiner.ID, team.InviteCode)
	suite.Require().NoError(err)
	suite.Equal(team.ID, joined.ID)
	suite.Equal(models.RoleBasic, suite.memberRole(team, joiner))

	_, err = suite.teams.JoinTeam(suite.ctx, joiner.ID, team.InviteCode)
	suite.ErrorIs(err, ErrAlreadyTeamMember)

	_, err = suite.teams.JoinTeam(suite.ctx, joiner.ID, "nope")
	suite.ErrorIs(err, ErrInvalidInviteCode)
}

func (suite *TeamServiceTestSuite) TestGetAndListTeams() {
	owner := suite.createUser("owner")
	outsider := suite.createUser("outsider")
	team := suite.createTeam("T", owner)
	gone := suite.createTeam("Gone", owner)
	suite.Require().NoError(suite.teams.DeleteTeam(suite.ctx, gone.ID, owner.ID))

	got, members, err := suite.teams.GetTeamWithMembers(suite.ctx, team.ID, owner.ID)
	suite.Require().NoError(err)
	suite.Equal("T", got.Title)
	suite.Require().Len(members, 1)
	suite.Equal("owner", members[0].Member.Name)

	_, _, err = suite.teams.GetTeamWithMembers(suite.ctx, team.ID, outsider.ID)
	suite.ErrorIs(err, ErrNotTeamMember)

	memberships, err := suite.teams.ListTeamsForUser(suite.ctx, owner.ID)
	suite.Require().NoError(err)
	suite.Require().Len(memberships, 1)
	suite.Equal(team.ID, memberships[0].Team.ID)
}

func (suite *TeamServiceTestSuite) TestUpdateTeamAndInviteCode() {
	owner := suite.createUser("owner")
	basic := suite.createUser("basic")
	team := suite.createTeam("T", owner)
	suite.addMember(team, basic, models.RoleBasic)

	title := "Renamed"
	_, err := suite.teams.UpdateTeam(suite.ctx, team.ID, basic.ID, UpdateTeamInput{Title: &title})
	suite.ErrorIs(err, ErrNotTeamAdmin)

	description := "desc"
	updated, err := suite.teams.UpdateTeam(suite.ctx, team.ID, owner.ID, UpdateTeamInput{Description: &description})
	suite.Require().NoError(err)
	suite.Equal("T", updated.Title)
	suite.Equal("desc", updated.Description)

	regenerated, err := suite.teams.RegenerateInviteCode(suite.ctx, team.ID, owner.ID)
	suite.Require().NoError(err)
	suite.NotEqual(team.InviteCode, regenerated.InviteCode)
}
