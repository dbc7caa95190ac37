package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/todo-team-api/internal/models"
	"github.com/yukikurage/todo-team-api/internal/utils"
)

type stubGenerator struct {
	drafts []TodoDraft
	err    error
}

func (g stubGenerator) GenerateTodosFromText(ctx context.Context, text string) ([]TodoDraft, error) {
	return g.drafts, g.err
}

type TodoServiceTestSuite struct {
	ServiceTestSuite
}

func TestTodoServiceTestSuite(t *testing.T) {
	suite.Run(t, new(TodoServiceTestSuite))
}

func (suite *TodoServiceTestSuite) TestCreateTodo_Defaults() {
	owner := suite.createUser("owner")

	todo, err := suite.todos.CreateTodo(suite.ctx, CreateTodoInput{Title: " Buy milk ", OwnerID: owner.ID})
	suite.Require().NoError(err)
	suite.Equal("Buy milk", todo.Title)
	suite.Equal(models.TodoTypeTask, todo.Type)
	suite.Equal(models.TodoStatusTodo, todo.Status)
	suite.Equal(models.TodoPriorityMedium, todo.Priority)
	suite.Equal("owner", todo.Owner.Name)
}

func (suite *TodoServiceTestSuite) TestCreateTodo_ScopeRules() {
	owner := suite.createUser("owner")
	outsider := suite.createUser("outsider")
	team := suite.createTeam("T", owner)
	otherTeam := suite.createTeam("Other", outsider)
	personal := suite.createProject("Personal", owner, nil)
	shared := suite.createProject("Shared", owner, team)

	cases := []struct {
		name  string
		input CreateTodoInput
		err   error
	}{
		{"task with team", CreateTodoInput{Type: models.TodoTypeTask, TeamID: &team.ID}, ErrTeamNotAllowed},
		{"team without team", CreateTodoInput{Type: models.TodoTypeTeam}, ErrTeamRequired},
		{"project without project", CreateTodoInput{Type: models.TodoTypeProject}, ErrProjectRequired},
		{"team with project", CreateTodoInput{Type: models.TodoTypeTeam, TeamID: &team.ID, ProjectID: &shared.ID}, ErrProjectNotAllowed},
		{"project on team project", CreateTodoInput{Type: models.TodoTypeProject, ProjectID: &shared.ID}, ErrProjectTeamMismatch},
		{"project_team on personal project", CreateTodoInput{Type: models.TodoTypeProjectTeam, TeamID: &team.ID, ProjectID: &personal.ID}, ErrProjectTeamMismatch},
		{"project_team on other team", CreateTodoInput{Type: models.TodoTypeProjectTeam, TeamID: &otherTeam.ID, ProjectID: &shared.ID}, ErrNotTeamMember},
		{"foreign team", CreateTodoInput{Type: models.TodoTypeTeam, TeamID: &otherTeam.ID}, ErrNotTeamMember},
		{"unknown type", CreateTodoInput{Type: "epic"}, ErrInvalidTodoType},
		{"bad status", CreateTodoInput{Status: "later"}, ErrInvalidStatus},
		{"bad priority", CreateTodoInput{Priority: "urgent"}, ErrInvalidPriority},
	}

	for _, tc := range cases {
		tc.input.Title = "x"
		tc.input.OwnerID = owner.ID
		_, err := suite.todos.CreateTodo(suite.ctx, tc.input)
		suite.ErrorIs(err, tc.err, tc.name)
	}

	ok := []CreateTodoInput{
		{Type: models.TodoTypeTeam, TeamID: &team.ID},
		{Type: models.TodoTypeProject, ProjectID: &personal.ID},
		{Type: models.TodoTypeProjectTeam, TeamID: &team.ID, ProjectID: &shared.ID},
	}
	for _, input := range ok {
		input.Title = "x"
		input.OwnerID = owner.ID
		_, err := suite.todos.CreateTodo(suite.ctx, input)
		suite.NoError(err, string(input.Type))
	}
}

func (suite *TodoServiceTestSuite) TestUpdateTodo_PartialUpdate() {
	owner := suite.createUser("owner")
	due := fixedNow.Add(48 * time.Hour)
	todo, err := suite.todos.CreateTodo(suite.ctx, CreateTodoInput{
		Title:       "Write report",
		Description: "quarterly",
		Priority:    models.TodoPriorityHigh,
		DueDate:     &due,
		OwnerID:     owner.ID,
	})
	suite.Require().NoError(err)

	status := models.TodoStatusInProgress
	updated, err := suite.todos.UpdateTodo(suite.ctx, todo.ID, owner.ID, UpdateTodoInput{Status: &status})
	suite.Require().NoError(err)
	suite.Equal(models.TodoStatusInProgress, updated.Status)
	suite.Equal("Write report", updated.Title)
	suite.Equal("quarterly", updated.Description)
	suite.Equal(models.TodoPriorityHigh, updated.Priority)
	suite.Require().NotNil(updated.DueDate)
	suite.WithinDuration(due, *updated.DueDate, time.Second)

	updated, err = suite.todos.UpdateTodo(suite.ctx, todo.ID, owner.ID, UpdateTodoInput{ClearDueDate: true})
	suite.Require().NoError(err)
	suite.Nil(updated.DueDate)
	suite.Equal(models.TodoStatusInProgress, updated.Status)

	empty := "   "
	_, err = suite.todos.UpdateTodo(suite.ctx, todo.ID, owner.ID, UpdateTodoInput{Title: &empty})
	suite.ErrorIs(err, ErrTitleRequired)
	suite.Equal("Write report", suite.reloadTodo(todo.ID).Title)
}

func (suite *TodoServiceTestSuite) TestUpdateTodo_Assignee() {
	owner := suite.createUser("owner")
	member := suite.createUser("member")
	stranger := suite.createUser("stranger")
	team := suite.createTeam("T", owner)
	suite.addMember(team, member, models.RoleBasic)

	todo := suite.createTodo("team work", owner, models.TodoTypeTeam, team, nil)

	_, err := suite.todos.UpdateTodo(suite.ctx, todo.ID, owner.ID, UpdateTodoInput{AssigneeID: &stranger.ID})
	suite.ErrorIs(err, ErrInvalidAssignee)

	updated, err := suite.todos.UpdateTodo(suite.ctx, todo.ID, owner.ID, UpdateTodoInput{AssigneeID: &member.ID})
	suite.Require().NoError(err)
	suite.Require().NotNil(updated.AssigneeID)
	suite.Equal(member.ID, *updated.AssigneeID)

	done := models.TodoStatusDone
	_, err = suite.todos.UpdateTodo(suite.ctx, todo.ID, member.ID, UpdateTodoInput{Status: &done})
	suite.Require().NoError(err)

	_, err = suite.todos.UpdateTodo(suite.ctx, todo.ID, member.ID, UpdateTodoInput{ClearAssignee: true})
	suite.ErrorIs(err, ErrNotTodoOwner)

	_, err = suite.todos.UpdateTodo(suite.ctx, todo.ID, stranger.ID, UpdateTodoInput{Status: &done})
	suite.ErrorIs(err, ErrNotTodoOwner)

	updated, err = suite.todos.UpdateTodo(suite.ctx, todo.ID, owner.ID, UpdateTodoInput{ClearAssignee: true})
	suite.Require().NoError(err)
	suite.Nil(updated.AssigneeID)
	suite.Equal(models.TodoStatusDone, updated.Status)
}

func (suite *TodoServiceTestSuite) TestGetListDelete() {
	owner := suite.createUser("owner")
	member := suite.createUser("member")
	stranger := suite.createUser("stranger")
	team := suite.createTeam("T", owner)
	suite.addMember(team, member, models.RoleBasic)

	private := suite.createTodo("private", owner, models.TodoTypeTask, nil, nil)
	shared := suite.createTodo("shared", owner, models.TodoTypeTeam, team, nil)

	_, err := suite.todos.GetTodo(suite.ctx, shared.ID, member.ID)
	suite.Require().NoError(err)
	_, err = suite.todos.GetTodo(suite.ctx, private.ID, member.ID)
	suite.ErrorIs(err, ErrTodoAccessDenied)

	list, total, err := suite.todos.ListTodos(suite.ctx, ListTodosInput{UserID: member.ID, Pagination: utils.NewPaginationParams(1, 10)})
	suite.Require().NoError(err)
	suite.Equal(int64(1), total)
	suite.Require().Len(list, 1)
	suite.Equal(shared.ID, list[0].ID)

	_, total, err = suite.todos.ListTodos(suite.ctx, ListTodosInput{UserID: owner.ID, AssignedToMe: true, Pagination: utils.NewPaginationParams(1, 10)})
	suite.Require().NoError(err)
	suite.Zero(total)

	suite.ErrorIs(suite.todos.DeleteTodo(suite.ctx, private.ID, stranger.ID), ErrNotTodoOwner)
	suite.Require().NoError(suite.todos.DeleteTodo(suite.ctx, private.ID, owner.ID))
	_, err = suite.todos.GetTodo(suite.ctx, private.ID, owner.ID)
	suite.ErrorIs(err, ErrTodoNotFound)

	deleted := suite.reloadTodo(private.ID)
	suite.assertSoftDeleted(deleted.Deleted, deleted.DeletedAt)
}

func (suite *TodoServiceTestSuite) TestGenerateTodos() {
	owner := suite.createUser("owner")

	_, err := suite.todos.GenerateTodos(suite.ctx, GenerateTodosInput{Text: "x", OwnerID: owner.ID})
	suite.ErrorIs(err, ErrAIServiceNotConfigured)

	past := fixedNow.Add(-72 * time.Hour)
	future := fixedNow.Add(24 * time.Hour)
	suite.todos.generator = stubGenerator{drafts: []TodoDraft{
		{Title: "  "},
		{Title: "Call bank", Priority: "urgent", DueDate: &past},
		{Title: "Ship", Priority: "high", DueDate: &future},
	}}

	drafts, err := suite.todos.GenerateTodos(suite.ctx, GenerateTodosInput{Text: "call the bank, ship", OwnerID: owner.ID})
	suite.Require().NoError(err)
	suite.Require().Len(drafts, 2)
	suite.Equal("medium", drafts[0].Priority)
	suite.Nil(drafts[0].DueDate)
	suite.Equal("high", drafts[1].Priority)
	suite.NotNil(drafts[1].DueDate)

	_, err = suite.todos.GenerateTodos(suite.ctx, GenerateTodosInput{Text: "  ", OwnerID: owner.ID})
	suite.ErrorIs(err, ErrGenerateTextRequired)

	suite.todos.generator = stubGenerator{}
	_, err = suite.todos.GenerateTodos(suite.ctx, GenerateTodosInput{Text: "nothing", OwnerID: owner.ID})
	suite.ErrorIs(err, ErrAINoTodosGenerated)

	suite.todos.generator = stubGenerator{err: errors.New("boom")}
	_, err = suite.todos.GenerateTodos(suite.ctx, GenerateTodosInput{Text: "x", OwnerID: owner.ID})
	suite.Error(err)
}

func TestParseTodoDrafts(t *testing.T) {
	drafts, err := parseTodoDrafts("```json\n[{\"title\":\"a\",\"due_date\":null}]\n```")
	if err != nil {
		t.Fatal(err)
	}
	if len(drafts) != 1 || drafts[0].Title != "a" {
		t.Fatalf("unexpected drafts: %+v", drafts)
	}

	if _, err := parseTodoDrafts("not json"); err == nil {
		t.Fatal("expected an error")
	}
}
