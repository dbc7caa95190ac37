package handlers

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/yukikurage/todo-team-api/internal/auth"
	"github.com/yukikurage/todo-team-api/internal/constants"
	"github.com/yukikurage/todo-team-api/internal/metrics"
	"github.com/yukikurage/todo-team-api/internal/middleware"
	"github.com/yukikurage/todo-team-api/internal/repository"
	"github.com/yukikurage/todo-team-api/internal/services"
)

// Dependencies collects what the HTTP layer needs from the process.
type Dependencies struct {
	Store            repository.Store
	Tokens           *auth.TokenService
	Metrics          *metrics.Metrics
	Sessions         sessions.Store
	Generator        services.TodoGenerator
	CascadeBatchSize int
}

// NewRouter builds the gin engine with every API route registered.
func NewRouter(deps Dependencies) *gin.Engine {
	authService := services.NewAuthService(deps.Store)
	todoService := services.NewTodoService(deps.Store, deps.Generator)
	projectService := services.NewProjectService(deps.Store, deps.Metrics, deps.CascadeBatchSize)
	teamService := services.NewTeamService(deps.Store, deps.Metrics, deps.CascadeBatchSize)
	deactivationService := services.NewDeactivationService(deps.Store, deps.Metrics, nil)

	authHandler := NewAuthHandler(authService, deps.Tokens, deps.Metrics)
	userHandler := NewUserHandler(authService, deactivationService)
	todoHandler := NewTodoHandler(todoService)
	projectHandler := NewProjectHandler(projectService)
	teamHandler := NewTeamHandler(teamService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}
	r.Use(sessions.Sessions(constants.SessionCookieName, deps.Sessions))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Todo Team API is running",
		})
	})

	requireAuth := middleware.RequireAuth(deps.Tokens, authService, deps.Metrics)
	teamMember := middleware.RequireTeamMember(deps.Store)
	teamAdmin := middleware.RequireTeamAdmin()
	todoAccess := middleware.RequireTodoAccess(todoService)

	api := r.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/logout", authHandler.Logout)
			authRoutes.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", userHandler.ListUsers)
			users.PATCH("/me", userHandler.UpdateMe)
			users.DELETE("/me", userHandler.DeactivateMe)
			users.GET("/:id", userHandler.GetUser)
		}

		todos := api.Group("/todos")
		todos.Use(requireAuth)
		{
			todos.GET("", todoHandler.ListTodos)
			todos.POST("", todoHandler.CreateTodo)
			todos.POST("/generate", todoHandler.GenerateTodos)
			todos.GET("/:id", todoAccess, todoHandler.GetTodo)
			todos.PATCH("/:id", todoAccess, todoHandler.UpdateTodo)
			todos.DELETE("/:id", todoAccess, todoHandler.DeleteTodo)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/participants", projectHandler.AddParticipant)
			projects.DELETE("/:id/participants/:user_id", projectHandler.RemoveParticipant)
		}

		teams := api.Group("/teams")
		teams.Use(requireAuth)
		{
			teams.GET("", teamHandler.ListTeams)
			teams.POST("", teamHandler.CreateTeam)
			teams.POST("/join", teamHandler.JoinTeam)
			teams.GET("/:id", teamMember, teamHandler.GetTeam)
			teams.PATCH("/:id", teamMember, teamAdmin, teamHandler.UpdateTeam)
			teams.DELETE("/:id", teamMember, teamHandler.DeleteTeam)
			teams.POST("/:id/invite-code", teamMember, teamAdmin, teamHandler.RegenerateInviteCode)
			teams.POST("/:id/members", teamMember, teamAdmin, teamHandler.AddMember)
			teams.DELETE("/:id/members/:user_id", teamMember, teamHandler.RemoveMember)
			teams.POST("/:id/members/:user_id/admin", teamMember, teamAdmin, teamHandler.GrantAdmin)
			teams.DELETE("/:id/members/:user_id/admin", teamMember, teamAdmin, teamHandler.RevokeAdmin)
		}
	}

	return r
}
