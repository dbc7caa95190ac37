package constants

import "time"

// Context and session keys
const (
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyTeam    = "team"
	ContextKeyMember  = "team_member"
	ContextKeyProject = "project"
	ContextKeyTodo    = "todo"

	SessionCookieName = "todo_session"
	RequestIDHeader   = "X-Request-ID"
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100

	// CascadeBatchSize is the number of rows fetched per round when a
	// team or project deletion cascades to its children.
	CascadeBatchSize = 100
)

// Validation
const (
	MinPasswordLength   = 8
	MaxTitleLength      = 255
	MaxAIGeneratedTodos = 20
)

// Auth
const (
	DefaultTokenTTL = 15 * time.Minute
	TokenType       = "bearer"
)
