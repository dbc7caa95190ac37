package models

import (
	"time"

	"gorm.io/gorm"
)

type TodoStatus string

const (
	TodoStatusTodo       TodoStatus = "todo"
	TodoStatusInProgress TodoStatus = "in_progress"
	TodoStatusDone       TodoStatus = "done"
)

func (s TodoStatus) Valid() bool {
	switch s {
	case TodoStatusTodo, TodoStatusInProgress, TodoStatusDone:
		return true
	}
	return false
}

type TodoPriority string

const (
	TodoPriorityLow    TodoPriority = "low"
	TodoPriorityMedium TodoPriority = "medium"
	TodoPriorityHigh   TodoPriority = "high"
)

func (p TodoPriority) Valid() bool {
	switch p {
	case TodoPriorityLow, TodoPriorityMedium, TodoPriorityHigh:
		return true
	}
	return false
}

// TodoType decides which scoping columns of a todo are meaningful.
type TodoType string

const (
	TodoTypeTask        TodoType = "task"
	TodoTypeTeam        TodoType = "team"
	TodoTypeProject     TodoType = "project"
	TodoTypeProjectTeam TodoType = "project_team"
)

func (t TodoType) Valid() bool {
	switch t {
	case TodoTypeTask, TodoTypeTeam, TodoTypeProject, TodoTypeProjectTeam:
		return true
	}
	return false
}

// NeedsTeam reports whether todos of this type must carry a team id.
func (t TodoType) NeedsTeam() bool {
	return t == TodoTypeTeam || t == TodoTypeProjectTeam
}

// NeedsProject reports whether todos of this type must carry a project id.
func (t TodoType) NeedsProject() bool {
	return t == TodoTypeProject || t == TodoTypeProjectTeam
}

type Todo struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	Status      TodoStatus     `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    TodoPriority   `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate     *time.Time     `json:"due_date"`
	Type        TodoType       `gorm:"type:varchar(20);not null;default:'task'" json:"type"`
	OwnerID     uint64         `gorm:"not null;index" json:"owner_id"`
	AssigneeID  *uint64        `gorm:"index" json:"assignee_id"`
	TeamID      *uint64        `gorm:"index" json:"team_id"`
	ProjectID   *uint64        `gorm:"index" json:"project_id"`
	Deleted     bool           `gorm:"not null;default:false" json:"deleted"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// Relations
	Owner    User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Assignee *User    `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	Team     *Team    `gorm:"foreignKey:TeamID" json:"-"`
	Project  *Project `gorm:"foreignKey:ProjectID" json:"-"`
}
