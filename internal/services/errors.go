package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every sentinel below wraps exactly one of them so the HTTP
// layer can map by kind.
var (
	ErrNotFound     = errors.New("not found")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

var (
	ErrUserNotFound        = fmt.Errorf("%w: user not found", ErrNotFound)
	ErrTodoNotFound        = fmt.Errorf("%w: todo not found", ErrNotFound)
	ErrProjectNotFound     = fmt.Errorf("%w: project not found", ErrNotFound)
	ErrTeamNotFound        = fmt.Errorf("%w: team not found", ErrNotFound)
	ErrTeamMemberNotFound  = fmt.Errorf("%w: team member not found", ErrNotFound)
	ErrParticipantNotFound = fmt.Errorf("%w: project participant not found", ErrNotFound)
	ErrInvalidInviteCode   = fmt.Errorf("%w: invalid invite code", ErrNotFound)

	ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", ErrUnauthorized)

	ErrNotTodoOwner      = fmt.Errorf("%w: only the todo owner can perform this action", ErrForbidden)
	ErrTodoAccessDenied  = fmt.Errorf("%w: user cannot access this todo", ErrForbidden)
	ErrNotProjectOwner   = fmt.Errorf("%w: only the project owner can perform this action", ErrForbidden)
	ErrNotParticipant    = fmt.Errorf("%w: user is not a participant of the project", ErrForbidden)
	ErrNotTeamOwner      = fmt.Errorf("%w: only the team owner can perform this action", ErrForbidden)
	ErrNotTeamMember     = fmt.Errorf("%w: user is not a member of the team", ErrForbidden)
	ErrNotTeamAdmin      = fmt.Errorf("%w: only team admins can perform this action", ErrForbidden)
	ErrProjectAccessDeny = fmt.Errorf("%w: user cannot access this project", ErrForbidden)

	ErrEmailTaken           = fmt.Errorf("%w: email already registered", ErrConflict)
	ErrAlreadyTeamMember    = fmt.Errorf("%w: user is already a member of this team", ErrConflict)
	ErrAlreadyParticipant   = fmt.Errorf("%w: user is already a participant of this project", ErrConflict)
	ErrLastTeamAdmin        = fmt.Errorf("%w: a team must keep at least one admin", ErrConflict)
	ErrCannotRemoveOwner    = fmt.Errorf("%w: the owner cannot be removed", ErrConflict)
	ErrMissingAdmins        = fmt.Errorf("%w: teams without an eligible admin", ErrConflict)
	ErrInviteCodeGeneration = errors.New("failed to generate invite code")

	ErrTitleRequired       = fmt.Errorf("%w: title is required", ErrValidation)
	ErrTitleTooLong        = fmt.Errorf("%w: title is too long", ErrValidation)
	ErrInvalidStatus       = fmt.Errorf("%w: invalid status", ErrValidation)
	ErrInvalidPriority     = fmt.Errorf("%w: invalid priority", ErrValidation)
	ErrInvalidTodoType     = fmt.Errorf("%w: invalid todo type", ErrValidation)
	ErrInvalidProjectType  = fmt.Errorf("%w: invalid project type", ErrValidation)
	ErrInvalidRole         = fmt.Errorf("%w: invalid team role", ErrValidation)
	ErrTeamRequired        = fmt.Errorf("%w: team_id is required for this type", ErrValidation)
	ErrTeamNotAllowed      = fmt.Errorf("%w: team_id is not allowed for this type", ErrValidation)
	ErrProjectRequired     = fmt.Errorf("%w: project_id is required for this type", ErrValidation)
	ErrProjectNotAllowed   = fmt.Errorf("%w: project_id is not allowed for this type", ErrValidation)
	ErrProjectTeamMismatch = fmt.Errorf("%w: todo scope does not match the project", ErrValidation)
	ErrInvalidAssignee     = fmt.Errorf("%w: assignee does not exist or cannot see this todo", ErrValidation)
	ErrNameRequired        = fmt.Errorf("%w: name is required", ErrValidation)
	ErrEmailRequired       = fmt.Errorf("%w: email is required", ErrValidation)
	ErrPasswordTooShort    = fmt.Errorf("%w: password too short", ErrValidation)
	ErrInvalidParticipant  = fmt.Errorf("%w: participant does not exist or is inactive", ErrValidation)
	ErrInvalidMember       = fmt.Errorf("%w: member does not exist or is inactive", ErrValidation)
)

// MissingAdminsError reports the teams for which no delegate could be
// found. It matches ErrMissingAdmins with errors.Is.
type MissingAdminsError struct {
	Teams []string
}

func (e *MissingAdminsError) Error() string {
	return fmt.Sprintf("no eligible admin in teams: %s", strings.Join(e.Teams, ", "))
}

func (e *MissingAdminsError) Is(target error) bool {
	return target == ErrMissingAdmins || target == ErrConflict
}
