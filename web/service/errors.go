package service

import "errors"

// Domain errors surfaced by the services. Handlers translate these into the
// matching HTTP responses; anything else is an internal error.
var (
	ErrDuplicateUser   = errors.New("username already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrInvalidCategory = errors.New("category does not exist")
	ErrInvalidAssignee = errors.New("assignee does not exist")
)

// ValidationError reports rejected user input. Its message is safe to show to
// the submitting user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}
