package git

import (
	"errors"
	"fmt"

	"github.com/satococoa/autogit/internal/command"
)

var (
	// ErrLaunchFailed means git could not be started
	ErrLaunchFailed = errors.New("git could not be started")
	// ErrNonZeroExit means git ran and exited with a non-zero code
	ErrNonZeroExit = errors.New("git exited with a non-zero status")
	// ErrIndeterminate means the exit status of git is unknown, e.g. after a timeout
	ErrIndeterminate = errors.New("git exit status is unknown")
	// ErrInvalidRequest means the verb or its parameters were rejected before launching
	ErrInvalidRequest = errors.New("invalid git request")
)

// CommandError describes a failed verb.
// It matches one of the sentinel errors above with errors.Is.
type CommandError struct {
	Verb    Verb
	Status  command.ExitStatus
	Message string
	kind    error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("git %s failed: %s", e.Verb, e.Message)
}

func (e *CommandError) Unwrap() error {
	return e.kind
}

// TimedOut reports whether the command was stopped by a deadline
func (e *CommandError) TimedOut() bool {
	return e.Status.TimedOut
}

func kindOf(status command.ExitStatus) error {
	switch status.Kind {
	case command.StatusLaunchFailed:
		return ErrLaunchFailed
	case command.StatusExited:
		return ErrNonZeroExit
	default:
		return ErrIndeterminate
	}
}
