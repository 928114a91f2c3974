package command

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Spec describes a single external command invocation.
// A Spec is treated as immutable once handed to a Runner.
type Spec struct {
	Dir     string   // Working directory (empty = current)
	Program string   // Program name or path (e.g., "git")
	Args    []string // Program arguments
	Env     []string // Extra environment variables in KEY=VALUE form
}

// String renders the command as a readable command line
func (s Spec) String() string {
	parts := make([]string, 0, len(s.Args)+1)
	parts = append(parts, s.Program)
	for _, arg := range s.Args {
		if arg == "" || strings.ContainsAny(arg, " \t\n\"'") {
			arg = fmt.Sprintf("%q", arg)
		}
		parts = append(parts, arg)
	}
	return strings.Join(parts, " ")
}

func (s Spec) clone() Spec {
	c := s
	c.Args = append([]string(nil), s.Args...)
	c.Env = append([]string(nil), s.Env...)
	return c
}

// StatusKind classifies how an execution ended
type StatusKind int

const (
	// StatusExited means the process terminated and reported an exit code
	StatusExited StatusKind = iota
	// StatusLaunchFailed means the process could not be started
	StatusLaunchFailed
	// StatusIndeterminate means the exit code could not be determined
	StatusIndeterminate
)

func (k StatusKind) String() string {
	switch k {
	case StatusExited:
		return "exited"
	case StatusLaunchFailed:
		return "launch-failed"
	case StatusIndeterminate:
		return "indeterminate"
	default:
		return fmt.Sprintf("StatusKind(%d)", int(k))
	}
}

// ExitStatus is the final status of an execution.
// Code is only meaningful for StatusExited.
type ExitStatus struct {
	Kind     StatusKind
	Code     int
	Message  string
	TimedOut bool
}

// Exited returns the status of a process that terminated with code
func Exited(code int) ExitStatus {
	return ExitStatus{Kind: StatusExited, Code: code}
}

// LaunchFailed returns the status of a process that never started
func LaunchFailed(message string) ExitStatus {
	return ExitStatus{Kind: StatusLaunchFailed, Code: -1, Message: message}
}

// Indeterminate returns the status of an execution whose exit code is unknown
func Indeterminate(message string) ExitStatus {
	return ExitStatus{Kind: StatusIndeterminate, Code: -1, Message: message}
}

// Success reports whether the process exited with code 0
func (s ExitStatus) Success() bool {
	return s.Kind == StatusExited && s.Code == 0
}

func (s ExitStatus) String() string {
	switch s.Kind {
	case StatusExited:
		return fmt.Sprintf("exit status %d", s.Code)
	case StatusLaunchFailed:
		return "launch failed: " + s.Message
	default:
		if s.TimedOut {
			return "timed out: " + s.Message
		}
		return "indeterminate: " + s.Message
	}
}

// Result represents the result of a single command execution
type Result struct {
	ID        string
	Spec      Spec
	Stdout    string
	Stderr    string
	Status    ExitStatus
	StartedAt time.Time
	Duration  time.Duration
}

// Success reports whether the command exited with code 0
func (r Result) Success() bool {
	return r.Status.Success()
}

// Runner launches commands asynchronously.
// Execute must return without waiting for the command to finish.
type Runner interface {
	Execute(ctx context.Context, spec Spec) *Execution
}

// ExecutionResult represents the result of executing multiple commands
type ExecutionResult struct {
	Results []Result
	// Stopped is true when a failing command prevented the remaining ones from running
	Stopped bool
}

// Success reports whether every command ran and succeeded
func (r *ExecutionResult) Success() bool {
	if r.Stopped {
		return false
	}
	for _, res := range r.Results {
		if !res.Success() {
			return false
		}
	}
	return true
}

// Last returns the last result, if any
func (r *ExecutionResult) Last() (Result, bool) {
	if len(r.Results) == 0 {
		return Result{}, false
	}
	return r.Results[len(r.Results)-1], true
}
