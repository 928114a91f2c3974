package git

import (
	"context"
	"fmt"
	"strings"

	"github.com/satococoa/autogit/internal/command"
)

// Verb names one of the fixed git operations the client exposes
type Verb string

const (
	VerbStatus  Verb = "status"
	VerbAdd     Verb = "add"
	VerbCommit  Verb = "commit"
	VerbPush    Verb = "push"
	VerbInit    Verb = "init"
	VerbChanges Verb = "changes"
)

// Params carries the verb specific parameters
type Params struct {
	Message string // commit message
	Remote  string // push remote; empty pushes to the configured upstream
}

// Client turns verbs into git invocations and classifies their results.
// It holds no state between calls.
type Client struct {
	runner  command.Runner
	program string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithProgram makes the client run program instead of "git"
func WithProgram(program string) ClientOption {
	return func(c *Client) {
		if program != "" {
			c.program = program
		}
	}
}

// NewClient creates a git client on top of runner
func NewClient(runner command.Runner, opts ...ClientOption) *Client {
	c := &Client{
		runner:  runner,
		program: command.GitProgram,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Program returns the git executable the client runs
func (c *Client) Program() string {
	return c.program
}

// Spec builds the command for verb without running it
func (c *Client) Spec(dir string, verb Verb, params Params) (command.Spec, error) {
	var spec command.Spec

	switch verb {
	case VerbStatus:
		spec = command.GitStatus(dir)
	case VerbAdd:
		spec = command.GitAddAll(dir)
	case VerbCommit:
		if strings.TrimSpace(params.Message) == "" {
			return command.Spec{}, fmt.Errorf("commit message is empty")
		}
		spec = command.GitCommit(dir, params.Message)
	case VerbPush:
		spec = command.GitPush(dir, params.Remote)
	case VerbInit:
		spec = command.GitInit(dir)
	case VerbChanges:
		spec = command.GitStatusPorcelain(dir)
	default:
		return command.Spec{}, fmt.Errorf("unknown verb %q", verb)
	}

	return command.WithProgram(spec, c.program), nil
}

// Do starts verb in dir and returns without waiting for git to finish.
// Invalid requests resolve immediately with a failed outcome and launch nothing.
func (c *Client) Do(ctx context.Context, dir string, verb Verb, params Params) *Operation {
	spec, err := c.Spec(dir, verb, params)
	if err != nil {
		return rejected(verb, err)
	}
	return &Operation{
		verb:      verb,
		execution: c.runner.Execute(ctx, spec),
	}
}

// Status runs "git status"
func (c *Client) Status(ctx context.Context, dir string) *Operation {
	return c.Do(ctx, dir, VerbStatus, Params{})
}

// AddAll stages every change with "git add --all"
func (c *Client) AddAll(ctx context.Context, dir string) *Operation {
	return c.Do(ctx, dir, VerbAdd, Params{})
}

// Commit records the staged changes with message
func (c *Client) Commit(ctx context.Context, dir, message string) *Operation {
	return c.Do(ctx, dir, VerbCommit, Params{Message: message})
}

// Push pushes to remote, or to the upstream when remote is empty
func (c *Client) Push(ctx context.Context, dir, remote string) *Operation {
	return c.Do(ctx, dir, VerbPush, Params{Remote: remote})
}

// Init creates a repository in dir
func (c *Client) Init(ctx context.Context, dir string) *Operation {
	return c.Do(ctx, dir, VerbInit, Params{})
}

// Changes runs "git status --porcelain"; see ParseChanges for its output
func (c *Client) Changes(ctx context.Context, dir string) *Operation {
	return c.Do(ctx, dir, VerbChanges, Params{})
}
