package workflow

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/satococoa/autogit/internal/config"
	apperrors "github.com/satococoa/autogit/internal/errors"
	"github.com/satococoa/autogit/internal/git"
	"github.com/satococoa/autogit/internal/hooks"
)

// Step names in execution order
const (
	StepChanges = "changes"
	StepAdd     = "add"
	StepCommit  = "commit"
	StepHooks   = "hooks"
	StepPush    = "push"
)

// StepResult records one step of a run
type StepResult struct {
	Name    string
	OK      bool
	Skipped bool
	Message string
}

// Report describes what a run did
type Report struct {
	Trigger   string
	Message   string
	Changes   []git.Change
	Steps     []StepResult
	Committed bool
	Pushed    bool
	// SkipReason is set when the run stopped early without an error
	SkipReason string
}

func (r *Report) record(step StepResult) {
	r.Steps = append(r.Steps, step)
}

// Autosave commits every change of a repository when a trigger fires:
// changes, add, commit, post-commit hooks, then an optional push.
// Each step starts only after the previous one succeeded.
type Autosave struct {
	dir    string
	config *config.Config
	client *git.Client
	hooks  *hooks.Executor
	logger *slog.Logger
	out    io.Writer
}

// Option configures an Autosave
type Option func(*Autosave)

// WithHooks runs the post-commit hooks of executor after each commit
func WithHooks(executor *hooks.Executor) Option {
	return func(a *Autosave) {
		a.hooks = executor
	}
}

// WithLogger sets the logger for step diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(a *Autosave) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithOutput sets where hook output is written
func WithOutput(w io.Writer) Option {
	return func(a *Autosave) {
		if w != nil {
			a.out = w
		}
	}
}

// NewAutosave creates the workflow for the repository at dir
func NewAutosave(dir string, cfg *config.Config, client *git.Client, opts ...Option) *Autosave {
	a := &Autosave{
		dir:    dir,
		config: cfg,
		client: client,
		logger: slog.New(slog.DiscardHandler),
		out:    io.Discard,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Outcome is delivered by Start
type Outcome struct {
	Report *Report
	Err    error
}

// Start runs the workflow on its own goroutine; the channel receives exactly one value
func (a *Autosave) Start(ctx context.Context, trigger string, vars map[string]string) <-chan Outcome {
	ch := make(chan Outcome, 1)
	go func() {
		report, err := a.Run(ctx, trigger, vars)
		ch <- Outcome{Report: report, Err: err}
	}()
	return ch
}

// Run executes the workflow for trigger and blocks until it finishes.
// A failing step stops the run and is returned as the error; the report
// still lists every step that ran.
func (a *Autosave) Run(ctx context.Context, trigger string, vars map[string]string) (*Report, error) {
	report := &Report{Trigger: trigger}

	def, ok := a.config.FindTrigger(trigger)
	if !ok {
		return report, apperrors.TriggerNotFound(trigger, a.config.TriggerNames())
	}
	if !def.Enabled {
		return report, apperrors.TriggerDisabled(trigger)
	}

	report.Message = Render(def.Template, def.Name, vars)
	if strings.TrimSpace(report.Message) == "" {
		a.logger.Warn("commit message is empty, skipping commit", "trigger", trigger)
		report.SkipReason = "commit message is empty"
		return report, nil
	}

	logger := a.logger.With("trigger", trigger, "dir", a.dir)

	changes, err := a.step(ctx, report, logger, StepChanges, git.VerbChanges, git.Params{})
	if err != nil {
		return report, err
	}
	report.Changes = git.ParseChanges(changes.Output)
	if len(report.Changes) == 0 {
		logger.Info("no changes detected, skipping commit")
		report.SkipReason = "no changes"
		return report, nil
	}

	if _, err := a.step(ctx, report, logger, StepAdd, git.VerbAdd, git.Params{}); err != nil {
		return report, err
	}
	if _, err := a.step(ctx, report, logger, StepCommit, git.VerbCommit, git.Params{Message: report.Message}); err != nil {
		return report, err
	}
	report.Committed = true
	logger.Info("commit created", "message", report.Message, "files", len(report.Changes))

	if a.hooks != nil && a.config.HasHooks() {
		commit := hooks.Commit{Trigger: trigger, Message: report.Message}
		if err := a.hooks.ExecutePostCommitHooks(ctx, a.out, commit); err != nil {
			report.record(StepResult{Name: StepHooks, Message: err.Error()})
			logger.Error("post-commit hooks failed", "error", err)
			return report, err
		}
		report.record(StepResult{Name: StepHooks, OK: true})
	}

	if !a.config.Push.Enabled {
		return report, nil
	}
	remote := a.config.Push.Remote
	if remote == "" {
		logger.Warn("push is enabled but no remote is set, skipping push")
		report.record(StepResult{Name: StepPush, Skipped: true, Message: "no remote configured"})
		return report, nil
	}

	logger.Info("pushing", "remote", remote)
	if _, err := a.step(ctx, report, logger, StepPush, git.VerbPush, git.Params{Remote: remote}); err != nil {
		return report, err
	}
	report.Pushed = true
	return report, nil
}

func (a *Autosave) step(ctx context.Context, report *Report, logger *slog.Logger, name string, verb git.Verb, params git.Params) (git.Outcome, error) {
	outcome := a.client.Do(ctx, a.dir, verb, params).Wait()

	report.record(StepResult{Name: name, OK: outcome.OK, Message: outcome.Message})
	if !outcome.OK {
		logger.Error("step failed", "step", name, "message", outcome.Message, "status", outcome.Result.Status.String())
		return outcome, fmt.Errorf("%s step failed: %w", name, outcome.Err())
	}

	logger.Debug("step succeeded", "step", name, "duration", outcome.Result.Duration)
	return outcome, nil
}
