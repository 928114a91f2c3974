package hooks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"path/filepath"
	"slices"

	"github.com/satococoa/autogit/internal/command"
	"github.com/satococoa/autogit/internal/config"
	apperrors "github.com/satococoa/autogit/internal/errors"
	appio "github.com/satococoa/autogit/internal/io"
)

const outputIndent = "    "

// Commit describes the commit that triggered the hooks
type Commit struct {
	Trigger string
	Message string
}

// Executor handles hook execution
type Executor struct {
	config   *config.Config
	repoRoot string
	runner   command.Runner
}

// NewExecutor creates a new hook executor
func NewExecutor(cfg *config.Config, repoRoot string, runner command.Runner) *Executor {
	return &Executor{
		config:   cfg,
		repoRoot: repoRoot,
		runner:   runner,
	}
}

// Specs builds the commands of all post-commit hooks
func (e *Executor) Specs(commit Commit) []command.Spec {
	specs := make([]command.Spec, 0, len(e.config.Hooks.PostCommit))
	for _, hook := range e.config.Hooks.PostCommit {
		specs = append(specs, e.spec(hook, commit))
	}
	return specs
}

func (e *Executor) spec(hook config.Hook, commit Commit) command.Spec {
	workDir := hook.WorkDir
	if workDir == "" {
		workDir = e.repoRoot
	} else if !filepath.IsAbs(workDir) {
		workDir = filepath.Join(e.repoRoot, workDir)
	}

	env := make([]string, 0, len(hook.Env)+3)
	for _, key := range slices.Sorted(maps.Keys(hook.Env)) {
		env = append(env, fmt.Sprintf("%s=%s", key, hook.Env[key]))
	}
	env = append(env,
		fmt.Sprintf("AUTOGIT_REPO_ROOT=%s", e.repoRoot),
		fmt.Sprintf("AUTOGIT_TRIGGER=%s", commit.Trigger),
		fmt.Sprintf("AUTOGIT_COMMIT_MESSAGE=%s", commit.Message))

	return command.Spec{
		Dir:     workDir,
		Program: hook.Command[0],
		Args:    slices.Clone(hook.Command[1:]),
		Env:     env,
	}
}

// ExecutePostCommitHooks runs the post-commit hooks one after another and
// writes each hook's output to w once it has finished. The first failing
// hook stops the rest.
func (e *Executor) ExecutePostCommitHooks(ctx context.Context, w io.Writer, commit Commit) error {
	if !e.config.HasHooks() {
		return nil
	}

	result := command.NewExecutor(e.runner).Execute(ctx, e.Specs(commit))

	for _, res := range result.Results {
		fmt.Fprintf(w, "  Running: %s\n", res.Spec.String())
		_ = appio.WriteIndented(w, outputIndent, res.Stdout)
		_ = appio.WriteIndented(w, outputIndent, res.Stderr)
	}

	if result.Success() {
		return nil
	}
	// The executor stops at the first failure, so it is the last result
	failed, _ := result.Last()
	return apperrors.HookExecutionFailed(len(result.Results)-1, failed.Spec.String(), errors.New(failed.Status.String()))
}
