package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/autogit/internal/command"
	"github.com/satococoa/autogit/internal/config"
	apperrors "github.com/satococoa/autogit/internal/errors"
	"github.com/satococoa/autogit/internal/git"
	"github.com/satococoa/autogit/internal/logging"
)

// Variables to allow mocking in tests
var (
	osGetwd        = os.Getwd
	newConfigStore = func(repoRoot string) config.Store { return config.NewFileStore(repoRoot) }
)

// environment is everything a command needs to talk to git
type environment struct {
	dir    string // repository root, or the target directory outside a repository
	config *config.Config
	store  config.Store
	logger *logging.Logger
	runner *command.ProcessRunner
	client *git.Client
	out    io.Writer
	errOut io.Writer
}

func (e *environment) Close() {
	_ = e.logger.Close()
}

func outputWriter(cmd *cli.Command) io.Writer {
	w := cmd.Root().Writer
	if w == nil {
		w = os.Stdout
	}
	return w
}

func errorWriter(cmd *cli.Command) io.Writer {
	w := cmd.Root().ErrWriter
	if w == nil {
		w = os.Stderr
	}
	return w
}

// targetDir returns the absolute directory given by --dir or the current one
func targetDir(cmd *cli.Command) (string, error) {
	dir := cmd.Root().String(dirFlag)
	if dir == "" {
		cwd, err := osGetwd()
		if err != nil {
			return "", apperrors.DirectoryAccessFailed("access current", ".", err)
		}
		dir = cwd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", apperrors.DirectoryAccessFailed("access", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", apperrors.DirectoryAccessFailed("access", abs, err)
	}
	if !info.IsDir() {
		return "", apperrors.DirectoryAccessFailed("access", abs, fmt.Errorf("%s is not a directory", abs))
	}
	return abs, nil
}

// openEnvironment loads the configuration and builds the runner and git
// client. With requireRepo the target directory must be inside a repository.
func openEnvironment(cmd *cli.Command, requireRepo bool) (*environment, error) {
	dir, err := targetDir(cmd)
	if err != nil {
		return nil, err
	}

	if root, findErr := git.FindRoot(dir); findErr == nil {
		dir = root
	} else if requireRepo {
		return nil, apperrors.NotInGitRepository()
	}

	store := newConfigStore(dir)
	cfg, err := store.Load()
	if err != nil {
		return nil, apperrors.ConfigLoadFailed(filepath.Join(dir, config.ConfigFileName), err)
	}
	if err := applyGlobalFlags(cmd.Root(), cfg); err != nil {
		return nil, err
	}

	level, err := config.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	errOut := errorWriter(cmd)
	logger, err := logging.New(logging.Options{
		Level:   level,
		Console: errOut,
		File:    cfg.ResolveLogFile(dir),
	})
	if err != nil {
		return nil, err
	}

	runner := command.NewProcessRunner(
		command.WithLogger(logger.Logger),
		command.WithTimeout(cfg.Timeout()),
	)

	return &environment{
		dir:    dir,
		config: cfg,
		store:  store,
		logger: logger,
		runner: runner,
		client: git.NewClient(runner, git.WithProgram(cfg.Git.Program)),
		out:    outputWriter(cmd),
		errOut: errOut,
	}, nil
}

// applyGlobalFlags lets command line flags override the configuration file
func applyGlobalFlags(root *cli.Command, cfg *config.Config) error {
	if root.IsSet(timeoutFlag) {
		timeout := root.Duration(timeoutFlag)
		if timeout < 0 {
			return fmt.Errorf("invalid --timeout %s: must not be negative", timeout)
		}
		cfg.Git.Timeout = timeout.String()
	}
	if level := root.String(logLevelFlag); level != "" {
		cfg.Log.Level = level
	}
	if file := root.String(logFileFlag); file != "" {
		abs, err := filepath.Abs(file)
		if err != nil {
			return apperrors.DirectoryAccessFailed("access", file, err)
		}
		cfg.Log.File = abs
	}
	return nil
}

// gitFailure turns a failed git outcome into a user-facing error
func (e *environment) gitFailure(outcome git.Outcome) error {
	err := outcome.Err()
	if err == nil {
		return nil
	}

	commandLine := outcome.Result.Spec.String()
	if commandLine == "" {
		commandLine = fmt.Sprintf("%s %s", e.client.Program(), outcome.Verb)
	}
	return e.gitError(err, commandLine, outcome.Message)
}

// gitError maps a facade error to the matching user-facing error.
// Errors that do not come from git are returned unchanged.
func (e *environment) gitError(err error, commandLine, message string) error {
	var cmdErr *git.CommandError
	switch {
	case !errors.As(err, &cmdErr), errors.Is(err, git.ErrInvalidRequest):
		return err
	case errors.Is(err, git.ErrLaunchFailed):
		return apperrors.GitNotInstalled(e.client.Program())
	case cmdErr.TimedOut():
		return apperrors.GitTimedOut(commandLine, e.config.Timeout())
	default:
		return apperrors.GitCommandFailed(commandLine, message)
	}
}

// wrapGitError maps an error returned by a git step to a user-facing error
func (e *environment) wrapGitError(err error) error {
	var cmdErr *git.CommandError
	if !errors.As(err, &cmdErr) {
		return err
	}
	commandLine := fmt.Sprintf("%s %s", e.client.Program(), cmdErr.Verb)
	return e.gitError(err, commandLine, cmdErr.Message)
}

// await waits for a git operation and maps its failure to a user-facing error
func (e *environment) await(op *git.Operation) (git.Outcome, error) {
	outcome := op.Wait()
	if !outcome.OK {
		return outcome, e.gitFailure(outcome)
	}
	return outcome, nil
}

// printOutput writes command output, ending it with a newline
func printOutput(w io.Writer, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	fmt.Fprint(w, text)
	if !strings.HasSuffix(text, "\n") {
		fmt.Fprintln(w)
	}
}
