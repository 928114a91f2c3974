package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/autogit/internal/command"
	"github.com/satococoa/autogit/internal/errors"
)

// NewExecCommand creates the exec command definition.
func NewExecCommand() *cli.Command {
	return &cli.Command{
		Name:        "exec",
		Usage:       "Run a program in the repository and report its result",
		UsageText:   "autogit exec -- <program> [args...]",
		Description: "Runs the program without a shell. Its output is printed once it has exited.",
		ArgsUsage:   "-- <program> [args...]",
		Action:      execCommand,
	}
}

func execCommand(ctx context.Context, cmd *cli.Command) error {
	program, args, err := parseExecInput(cmd.Args().Slice())
	if err != nil {
		return err
	}

	env, err := openEnvironment(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	spec := command.Spec{Dir: env.dir, Program: program, Args: args}
	res := env.runner.Execute(ctx, spec).Wait()

	printOutput(env.out, res.Stdout)
	printOutput(env.errOut, res.Stderr)

	if !res.Success() {
		return fmt.Errorf("command failed: %s: %s", spec.String(), res.Status.String())
	}
	return nil
}

func parseExecInput(args []string) (string, []string, error) {
	if len(args) > 0 && args[0] == "--" {
		args = args[1:]
	}
	if len(args) == 0 || args[0] == "" {
		return "", nil, errors.ProgramRequired()
	}
	return args[0], args[1:], nil
}
