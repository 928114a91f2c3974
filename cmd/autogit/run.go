package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/autogit/internal/config"
	apperrors "github.com/satococoa/autogit/internal/errors"
	"github.com/satococoa/autogit/internal/hooks"
	"github.com/satococoa/autogit/internal/workflow"
)

// NewRunCommand creates the run command definition
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Fire a trigger and commit every change",
		UsageText: "autogit run [trigger] [--var key=value]...",
		Description: "Stages all changes and commits them with the trigger's message template, " +
			"then runs the post-commit hooks and pushes when enabled. Without a trigger " +
			"name the manual trigger fires.",
		ArgsUsage: "[trigger]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "var",
				Usage: "Template variable as `key=value`, may be repeated",
			},
		},
		Action: runCommand,
	}
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	trigger := strings.TrimSpace(cmd.Args().First())
	if trigger == "" {
		trigger = config.TriggerManual
	}

	vars, bad, ok := workflow.ParseVars(cmd.StringSlice("var"))
	if !ok {
		return apperrors.InvalidVariable(bad)
	}

	env, err := openEnvironment(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	autosave := workflow.NewAutosave(env.dir, env.config, env.client,
		workflow.WithHooks(hooks.NewExecutor(env.config, env.dir, env.runner)),
		workflow.WithLogger(env.logger.Logger),
		workflow.WithOutput(env.out),
	)

	outcome := <-autosave.Start(ctx, trigger, vars)
	if outcome.Err != nil {
		return env.wrapGitError(outcome.Err)
	}

	printReport(env, outcome.Report)
	return nil
}

func printReport(env *environment, report *workflow.Report) {
	if report.SkipReason != "" {
		fmt.Fprintf(env.out, "Nothing committed: %s\n", report.SkipReason)
		return
	}

	fmt.Fprintf(env.out, "Committed %d file(s): %s\n", len(report.Changes), report.Message)
	for _, change := range report.Changes {
		fmt.Fprintf(env.out, "  %s\n", change.String())
	}
	for _, step := range report.Steps {
		if step.Name == workflow.StepPush && step.Skipped {
			fmt.Fprintf(env.out, "Push skipped: %s\n", step.Message)
		}
	}
	if report.Pushed {
		fmt.Fprintf(env.out, "Pushed to %s\n", env.config.Push.Remote)
	}
}
