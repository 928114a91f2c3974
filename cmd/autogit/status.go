package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/autogit/internal/git"
)

// NewStatusCommand creates the status command definition
func NewStatusCommand() *cli.Command {
	return &cli.Command{
		Name:  "status",
		Usage: "Show the working tree status",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "short",
				Aliases: []string{"s"},
				Usage:   "List changed files one per line",
			},
		},
		Action: statusCommand,
	}
}

func statusCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := openEnvironment(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	if !cmd.Bool("short") {
		outcome, err := env.await(env.client.Status(ctx, env.dir))
		if err != nil {
			return err
		}
		printOutput(env.out, outcome.Output)
		return nil
	}

	repo, err := git.NewRepository(env.dir, env.client)
	if err != nil {
		return err
	}
	changes, err := repo.Changes(ctx)
	if err != nil {
		return env.wrapGitError(err)
	}
	if len(changes) == 0 {
		printOutput(env.out, "No changes")
		return nil
	}
	untracked := 0
	for _, change := range changes {
		printOutput(env.out, change.String())
		if change.Untracked() {
			untracked++
		}
	}
	fmt.Fprintf(env.out, "%d changed, %d untracked\n", len(changes)-untracked, untracked)
	return nil
}
