package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// NewAddCommand creates the add command definition
func NewAddCommand() *cli.Command {
	return &cli.Command{
		Name:        "add",
		Usage:       "Stage every change",
		Description: "Stages all new, modified and deleted files, like 'git add --all'.",
		Action:      addCommand,
	}
}

func addCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := openEnvironment(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	outcome, err := env.await(env.client.AddAll(ctx, env.dir))
	if err != nil {
		return err
	}
	printOutput(env.out, outcome.Output)
	printOutput(env.out, "Staged all changes")
	return nil
}
