package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// NewInitCommand creates the init command definition
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create a git repository",
		Description: "Runs 'git init' in the target directory. Use 'autogit config init' " +
			"afterwards to create a .autogit.yml with the default triggers.",
		Action: initCommand,
	}
}

func initCommand(ctx context.Context, cmd *cli.Command) error {
	dir, err := targetDir(cmd)
	if err != nil {
		return err
	}

	// git init must run in the target directory even inside another repository
	env, err := openEnvironment(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()
	env.dir = dir

	outcome, err := env.await(env.client.Init(ctx, env.dir))
	if err != nil {
		return err
	}
	printOutput(env.out, outcome.Output)
	return nil
}
