package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

// NewPushCommand creates the push command definition
func NewPushCommand() *cli.Command {
	return &cli.Command{
		Name:      "push",
		Usage:     "Push the current branch",
		UsageText: "autogit push [remote]",
		Description: "Pushes to the given remote, or to the branch's upstream when no remote is given. " +
			"Use --configured to push to 'push.remote' from .autogit.yml.",
		ArgsUsage: "[remote]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "configured",
				Usage: "Push to the remote set in .autogit.yml",
			},
		},
		Action: pushCommand,
	}
}

func pushCommand(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() > 1 {
		return fmt.Errorf("too many arguments\n\nUsage: autogit push [remote]")
	}

	env, err := openEnvironment(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	remote := cmd.Args().First()
	if remote == "" && cmd.Bool("configured") {
		remote = env.config.Push.Remote
	}

	outcome, err := env.await(env.client.Push(ctx, env.dir, remote))
	if err != nil {
		return err
	}
	// git reports push progress on stderr
	printOutput(env.out, outcome.Output)
	printOutput(env.errOut, outcome.Result.Stderr)
	return nil
}
