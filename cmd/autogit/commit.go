package main

import (
	"context"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/autogit/internal/errors"
)

// NewCommitCommand creates the commit command definition
func NewCommitCommand() *cli.Command {
	return &cli.Command{
		Name:      "commit",
		Usage:     "Commit the staged changes",
		UsageText: "autogit commit -m <message>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "message",
				Aliases: []string{"m"},
				Usage:   "Commit message",
			},
		},
		Action: commitCommand,
	}
}

func commitCommand(ctx context.Context, cmd *cli.Command) error {
	message := cmd.String("message")
	if strings.TrimSpace(message) == "" {
		return errors.CommitMessageRequired()
	}

	env, err := openEnvironment(cmd, true)
	if err != nil {
		return err
	}
	defer env.Close()

	outcome, err := env.await(env.client.Commit(ctx, env.dir, message))
	if err != nil {
		return err
	}
	printOutput(env.out, outcome.Output)
	return nil
}
