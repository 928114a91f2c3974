package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/autogit/internal/config"
	"github.com/satococoa/autogit/internal/errors"
	"github.com/satococoa/autogit/internal/git"
)

// NewDoctorCommand creates the doctor command definition
func NewDoctorCommand() *cli.Command {
	return &cli.Command{
		Name:   "doctor",
		Usage:  "Check that git and the configuration are usable",
		Action: doctorCommand,
	}
}

func doctorCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := openEnvironment(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	program := env.client.Program()
	if !env.runner.IsToolAvailable(ctx, program) {
		return errors.GitNotInstalled(program)
	}
	fmt.Fprintf(env.out, "git:        %s is available\n", program)

	repo, err := git.NewRepository(env.dir, env.client)
	if err != nil {
		fmt.Fprintf(env.out, "repository: %s is not a git repository\n", env.dir)
		return nil
	}
	fmt.Fprintf(env.out, "repository: %s\n", repo.Path())

	if config.Exists(repo.Path()) {
		fmt.Fprintf(env.out, "config:     %s\n", config.ConfigFileName)
	} else {
		fmt.Fprintln(env.out, "config:     defaults (run 'autogit config init' to customize)")
	}
	fmt.Fprintf(env.out, "triggers:   %d configured\n", len(env.config.Triggers))
	fmt.Fprintf(env.out, "hooks:      %d post-commit\n", len(env.config.Hooks.PostCommit))
	return nil
}
