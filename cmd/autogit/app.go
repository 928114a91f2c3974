package main

import "github.com/urfave/cli/v3"

// Global flag names
const (
	dirFlag      = "dir"
	timeoutFlag  = "timeout"
	logLevelFlag = "log-level"
	logFileFlag  = "log-file"
)

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "autogit",
		Usage: "Automatic commits driven by editor and build events",
		Description: "autogit stages and commits every change of a repository when a trigger fires, " +
			"runs post-commit hooks and optionally pushes. The git commands it runs are also " +
			"available on their own.",
		Version:               versionString(),
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    dirFlag,
				Aliases: []string{"C"},
				Usage:   "Run as if autogit was started in `DIR`",
			},
			&cli.DurationFlag{
				Name:  timeoutFlag,
				Usage: "Limit each git command to `DURATION` (0 disables the limit)",
			},
			&cli.StringFlag{
				Name:  logLevelFlag,
				Usage: "Diagnostics level: debug, info, warn or error",
			},
			&cli.StringFlag{
				Name:  logFileFlag,
				Usage: "Also write diagnostics to `FILE`, rotated by size",
			},
		},
		Commands: []*cli.Command{
			NewStatusCommand(),
			NewAddCommand(),
			NewCommitCommand(),
			NewPushCommand(),
			NewInitCommand(),
			NewRunCommand(),
			NewExecCommand(),
			NewDoctorCommand(),
			NewConfigCommand(),
		},
	}
}
