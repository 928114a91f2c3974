package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"go.yaml.in/yaml/v3"

	"github.com/satococoa/autogit/internal/config"
	"github.com/satococoa/autogit/internal/errors"
	"github.com/satococoa/autogit/internal/git"
)

const configFileMode = 0o600

// configTemplate is written by 'config init'; it parses to the defaults
const configTemplate = `# autogit configuration
version: "1.0"

git:
  # Program used to run git commands
  program: git
  # Limit for a single git command, 0 disables it
  timeout: 5m

# Push after every automatic commit
push:
  enabled: false
  remote: origin

# Named events that create a commit. {action} is replaced with the trigger
# name, other placeholders with --var key=value arguments of 'autogit run'.
triggers:
  - name: manual
    enabled: true
    template: "Auto-commit: {action}"
  - name: scene-save
    enabled: false
    template: "Auto-commit: {action} - {sceneName}"
  - name: build-complete
    enabled: false
    template: "Auto-commit: {action} - {buildName}"

# Commands run after each automatic commit, in order
hooks:
  post_commit: []
    # - command: ["make", "notify"]
    #   work_dir: tools
    #   env:
    #     NOTIFY_CHANNEL: builds

log:
  level: info
  # file: .autogit/autogit.log
`

// NewConfigCommand creates the config command definition
func NewConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the .autogit.yml configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Initialize configuration file",
				Description: "Creates a .autogit.yml configuration file in the repository root " +
					"with the built-in triggers and commented examples.",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing configuration file",
					},
				},
				Action: configInitCommand,
			},
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: configShowCommand,
			},
			{
				Name:      "set",
				Usage:     "Change a setting",
				UsageText: "autogit config set <key> <value>",
				Description: "Changes one setting in .autogit.yml. Keys: " +
					strings.Join(config.SettingKeys, ", ") + ". The file is rewritten without comments.",
				ArgsUsage: "<key> <value>",
				Action:    configSetCommand,
			},
			{
				Name:  "trigger",
				Usage: "Enable, disable or retemplate a trigger",
				Commands: []*cli.Command{
					{
						Name:      "enable",
						Usage:     "Enable a trigger",
						ArgsUsage: "<name>",
						Action:    configTriggerEnabledAction(true),
					},
					{
						Name:      "disable",
						Usage:     "Disable a trigger",
						ArgsUsage: "<name>",
						Action:    configTriggerEnabledAction(false),
					},
					{
						Name:      "template",
						Usage:     "Set the commit message template of a trigger",
						UsageText: "autogit config trigger template <name> <template>",
						ArgsUsage: "<name> <template>",
						Action:    configTriggerTemplateCommand,
					},
				},
			},
		},
	}
}

func configInitCommand(_ context.Context, cmd *cli.Command) error {
	// The existing file is not loaded so that --force can replace a broken one
	dir, err := targetDir(cmd)
	if err != nil {
		return err
	}
	root, err := git.FindRoot(dir)
	if err != nil {
		return errors.NotInGitRepository()
	}

	configPath := filepath.Join(root, config.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !cmd.Bool("force") {
		return errors.ConfigAlreadyExists(configPath)
	}

	if err := os.WriteFile(configPath, []byte(configTemplate), configFileMode); err != nil {
		return fmt.Errorf("failed to create configuration file: %w", err)
	}

	w := outputWriter(cmd)
	fmt.Fprintf(w, "Created configuration file: %s\n", configPath)
	fmt.Fprintln(w, "Run 'autogit run manual' to commit all changes.")
	return nil
}

func configShowCommand(_ context.Context, cmd *cli.Command) error {
	env, err := openEnvironment(cmd, false)
	if err != nil {
		return err
	}
	defer env.Close()

	data, err := yaml.Marshal(env.config)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	_, err = env.out.Write(data)
	return err
}

// updateConfig loads the stored configuration, applies change and saves it.
// The stored file is used rather than the effective configuration so that
// command line overrides are not persisted.
func updateConfig(cmd *cli.Command, change func(*config.Config) error) (*environment, error) {
	env, err := openEnvironment(cmd, true)
	if err != nil {
		return nil, err
	}

	cfg, err := env.store.Load()
	if err == nil {
		err = change(cfg)
	}
	if err == nil {
		err = env.store.Save(cfg)
	}
	if err != nil {
		env.Close()
		return nil, err
	}
	return env, nil
}

func configSetCommand(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected a key and a value\n\nUsage: autogit config set <key> <value>")
	}
	key, value := cmd.Args().Get(0), cmd.Args().Get(1)

	env, err := updateConfig(cmd, func(cfg *config.Config) error {
		return cfg.Set(key, value)
	})
	if err != nil {
		return err
	}
	defer env.Close()

	fmt.Fprintf(env.out, "Set %s = %q\n", key, value)
	return nil
}

func configTriggerEnabledAction(enabled bool) cli.ActionFunc {
	return func(_ context.Context, cmd *cli.Command) error {
		name := strings.TrimSpace(cmd.Args().First())
		if name == "" || cmd.Args().Len() > 1 {
			return fmt.Errorf("expected one trigger name\n\nUsage: autogit config trigger %s <name>", cmd.Name)
		}

		env, err := updateConfig(cmd, func(cfg *config.Config) error {
			return triggerError(cfg, name, cfg.SetTriggerEnabled(name, enabled))
		})
		if err != nil {
			return err
		}
		defer env.Close()

		state := "disabled"
		if enabled {
			state = "enabled"
		}
		fmt.Fprintf(env.out, "Trigger '%s' %s\n", name, state)
		return nil
	}
}

func configTriggerTemplateCommand(_ context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return fmt.Errorf("expected a trigger name and a template\n\nUsage: autogit config trigger template <name> <template>")
	}
	name, template := cmd.Args().Get(0), cmd.Args().Get(1)

	env, err := updateConfig(cmd, func(cfg *config.Config) error {
		return triggerError(cfg, name, cfg.SetTriggerTemplate(name, template))
	})
	if err != nil {
		return err
	}
	defer env.Close()

	fmt.Fprintf(env.out, "Trigger '%s' template set to %q\n", name, template)
	return nil
}

// triggerError turns an unknown trigger into the user-facing error listing the configured ones
func triggerError(cfg *config.Config, name string, err error) error {
	if stderrors.Is(err, config.ErrUnknownTrigger) {
		return errors.TriggerNotFound(name, cfg.TriggerNames())
	}
	return err
}
