package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

// Config represents the autogit configuration
type Config struct {
	Version  string    `yaml:"version"`
	Git      Git       `yaml:"git,omitempty"`
	Push     Push      `yaml:"push"`
	Triggers []Trigger `yaml:"triggers,omitempty"`
	Hooks    Hooks     `yaml:"hooks,omitempty"`
	Log      Log       `yaml:"log,omitempty"`
}

// Git configures how git is invoked
type Git struct {
	Program string `yaml:"program,omitempty"`
	Timeout string `yaml:"timeout,omitempty"` // Go duration, e.g. "90s"
}

// Push configures pushing after a successful commit
type Push struct {
	Enabled bool   `yaml:"enabled"`
	Remote  string `yaml:"remote"`
}

// Trigger is a named event that produces an automatic commit
type Trigger struct {
	Name     string `yaml:"name"`
	Enabled  bool   `yaml:"enabled"`
	Template string `yaml:"template,omitempty"` // commit message, {action} and {var} placeholders
}

// Hooks represents the post-commit hooks configuration
type Hooks struct {
	PostCommit []Hook `yaml:"post_commit,omitempty"`
}

// Hook is a command run after a successful automatic commit.
// Command is an argv list; no shell is involved.
type Hook struct {
	Command []string          `yaml:"command"`
	Env     map[string]string `yaml:"env,omitempty"`
	WorkDir string            `yaml:"work_dir,omitempty"`
}

// Log configures diagnostics output
type Log struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

const (
	ConfigFileName        = ".autogit.yml"
	CurrentVersion        = "1.0"
	DefaultProgram        = "git"
	DefaultTimeout        = 5 * time.Minute
	DefaultRemote         = "origin"
	DefaultLogLevel       = "info"
	configFilePermissions = 0o600
)

// Built-in trigger names
const (
	TriggerManual        = "manual"
	TriggerSceneSave     = "scene-save"
	TriggerBuildComplete = "build-complete"
)

// DefaultTriggers returns the built-in triggers. Only manual is enabled.
func DefaultTriggers() []Trigger {
	return []Trigger{
		{Name: TriggerManual, Enabled: true, Template: "Auto-commit: {action}"},
		{Name: TriggerSceneSave, Enabled: false, Template: "Auto-commit: {action} - {sceneName}"},
		{Name: TriggerBuildComplete, Enabled: false, Template: "Auto-commit: {action} - {buildName}"},
	}
}

// Default returns the configuration used when no file exists
func Default() *Config {
	return &Config{
		Version:  CurrentVersion,
		Git:      Git{Program: DefaultProgram, Timeout: DefaultTimeout.String()},
		Push:     Push{Remote: DefaultRemote},
		Triggers: DefaultTriggers(),
		Log:      Log{Level: DefaultLogLevel},
	}
}

// Parse decodes and validates YAML configuration data
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Keys that are present but empty must stay empty, so presence is
	// decoded separately from the values
	var present struct {
		Push struct {
			Remote *string `yaml:"remote"`
		} `yaml:"push"`
	}
	if err := yaml.Unmarshal(data, &present); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// A file without triggers keeps the built-in ones
	if len(config.Triggers) == 0 {
		config.Triggers = DefaultTriggers()
	}
	if present.Push.Remote == nil {
		config.Push.Remote = DefaultRemote
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

// Validate validates the configuration and fills in defaults
func (c *Config) Validate() error {
	if c.Version == "" {
		c.Version = CurrentVersion
	}
	if c.Git.Program == "" {
		c.Git.Program = DefaultProgram
	}
	if c.Git.Timeout == "" {
		c.Git.Timeout = DefaultTimeout.String()
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}

	if d, err := time.ParseDuration(c.Git.Timeout); err != nil {
		return fmt.Errorf("invalid git timeout '%s': %w", c.Git.Timeout, err)
	} else if d < 0 {
		return fmt.Errorf("invalid git timeout '%s': must not be negative", c.Git.Timeout)
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}

	seen := make(map[string]bool, len(c.Triggers))
	for i, trigger := range c.Triggers {
		name := strings.TrimSpace(trigger.Name)
		if name == "" {
			return fmt.Errorf("trigger %d has no name", i+1)
		}
		if seen[name] {
			return fmt.Errorf("duplicate trigger '%s'", name)
		}
		seen[name] = true
	}

	for i, hook := range c.Hooks.PostCommit {
		if err := hook.Validate(); err != nil {
			return fmt.Errorf("invalid hook %d: %w", i+1, err)
		}
	}

	return nil
}

// Validate validates a single hook configuration
func (h *Hook) Validate() error {
	if len(h.Command) == 0 || strings.TrimSpace(h.Command[0]) == "" {
		return fmt.Errorf("hook requires 'command' field")
	}
	return nil
}

// HasHooks returns true if the configuration has any post-commit hooks
func (c *Config) HasHooks() bool {
	return len(c.Hooks.PostCommit) > 0
}

// Timeout returns the git timeout; zero means no limit
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.Git.Timeout)
	if err != nil {
		return DefaultTimeout
	}
	return d
}

// SettingKeys lists the keys accepted by Set
var SettingKeys = []string{"git.program", "git.timeout", "push.enabled", "push.remote", "log.level", "log.file"}

// ErrUnknownTrigger is returned when a trigger name is not configured
var ErrUnknownTrigger = errors.New("unknown trigger")

// Set changes the setting named key, e.g. "push.remote", and validates the result
func (c *Config) Set(key, value string) error {
	switch key {
	case "git.program":
		c.Git.Program = value
	case "git.timeout":
		c.Git.Timeout = value
	case "push.enabled":
		enabled, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value '%s' for push.enabled, must be true or false", value)
		}
		c.Push.Enabled = enabled
	case "push.remote":
		c.Push.Remote = strings.TrimSpace(value)
	case "log.level":
		c.Log.Level = value
	case "log.file":
		c.Log.File = value
	default:
		return fmt.Errorf("unknown setting '%s', must be one of %s", key, strings.Join(SettingKeys, ", "))
	}
	return c.Validate()
}

// SetTriggerEnabled turns the trigger called name on or off
func (c *Config) SetTriggerEnabled(name string, enabled bool) error {
	i := c.triggerIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	c.Triggers[i].Enabled = enabled
	return nil
}

// SetTriggerTemplate replaces the commit message template of the trigger called name
func (c *Config) SetTriggerTemplate(name, template string) error {
	i := c.triggerIndex(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
	}
	c.Triggers[i].Template = template
	return nil
}

func (c *Config) triggerIndex(name string) int {
	for i, trigger := range c.Triggers {
		if trigger.Name == name {
			return i
		}
	}
	return -1
}

// FindTrigger returns the trigger called name
func (c *Config) FindTrigger(name string) (Trigger, bool) {
	if i := c.triggerIndex(name); i >= 0 {
		return c.Triggers[i], true
	}
	return Trigger{}, false
}

// TriggerNames returns the names of all configured triggers
func (c *Config) TriggerNames() []string {
	names := make([]string, 0, len(c.Triggers))
	for _, trigger := range c.Triggers {
		names = append(names, trigger.Name)
	}
	return names
}

// ResolveLogFile returns the log file path, relative paths being taken from repoRoot
func (c *Config) ResolveLogFile(repoRoot string) string {
	if c.Log.File == "" || filepath.IsAbs(c.Log.File) {
		return c.Log.File
	}
	return filepath.Join(repoRoot, c.Log.File)
}

// ParseLevel converts a level name into a slog level
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level '%s', must be one of debug, info, warn, error", name)
	}
	return level, nil
}

// Exists reports whether repoRoot has a configuration file
func Exists(repoRoot string) bool {
	_, err := os.Stat(filepath.Join(repoRoot, ConfigFileName))
	return err == nil
}
