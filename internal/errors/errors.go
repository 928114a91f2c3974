package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Common error messages with helpful context and suggestions

// Git Repository Errors
func NotInGitRepository() error {
	msg := `not in a git repository

Solutions:
  • Run 'autogit init' to create a new repository
  • Navigate to an existing git repository
  • Use '--dir' to point at the repository`
	return errors.New(msg)
}

func GitCommandFailed(command, output string) error {
	// Clean up the output for better readability
	cleanOutput := strings.TrimSpace(output)
	if cleanOutput == "" {
		cleanOutput = "no additional details available"
	}

	msg := fmt.Sprintf(`git command failed: %s

Details: %s

Tip: Try running the git command manually to see the full error`, command, cleanOutput)
	return errors.New(msg)
}

func GitNotInstalled(program string) error {
	msg := fmt.Sprintf(`git could not be started: %s

Solutions:
  • Install git from https://git-scm.com/downloads
  • Make sure '%s' is on your PATH
  • Set 'git.program' in .autogit.yml to the full path of git`, program, program)
	return errors.New(msg)
}

func GitTimedOut(command string, timeout time.Duration) error {
	msg := fmt.Sprintf("git command timed out: %s", command)
	if timeout > 0 {
		msg += fmt.Sprintf(" (after %s)", timeout)
	}
	msg += `

Solutions:
  • Check for a credential prompt or editor waiting for input
  • Raise the limit with '--timeout' or 'git.timeout' in .autogit.yml
  • Check your network connection if pushing`
	return errors.New(msg)
}

// Validation Errors
func CommitMessageRequired() error {
	msg := `commit message is required

Usage: autogit commit -m <message>

Tip: Use 'autogit run manual' to commit with the configured template`
	return errors.New(msg)
}

func InvalidVariable(arg string) error {
	msg := fmt.Sprintf(`invalid template variable: '%s'

Variables must be given as key=value, for example:
  • autogit run scene-save --var sceneName=Main
  • autogit run build-complete --var buildName=win64`, arg)
	return errors.New(msg)
}

// Trigger Errors
func TriggerNotFound(name string, available []string) error {
	msg := fmt.Sprintf("trigger '%s' not found", name)

	if len(available) > 0 {
		msg += "\n\nAvailable triggers:"
		for _, trigger := range available {
			msg += fmt.Sprintf("\n  • %s", trigger)
		}
	} else {
		msg += "\n\nNo triggers configured."
	}

	msg += "\n\nTip: Add triggers to the 'triggers' section of .autogit.yml"
	return errors.New(msg)
}

func TriggerDisabled(name string) error {
	msg := fmt.Sprintf(`trigger '%s' is disabled

Solution: Set 'enabled: true' for this trigger in .autogit.yml`, name)
	return errors.New(msg)
}

// Configuration Errors
func ConfigLoadFailed(configPath string, parseError error) error {
	msg := fmt.Sprintf("failed to load configuration from '%s'", configPath)

	parseErrorStr := parseError.Error()
	if strings.Contains(parseErrorStr, "yaml") || strings.Contains(parseErrorStr, "unmarshal") {
		msg += `

Cause: YAML syntax error in configuration file
Solutions:
  • Check YAML syntax and indentation
  • Validate YAML at https://yamllint.com/
  • Run 'autogit config init --force' to recreate the configuration`
	} else if strings.Contains(parseErrorStr, "invalid configuration") {
		msg += `

Cause: Configuration values are invalid
Solution: Fix the field named below in .autogit.yml`
	} else if strings.Contains(parseErrorStr, "permission denied") {
		msg += `

Cause: Permission denied reading configuration file
Solution: Check file permissions with 'ls -la .autogit.yml'`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", parseError)
	return errors.New(msg)
}

func ConfigAlreadyExists(configPath string) error {
	msg := fmt.Sprintf(`configuration file already exists: %s

Options:
  • Edit the existing file manually
  • Use 'autogit config init --force' to overwrite it`, configPath)
	return errors.New(msg)
}

// File System Errors
func DirectoryAccessFailed(operation, path string, originalError error) error {
	msg := fmt.Sprintf("failed to %s directory: %s", operation, path)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solutions:
  • Check directory permissions
  • Ensure you own the directory`
	} else if strings.Contains(errorStr, "no such file or directory") {
		msg += `

Cause: Directory does not exist
Solutions:
  • Check the path spelling
  • Use an absolute path`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}

// Exec Errors
func ProgramRequired() error {
	msg := `program is required

Usage: autogit exec -- <program> [args...]

Examples:
  • autogit exec -- git log --oneline -5
  • autogit exec -- make test`
	return errors.New(msg)
}

// Hook Errors
func HookExecutionFailed(hookIndex int, command string, originalError error) error {
	msg := fmt.Sprintf("failed to execute post-commit hook #%d: %s", hookIndex+1, command)

	errorStr := originalError.Error()
	if strings.Contains(errorStr, "permission denied") {
		msg += `

Cause: Permission denied
Solutions:
  • Ensure the command is executable
  • Check the hook work_dir permissions`
	} else if strings.Contains(errorStr, "executable file not found") || strings.Contains(errorStr, "no such file") {
		msg += `

Cause: Command not found
Solutions:
  • Install the required command
  • Check command spelling in .autogit.yml
  • Use full path to command`
	}

	msg += fmt.Sprintf("\n\nOriginal error: %v", originalError)
	return errors.New(msg)
}
