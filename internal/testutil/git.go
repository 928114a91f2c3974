// Package testutil provides helpers shared across tests.
package testutil

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

// RequireGit skips the test when the git binary is not installed.
func RequireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

// ConfigureTestRepo applies common git configuration used in tests.
//
// The runner is responsible for executing git commands within the provided
// repository directory and should handle errors appropriately.
func ConfigureTestRepo(t *testing.T, repoDir string, runner func(dir string, args ...string)) {
	t.Helper()

	commands := [][]string{
		{"config", "user.name", "Test User"},
		{"config", "user.email", "test@example.com"},
		{"config", "commit.gpgsign", "false"},
	}

	for _, args := range commands {
		runner(repoDir, args...)
	}
}

// RunGit runs git in dir and fails the test on error.
func RunGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		t.Fatalf("git %v failed: %v\n%s", args, err, output)
	}
	return string(output)
}

// InitRepo creates a configured git repository in a temp directory with an
// initial commit containing README.md. It skips the test when git is missing.
func InitRepo(t *testing.T) string {
	t.Helper()
	RequireGit(t)

	dir := t.TempDir()
	RunGit(t, dir, "init", "--quiet")
	ConfigureTestRepo(t, dir, func(dir string, args ...string) {
		RunGit(t, dir, args...)
	})

	WriteFile(t, dir, "README.md", "# Test Repo\n")
	RunGit(t, dir, "add", "README.md")
	RunGit(t, dir, "commit", "--quiet", "-m", "Initial commit")

	return dir
}

// WriteFile writes content to name inside dir, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("failed to create directory for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}
