package main

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satococoa/autogit/internal/testutil"
)

func TestNewRunCommand(t *testing.T) {
	cmd := NewRunCommand()

	assert.Equal(t, "run", cmd.Name)
	assert.NotEmpty(t, cmd.Description)
	assert.NotNil(t, cmd.Action)
}

func TestRunCommand_ManualByDefault(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.WriteFile(t, repo, "scene.txt", "level 1\n")

	stdout, _, err := runInDir(t, repo, "run")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Committed 1 file(s): Auto-commit: manual")
	assert.Contains(t, stdout, "?? scene.txt")

	log := testutil.RunGit(t, repo, "log", "-1", "--pretty=%s")
	assert.Equal(t, "Auto-commit: manual", strings.TrimSpace(log))
}

func TestRunCommand_NoChanges(t *testing.T) {
	repo := testutil.InitRepo(t)

	stdout, _, err := runInDir(t, repo, "run", "manual")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Nothing committed: no changes")
}

func TestRunCommand_TemplateVariables(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.WriteFile(t, repo, ".autogit.yml", `triggers:
  - name: scene-save
    enabled: true
    template: "Save {sceneName} ({action})"
`)

	_, _, err := runInDir(t, repo, "run", "--var", "sceneName=Main Menu", "scene-save")

	require.NoError(t, err)
	log := testutil.RunGit(t, repo, "log", "-1", "--pretty=%s")
	assert.Equal(t, "Save Main Menu (scene-save)", strings.TrimSpace(log))
}

func TestRunCommand_InvalidVariable(t *testing.T) {
	_, _, err := runInDir(t, t.TempDir(), "run", "--var", "sceneName", "scene-save")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid template variable: 'sceneName'")
}

func TestRunCommand_UnknownTrigger(t *testing.T) {
	repo := testutil.InitRepo(t)

	_, _, err := runInDir(t, repo, "run", "on-deploy")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger 'on-deploy' not found")
	assert.Contains(t, err.Error(), "build-complete")
}

func TestRunCommand_DisabledTrigger(t *testing.T) {
	repo := testutil.InitRepo(t)

	_, _, err := runInDir(t, repo, "run", "scene-save")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "trigger 'scene-save' is disabled")
}

func TestRunCommand_NotInGitRepo(t *testing.T) {
	_, _, err := runInDir(t, t.TempDir(), "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not in a git repository")
}

func TestRunCommand_InvalidConfig(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.WriteFile(t, repo, ".autogit.yml", "triggers: [unclosed\n")

	_, _, err := runInDir(t, repo, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
	assert.Contains(t, err.Error(), "YAML syntax error")
}

func TestRunCommand_RunsHooks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("hook uses sh")
	}
	repo := testutil.InitRepo(t)
	testutil.WriteFile(t, repo, ".autogit.yml", `hooks:
  post_commit:
    - command: ["sh", "-c", "echo hook saw $AUTOGIT_TRIGGER"]
`)

	stdout, _, err := runInDir(t, repo, "run")

	require.NoError(t, err)
	assert.Contains(t, stdout, "  Running: sh -c ")
	assert.Contains(t, stdout, "    hook saw manual")
}

func TestRunCommand_PushFailureIsReported(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.WriteFile(t, repo, ".autogit.yml", "push:\n  enabled: true\n  remote: nowhere\n")

	_, _, err := runInDir(t, repo, "run")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "git command failed: git push")

	// the commit itself is kept
	log := testutil.RunGit(t, repo, "log", "-1", "--pretty=%s")
	assert.Equal(t, "Auto-commit: manual", strings.TrimSpace(log))
}

func TestRunCommand_PushesToRemote(t *testing.T) {
	repo := testutil.InitRepo(t)
	remote := t.TempDir()
	testutil.RunGit(t, remote, "init", "--bare", "--quiet")
	testutil.RunGit(t, repo, "remote", "add", "origin", remote)
	branch := strings.TrimSpace(testutil.RunGit(t, repo, "rev-parse", "--abbrev-ref", "HEAD"))
	testutil.RunGit(t, repo, "push", "--quiet", "-u", "origin", branch)
	testutil.WriteFile(t, repo, ".autogit.yml", "push:\n  enabled: true\n")

	stdout, _, err := runInDir(t, repo, "run")

	require.NoError(t, err)
	assert.Contains(t, stdout, "Pushed to origin")
	remoteLog := testutil.RunGit(t, remote, "log", "-1", "--pretty=%s", branch)
	assert.Equal(t, "Auto-commit: manual", strings.TrimSpace(remoteLog))
}

func TestRunCommand_WritesLogFile(t *testing.T) {
	repo := testutil.InitRepo(t)
	testutil.WriteFile(t, repo, "scene.txt", "level 1\n")
	logFile := filepath.Join(t.TempDir(), "logs", "autogit.log")

	_, _, err := runInDir(t, repo, "--log-file", logFile, "run")
	require.NoError(t, err)

	content, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "commit created")
	assert.Contains(t, string(content), "command started")
}
