package main

import (
	"bytes"
	"context"
	"testing"
)

// runApp runs the autogit CLI with args and returns what it wrote to stdout
// and stderr. The program name is prepended.
func runApp(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	app := newApp()
	app.Writer = &stdout
	app.ErrWriter = &stderr

	err := app.Run(context.Background(), append([]string{"autogit"}, args...))
	return stdout.String(), stderr.String(), err
}

// runInDir runs the CLI against dir through the --dir flag
func runInDir(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	return runApp(t, append([]string{"--dir", dir}, args...)...)
}
