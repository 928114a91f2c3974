package command

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("tests drive POSIX sh")
	}
}

func shell(script string) Spec {
	return Spec{Program: "sh", Args: []string{"-c", script}}
}

func expectedLines(prefix string, n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%s%d\n", prefix, i)
	}
	return b.String()
}

func TestProcessRunner_CollectsAllOutputBeforeResolving(t *testing.T) {
	requireShell(t)

	const n = 2000
	loop := func(body string) string {
		return fmt.Sprintf(`i=0; while [ $i -lt %d ]; do %s; i=$((i+1)); done`, n, body)
	}

	tests := []struct {
		name   string
		script string
		want   ExitStatus
	}{
		{
			name:   "interleaved writes then exit",
			script: loop(`echo out$i; echo err$i >&2`),
			want:   Exited(0),
		},
		{
			name:   "stdout first then stderr",
			script: loop(`echo out$i`) + "; " + loop(`echo err$i >&2`),
			want:   Exited(0),
		},
		{
			name:   "stderr first then stdout",
			script: loop(`echo err$i >&2`) + "; " + loop(`echo out$i`),
			want:   Exited(0),
		},
		{
			name:   "exit code set right after writes",
			script: loop(`echo out$i; echo err$i >&2`) + "; exit 3",
			want:   Exited(3),
		},
	}

	runner := NewProcessRunner()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runner.Run(context.Background(), shell(tt.script))

			assert.Equal(t, expectedLines("out", n), res.Stdout)
			assert.Equal(t, expectedLines("err", n), res.Stderr)
			assert.Equal(t, tt.want, res.Status)
		})
	}
}

func TestProcessRunner_LargeOutputDoesNotDeadlock(t *testing.T) {
	requireShell(t)

	t.Run("stdout only", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		// 2MB on stdout, nothing on stderr
		res := NewProcessRunner().Run(ctx, shell("dd if=/dev/zero bs=1024 count=2048 2>/dev/null"))

		require.True(t, res.Success(), res.Status.String())
		assert.Len(t, res.Stdout, 2048*1024)
		assert.Empty(t, res.Stderr)
	})

	t.Run("stderr only", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		res := NewProcessRunner().Run(ctx, shell("dd if=/dev/zero bs=1024 count=2048 1>&2 2>/dev/null"))

		require.True(t, res.Success(), res.Status.String())
		assert.Empty(t, res.Stdout)
		assert.Len(t, res.Stderr, 2048*1024)
	})
}

func TestProcessRunner_ExitCodes(t *testing.T) {
	requireShell(t)

	runner := NewProcessRunner()
	for _, code := range []int{0, 1, 127} {
		t.Run(fmt.Sprintf("exit %d", code), func(t *testing.T) {
			res := runner.Run(context.Background(), shell(fmt.Sprintf("exit %d", code)))

			assert.Equal(t, Exited(code), res.Status)
			assert.Equal(t, code == 0, res.Success())
		})
	}
}

func TestProcessRunner_LaunchFailure(t *testing.T) {
	t.Run("missing program resolves before Execute returns", func(t *testing.T) {
		// Given: a program that does not exist
		runner := NewProcessRunner()

		// When: executing it
		execution := runner.Execute(context.Background(), Spec{Program: "nonexistent-command-xyz"})

		// Then: the handle is already resolved with a launch failure
		res, ok := execution.Result()
		require.True(t, ok)
		assert.Equal(t, StatusLaunchFailed, res.Status.Kind)
		assert.NotEmpty(t, res.Status.Message)
		assert.Empty(t, res.Stdout)
		assert.Empty(t, res.Stderr)
		assert.False(t, res.Success())
	})

	t.Run("invalid working directory", func(t *testing.T) {
		requireShell(t)

		dir := filepath.Join(t.TempDir(), "does-not-exist")
		res := NewProcessRunner().Run(context.Background(), Spec{Dir: dir, Program: "sh", Args: []string{"-c", "true"}})

		assert.Equal(t, StatusLaunchFailed, res.Status.Kind)
	})

	t.Run("empty program", func(t *testing.T) {
		res := NewProcessRunner().Run(context.Background(), Spec{})

		assert.Equal(t, StatusLaunchFailed, res.Status.Kind)
		assert.Contains(t, res.Status.Message, "empty program")
	})
}

func TestProcessRunner_ConcurrentExecutionsAreIndependent(t *testing.T) {
	requireShell(t)

	runner := NewProcessRunner()
	const count = 8

	dirs := make([]string, count)
	for i := range dirs {
		dirs[i] = t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dirs[i], "marker"), []byte(fmt.Sprintf("marker-%d", i)), 0o600))
	}

	results := make([]Result, count)
	var wg sync.WaitGroup
	for i := range dirs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			spec := Spec{Dir: dirs[i], Program: "sh", Args: []string{"-c", "cat marker; echo err-$(cat marker) >&2"}}
			results[i] = runner.Run(context.Background(), spec)
		}(i)
	}
	wg.Wait()

	for i, res := range results {
		want := fmt.Sprintf("marker-%d", i)
		assert.Equal(t, want, res.Stdout)
		assert.Equal(t, "err-"+want+"\n", res.Stderr)
		assert.True(t, res.Success())
	}
}

func TestProcessRunner_ExecuteDoesNotBlock(t *testing.T) {
	requireShell(t)

	runner := NewProcessRunner()
	execution := runner.Execute(context.Background(), shell("sleep 1; echo done"))

	_, ok := execution.Result()
	assert.False(t, ok, "execution must not be resolved while the child runs")

	select {
	case <-execution.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("execution did not resolve")
	}

	res, ok := execution.Result()
	require.True(t, ok)
	assert.Equal(t, "done\n", res.Stdout)
	assert.Equal(t, execution.ID(), res.ID)
	assert.NotEmpty(t, res.ID)
}

func TestProcessRunner_Timeout(t *testing.T) {
	requireShell(t)

	t.Run("kills a command that never exits", func(t *testing.T) {
		runner := NewProcessRunner(WithWaitDelay(200 * time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		res := runner.Run(ctx, shell("echo partial; sleep 30"))

		assert.Less(t, time.Since(start), 5*time.Second)
		assert.Equal(t, StatusIndeterminate, res.Status.Kind)
		assert.True(t, res.Status.TimedOut)
		assert.Equal(t, "partial\n", res.Stdout)
	})

	t.Run("does not hang when a grandchild holds the pipes", func(t *testing.T) {
		runner := NewProcessRunner(WithWaitDelay(200 * time.Millisecond))
		ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
		defer cancel()

		start := time.Now()
		res := runner.Run(ctx, shell("sleep 5 & echo started"))

		assert.Less(t, time.Since(start), 4*time.Second)
		assert.Equal(t, StatusIndeterminate, res.Status.Kind)
		assert.True(t, res.Status.TimedOut)
	})

	t.Run("runner default timeout applies without a deadline", func(t *testing.T) {
		runner := NewProcessRunner(WithTimeout(100*time.Millisecond), WithWaitDelay(100*time.Millisecond))

		res := runner.Run(context.Background(), shell("sleep 30"))

		assert.Equal(t, StatusIndeterminate, res.Status.Kind)
		assert.True(t, res.Status.TimedOut)
	})

	t.Run("cancellation is not reported as timeout", func(t *testing.T) {
		runner := NewProcessRunner(WithWaitDelay(100 * time.Millisecond))
		ctx, cancel := context.WithCancel(context.Background())

		execution := runner.Execute(ctx, shell("sleep 30"))
		cancel()
		res := execution.Wait()

		assert.Equal(t, StatusIndeterminate, res.Status.Kind)
		assert.False(t, res.Status.TimedOut)
		assert.Contains(t, res.Status.Message, "canceled")
	})

	t.Run("already canceled context never launches", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		execution := NewProcessRunner().Execute(ctx, shell("echo never"))

		res, ok := execution.Result()
		require.True(t, ok)
		assert.Equal(t, StatusIndeterminate, res.Status.Kind)
		assert.Empty(t, res.Stdout)
	})
}

func TestAwaitSignals(t *testing.T) {
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	t.Run("completed run wins over a late cancellation", func(t *testing.T) {
		state := &runState{}
		state.markEOF(false)
		state.markEOF(true)
		state.markExited(nil, nil)

		joined := make(chan error, 1)
		go func() {
			time.Sleep(50 * time.Millisecond)
			joined <- nil
		}()

		completed, err := awaitSignals(canceled, state, joined)

		assert.True(t, completed)
		assert.NoError(t, err)
	})

	t.Run("pending signals are interrupted", func(t *testing.T) {
		state := &runState{}
		state.markEOF(false)
		state.markExited(nil, nil)

		completed, err := awaitSignals(canceled, state, make(chan error))

		assert.False(t, completed)
		assert.NoError(t, err)
	})

	t.Run("join already delivered", func(t *testing.T) {
		joined := make(chan error, 1)
		joined <- os.ErrClosed

		completed, err := awaitSignals(context.Background(), &runState{}, joined)

		assert.True(t, completed)
		assert.ErrorIs(t, err, os.ErrClosed)
	})
}

func TestProcessRunner_SpecIsCopied(t *testing.T) {
	requireShell(t)

	args := []string{"-c", "echo original"}
	spec := Spec{Program: "sh", Args: args}

	execution := NewProcessRunner().Execute(context.Background(), spec)
	args[1] = "echo mutated"

	res := execution.Wait()
	assert.Equal(t, "original\n", res.Stdout)
	assert.Equal(t, "echo original", res.Spec.Args[1])
}

func TestProcessRunner_Environment(t *testing.T) {
	requireShell(t)

	spec := shell(`printf %s "$AUTOGIT_TEST_VALUE"`)
	spec.Env = []string{"AUTOGIT_TEST_VALUE=hello"}

	res := NewProcessRunner().Run(context.Background(), spec)

	assert.Equal(t, "hello", res.Stdout)
}

func TestProcessRunner_StdinIsNotConnected(t *testing.T) {
	requireShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	res := NewProcessRunner().Run(ctx, shell("cat; echo eof"))

	require.True(t, res.Success(), res.Status.String())
	assert.Equal(t, "eof\n", res.Stdout)
}

func TestProcessRunner_IsToolAvailable(t *testing.T) {
	runner := NewProcessRunner()

	assert.False(t, runner.IsToolAvailable(context.Background(), "nonexistent-command-xyz"))

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	assert.True(t, runner.IsToolAvailable(context.Background(), "git"))
}
