package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultTimeout bounds executions whose context carries no deadline
	DefaultTimeout = 5 * time.Minute
	// DefaultWaitDelay is how long a killed command may keep its output
	// pipes open before the runner closes them itself
	DefaultWaitDelay = 2 * time.Second

	toolCheckTimeout = 10 * time.Second
)

// ProcessRunner implements Runner using OS processes.
// Each execution owns its process, pipes and accumulators; nothing is shared.
type ProcessRunner struct {
	logger    *slog.Logger
	timeout   time.Duration
	waitDelay time.Duration
	newID     func() string
}

// Option configures a ProcessRunner
type Option func(*ProcessRunner)

// WithLogger sets the logger used for execution diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(r *ProcessRunner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTimeout sets the timeout applied when the context has no deadline.
// Zero disables it.
func WithTimeout(timeout time.Duration) Option {
	return func(r *ProcessRunner) {
		r.timeout = timeout
	}
}

// WithWaitDelay sets the grace period between killing a command and
// forcibly closing its output pipes
func WithWaitDelay(delay time.Duration) Option {
	return func(r *ProcessRunner) {
		r.waitDelay = delay
	}
}

// NewProcessRunner creates a runner that executes real commands
func NewProcessRunner(opts ...Option) *ProcessRunner {
	r := &ProcessRunner{
		logger:    slog.New(slog.DiscardHandler),
		timeout:   DefaultTimeout,
		waitDelay: DefaultWaitDelay,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Execute launches spec and returns immediately with a handle that
// resolves once stdout, stderr and the process have all completed.
// Launch failures resolve the handle before Execute returns.
func (r *ProcessRunner) Execute(ctx context.Context, spec Spec) *Execution {
	if ctx == nil {
		ctx = context.Background()
	}

	spec = spec.clone()
	e := newExecution(r.newID(), spec)
	started := time.Now()

	if spec.Program == "" {
		e.resolve(Result{Status: LaunchFailed("empty program name"), StartedAt: started})
		return e
	}
	if err := ctx.Err(); err != nil {
		status := Indeterminate("not started: " + err.Error())
		status.TimedOut = errors.Is(err, context.DeadlineExceeded)
		e.resolve(Result{Status: status, StartedAt: started})
		return e
	}

	cancel := context.CancelFunc(func() {})
	if _, ok := ctx.Deadline(); !ok && r.timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
	}

	p, err := launch(spec)
	if err != nil {
		cancel()
		r.logger.Debug("command launch failed",
			"id", e.id, "command", spec.String(), "dir", spec.Dir, "error", err)
		e.resolve(Result{Status: LaunchFailed(err.Error()), StartedAt: started})
		return e
	}

	r.logger.Debug("command started",
		"id", e.id, "command", spec.String(), "dir", spec.Dir, "pid", p.cmd.Process.Pid)

	go func() {
		defer cancel()
		r.supervise(ctx, e, p, started)
	}()

	return e
}

// Run executes spec and blocks the calling goroutine until it resolves
func (r *ProcessRunner) Run(ctx context.Context, spec Spec) Result {
	return r.Execute(ctx, spec).Wait()
}

// IsToolAvailable reports whether program starts and exits cleanly
// when asked for its version
func (r *ProcessRunner) IsToolAvailable(ctx context.Context, program string) bool {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, toolCheckTimeout)
	defer cancel()

	res := r.Run(ctx, Spec{Program: program, Args: []string{"--version"}})
	return res.Success()
}

// process is a started command together with the read ends of its output pipes
type process struct {
	cmd    *exec.Cmd
	stdout *os.File
	stderr *os.File
}

func (p *process) closePipes() {
	_ = p.stdout.Close()
	_ = p.stderr.Close()
}

func launch(spec Spec) (*process, error) {
	// #nosec G204 - program and arguments are built by the caller as an argv list, no shell involved
	cmd := exec.Command(spec.Program, spec.Args...)
	cmd.Dir = spec.Dir
	if len(spec.Env) > 0 {
		cmd.Env = append(os.Environ(), spec.Env...)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdoutR.Close()
		_ = stdoutW.Close()
		return nil, fmt.Errorf("failed to create stderr pipe: %w", err)
	}

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	startErr := cmd.Start()

	// The child owns its own copies of the write ends; ours must be closed
	// or the readers never see EOF.
	_ = stdoutW.Close()
	_ = stderrW.Close()

	if startErr != nil {
		_ = stdoutR.Close()
		_ = stderrR.Close()
		return nil, startErr
	}

	return &process{cmd: cmd, stdout: stdoutR, stderr: stderrR}, nil
}

// supervise joins the three completion signals of p, racing them against ctx
func (r *ProcessRunner) supervise(ctx context.Context, e *Execution, p *process, started time.Time) {
	state := &runState{}

	var g errgroup.Group
	g.Go(func() error { return drain(p.stdout, state, false) })
	g.Go(func() error { return drain(p.stderr, state, true) })
	g.Go(func() error {
		err := p.cmd.Wait()
		state.markExited(p.cmd.ProcessState, err)
		return nil
	})

	joined := make(chan error, 1)
	go func() { joined <- g.Wait() }()

	var (
		interrupted bool
		abandoned   bool
	)

	completed, drainErr := awaitSignals(ctx, state, joined)
	if !completed {
		interrupted = true
		abandoned, drainErr = r.terminate(e, p, joined)
	}
	p.closePipes()

	stdout, stderr := state.output()
	status := state.status()

	switch {
	case interrupted:
		status = Indeterminate(interruptMessage(ctx.Err(), abandoned))
		status.TimedOut = errors.Is(ctx.Err(), context.DeadlineExceeded)
	case drainErr != nil && status.Kind != StatusExited:
		status = Indeterminate("failed to read command output: " + drainErr.Error())
	}

	res := Result{
		Stdout:    stdout,
		Stderr:    stderr,
		Status:    status,
		StartedAt: started,
		Duration:  time.Since(started),
	}

	r.logger.Debug("command finished",
		"id", e.id, "command", e.spec.String(), "status", status.String(), "duration", res.Duration)

	e.resolve(res)
}

// awaitSignals waits for the joined completion signals or for ctx to end.
// A run whose signals have all fired counts as completed even when ctx
// ends before the join is delivered.
func awaitSignals(ctx context.Context, state *runState, joined <-chan error) (bool, error) {
	select {
	case err := <-joined:
		return true, err
	case <-ctx.Done():
	}

	select {
	case err := <-joined:
		return true, err
	default:
	}
	if state.complete() {
		return true, <-joined
	}
	return false, nil
}

// terminate kills the process and waits for the completion signals,
// closing the pipes if they stay open past the wait delay. It reports
// true when the signals never arrived.
func (r *ProcessRunner) terminate(e *Execution, p *process, joined <-chan error) (bool, error) {
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		r.logger.Warn("failed to kill command", "id", e.id, "command", e.spec.String(), "error", err)
	}

	select {
	case err := <-joined:
		return false, err
	case <-time.After(r.waitDelay):
	}

	// Something (usually a grandchild) still holds the pipes open.
	p.closePipes()

	select {
	case err := <-joined:
		return false, err
	case <-time.After(r.waitDelay):
		r.logger.Warn("command did not exit after kill", "id", e.id, "command", e.spec.String())
		return true, nil
	}
}

func interruptMessage(err error, abandoned bool) string {
	msg := "command canceled"
	if errors.Is(err, context.DeadlineExceeded) {
		msg = "command timed out"
	}
	if abandoned {
		msg += " and did not exit after being killed"
	}
	return msg
}

// drain copies f into the state accumulator until EOF.
// EOF is only recorded when the stream actually ended.
func drain(f *os.File, state *runState, stderr bool) error {
	_, err := io.Copy(state.stream(stderr), f)
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return nil
		}
		return err
	}
	state.markEOF(stderr)
	return nil
}
