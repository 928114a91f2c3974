package command

import (
	"bytes"
	"os"
	"sync"
)

// Execution is the handle of one in-flight command.
// It resolves exactly once; Done is closed when the Result is available.
type Execution struct {
	id     string
	spec   Spec
	done   chan struct{}
	once   sync.Once
	result Result
}

func newExecution(id string, spec Spec) *Execution {
	return &Execution{
		id:   id,
		spec: spec,
		done: make(chan struct{}),
	}
}

// Completed returns an execution that has already resolved with res.
// It lets Runner implementations answer without launching anything.
func Completed(spec Spec, res Result) *Execution {
	e := newExecution(res.ID, spec)
	e.resolve(res)
	return e
}

// Pending returns an unresolved execution together with the function that
// resolves it. Only the first call of resolve has an effect.
func Pending(id string, spec Spec) (*Execution, func(Result)) {
	e := newExecution(id, spec)
	return e, e.resolve
}

// ID returns the unique identifier of this execution
func (e *Execution) ID() string {
	return e.id
}

// Spec returns the command being executed
func (e *Execution) Spec() Spec {
	return e.spec
}

// Done returns a channel that is closed once the execution has resolved.
// Event loops should select on it instead of calling Wait.
func (e *Execution) Done() <-chan struct{} {
	return e.done
}

// Result returns the result if the execution has resolved, without blocking
func (e *Execution) Result() (Result, bool) {
	select {
	case <-e.done:
		return e.result, true
	default:
		return Result{}, false
	}
}

// Wait blocks the calling goroutine until the execution resolves
func (e *Execution) Wait() Result {
	<-e.done
	return e.result
}

func (e *Execution) resolve(res Result) {
	e.once.Do(func() {
		res.ID = e.id
		res.Spec = e.spec
		e.result = res
		close(e.done)
	})
}

// runState tracks the three completion signals of a running process
// together with its output accumulators.
type runState struct {
	mu        sync.Mutex
	stdout    bytes.Buffer
	stderr    bytes.Buffer
	stdoutEOF bool
	stderrEOF bool
	exited    bool
	procState *os.ProcessState
	waitErr   error
}

// stream returns a writer appending to the named accumulator
func (s *runState) stream(stderr bool) *stateWriter {
	return &stateWriter{state: s, stderr: stderr}
}

func (s *runState) markEOF(stderr bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stderr {
		s.stderrEOF = true
	} else {
		s.stdoutEOF = true
	}
}

func (s *runState) markExited(ps *os.ProcessState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exited = true
	s.procState = ps
	s.waitErr = err
}

// complete reports whether both streams hit EOF and the process exited
func (s *runState) complete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdoutEOF && s.stderrEOF && s.exited
}

// status derives the exit status. Unless all three signals have fired
// the status is indeterminate.
func (s *runState) status() ExitStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !(s.stdoutEOF && s.stderrEOF && s.exited) {
		return Indeterminate("output streams or process did not complete")
	}
	if s.procState == nil {
		msg := "process state unavailable"
		if s.waitErr != nil {
			msg += ": " + s.waitErr.Error()
		}
		return Indeterminate(msg)
	}
	code := s.procState.ExitCode()
	if code < 0 {
		return Indeterminate("process terminated abnormally: " + s.procState.String())
	}
	return Exited(code)
}

func (s *runState) output() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stdout.String(), s.stderr.String()
}

type stateWriter struct {
	state  *runState
	stderr bool
}

func (w *stateWriter) Write(p []byte) (int, error) {
	w.state.mu.Lock()
	defer w.state.mu.Unlock()
	if w.stderr {
		return w.state.stderr.Write(p)
	}
	return w.state.stdout.Write(p)
}
