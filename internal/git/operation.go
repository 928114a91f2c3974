package git

import (
	"strings"

	"github.com/satococoa/autogit/internal/command"
)

// Outcome is the classified result of one verb
type Outcome struct {
	Verb Verb
	OK   bool
	// Output is the raw standard output of git
	Output string
	// Message is the diagnostic for a failed outcome
	Message string
	Result  command.Result
	kind    error
}

// Err returns nil for a successful outcome and a *CommandError otherwise
func (o Outcome) Err() error {
	if o.OK {
		return nil
	}
	kind := o.kind
	if kind == nil {
		kind = kindOf(o.Result.Status)
	}
	return &CommandError{
		Verb:    o.Verb,
		Status:  o.Result.Status,
		Message: o.Message,
		kind:    kind,
	}
}

// Classify maps a command result to an outcome. Only an exit code of 0 is
// a success; any other result carries stderr, then stdout, then the
// status description as its message.
func Classify(verb Verb, res command.Result) Outcome {
	out := Outcome{
		Verb:   verb,
		OK:     res.Success(),
		Output: res.Stdout,
		Result: res,
	}
	if out.OK {
		return out
	}

	switch {
	case strings.TrimSpace(res.Stderr) != "":
		out.Message = strings.TrimSpace(res.Stderr)
	case strings.TrimSpace(res.Stdout) != "":
		out.Message = strings.TrimSpace(res.Stdout)
	default:
		out.Message = res.Status.String()
	}
	return out
}

// Operation is the handle of a verb in flight.
// It never blocks unless Wait is called.
type Operation struct {
	verb      Verb
	execution *command.Execution
	outcome   *Outcome
}

var resolved = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

func rejected(verb Verb, err error) *Operation {
	return &Operation{
		verb: verb,
		outcome: &Outcome{
			Verb:    verb,
			Message: err.Error(),
			Result:  command.Result{Status: command.LaunchFailed(err.Error())},
			kind:    ErrInvalidRequest,
		},
	}
}

// Verb returns the operation's verb
func (o *Operation) Verb() Verb {
	return o.verb
}

// Done returns a channel that is closed once the outcome is available
func (o *Operation) Done() <-chan struct{} {
	if o.execution == nil {
		return resolved
	}
	return o.execution.Done()
}

// Outcome returns the outcome if git has finished, without blocking
func (o *Operation) Outcome() (Outcome, bool) {
	if o.outcome != nil {
		return *o.outcome, true
	}
	res, ok := o.execution.Result()
	if !ok {
		return Outcome{}, false
	}
	return Classify(o.verb, res), true
}

// Wait blocks the calling goroutine until the outcome is available
func (o *Operation) Wait() Outcome {
	<-o.Done()
	out, _ := o.Outcome()
	return out
}
