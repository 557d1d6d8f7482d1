// Package dispatch invokes a bound task and translates every failure mode
// into a user-facing report and a process exit status. It is the single
// boundary where task-reported failures are caught; anything unexpected
// surfaces with full diagnostic detail and a distinct exit code.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/vk/cogs/internal/binder"
	"github.com/vk/cogs/internal/ctxlog"
	"github.com/vk/cogs/internal/env"
	"github.com/vk/cogs/internal/help"
	"github.com/vk/cogs/internal/registry"
)

// Process exit codes.
const (
	ExitOK       = 0
	ExitFailure  = 1  // task-reported failure
	ExitUsage    = 2  // binder, global-option and configuration errors
	ExitInternal = 70 // unexpected defect
)

// InternalError wraps an unexpected defect, either a panic from a task
// body or an error outside the known taxonomy.
type InternalError struct {
	Err   error
	Panic any
	Stack []byte
}

func (e *InternalError) Error() string {
	if e.Panic != nil {
		return fmt.Sprintf("internal error: panic: %v", e.Panic)
	}
	return fmt.Sprintf("internal error: %v", e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Invoke runs the bound task body. A panic inside the body is captured as
// an InternalError rather than tearing the process down without a report.
func Invoke(ctx context.Context, inv *binder.Invocation) (err error) {
	logger := ctxlog.FromContext(ctx)
	defer func() {
		if r := recover(); r != nil {
			err = &InternalError{Panic: r, Stack: debug.Stack()}
		}
	}()
	logger.Debug("Dispatching task.", "task", inv.Task.Name)
	err = inv.Task.Invoke(ctx, inv.Call)
	if err == nil {
		logger.Debug("Task finished.", "task", inv.Task.Name)
	}
	return err
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var berr *binder.Error
	var ferr *registry.Failure
	var perr *env.ParseError
	var rerr *env.ResolveError
	switch {
	case errors.As(err, &ferr):
		return ExitFailure
	case errors.As(err, &berr), errors.As(err, &perr), errors.As(err, &rerr):
		return ExitUsage
	case errors.Is(err, env.ErrScopeUnderflow),
		errors.Is(err, env.ErrDuplicateKey),
		errors.Is(err, env.ErrUnknownKey):
		return ExitInternal
	default:
		return ExitInternal
	}
}

// Report prints err for the user and returns the exit status. Binder
// errors come with the offending task's usage line; task failures print
// as a concise message; internal defects print with full detail.
func Report(w io.Writer, err error) int {
	if err == nil {
		return ExitOK
	}
	var berr *binder.Error
	var ierr *InternalError
	switch {
	case errors.As(err, &berr):
		fmt.Fprintf(w, "%s %s\n", help.ErrorPrefix(), berr.Msg)
		if berr.Suggestion != "" {
			fmt.Fprintf(w, "did you mean %q?\n", berr.Suggestion)
		}
		if berr.Task != nil {
			fmt.Fprintf(w, "usage: %s\n", help.Usage(berr.Task))
		}
	case errors.As(err, &ierr):
		fmt.Fprintf(w, "%s %v\n", help.ErrorPrefix(), ierr)
		if len(ierr.Stack) > 0 {
			fmt.Fprintf(w, "%s\n", ierr.Stack)
		}
	default:
		fmt.Fprintf(w, "%s %v\n", help.ErrorPrefix(), err)
	}
	return ExitCode(err)
}
