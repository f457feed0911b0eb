package judge

import (
	"context"
	"errors"
	"fmt"

	"github.com/algoprep/backend/internal/domain"
)

// Executor prepares a submission's code for execution. Implementations must
// isolate runs from each other and from the host.
type Executor interface {
	// Start writes the submission's sources and compiles them when the
	// language requires it. The returned Session is scoped to one submission.
	Start(ctx context.Context, code string, language domain.Language) (Session, error)
}

// Session is a prepared program that can be run once per test case. Run feeds
// input on stdin and returns trimmed stdout. Each Run is isolated: no state
// carries over between test cases. Close releases the session's resources.
type Session interface {
	Run(ctx context.Context, input string) (string, error)
	Close() error
}

// ErrTimeLimit is returned by Session.Run when the execution exceeded its
// per-test-case deadline.
var ErrTimeLimit = errors.New("time limit exceeded")

// RunError reports a test-case execution that faulted before producing a
// usable result (non-zero exit, crashed interpreter, ...).
type RunError struct {
	ExitCode int
	Stderr   string
}

func (e *RunError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("process exited with code %d: %s", e.ExitCode, truncate(e.Stderr, 512))
	}
	return fmt.Sprintf("process exited with code %d", e.ExitCode)
}

// CompileError reports a compilation failure during Executor.Start.
type CompileError struct {
	Output string
}

func (e *CompileError) Error() string {
	return "compilation failed: " + truncate(e.Output, 2048)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "... (truncated)"
}
