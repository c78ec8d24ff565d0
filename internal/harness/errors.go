package harness

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrBuild           = errors.New("build error")
	ErrDetectorMissing = errors.New("detector missing")
	ErrLocked          = errors.New("run lock held")
	ErrConfiguration   = errors.New("configuration error")
	ErrCasesFailed     = errors.New("validation cases failed")
)

// Wrap builds an error message that includes phase context while tagging it
// with the provided marker for later exit classification. The marker should
// be one of the exported sentinel errors above.
func Wrap(marker error, phase, operation, message string, err error) error {
	detail := buildDetail(phase, operation, message)
	if marker == nil {
		marker = ErrConfiguration
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

func buildDetail(phase, operation, message string) string {
	parts := make([]string, 0, 3)
	if phase = strings.TrimSpace(phase); phase != "" {
		parts = append(parts, phase)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "run failure"
	}
	return strings.Join(parts, ": ")
}

// ExitError carries the process status the CLI should terminate with. The
// harness renders its own diagnostics before returning one, so callers map
// the code without printing again.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps err to a process exit status: nil is 0, an ExitError keeps
// its code, anything else is 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exit *ExitError
	if errors.As(err, &exit) {
		return exit.Code
	}
	return 1
}
