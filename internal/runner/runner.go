package runner

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"time"
)

const DefaultTimeout = 10 * time.Second

// ErrUnsupportedLanguage means the language has no run support; only Python
// snippets execute.
var ErrUnsupportedLanguage = errors.New("running snippets is only supported for Python")

type RunResult struct {
	Output   string
	ExitCode int
	TimedOut bool
	Duration time.Duration
}

func (r RunResult) OK() bool { return !r.TimedOut && r.ExitCode == 0 }

// Runner executes snippet code in a subprocess with a hard wall-clock
// timeout. Timeouts and non-zero exits are results, not errors: the caller
// renders them, the process never crashes over user code.
type Runner struct {
	Interpreter string
	Timeout     time.Duration
}

func New() *Runner {
	return &Runner{Interpreter: "python3", Timeout: DefaultTimeout}
}

// Run writes code to a temp file, executes it and captures combined output.
// The temp file is removed regardless of outcome.
func (r *Runner) Run(ctx context.Context, language, code string) (RunResult, error) {
	if language != "Python" {
		return RunResult{}, ErrUnsupportedLanguage
	}
	interpreter := r.Interpreter
	if interpreter == "" {
		interpreter = "python3"
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	tmp, err := os.CreateTemp("", "codeaid-run-*.py")
	if err != nil {
		return RunResult{}, err
	}
	path := tmp.Name()
	defer func() { _ = os.Remove(path) }()

	if _, err := tmp.WriteString(code); err != nil {
		_ = tmp.Close()
		return RunResult{}, err
	}
	if err := tmp.Close(); err != nil {
		return RunResult{}, err
	}

	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	out, runErr := exec.CommandContext(runCtx, interpreter, path).CombinedOutput()
	result := RunResult{
		Output:   string(out),
		Duration: time.Since(started),
	}
	if runCtx.Err() == context.DeadlineExceeded {
		result.TimedOut = true
		result.ExitCode = -1
		return result, nil
	}
	if runErr != nil {
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
			return result, nil
		}
		// Interpreter missing or not startable.
		return RunResult{}, runErr
	}
	return result, nil
}
