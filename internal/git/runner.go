package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/huimingz/autocommit-go/internal/log"
)

// Command describes one git invocation
type Command struct {
	Dir  string   // working directory
	Args []string // arguments after "git"
	Env  []string // extra KEY=VALUE pairs appended to the inherited environment
}

func (c Command) String() string {
	return "git " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a finished command
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Output returns stdout and stderr joined by one newline, for marker scanning
// and error messages
func (r *Result) Output() string {
	stdout, stderr := strings.TrimSpace(r.Stdout), strings.TrimSpace(r.Stderr)
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	}
	return stdout + "\n" + stderr
}

// ProcessError is returned when git could not be launched or was stopped by its context.
// A non-zero exit status is not a ProcessError; it is reported in Result.ExitCode.
type ProcessError struct {
	Args []string
	Err  error
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// Runner executes git commands synchronously
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner is the default Runner, backed by os/exec
type ExecRunner struct {
	binary string
}

// NewRunner creates an ExecRunner for the git binary on PATH
func NewRunner() *ExecRunner {
	return &ExecRunner{binary: "git"}
}

// Run executes the command and waits for it to finish
func (r *ExecRunner) Run(ctx context.Context, c Command) (*Result, error) {
	cmd := exec.CommandContext(ctx, r.binary, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()

	res := &Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, &ProcessError{Args: c.Args, Err: ctxErr}
		}
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, &ProcessError{Args: c.Args, Err: err}
		}
		res.ExitCode = exitErr.ExitCode()
	}

	log.DebugCommand(c.Dir, c.Args, res.ExitCode, time.Since(start))
	return res, nil
}

// Task is a command running in the background
type Task struct {
	done   chan struct{}
	result *Result
	err    error
}

// Async starts cmd on its own goroutine and returns immediately
func Async(ctx context.Context, r Runner, cmd Command) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.result, t.err = r.Run(ctx, cmd)
	}()
	return t
}

// Done is closed once the command has finished
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the command finishes and returns its outcome
func (t *Task) Wait() (*Result, error) {
	<-t.done
	return t.result, t.err
}
