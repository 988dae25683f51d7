package git

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunner_Run(t *testing.T) {
	runner := NewRunner()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		res, err := runner.Run(ctx, Command{Args: []string{"--version"}})
		require.NoError(t, err)
		assert.Equal(t, 0, res.ExitCode)
		assert.Contains(t, res.Stdout, "git version")
	})

	t.Run("non-zero exit is not an error", func(t *testing.T) {
		res, err := runner.Run(ctx, Command{Dir: t.TempDir(), Args: []string{"rev-parse", "--verify", "HEAD"}})
		require.NoError(t, err)
		assert.NotEqual(t, 0, res.ExitCode)
		assert.NotEmpty(t, res.Stderr)
	})

	t.Run("extra environment", func(t *testing.T) {
		repoDir := setupTestRepo(t)
		res, err := runner.Run(ctx, Command{
			Dir:  repoDir,
			Args: []string{"var", "GIT_AUTHOR_IDENT"},
			Env:  []string{"GIT_AUTHOR_NAME=Env Author", "GIT_AUTHOR_EMAIL=env@example.com"},
		})
		require.NoError(t, err)
		assert.Contains(t, res.Stdout, "Env Author <env@example.com>")
	})
}

func TestExecRunner_LaunchFailure(t *testing.T) {
	runner := &ExecRunner{binary: "autocommit-no-such-binary"}

	_, err := runner.Run(context.Background(), Command{Args: []string{"status"}})
	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.True(t, errors.Is(err, exec.ErrNotFound))
	assert.Equal(t, []string{"status"}, procErr.Args)
}

func TestExecRunner_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewRunner().Run(ctx, Command{Args: []string{"--version"}})
	var procErr *ProcessError
	require.ErrorAs(t, err, &procErr)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAsync(t *testing.T) {
	task := Async(context.Background(), NewRunner(), Command{Args: []string{"--version"}})

	select {
	case <-task.Done():
	case <-time.After(10 * time.Second):
		t.Fatal("task did not finish")
	}

	res, err := task.Wait()
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "git version")

	// Wait is repeatable once done
	res2, err := task.Wait()
	require.NoError(t, err)
	assert.Same(t, res, res2)
}

func TestResult_Output(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		stderr string
		want   string
	}{
		{name: "both with trailing newlines", stdout: "out\n", stderr: "err\n", want: "out\nerr"},
		{name: "stdout only", stdout: "[main abc1234] feat(core): x\n 1 file changed\n", want: "[main abc1234] feat(core): x\n 1 file changed"},
		{name: "stderr only", stderr: "fatal: bad\n", want: "fatal: bad"},
		{name: "blank stdout", stdout: "\n", stderr: "err", want: "err"},
		{name: "empty", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := &Result{Stdout: tt.stdout, Stderr: tt.stderr}
			assert.Equal(t, tt.want, res.Output())
		})
	}
}
