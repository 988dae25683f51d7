package git

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspector_Status(t *testing.T) {
	repoDir := setupRepoWithCommit(t)
	inspector := NewInspector(NewRunner(), repoDir)
	ctx := context.Background()

	t.Run("clean repo", func(t *testing.T) {
		status, err := inspector.Status(ctx)
		require.NoError(t, err)
		assert.NotEmpty(t, status)
	})

	t.Run("with untracked file", func(t *testing.T) {
		writeFile(t, repoDir, "new.txt", "content")

		status, err := inspector.Status(ctx)
		require.NoError(t, err)
		assert.Contains(t, status, "new.txt")
	})
}

func TestInspector_Diff(t *testing.T) {
	repoDir := setupRepoWithCommit(t)
	inspector := NewInspector(NewRunner(), repoDir)
	ctx := context.Background()

	writeFile(t, repoDir, "README.md", "# test\nmore\n")
	writeFile(t, repoDir, "untracked.go", "package main\n")

	t.Run("working tree diff skips untracked files", func(t *testing.T) {
		diff, err := inspector.Diff(ctx, false)
		require.NoError(t, err)
		assert.Contains(t, diff, "+more")
		assert.NotContains(t, diff, "untracked.go")
	})

	t.Run("staged diff includes everything", func(t *testing.T) {
		diff, err := inspector.Diff(ctx, true)
		require.NoError(t, err)
		assert.Contains(t, diff, "+more")
		assert.Contains(t, diff, "untracked.go")
		assert.Contains(t, diff, "+package main")
	})

	t.Run("real index is untouched", func(t *testing.T) {
		assert.Empty(t, runGit(t, repoDir, "diff", "--cached", "--name-only"))
	})
}

func TestInspector_Snapshot(t *testing.T) {
	repoDir := setupRepoWithCommit(t)
	inspector := NewInspector(NewRunner(), repoDir, WithTimeout(30*time.Second))
	ctx := context.Background()

	t.Run("no changes", func(t *testing.T) {
		state, err := inspector.Snapshot(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.Diff)
		assert.NotEmpty(t, state.Status)
		assert.Equal(t, runGit(t, repoDir, "rev-parse", "HEAD^{tree}"), state.Tree)
	})

	t.Run("with changes", func(t *testing.T) {
		writeFile(t, repoDir, "src/app.go", "package app\n")
		runGit(t, repoDir, "rm", "-q", "--cached", "README.md")

		state, err := inspector.Snapshot(ctx)
		require.NoError(t, err)
		assert.Contains(t, state.Diff, "src/app.go")
		assert.Contains(t, state.Status, "src/")
		assert.NotEqual(t, runGit(t, repoDir, "rev-parse", "HEAD^{tree}"), state.Tree)

		// the README removal staged by hand is undone by add -A in the scratch index only
		assert.Equal(t, "README.md", runGit(t, repoDir, "diff", "--cached", "--name-only"))
	})
}

func TestInspector_Snapshot_FreshRepository(t *testing.T) {
	repoDir := setupTestRepo(t)
	writeFile(t, repoDir, "first.txt", "hello world\n")

	state, err := NewInspector(NewRunner(), repoDir).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Contains(t, state.Diff, "first.txt")
	assert.Contains(t, state.Diff, "+hello world")
	assert.NotEmpty(t, state.Tree)
	assert.Empty(t, runGit(t, repoDir, "diff", "--cached", "--name-only"))
}

func TestInspector_NotAGitRepo(t *testing.T) {
	inspector := NewInspector(NewRunner(), t.TempDir())
	ctx := context.Background()

	_, err := inspector.Status(ctx)
	var inspErr *InspectionError
	require.ErrorAs(t, err, &inspErr)
	assert.Equal(t, "status", inspErr.Op)

	_, err = inspector.Snapshot(ctx)
	require.ErrorAs(t, err, &inspErr)
}

func TestInspector_StatusPartialOutput(t *testing.T) {
	runner := newFakeRunner().on("status", &Result{Stdout: "On branch main\n", ExitCode: 1})
	inspector := NewInspector(runner, "/repo")

	status, err := inspector.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "On branch main", status)
}

func TestInspector_StatusFailure(t *testing.T) {
	runner := newFakeRunner().on("status", &Result{Stderr: "fatal: broken", ExitCode: 128})
	inspector := NewInspector(runner, "/repo")

	_, err := inspector.Status(context.Background())
	var inspErr *InspectionError
	require.ErrorAs(t, err, &inspErr)
	assert.Equal(t, "fatal: broken", inspErr.Output)
}

func TestInspector_Snapshot_FailFast(t *testing.T) {
	boom := errors.New("boom")
	runner := newFakeRunner().
		on("rev-parse", &Result{Stdout: t.TempDir() + "/missing-index\n"})
	runner.errs["diff"] = boom

	_, err := NewInspector(runner, "/repo").Snapshot(context.Background())
	var inspErr *InspectionError
	require.ErrorAs(t, err, &inspErr)
	assert.Equal(t, "diff", inspErr.Op)
	assert.ErrorIs(t, err, boom)

	adds := runner.calls("add")
	require.Len(t, adds, 1)
	assert.Equal(t, []string{"add", "-A"}, adds[0].Args)
	require.Len(t, adds[0].Env, 1)
	assert.Contains(t, adds[0].Env[0], "GIT_INDEX_FILE=")
}
