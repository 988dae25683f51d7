package git

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/huimingz/autocommit-go/internal/log"
)

// RepositoryState is the working-tree state captured for one run
type RepositoryState struct {
	Status string
	Diff   string // staged diff of all pending changes
	Tree   string // tree id the diff was computed against
}

// InspectorOption configures an Inspector
type InspectorOption func(*Inspector)

// WithTimeout bounds each inspection call
func WithTimeout(d time.Duration) InspectorOption {
	return func(i *Inspector) {
		i.timeout = d
	}
}

// Inspector reads repository state without touching the real index.
//
// Staged diffs are computed against a scratch copy of the index with every
// pending change added to it (GIT_INDEX_FILE), so the diff shows exactly what
// "git add -A" followed by a commit would record.
type Inspector struct {
	runner  Runner
	dir     string
	timeout time.Duration
}

// NewInspector creates an Inspector for the repository at dir
func NewInspector(runner Runner, dir string, opts ...InspectorOption) *Inspector {
	i := &Inspector{runner: runner, dir: dir}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Status returns the output of git status
func (i *Inspector) Status(ctx context.Context) (string, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	return i.collect("status", Async(ctx, i.runner, i.command("status")))
}

// Diff returns the pending changes. When staged is false it is the plain
// working-tree diff; when staged is true every change, untracked files
// included, is staged into a scratch index first and the cached diff of that
// index is returned.
func (i *Inspector) Diff(ctx context.Context, staged bool) (string, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	if !staged {
		return i.run(ctx, "diff", i.command("diff", "--no-color"))
	}

	index, cleanup, err := i.previewIndex(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	return i.run(ctx, "diff", i.previewCommand(index, "diff", "--cached", "--no-color"))
}

// Snapshot stages everything into a scratch index, then fetches status,
// staged diff and tree id concurrently. The first failure cancels the rest.
func (i *Inspector) Snapshot(ctx context.Context) (*RepositoryState, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	index, cleanup, err := i.previewIndex(ctx)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	g, gctx := errgroup.WithContext(ctx)
	statusTask := Async(gctx, i.runner, i.command("status"))
	diffTask := Async(gctx, i.runner, i.previewCommand(index, "diff", "--cached", "--no-color"))
	treeTask := Async(gctx, i.runner, i.previewCommand(index, "write-tree"))

	state := &RepositoryState{}
	g.Go(func() (err error) {
		state.Status, err = i.collect("status", statusTask)
		return err
	})
	g.Go(func() (err error) {
		state.Diff, err = i.collect("diff", diffTask)
		return err
	})
	g.Go(func() (err error) {
		state.Tree, err = i.collect("write-tree", treeTask)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.DebugDuration("Repository snapshot", time.Since(start))
	return state, nil
}

// previewIndex copies the real index into a temporary directory and stages
// all pending changes into the copy. cleanup removes the copy.
func (i *Inspector) previewIndex(ctx context.Context) (string, func(), error) {
	realIndex, err := i.run(ctx, "rev-parse", i.command("rev-parse", "--git-path", "index"))
	if err != nil {
		return "", nil, err
	}
	if !filepath.IsAbs(realIndex) {
		realIndex = filepath.Join(i.dir, realIndex)
	}

	tmpDir, err := os.MkdirTemp("", "autocommit-index-")
	if err != nil {
		return "", nil, &InspectionError{Op: "add", Err: fmt.Errorf("failed to create scratch index: %w", err)}
	}
	cleanup := func() { _ = os.RemoveAll(tmpDir) }

	index := filepath.Join(tmpDir, "index")
	data, err := os.ReadFile(realIndex)
	switch {
	case err == nil:
		if err := os.WriteFile(index, data, 0o600); err != nil {
			cleanup()
			return "", nil, &InspectionError{Op: "add", Err: fmt.Errorf("failed to copy index: %w", err)}
		}
	case os.IsNotExist(err):
		// fresh repository, git creates the scratch index on add
	default:
		cleanup()
		return "", nil, &InspectionError{Op: "add", Err: fmt.Errorf("failed to read index: %w", err)}
	}

	if _, err := i.run(ctx, "add", i.previewCommand(index, "add", "-A")); err != nil {
		cleanup()
		return "", nil, err
	}
	return index, cleanup, nil
}

func (i *Inspector) command(args ...string) Command {
	return Command{Dir: i.dir, Args: args}
}

func (i *Inspector) previewCommand(index string, args ...string) Command {
	return Command{Dir: i.dir, Args: args, Env: []string{"GIT_INDEX_FILE=" + index}}
}

func (i *Inspector) run(ctx context.Context, op string, cmd Command) (string, error) {
	res, err := i.runner.Run(ctx, cmd)
	if err != nil {
		return "", &InspectionError{Op: op, Err: err}
	}
	return readOutput(op, res)
}

func (i *Inspector) collect(op string, task *Task) (string, error) {
	res, err := task.Wait()
	if err != nil {
		return "", &InspectionError{Op: op, Err: err}
	}
	return readOutput(op, res)
}

// readOutput accepts a non-zero status only when it still produced usable output
func readOutput(op string, res *Result) (string, error) {
	out := strings.TrimSpace(res.Stdout)
	if res.ExitCode == 0 {
		return out, nil
	}
	if op == "status" && out != "" {
		log.Warn("git status exited with %d, using its partial output", res.ExitCode)
		return out, nil
	}
	return "", &InspectionError{
		Op:     op,
		Output: strings.TrimSpace(res.Stderr),
		Err:    fmt.Errorf("exit status %d", res.ExitCode),
	}
}

func (i *Inspector) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.timeout)
}
