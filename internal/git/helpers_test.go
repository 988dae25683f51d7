package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// setupTestRepo creates a temporary git repository for testing
func setupTestRepo(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	runGit(t, tmpDir, "init")
	runGit(t, tmpDir, "config", "user.email", "test@example.com")
	runGit(t, tmpDir, "config", "user.name", "Test User")
	runGit(t, tmpDir, "config", "commit.gpgsign", "false")

	return tmpDir
}

// setupRepoWithCommit creates a repository with one committed file
func setupRepoWithCommit(t *testing.T) string {
	t.Helper()

	repoDir := setupTestRepo(t)
	writeFile(t, repoDir, "README.md", "# test\n")
	runGit(t, repoDir, "add", "README.md")
	runGit(t, repoDir, "commit", "-m", "chore(repo): initial commit")
	return repoDir
}

func writeFile(t *testing.T, repoDir, name, content string) {
	t.Helper()

	path := filepath.Join(repoDir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

// runGit runs git in repoDir and returns trimmed stdout
func runGit(t *testing.T, repoDir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = repoDir
	out, err := cmd.Output()
	require.NoError(t, err, "git %s", strings.Join(args, " "))
	return strings.TrimSpace(string(out))
}

// fakeRunner returns scripted results keyed by the first git argument
type fakeRunner struct {
	mu       sync.Mutex
	results  map[string]*Result
	errs     map[string]error
	commands []Command
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: map[string]*Result{}, errs: map[string]error{}}
}

func (f *fakeRunner) on(subcommand string, res *Result) *fakeRunner {
	f.results[subcommand] = res
	return f
}

func (f *fakeRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.commands = append(f.commands, cmd)
	if err := f.errs[cmd.Args[0]]; err != nil {
		return nil, err
	}
	if res, ok := f.results[cmd.Args[0]]; ok {
		return res, nil
	}
	return &Result{}, nil
}

func (f *fakeRunner) calls(subcommand string) []Command {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []Command
	for _, c := range f.commands {
		if c.Args[0] == subcommand {
			out = append(out, c)
		}
	}
	return out
}
