package git

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/huimingz/autocommit-go/internal/conventional"
	"github.com/huimingz/autocommit-go/internal/log"
)

// commitSummary matches the "N file(s) changed" line git prints after a commit
var commitSummary = regexp.MustCompile(`\b\d+ files? changed\b`)

// commitEnv pins git's messages to English so commitSummary can match them
var commitEnv = []string{"LC_ALL=C"}

// CommitResult describes a created commit
type CommitResult struct {
	Hash     string
	Output   string
	HookExit bool // git exited non-zero (usually a hook) but the commit was recorded
}

// Applier stages all changes and commits them
type Applier struct {
	runner Runner
	dir    string
}

// NewApplier creates an Applier for the repository at dir
func NewApplier(runner Runner, dir string) *Applier {
	return &Applier{runner: runner, dir: dir}
}

// Apply stages every pending change and commits it with msg.
//
// When tree is not empty the staged tree must match it, which guarantees the
// commit records exactly the changes the message was generated from. Staged
// changes are left in place if anything after staging fails.
func (a *Applier) Apply(ctx context.Context, msg conventional.Message, tree string) (*CommitResult, error) {
	if msg.IsZero() {
		return nil, &CommitError{Stage: "commit", Err: fmt.Errorf("commit message is required")}
	}

	res, err := a.runner.Run(ctx, a.command("add", "-A"))
	if err != nil {
		return nil, &CommitError{Stage: "stage", Err: err}
	}
	if res.ExitCode != 0 {
		return nil, &CommitError{Stage: "stage", ExitCode: res.ExitCode, Output: res.Output()}
	}

	if tree != "" {
		if err := a.verifyTree(ctx, tree); err != nil {
			return nil, err
		}
	}

	// the message is a single argv element, never parsed by a shell
	commit := a.command("commit", "-m", msg.String())
	commit.Env = commitEnv
	res, err = a.runner.Run(ctx, commit)
	if err != nil {
		return nil, &CommitError{Stage: "commit", Err: err}
	}

	result := &CommitResult{Output: res.Output()}
	if res.ExitCode != 0 {
		if !commitSummary.MatchString(result.Output) {
			return nil, &CommitError{Stage: "commit", ExitCode: res.ExitCode, Output: result.Output}
		}
		log.Warn("git commit exited with %d but reported a commit summary, treating it as committed", res.ExitCode)
		result.HookExit = true
	}

	if res, err := a.runner.Run(ctx, a.command("rev-parse", "--short", "HEAD")); err == nil && res.ExitCode == 0 {
		result.Hash = strings.TrimSpace(res.Stdout)
	} else {
		log.Debug("could not resolve HEAD after commit: %v", err)
	}

	return result, nil
}

func (a *Applier) verifyTree(ctx context.Context, want string) error {
	res, err := a.runner.Run(ctx, a.command("write-tree"))
	if err != nil {
		return &CommitError{Stage: "verify", Err: err}
	}
	if res.ExitCode != 0 {
		return &CommitError{Stage: "verify", ExitCode: res.ExitCode, Output: res.Output()}
	}
	if got := strings.TrimSpace(res.Stdout); got != want {
		return &CommitError{
			Stage: "verify",
			Err:   fmt.Errorf("staged tree %s does not match analyzed tree %s; the working tree changed during generation", got, want),
		}
	}
	return nil
}

func (a *Applier) command(args ...string) Command {
	return Command{Dir: a.dir, Args: args}
}
