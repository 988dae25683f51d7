// Package pipeline runs one inspect, prompt, generate, validate and commit cycle.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/huimingz/autocommit-go/internal/conventional"
	"github.com/huimingz/autocommit-go/internal/git"
	"github.com/huimingz/autocommit-go/internal/llm"
	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/prompt"
	"github.com/huimingz/autocommit-go/internal/ui"
	"github.com/huimingz/autocommit-go/pkg/lang"
)

// Inspector captures the pending changes of a repository
type Inspector interface {
	Snapshot(ctx context.Context) (*git.RepositoryState, error)
}

// Generator turns a request into a commit message
type Generator interface {
	Generate(ctx context.Context, req *prompt.Request) llm.Result
}

// Committer stages and commits the changes
type Committer interface {
	Apply(ctx context.Context, msg conventional.Message, tree string) (*git.CommitResult, error)
}

// Console receives user-facing progress output
type Console interface {
	PrintStep(step int, message string) error
	PrintProgress(message string) error
	PrintInfo(message string) error
	PrintSuccess(message string) error
	PrintWarning(message string) error
	PrintError(message string) error
	PrintDetail(label, body string) error
	PrintMessage(title, message string) error
	PrintStats(stats *ui.ExecutionStats) error
}

// Failure reports the stage a run failed in
type Failure struct {
	Stage    Stage
	Err      error
	Rejected string // generated message that failed validation
}

func (f *Failure) Error() string {
	return fmt.Sprintf("%s failed: %v", f.Stage, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}

// Options configures a run
type Options struct {
	Vocabulary    conventional.Vocabulary
	Language      lang.Language
	Context       string
	ResponseField string
	Model         string // display name of the model, for progress output
	DryRun        bool
}

// Outcome describes a successful run
type Outcome struct {
	RunID    string
	Message  conventional.Message
	Commit   *git.CommitResult // nil on a dry run
	Usage    llm.Usage
	Duration time.Duration
}

// Pipeline wires the components of a run together
type Pipeline struct {
	inspector Inspector
	generator Generator
	committer Committer
	console   Console
	opts      Options
	stage     Stage
}

// New creates a Pipeline
func New(inspector Inspector, generator Generator, committer Committer, console Console, opts Options) *Pipeline {
	return &Pipeline{
		inspector: inspector,
		generator: generator,
		committer: committer,
		console:   console,
		opts:      opts,
		stage:     StageIdle,
	}
}

// Stage returns the current stage
func (p *Pipeline) Stage() Stage {
	return p.stage
}

// Run executes the pipeline once. Any failure stops the run before the commit
// step; there are no retries.
func (p *Pipeline) Run(ctx context.Context) (*Outcome, error) {
	start := time.Now()
	outcome := &Outcome{RunID: uuid.NewString()}
	log.Debug("Run %s started", outcome.RunID)

	// Step 1: snapshot the working tree
	p.enter(StageInspecting)
	_ = p.console.PrintStep(1, "Inspecting repository changes...")
	state, err := p.inspector.Snapshot(ctx)
	if err != nil {
		return nil, p.fail(err)
	}
	log.Debug("Snapshot: %d bytes of diff, tree %s", len(state.Diff), state.Tree)

	// Step 2: build the request
	p.enter(StagePrompting)
	_ = p.console.PrintStep(2, "Building prompt...")
	req, err := prompt.Build(state.Status, state.Diff, p.opts.Vocabulary,
		prompt.WithLanguage(p.language()),
		prompt.WithContext(p.opts.Context),
		prompt.WithResponseField(p.opts.ResponseField),
	)
	if err != nil {
		return nil, p.fail(err)
	}

	// Step 3: one model call
	p.enter(StageGenerating)
	_ = p.console.PrintStep(3, "Generating commit message...")
	if p.opts.Model != "" {
		_ = p.console.PrintProgress(fmt.Sprintf("Waiting for %s", p.opts.Model))
	}
	res := p.generator.Generate(ctx, req)
	outcome.Usage = res.Usage
	if !res.OK() {
		_ = p.console.PrintDetail("Model reply", res.Failure.Reply)
		return nil, p.fail(res.Failure)
	}

	// Step 4: validate before anything touches the index
	p.enter(StageValidating)
	_ = p.console.PrintStep(4, "Validating commit message...")
	msg, err := conventional.Validate(res.Message, p.opts.Vocabulary)
	if err != nil {
		_ = p.console.PrintWarning(fmt.Sprintf("Rejected message: %s", res.Message))
		failure := p.fail(err)
		failure.Rejected = res.Message
		return nil, failure
	}
	outcome.Message = msg
	_ = p.console.PrintMessage("Generated Commit Message", msg.String())

	if p.opts.DryRun {
		_ = p.console.PrintInfo("Dry run: nothing was staged or committed")
		return p.finish(outcome, start), nil
	}

	// Step 5: stage and commit
	p.enter(StageCommitting)
	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}
	_ = p.console.PrintStep(5, "Committing changes...")
	// An interrupt must not leave a half-finished commit behind
	result, err := p.committer.Apply(context.WithoutCancel(ctx), msg, state.Tree)
	if err != nil {
		return nil, p.fail(err)
	}
	outcome.Commit = result

	if result.HookExit {
		_ = p.console.PrintWarning("git commit exited non-zero (likely a hook) but the commit was recorded")
	}
	_ = p.console.PrintDetail("git output", result.Output)
	if result.Hash != "" {
		_ = p.console.PrintSuccess(fmt.Sprintf("Committed %s: %s", result.Hash, msg))
	} else {
		_ = p.console.PrintSuccess(fmt.Sprintf("Committed: %s", msg))
	}

	return p.finish(outcome, start), nil
}

func (p *Pipeline) enter(stage Stage) {
	log.Debug("Stage %s -> %s", p.stage, stage)
	p.stage = stage
}

// fail moves to StageFailed and reports err on the console. An empty
// changeset is left to the caller, which words it as a notice.
func (p *Pipeline) fail(err error) *Failure {
	failure := &Failure{Stage: p.stage, Err: err}
	p.enter(StageFailed)
	if !errors.Is(err, prompt.ErrEmptyChangeset) {
		_ = p.console.PrintError(failure.Error())
	}
	return failure
}

func (p *Pipeline) finish(outcome *Outcome, start time.Time) *Outcome {
	p.enter(StageDone)
	end := time.Now()
	outcome.Duration = end.Sub(start)

	_ = p.console.PrintStats(&ui.ExecutionStats{
		StartTime:        start,
		EndTime:          end,
		PromptTokens:     outcome.Usage.PromptTokens,
		CompletionTokens: outcome.Usage.CompletionTokens,
		TotalTokens:      outcome.Usage.TotalTokens,
	})
	log.DebugDuration(fmt.Sprintf("Run %s", outcome.RunID), outcome.Duration)
	return outcome
}

func (p *Pipeline) language() lang.Language {
	if p.opts.Language == "" {
		return lang.DefaultLanguage()
	}
	return p.opts.Language
}
