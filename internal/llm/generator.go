package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/huimingz/autocommit-go/internal/log"
	"github.com/huimingz/autocommit-go/internal/prompt"
)

// Reason classifies a failed generation
type Reason string

const (
	ReasonService      Reason = "network/service error"
	ReasonMalformed    Reason = "malformed reply"
	ReasonMissingField Reason = "missing field"
)

// GenerationError describes why no commit message was obtained
type GenerationError struct {
	Reason Reason
	Reply  string // raw model reply, when there was one
	Err    error
}

func (e *GenerationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("generation failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("generation failed: %s", e.Reason)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Usage is the token usage reported by the service
type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Result is the outcome of one generation: either Message or Failure is set
type Result struct {
	Message string
	Usage   Usage
	Failure *GenerationError
}

// OK reports whether a message was obtained
func (r Result) OK() bool {
	return r.Failure == nil
}

// Err returns the failure as an error, or nil
func (r Result) Err() error {
	if r.Failure == nil {
		return nil
	}
	return r.Failure
}

var (
	thinkBlock = regexp.MustCompile(`(?s)^<think>.*?</think>`)
	codeFence  = regexp.MustCompile("(?s)^```[A-Za-z0-9_-]*[ \t]*\n?(.*?)\n?```$")
)

// GeneratorOption configures a Generator
type GeneratorOption func(*Generator)

// WithTimeout bounds the model call
func WithTimeout(d time.Duration) GeneratorOption {
	return func(g *Generator) {
		g.timeout = d
	}
}

// Generator obtains a commit message from a chat model with exactly one call
type Generator struct {
	model   ChatModel
	timeout time.Duration
}

// NewGenerator creates a Generator for model
func NewGenerator(model ChatModel, opts ...GeneratorOption) *Generator {
	g := &Generator{model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate sends req and extracts the message from the JSON reply.
// Every failure is reported in the Result; Generate never retries.
func (g *Generator) Generate(ctx context.Context, req *prompt.Request) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Failure: &GenerationError{Reason: ReasonService, Err: fmt.Errorf("panic in chat model: %v", r)}}
		}
	}()

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	field := req.ResponseField
	if field == "" {
		field = prompt.DefaultResponseField
	}

	messages := []*schema.Message{
		{Role: schema.System, Content: req.Instructions},
		{Role: schema.User, Content: req.UserContent()},
	}
	log.DebugBlock("System prompt", req.Instructions, 0)
	log.DebugBlock("User prompt", req.UserContent(), 4000)

	start := time.Now()
	reply, err := g.model.Generate(ctx, messages)
	log.DebugDuration("Model call", time.Since(start))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, ctxErr) {
			err = fmt.Errorf("%w: %v", ctxErr, err)
		}
		return Result{Failure: &GenerationError{Reason: ReasonService, Err: err}}
	}
	if reply == nil {
		return Result{Failure: &GenerationError{Reason: ReasonService, Err: errors.New("empty response from service")}}
	}

	res.Usage = usageOf(reply)
	log.DebugTokenUsage(res.Usage.PromptTokens, res.Usage.CompletionTokens, res.Usage.TotalTokens)
	log.DebugBlock("Model reply", reply.Content, 0)

	message, failure := ParseReply(reply.Content, field)
	if failure != nil {
		res.Failure = failure
		return res
	}
	res.Message = message
	return res
}

// ParseReply extracts the string property field from a JSON object reply.
// A leading reasoning block and one surrounding markdown code fence are ignored.
func ParseReply(reply, field string) (string, *GenerationError) {
	text := strings.TrimSpace(reply)
	text = strings.TrimSpace(thinkBlock.ReplaceAllString(text, ""))
	if m := codeFence.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}

	var decoded any
	if err := json.Unmarshal([]byte(text), &decoded); err != nil {
		return "", &GenerationError{Reason: ReasonMalformed, Reply: reply, Err: err}
	}
	object, ok := decoded.(map[string]any)
	if !ok {
		return "", &GenerationError{Reason: ReasonMalformed, Reply: reply, Err: errors.New("reply is not a JSON object")}
	}

	value, ok := object[field]
	if !ok || value == nil {
		return "", &GenerationError{Reason: ReasonMissingField, Reply: reply, Err: fmt.Errorf("reply has no %q property", field)}
	}
	message, ok := value.(string)
	if !ok {
		return "", &GenerationError{Reason: ReasonMalformed, Reply: reply, Err: fmt.Errorf("%q is a %T, not a string", field, value)}
	}
	if message = strings.TrimSpace(message); message == "" {
		return "", &GenerationError{Reason: ReasonMissingField, Reply: reply, Err: fmt.Errorf("%q is empty", field)}
	}
	return message, nil
}

func usageOf(msg *schema.Message) Usage {
	if msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return Usage{}
	}
	u := msg.ResponseMeta.Usage
	return Usage{
		PromptTokens:     u.PromptTokens,
		CompletionTokens: u.CompletionTokens,
		TotalTokens:      u.TotalTokens,
	}
}
