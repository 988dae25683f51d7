// Package prompt builds the model request for one commit message.
package prompt

import (
	"bytes"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/template"

	"github.com/huimingz/autocommit-go/internal/conventional"
	"github.com/huimingz/autocommit-go/pkg/lang"
)

// DefaultResponseField is the JSON property the model is asked to fill
const DefaultResponseField = "commit_message"

// ErrEmptyChangeset is returned when there is nothing to describe
var ErrEmptyChangeset = errors.New("no changes to commit")

var systemTemplate = template.Must(template.New("system_prompt").Funcs(template.FuncMap{
	"join":     strings.Join,
	"typeHint": func(t string) string { return typeHints[t] },
}).Parse(SystemPrompt))

// Request is everything the generator sends for one commit
type Request struct {
	Instructions  string
	AllowedTypes  []string
	AllowedScopes []string
	Status        string
	Diff          string
	ResponseField string
}

// UserContent renders the user turn: status overview first, then the diff
func (r Request) UserContent() string {
	var b strings.Builder
	b.WriteString("Please analyze the following changes and generate a commit message.\n\n")

	b.WriteString("## Git Status Overview\n")
	b.WriteString("```\n")
	b.WriteString(r.Status)
	b.WriteString("\n```\n\n")

	b.WriteString("## Staged Changes (Diff)\n")
	b.WriteString("```diff\n")
	b.WriteString(r.Diff)
	b.WriteString("\n```\n")

	return b.String()
}

type options struct {
	language      lang.Language
	context       string
	responseField string
}

// Option configures Build
type Option func(*options)

// WithLanguage sets the language of the description
func WithLanguage(l lang.Language) Option {
	return func(o *options) {
		o.language = l
	}
}

// WithContext adds a free-form hint from the developer
func WithContext(context string) Option {
	return func(o *options) {
		o.context = strings.TrimSpace(context)
	}
}

// WithResponseField sets the JSON property the reply must carry
func WithResponseField(field string) Option {
	return func(o *options) {
		if field != "" {
			o.responseField = field
		}
	}
}

// Build creates the generation request for status and diff.
// The same inputs always produce the same instructions.
func Build(status, diff string, vocab conventional.Vocabulary, opts ...Option) (*Request, error) {
	if strings.TrimSpace(diff) == "" {
		return nil, ErrEmptyChangeset
	}

	o := options{
		language:      lang.DefaultLanguage(),
		responseField: DefaultResponseField,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if len(vocab.Types) == 0 {
		vocab = conventional.NewVocabulary(nil, vocab.Scopes)
	}

	data := struct {
		Types         []string
		Scopes        []string
		MaxLength     int
		Language      string
		Context       string
		ResponseField string
	}{
		Types:         vocab.Types,
		Scopes:        vocab.Scopes,
		MaxLength:     conventional.MaxLength,
		Language:      o.language.DisplayName(),
		Context:       o.context,
		ResponseField: o.responseField,
	}

	var buf bytes.Buffer
	if err := systemTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render instructions: %w", err)
	}

	return &Request{
		Instructions:  buf.String(),
		AllowedTypes:  slices.Clone(vocab.Types),
		AllowedScopes: slices.Clone(vocab.Scopes),
		Status:        status,
		Diff:          diff,
		ResponseField: o.responseField,
	}, nil
}
