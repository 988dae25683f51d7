// Package conventional validates single-line Conventional Commits messages
// of the form "<type>(<scope>): <description>".
package conventional

import (
	"fmt"
	"slices"
)

// MaxLength is the maximum length of a commit message in characters
const MaxLength = 100

// DefaultTypes is the default commit type vocabulary, in display order
var DefaultTypes = []string{
	"feat",
	"fix",
	"docs",
	"style",
	"refactor",
	"perf",
	"test",
	"chore",
	"ci",
	"build",
	"revert",
}

// Vocabulary holds the permitted commit types and scopes.
// An empty Scopes list places no constraint on the scope.
type Vocabulary struct {
	Types  []string
	Scopes []string
}

// NewVocabulary creates a Vocabulary, falling back to DefaultTypes when types is empty
func NewVocabulary(types, scopes []string) Vocabulary {
	if len(types) == 0 {
		types = DefaultTypes
	}
	return Vocabulary{
		Types:  slices.Clone(types),
		Scopes: slices.Clone(scopes),
	}
}

// AllowsType reports whether t is a permitted type (case-sensitive)
func (v Vocabulary) AllowsType(t string) bool {
	return slices.Contains(v.Types, t)
}

// AllowsScope reports whether s is a permitted scope. Without a configured
// list any scope is permitted, whatever its case.
func (v Vocabulary) AllowsScope(s string) bool {
	if !v.ScopesEnforced() {
		return true
	}
	return slices.Contains(v.Scopes, s)
}

// ScopesEnforced reports whether the scope must come from the configured list
func (v Vocabulary) ScopesEnforced() bool {
	return len(v.Scopes) > 0
}

// Message is a commit message that passed Validate
type Message struct {
	Type        string
	Scope       string
	Description string
}

// String returns the commit message line
func (m Message) String() string {
	return fmt.Sprintf("%s(%s): %s", m.Type, m.Scope, m.Description)
}

// IsZero reports whether m is the zero Message
func (m Message) IsZero() bool {
	return m == Message{}
}
