package conventional

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Reason classifies a validation failure
type Reason string

const (
	ReasonFormatMismatch Reason = "format mismatch"
	ReasonLengthExceeded Reason = "length exceeded"
)

// ValidationError is returned when a candidate message is rejected
type ValidationError struct {
	Reason  Reason
	Message string // the rejected candidate
	Detail  string
}

func (e *ValidationError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("invalid commit message %q: %s: %s", e.Message, e.Reason, e.Detail)
	}
	return fmt.Sprintf("invalid commit message %q: %s", e.Message, e.Reason)
}

// headerPattern splits "<type>(<scope>): <description>". Single line only.
var headerPattern = regexp.MustCompile(`^([^()\s:]+)\(([^()]+)\): (.+)$`)

// Validate checks message against the grammar, the vocabulary and MaxLength.
// The format is checked before the length.
func Validate(message string, vocab Vocabulary) (Message, error) {
	m := headerPattern.FindStringSubmatch(message)
	if m == nil {
		return Message{}, mismatch(message, "expected <type>(<scope>): <description>")
	}

	typ, scope, desc := m[1], m[2], m[3]
	if !vocab.AllowsType(typ) {
		return Message{}, mismatch(message, fmt.Sprintf("type %q is not one of %s", typ, strings.Join(vocab.Types, ", ")))
	}
	if strings.TrimSpace(scope) == "" {
		return Message{}, mismatch(message, "scope is blank")
	}
	if !vocab.AllowsScope(scope) {
		return Message{}, mismatch(message, fmt.Sprintf("scope %q is not one of %s", scope, strings.Join(vocab.Scopes, ", ")))
	}
	if strings.TrimSpace(desc) == "" {
		return Message{}, mismatch(message, "description is blank")
	}

	if n := utf8.RuneCountInString(message); n > MaxLength {
		return Message{}, &ValidationError{
			Reason:  ReasonLengthExceeded,
			Message: message,
			Detail:  fmt.Sprintf("%d characters, limit is %d", n, MaxLength),
		}
	}

	return Message{Type: typ, Scope: scope, Description: desc}, nil
}

func mismatch(message, detail string) *ValidationError {
	return &ValidationError{Reason: ReasonFormatMismatch, Message: message, Detail: detail}
}
