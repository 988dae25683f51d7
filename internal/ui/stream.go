package ui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
)

// ExecutionStats holds statistics about one run
type ExecutionStats struct {
	StartTime        time.Time
	EndTime          time.Time
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Duration returns the execution duration
func (s *ExecutionStats) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// StreamPrinterOption is a functional option for StreamPrinter
type StreamPrinterOption func(*StreamPrinter)

// WithColor enables or disables color output
func WithColor(enabled bool) StreamPrinterOption {
	return func(p *StreamPrinter) {
		p.colorEnabled = enabled
	}
}

// WithVerbose enables or disables verbose mode
func WithVerbose(verbose bool) StreamPrinterOption {
	return func(p *StreamPrinter) {
		p.verbose = verbose
	}
}

// StreamPrinter prints run progress to the terminal
type StreamPrinter struct {
	writer       io.Writer
	colorEnabled bool
	verbose      bool
}

// NewStreamPrinter creates a new StreamPrinter
func NewStreamPrinter(writer io.Writer, opts ...StreamPrinterOption) *StreamPrinter {
	p := &StreamPrinter{
		writer:       writer,
		colorEnabled: true,
		verbose:      false,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

func (p *StreamPrinter) printf(attrs []color.Attribute, format string, args ...interface{}) error {
	if p.colorEnabled {
		_, err := color.New(attrs...).Fprintf(p.writer, format, args...)
		return err
	}
	_, err := fmt.Fprintf(p.writer, format, args...)
	return err
}

// PrintStep prints a step in the process
func (p *StreamPrinter) PrintStep(step int, message string) error {
	return p.printf([]color.Attribute{color.FgBlue}, "📋 Step %d: %s\n", step, message)
}

// PrintProgress prints a progress message
func (p *StreamPrinter) PrintProgress(message string) error {
	return p.printf([]color.Attribute{color.FgYellow}, "⏳ %s\n", message)
}

// PrintInfo prints an info message
func (p *StreamPrinter) PrintInfo(message string) error {
	return p.printf([]color.Attribute{color.FgCyan}, "ℹ️  %s\n", message)
}

// PrintSuccess prints a success message
func (p *StreamPrinter) PrintSuccess(message string) error {
	return p.printf([]color.Attribute{color.FgGreen}, "✅ %s\n", message)
}

// PrintWarning prints a warning message
func (p *StreamPrinter) PrintWarning(message string) error {
	return p.printf([]color.Attribute{color.FgYellow}, "⚠️  %s\n", message)
}

// PrintError prints an error message
func (p *StreamPrinter) PrintError(message string) error {
	return p.printf([]color.Attribute{color.FgRed}, "❌ Error: %s\n", message)
}

// PrintDetail prints indented diagnostic output, only in verbose mode
func (p *StreamPrinter) PrintDetail(label, body string) error {
	if !p.verbose || strings.TrimSpace(body) == "" {
		return nil
	}
	if err := p.printf([]color.Attribute{color.FgHiBlack}, "   %s:\n", label); err != nil {
		return err
	}
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		if err := p.printf([]color.Attribute{color.FgHiBlack}, "   │ %s\n", line); err != nil {
			return err
		}
	}
	return nil
}

// PrintMessage displays a commit message between rules
func (p *StreamPrinter) PrintMessage(title, message string) error {
	const rule = "─────────────────────────────"

	if err := p.printf([]color.Attribute{color.Bold}, "\n📝 %s:\n", title); err != nil {
		return err
	}
	if err := p.printf([]color.Attribute{color.FgCyan}, "%s\n", rule); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(p.writer, message); err != nil {
		return err
	}
	return p.printf([]color.Attribute{color.FgCyan}, "%s\n", rule)
}

// PrintStats prints execution statistics
func (p *StreamPrinter) PrintStats(stats *ExecutionStats) error {
	if stats == nil {
		return nil
	}

	durationStr := formatDuration(stats.Duration())
	if stats.TotalTokens == 0 {
		return p.printf([]color.Attribute{color.FgHiBlack}, "\n📊 Stats: Time: %s\n", durationStr)
	}
	return p.printf([]color.Attribute{color.FgHiBlack}, "\n📊 Stats: %d tokens (prompt: %d, completion: %d) | Time: %s\n",
		stats.TotalTokens, stats.PromptTokens, stats.CompletionTokens, durationStr)
}

// formatDuration formats a duration in a human-readable format
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2fs", d.Seconds())
}
