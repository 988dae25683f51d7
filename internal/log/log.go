package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
)

var (
	debugMode           = false
	output    io.Writer = os.Stderr
)

// SetDebugMode enables or disables debug mode (SHOW_LOGS)
func SetDebugMode(enabled bool) {
	debugMode = enabled
}

// IsDebugMode returns whether debug mode is enabled
func IsDebugMode() bool {
	return debugMode
}

// SetOutput sets the output writer for log messages
func SetOutput(w io.Writer) {
	output = w
}

// Debug prints debug messages (only in debug mode)
func Debug(format string, args ...interface{}) {
	if debugMode {
		gray := color.New(color.FgHiBlack)
		gray.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// DebugConfig prints configuration details in debug mode.
// Callers are expected to pass an already redacted value.
func DebugConfig(label string, config interface{}) {
	if debugMode {
		gray := color.New(color.FgHiBlack)
		data, err := json.MarshalIndent(config, "", "  ")
		if err != nil {
			gray.Fprintf(output, "[DEBUG] %s: (failed to serialize: %v)\n", label, err)
			return
		}
		gray.Fprintf(output, "[DEBUG] %s:\n%s\n", label, string(data))
	}
}

// DebugBlock prints a labelled multi-line block, truncated to limit bytes
func DebugBlock(label, body string, limit int) {
	if debugMode {
		cyan := color.New(color.FgCyan)
		cyan.Fprintf(output, "[DEBUG] %s:\n", label)
		fmt.Fprintf(output, "%s\n", truncate(body, limit))
	}
}

// DebugCommand logs an external command and its exit code in debug mode
func DebugCommand(dir string, args []string, exitCode int, duration time.Duration) {
	if debugMode {
		yellow := color.New(color.FgYellow)
		yellow.Fprintf(output, "[DEBUG] git %v (dir=%s) exit=%d in %v\n", args, dir, exitCode, duration)
	}
}

// DebugTokenUsage logs token usage in debug mode
func DebugTokenUsage(promptTokens, completionTokens, totalTokens int) {
	if debugMode {
		magenta := color.New(color.FgMagenta)
		magenta.Fprintf(output, "[DEBUG] Token Usage: prompt=%d, completion=%d, total=%d\n",
			promptTokens, completionTokens, totalTokens)
	}
}

// DebugDuration logs execution duration in debug mode
func DebugDuration(operation string, duration time.Duration) {
	if debugMode {
		blue := color.New(color.FgBlue)
		blue.Fprintf(output, "[DEBUG] %s took %v\n", operation, duration)
	}
}

// Error prints error messages
func Error(format string, args ...interface{}) {
	red := color.New(color.FgRed)
	red.Fprintf(output, "Error: "+format+"\n", args...)
}

// Warn prints warning messages
func Warn(format string, args ...interface{}) {
	yellow := color.New(color.FgYellow)
	yellow.Fprintf(output, "Warning: "+format+"\n", args...)
}

// truncate truncates a string to the specified length
func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
