package git

import "fmt"

// InspectionError is returned when repository state could not be read
type InspectionError struct {
	Op     string // status, diff, ...
	Output string
	Err    error
}

func (e *InspectionError) Error() string {
	msg := fmt.Sprintf("git %s failed", e.Op)
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *InspectionError) Unwrap() error {
	return e.Err
}

// CommitError is a genuine commit failure.
// A hook-induced non-zero exit after a successful commit is not a CommitError.
type CommitError struct {
	Stage    string // stage, verify or commit
	ExitCode int
	Output   string
	Err      error
}

func (e *CommitError) Error() string {
	msg := fmt.Sprintf("commit failed during %s", e.Stage)
	if e.ExitCode != 0 {
		msg = fmt.Sprintf("%s (exit %d)", msg, e.ExitCode)
	}
	if e.Output != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Output)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *CommitError) Unwrap() error {
	return e.Err
}
