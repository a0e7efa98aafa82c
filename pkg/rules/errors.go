package rules

import (
	"fmt"
	"strings"
)

// InvalidSuffixError indicates that a resolved source file does not end in
// the rule's declared suffix. This is a configuration problem, planning
// aborts before anything is executed.
type InvalidSuffixError struct {
	Input  string
	Suffix string
}

func (e *InvalidSuffixError) Error() string {
	return fmt.Sprintf("source %s does not end in %s", e.Input, e.Suffix)
}

// ProcessError reports one failed regeneration. Err is only set when the
// process could not be started at all.
type ProcessError struct {
	Pair     BuildPair
	ExitCode int
	Stderr   []byte
	Err      error
}

func (e *ProcessError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("failed to build %s: %v", e.Pair.Output, e.Err)
	}

	return fmt.Sprintf("failed to build %s: compiler exited with code %d", e.Pair.Output, e.ExitCode)
}

func (e *ProcessError) Unwrap() error {
	return e.Err
}

// BuildError aggregates the per-pair failures of a keep-going run.
type BuildError struct {
	Failures []*ProcessError
}

func (e *BuildError) Error() string {
	outputs := make([]string, len(e.Failures))
	for idx, failure := range e.Failures {
		outputs[idx] = failure.Pair.Output
	}

	return fmt.Sprintf("%d targets failed: %s", len(e.Failures), strings.Join(outputs, ", "))
}

// ExitCode returns the first recorded failure's exit code so the CLI can
// propagate it. Start failures have no code and map to 1.
func (e *BuildError) ExitCode() int {
	for _, failure := range e.Failures {
		if failure.ExitCode > 0 {
			return failure.ExitCode
		}
	}

	return 1
}

// DeleteError reports one output that clean could not remove. Paths that are
// already absent never produce one.
type DeleteError struct {
	Path string
	Err  error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("failed to delete %s: %v", e.Path, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// CleanError aggregates deletion failures; clean never aborts early, so all
// of them are collected.
type CleanError struct {
	Failures []*DeleteError
}

func (e *CleanError) Error() string {
	paths := make([]string, len(e.Failures))
	for idx, failure := range e.Failures {
		paths[idx] = failure.Path
	}

	return fmt.Sprintf("failed to delete %d files: %s", len(e.Failures), strings.Join(paths, ", "))
}
