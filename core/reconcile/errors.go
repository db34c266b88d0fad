package reconcile

import (
	"errors"
	"fmt"
)

// Sentinel errors for use with errors.Is.
var (
	// ErrInvalidKeyInput is returned when a table key cannot be derived from its inputs.
	ErrInvalidKeyInput = errors.New("invalid table key input")

	// ErrSkippableFeature marks a feature that is logged and skipped without aborting the run.
	ErrSkippableFeature = errors.New("skippable feature")

	// ErrMalformedTimestamp is returned when a feature's edit timestamp is missing or unusable.
	ErrMalformedTimestamp = errors.New("malformed edit timestamp")

	// ErrTransientIO marks a failure to reach the remote source or the store.
	ErrTransientIO = errors.New("transient i/o failure")

	// ErrFatalRun marks a run that was aborted and rolled back.
	ErrFatalRun = errors.New("fatal run error")

	errDryRun = errors.New("dry run")
)

// SkippableFeatureError describes a single feature the engine refused to write.
type SkippableFeatureError struct {
	GlobalID string
	Table    string
	Reason   string
}

func (e *SkippableFeatureError) Error() string {
	switch {
	case e.GlobalID != "" && e.Table != "":
		return fmt.Sprintf("skipping feature %s for %s: %s", e.GlobalID, e.Table, e.Reason)
	case e.GlobalID != "":
		return fmt.Sprintf("skipping feature %s: %s", e.GlobalID, e.Reason)
	default:
		return fmt.Sprintf("skipping feature: %s", e.Reason)
	}
}

// Is implements errors.Is matching against ErrSkippableFeature.
func (e *SkippableFeatureError) Is(target error) bool {
	return target == ErrSkippableFeature
}

// TransientIOError wraps an error raised while talking to an external system.
type TransientIOError struct {
	Op  string
	Err error
}

func (e *TransientIOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientIOError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is matching against ErrTransientIO.
func (e *TransientIOError) Is(target error) bool {
	return target == ErrTransientIO
}

// FatalRunError is returned by Engine.Run when the unit of work was rolled back.
type FatalRunError struct {
	Phase RunState
	Err   error
}

func (e *FatalRunError) Error() string {
	return fmt.Sprintf("run failed while %s: %v", e.Phase, e.Err)
}

func (e *FatalRunError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is matching against ErrFatalRun.
func (e *FatalRunError) Is(target error) bool {
	return target == ErrFatalRun
}
