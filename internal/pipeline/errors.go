package pipeline

import (
	"errors"
	"fmt"

	"github.com/keagan/lightningtrim/internal/ffmpeg"
)

// Kind classifies run failures
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindUpstreamTool
	KindRender
	KindCancelled
)

func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration error"
	case KindUpstreamTool:
		return "upstream tool error"
	case KindRender:
		return "render failure"
	case KindCancelled:
		return "cancelled"
	default:
		return "unknown error"
	}
}

// Stage names the part of the run that failed
type Stage string

const (
	StageConfig   Stage = "config"
	StageProbe    Stage = "probe"
	StageAnalysis Stage = "analysis"
	StageGrouping Stage = "grouping"
	StageRender   Stage = "render"
)

// Error is returned by every failed run
type Error struct {
	Kind  Kind
	Stage Stage
	Err   error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s (%s): %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Command returns the failed external command and its diagnostic output,
// if the failure came from one
func (e *Error) Command() (command, diagnostics string, ok bool) {
	var cmdErr *ffmpeg.CommandError
	if errors.As(e.Err, &cmdErr) {
		return cmdErr.Command(), cmdErr.Diagnostics, true
	}
	return "", "", false
}

// KindOf returns the Kind of err, or 0 if err is not a pipeline error
func KindOf(err error) Kind {
	var perr *Error
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return 0
}

// toolError classifies a failed external call as cancellation or failure
func toolError(stage Stage, failure Kind, err error) *Error {
	if ffmpeg.IsCancelled(err) {
		return &Error{Kind: KindCancelled, Stage: stage, Err: err}
	}
	return &Error{Kind: failure, Stage: stage, Err: err}
}
