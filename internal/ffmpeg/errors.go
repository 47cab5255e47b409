package ffmpeg

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNoVideoStream is returned when ffprobe finds no video stream
var ErrNoVideoStream = errors.New("no video stream found")

// CommandError describes a failed ffmpeg/ffprobe invocation
type CommandError struct {
	Args        []string // full argv, binary first
	Diagnostics string   // tail of the tool's stderr
	Err         error
}

func (e *CommandError) Error() string {
	tool := "command"
	if len(e.Args) > 0 {
		tool = filepath.Base(e.Args[0])
	}
	return fmt.Sprintf("%s failed: %v", tool, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// Command returns the invocation as a copy-pasteable shell line
func (e *CommandError) Command() string {
	quoted := make([]string, len(e.Args))
	for i, a := range e.Args {
		quoted[i] = shellQuote(a)
	}
	return strings.Join(quoted, " ")
}

// ExitCode returns the process exit code, or -1 if it did not exit normally
func (e *CommandError) ExitCode() int {
	var exitErr *exec.ExitError
	if errors.As(e.Err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}

func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	if !strings.ContainsAny(s, " \t\n'\"\\$`;|&<>()[]*?!#~=,") {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
