package gitcfg

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrGitNotInstalled indicates no git binary is on PATH.
	ErrGitNotInstalled = errors.New("git is not installed")

	// ErrGitOperationFailed indicates a git command returned an error.
	ErrGitOperationFailed = errors.New("git operation failed")

	// ErrNotRepository indicates the working directory is not inside a git repository.
	ErrNotRepository = errors.New("not a git repository")
)

// GitError records a failed git invocation with its arguments and stderr.
type GitError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *GitError) Error() string {
	msg := fmt.Sprintf("git %s failed", strings.Join(e.Args, " "))
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg = fmt.Sprintf("%s: %s", msg, s)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying error for use with errors.Is and errors.As.
func (e *GitError) Unwrap() error {
	return e.Err
}
