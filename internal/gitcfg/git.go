// Package gitcfg reads and writes git configuration by shelling out to the
// host's git binary.
package gitcfg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Scope selects which git configuration file a read or write targets.
type Scope string

const (
	// ScopeEffective reads the value git would use, across all files.
	ScopeEffective Scope = ""

	// ScopeLocal is the current repository's .git/config.
	ScopeLocal Scope = "local"

	// ScopeGlobal is the user's ~/.gitconfig.
	ScopeGlobal Scope = "global"
)

// Config keys used by gitid.
const (
	KeyUserName  = "user.name"
	KeyUserEmail = "user.email"
	KeyHooksPath = "core.hooksPath"
)

// git config exit statuses that are not failures.
const (
	exitKeyUnset    = 1
	exitUnsetNoSuch = 5
)

// CommandExecutor runs a prepared command and returns its standard output.
type CommandExecutor interface {
	Output(cmd *exec.Cmd) (string, error)
}

// ExecExecutor runs commands through os/exec.
type ExecExecutor struct{}

// Output runs cmd, capturing stdout. Failures come back as *GitError
// carrying stderr.
func (ExecExecutor) Output(cmd *exec.Cmd) (string, error) {
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var args []string
		if len(cmd.Args) > 1 {
			args = cmd.Args[1:]
		}
		return stdout.String(), &GitError{
			Args:   args,
			Stderr: stderr.String(),
			Err:    fmt.Errorf("%w: %w", ErrGitOperationFailed, err),
		}
	}
	return stdout.String(), nil
}

// Git runs git commands in one working directory.
type Git struct {
	// Dir is the working directory; empty means the process's cwd.
	Dir string

	// Env is appended to the process environment for every command.
	Env []string

	Exec CommandExecutor
}

// New creates a Git bound to dir.
func New(dir string) *Git {
	return &Git{Dir: dir, Exec: ExecExecutor{}}
}

// LookGit reports ErrGitNotInstalled when git cannot be found on PATH.
func LookGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("%w: %v", ErrGitNotInstalled, err)
	}
	return nil
}

func (g *Git) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	if g.Dir != "" {
		cmd.Dir = g.Dir
	}
	if len(g.Env) > 0 {
		cmd.Env = append(os.Environ(), g.Env...)
	}

	execer := g.Exec
	if execer == nil {
		execer = ExecExecutor{}
	}
	return execer.Output(cmd)
}

func configArgs(scope Scope, rest ...string) []string {
	args := []string{"config"}
	if scope != ScopeEffective {
		args = append(args, "--"+string(scope))
	}
	return append(args, rest...)
}

// Get returns the value of key at scope. An unset key is not an error: it
// yields "".
func (g *Git) Get(ctx context.Context, scope Scope, key string) (string, error) {
	out, err := g.run(ctx, configArgs(scope, "--get", key)...)
	if err != nil {
		if exitCode(err) == exitKeyUnset {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// Set writes key=value at scope.
func (g *Git) Set(ctx context.Context, scope Scope, key, value string) error {
	if scope == ScopeEffective {
		scope = ScopeLocal
	}
	_, err := g.run(ctx, configArgs(scope, key, value)...)
	return err
}

// Unset removes key at scope. Removing a key that is not set succeeds.
func (g *Git) Unset(ctx context.Context, scope Scope, key string) error {
	if scope == ScopeEffective {
		scope = ScopeLocal
	}
	_, err := g.run(ctx, configArgs(scope, "--unset", key)...)
	if err != nil && exitCode(err) == exitUnsetNoSuch {
		return nil
	}
	return err
}

// Current returns the effective user.name and user.email. Either may be empty.
func (g *Git) Current(ctx context.Context) (name, email string, err error) {
	name, err = g.Get(ctx, ScopeEffective, KeyUserName)
	if err != nil {
		return "", "", err
	}
	email, err = g.Get(ctx, ScopeEffective, KeyUserEmail)
	if err != nil {
		return "", "", err
	}
	return name, email, nil
}

// CommonDir returns the absolute path of the repository's shared git
// directory, the one holding hooks/ for every worktree.
func (g *Git) CommonDir(ctx context.Context) (string, error) {
	out, err := g.run(ctx, "rev-parse", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotRepository, err)
	}
	dir := strings.TrimSpace(out)
	if filepath.IsAbs(dir) {
		return dir, nil
	}

	base := g.Dir
	if base == "" {
		if base, err = os.Getwd(); err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
	}
	return filepath.Join(base, dir), nil
}

// exitCode extracts git's exit status from err, or -1.
func exitCode(err error) int {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return -1
}
