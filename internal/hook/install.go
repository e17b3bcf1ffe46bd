// Package hook installs gitid as a global git hook and dispatches hook
// invocations back into gitid.
package hook

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
)

// PreCommit is the git hook gitid answers.
const PreCommit = "pre-commit"

// shimMarker identifies shims written by gitid so Uninstall never deletes a
// hook someone else put there.
const shimMarker = "# Installed by gitid."

// ErrForeignHook indicates a hook file exists that gitid did not write.
var ErrForeignHook = errors.New("hook was not installed by gitid")

// Policy describes where gitid hooks live and how far they reach. Hooks are
// installed through core.hooksPath at global scope, so they run for every
// repository of the OS user.
type Policy struct {
	Scope    gitcfg.Scope
	HooksDir string
	// Binary is the gitid executable the shim re-enters.
	Binary string
}

// NewPolicy creates the account-wide policy for hooksDir.
func NewPolicy(hooksDir, binary string) Policy {
	return Policy{Scope: gitcfg.ScopeGlobal, HooksDir: hooksDir, Binary: binary}
}

// ShimPath returns where the shim for the named hook is written.
func (p Policy) ShimPath(name string) string {
	return filepath.Join(p.HooksDir, name)
}

// Shim returns the script git executes for the named hook.
func (p Policy) Shim(name string) string {
	return fmt.Sprintf("#!/bin/sh\n%s\nexec %s hook %s \"$@\"\n", shimMarker, shellQuote(p.Binary), name)
}

// InstallResult reports what Install changed.
type InstallResult struct {
	ShimPath string
	// PreviousHooksPath is the core.hooksPath value that was replaced, if any.
	PreviousHooksPath string
}

// Install writes the pre-commit shim and points core.hooksPath at the
// policy's hooks directory.
func Install(ctx context.Context, git *gitcfg.Git, p Policy) (*InstallResult, error) {
	if p.Binary == "" {
		return nil, fmt.Errorf("installing hook: gitid binary path is empty")
	}
	if err := os.MkdirAll(p.HooksDir, 0755); err != nil {
		return nil, fmt.Errorf("creating hooks directory: %w", err)
	}

	shim := p.ShimPath(PreCommit)
	if err := checkOwned(shim); err != nil {
		return nil, err
	}
	if err := os.WriteFile(shim, []byte(p.Shim(PreCommit)), 0755); err != nil { //nolint:gosec // G306: hooks must be executable
		return nil, fmt.Errorf("writing hook: %w", err)
	}
	// WriteFile leaves the mode of an existing file alone, and umask can
	// strip bits from a new one.
	if err := os.Chmod(shim, 0755); err != nil { //nolint:gosec // G302: hooks must be executable
		return nil, fmt.Errorf("making hook executable: %w", err)
	}

	previous, err := git.Get(ctx, p.Scope, gitcfg.KeyHooksPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", gitcfg.KeyHooksPath, err)
	}
	if err := git.Set(ctx, p.Scope, gitcfg.KeyHooksPath, p.HooksDir); err != nil {
		return nil, fmt.Errorf("setting %s: %w", gitcfg.KeyHooksPath, err)
	}

	result := &InstallResult{ShimPath: shim}
	if previous != "" && filepath.Clean(previous) != filepath.Clean(p.HooksDir) {
		result.PreviousHooksPath = previous
	}
	return result, nil
}

// Uninstall removes the shim and clears core.hooksPath if it still points
// at the policy's hooks directory.
func Uninstall(ctx context.Context, git *gitcfg.Git, p Policy) error {
	shim := p.ShimPath(PreCommit)
	if err := checkOwned(shim); err != nil {
		return err
	}
	if err := os.Remove(shim); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing hook: %w", err)
	}

	current, err := git.Get(ctx, p.Scope, gitcfg.KeyHooksPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", gitcfg.KeyHooksPath, err)
	}
	if current != "" && filepath.Clean(current) == filepath.Clean(p.HooksDir) {
		if err := git.Unset(ctx, p.Scope, gitcfg.KeyHooksPath); err != nil {
			return fmt.Errorf("clearing %s: %w", gitcfg.KeyHooksPath, err)
		}
	}
	return nil
}

// Status is the installation state of the global hook.
type Status struct {
	HooksPath     string
	HooksPathOK   bool
	ShimInstalled bool
	ShimExec      bool
}

// Check inspects core.hooksPath and the shim without changing anything.
func Check(ctx context.Context, git *gitcfg.Git, p Policy) (Status, error) {
	var st Status

	current, err := git.Get(ctx, p.Scope, gitcfg.KeyHooksPath)
	if err != nil {
		return st, fmt.Errorf("reading %s: %w", gitcfg.KeyHooksPath, err)
	}
	st.HooksPath = current
	st.HooksPathOK = current != "" && filepath.Clean(current) == filepath.Clean(p.HooksDir)

	info, err := os.Stat(p.ShimPath(PreCommit))
	if err == nil {
		st.ShimInstalled = isGitidShim(p.ShimPath(PreCommit))
		st.ShimExec = info.Mode()&0111 != 0
	}
	return st, nil
}

func checkOwned(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if !isGitidShim(path) {
		return fmt.Errorf("%w: %s", ErrForeignHook, path)
	}
	return nil
}

func isGitidShim(path string) bool {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path inside the hooks dir
	if err != nil {
		return false
	}
	return strings.Contains(string(data), shimMarker)
}

// shellQuote wraps s in single quotes for /bin/sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
