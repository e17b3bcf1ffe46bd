package hook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/logger"
	"github.com/ksteinfeldt/gitid/internal/prompt"
	"github.com/ksteinfeldt/gitid/internal/style"
)

// Exit codes returned to git. Any non-zero code aborts the commit.
const (
	ExitAllow = 0
	ExitAbort = 1
)

// Handler runs one git hook and returns the exit code git should see.
type Handler func(ctx context.Context, args []string) (int, error)

// Table maps git hook names to their handlers.
type Table map[string]Handler

// Dispatcher routes a hook invocation to its handler and then to the
// repository's own hook of the same name.
type Dispatcher struct {
	Policy Policy
	Table  Table
	Git    *gitcfg.Git

	// ChainLocal runs <git-common-dir>/hooks/<name> after gitid's handler,
	// since core.hooksPath hides per-repository hooks.
	ChainLocal bool

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Log    *logger.Logger
}

// Dispatch runs the handler for name. Hooks without a handler pass.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, args []string) (int, error) {
	log := d.logger()
	log.Debug("hook invoked", "hook", name, "args", args)

	if h, ok := d.Table[name]; ok {
		code, err := h(ctx, args)
		if err != nil || code != ExitAllow {
			log.Info("hook stopped", "hook", name, "code", code, "err", err)
			return code, err
		}
	}

	if !d.ChainLocal {
		return ExitAllow, nil
	}
	return d.chain(ctx, name, args)
}

// chain runs the repository's own hook if it is present and executable.
func (d *Dispatcher) chain(ctx context.Context, name string, args []string) (int, error) {
	common, err := d.Git.CommonDir(ctx)
	if err != nil {
		if errors.Is(err, gitcfg.ErrNotRepository) {
			return ExitAllow, nil
		}
		return ExitAbort, err
	}

	path := filepath.Join(common, "hooks", name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() || info.Mode()&0111 == 0 {
		return ExitAllow, nil
	}
	if d.isOwnShim(path) {
		return ExitAllow, nil
	}

	d.logger().Debug("chaining repository hook", "path", path)
	cmd := exec.CommandContext(ctx, path, args...) //nolint:gosec // G204: the repository's own hook
	cmd.Dir = d.Git.Dir
	if len(d.Git.Env) > 0 {
		cmd.Env = append(os.Environ(), d.Git.Env...)
	}
	cmd.Stdin = d.Stdin
	cmd.Stdout = d.Stdout
	cmd.Stderr = d.Stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return exitErr.ExitCode(), nil
		}
		return ExitAbort, fmt.Errorf("running %s: %w", path, err)
	}
	return ExitAllow, nil
}

func (d *Dispatcher) isOwnShim(path string) bool {
	own, err := filepath.EvalSymlinks(d.Policy.ShimPath(filepath.Base(path)))
	if err != nil {
		return false
	}
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return false
	}
	return own == resolved
}

func (d *Dispatcher) logger() *logger.Logger {
	if d.Log == nil {
		d.Log = logger.Discard()
	}
	return d.Log
}

// PreCommitOptions configures the pre-commit identity prompt.
type PreCommitOptions struct {
	Store *identity.Store
	Git   *gitcfg.Git
	// UsePicker swaps the numbered menu for the cursor picker when the
	// terminal is interactive.
	UsePicker bool
	// OpenTerminal defaults to prompt.OpenTTY.
	OpenTerminal func() (*prompt.Terminal, error)
	Stderr       io.Writer
	Log          *logger.Logger
}

// NewPreCommit returns the handler that asks which identity to commit as.
// Without a controlling terminal it warns and lets the commit proceed with
// the existing configuration.
func NewPreCommit(o PreCommitOptions) Handler {
	if o.OpenTerminal == nil {
		o.OpenTerminal = prompt.OpenTTY
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Log == nil {
		o.Log = logger.Discard()
	}

	return func(ctx context.Context, _ []string) (int, error) {
		term, err := o.OpenTerminal()
		if err != nil {
			o.Log.Warn("no terminal, keeping identity", "err", err)
			_, _ = fmt.Fprintf(o.Stderr, "%s gitid: %v; keeping current identity\n", style.WarningPrefix, err)
			return ExitAllow, nil
		}
		defer func() { _ = term.Close() }()

		sel := prompt.NewSelector(term, o.Store, o.Git, o.Log)
		if o.UsePicker && term.Interactive() {
			sel.Chooser = &prompt.Picker{Term: term}
		}

		if _, err := sel.Run(ctx); err != nil {
			return ExitAbort, fmt.Errorf("choosing identity: %w", err)
		}
		return ExitAllow, nil
	}
}
