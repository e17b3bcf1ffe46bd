package doctor

import (
	"fmt"
	"os"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/hook"
	"github.com/ksteinfeldt/gitid/internal/identity"
)

// GitBinaryCheck verifies git is on PATH.
type GitBinaryCheck struct {
	BaseCheck
	look func() error
}

// NewGitBinaryCheck creates a new git binary check.
func NewGitBinaryCheck() *GitBinaryCheck {
	return &GitBinaryCheck{
		BaseCheck: BaseCheck{
			CheckName:        "git",
			CheckDescription: "Verify git is installed",
		},
		look: gitcfg.LookGit,
	}
}

func (c *GitBinaryCheck) Run(*CheckContext) *CheckResult {
	if err := c.look(); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "git not found on PATH",
			Details: []string{err.Error()},
			FixHint: "Install git",
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "git is installed"}
}

// StoreCheck verifies the identity store exists and holds at least one
// identity. Fix creates an empty store; registering identities is left to
// setup.
type StoreCheck struct {
	FixableCheck
}

// NewStoreCheck creates a new store check.
func NewStoreCheck() *StoreCheck {
	return &StoreCheck{
		FixableCheck: FixableCheck{
			BaseCheck: BaseCheck{
				CheckName:        "store",
				CheckDescription: "Verify the identity store exists and is not empty",
			},
		},
	}
}

func (c *StoreCheck) Run(ctx *CheckContext) *CheckResult {
	if !ctx.Store.Exists() {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "No identity store at " + ctx.Store.Path(),
			FixHint: "Run 'gitid setup'",
		}
	}

	ids, err := ctx.Store.Load()
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Cannot read identity store",
			Details: []string{err.Error()},
		}
	}
	if len(ids) == 0 {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusWarning,
			Message: "Identity store is empty",
			FixHint: "Run 'gitid add' or 'gitid setup'",
		}
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusOK,
		Message: fmt.Sprintf("%d identities in %s", len(ids), ctx.Store.Path()),
	}
}

func (c *StoreCheck) Fix(ctx *CheckContext) error {
	return ctx.Store.Init()
}

// StoreLinesCheck reports store lines that load skips.
type StoreLinesCheck struct {
	BaseCheck
}

// NewStoreLinesCheck creates a new malformed line check.
func NewStoreLinesCheck() *StoreLinesCheck {
	return &StoreLinesCheck{
		BaseCheck: BaseCheck{
			CheckName:        "store-lines",
			CheckDescription: "Report malformed lines in the identity store",
		},
	}
}

func (c *StoreLinesCheck) Run(ctx *CheckContext) *CheckResult {
	entries, err := ctx.Store.LoadEntries()
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Cannot read identity store",
			Details: []string{err.Error()},
		}
	}

	skips := identity.Skips(entries)
	if len(skips) == 0 {
		return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "All store lines parse"}
	}

	details := make([]string, 0, len(skips))
	for _, s := range skips {
		details = append(details, fmt.Sprintf("line %d: %s: %q", s.Line, s.Reason, s.Raw))
	}
	return &CheckResult{
		Name:    c.Name(),
		Status:  StatusWarning,
		Message: fmt.Sprintf("%d malformed lines are ignored", len(skips)),
		Details: details,
		FixHint: "Edit " + ctx.Store.Path() + " by hand",
	}
}

// HooksPathCheck verifies global core.hooksPath points at gitid's hooks.
type HooksPathCheck struct {
	FixableCheck
}

// NewHooksPathCheck creates a new hooks path check.
func NewHooksPathCheck() *HooksPathCheck {
	return &HooksPathCheck{
		FixableCheck: FixableCheck{
			BaseCheck: BaseCheck{
				CheckName:        "hooks-path",
				CheckDescription: "Verify global core.hooksPath points at gitid",
			},
		},
	}
}

func (c *HooksPathCheck) Run(ctx *CheckContext) *CheckResult {
	st, err := hook.Check(ctx.Ctx, ctx.Git, ctx.Policy)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Cannot read " + gitcfg.KeyHooksPath,
			Details: []string{err.Error()},
		}
	}
	if !st.HooksPathOK {
		current := st.HooksPath
		if current == "" {
			current = "(unset)"
		}
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "core.hooksPath is " + current,
			Details: []string{"expected " + ctx.Policy.HooksDir},
			FixHint: "Run 'gitid hooks install' or 'gitid doctor --fix'",
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "core.hooksPath is " + st.HooksPath}
}

func (c *HooksPathCheck) Fix(ctx *CheckContext) error {
	_, err := hook.Install(ctx.Ctx, ctx.Git, ctx.Policy)
	return err
}

// ShimCheck verifies the pre-commit shim exists and is executable.
type ShimCheck struct {
	FixableCheck
}

// NewShimCheck creates a new shim check.
func NewShimCheck() *ShimCheck {
	return &ShimCheck{
		FixableCheck: FixableCheck{
			BaseCheck: BaseCheck{
				CheckName:        "hook",
				CheckDescription: "Verify the pre-commit hook is installed and executable",
			},
		},
	}
}

func (c *ShimCheck) Run(ctx *CheckContext) *CheckResult {
	path := ctx.Policy.ShimPath(hook.PreCommit)
	if _, err := os.Stat(path); err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "No pre-commit hook at " + path,
			FixHint: "Run 'gitid hooks install' or 'gitid doctor --fix'",
		}
	}

	st, err := hook.Check(ctx.Ctx, ctx.Git, ctx.Policy)
	if err != nil {
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: "Cannot inspect hook",
			Details: []string{err.Error()},
		}
	}
	switch {
	case !st.ShimInstalled:
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: path + " was not installed by gitid",
			FixHint: "Move it aside, then run 'gitid hooks install'",
		}
	case !st.ShimExec:
		return &CheckResult{
			Name:    c.Name(),
			Status:  StatusError,
			Message: path + " is not executable",
			FixHint: "Run 'gitid doctor --fix'",
		}
	}
	return &CheckResult{Name: c.Name(), Status: StatusOK, Message: "pre-commit hook installed"}
}

func (c *ShimCheck) Fix(ctx *CheckContext) error {
	_, err := hook.Install(ctx.Ctx, ctx.Git, ctx.Policy)
	return err
}
