// Package doctor inspects a gitid installation and repairs what it can.
package doctor

import (
	"context"
	"errors"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/hook"
	"github.com/ksteinfeldt/gitid/internal/identity"
)

// ErrCannotFix is returned by Fix on checks that have no automatic repair.
var ErrCannotFix = errors.New("check cannot be fixed automatically")

// CheckStatus is the outcome of a single check.
type CheckStatus int

const (
	StatusOK CheckStatus = iota
	StatusWarning
	StatusError
)

func (s CheckStatus) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusWarning:
		return "warning"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

// CheckContext is what every check may look at.
type CheckContext struct {
	Ctx    context.Context
	Store  *identity.Store
	Git    *gitcfg.Git
	Policy hook.Policy
}

// CheckResult describes what a check found.
type CheckResult struct {
	Name    string
	Status  CheckStatus
	Message string
	Details []string
	FixHint string
	// Fixed is set when --fix repaired the problem.
	Fixed bool
}

// Check is a single health check.
type Check interface {
	Name() string
	Description() string
	Run(ctx *CheckContext) *CheckResult
	CanFix() bool
	Fix(ctx *CheckContext) error
}

// BaseCheck supplies the name and description and no fix.
type BaseCheck struct {
	CheckName        string
	CheckDescription string
}

func (b *BaseCheck) Name() string        { return b.CheckName }
func (b *BaseCheck) Description() string { return b.CheckDescription }
func (b *BaseCheck) CanFix() bool        { return false }

func (b *BaseCheck) Fix(*CheckContext) error { return ErrCannotFix }

// FixableCheck marks a check that implements Fix.
type FixableCheck struct {
	BaseCheck
}

func (f *FixableCheck) CanFix() bool { return true }
