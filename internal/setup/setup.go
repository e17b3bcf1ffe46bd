// Package setup runs gitid's first-run registration: collect identities,
// seed the global default, and install the global pre-commit hook.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/hook"
	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/logger"
	"github.com/ksteinfeldt/gitid/internal/prompt"
	"github.com/ksteinfeldt/gitid/internal/style"
)

// Runner carries everything setup touches.
type Runner struct {
	Term   *prompt.Terminal
	Store  *identity.Store
	Git    *gitcfg.Git
	Policy hook.Policy
	Log    *logger.Logger

	// LookGit defaults to gitcfg.LookGit.
	LookGit func() error
}

// Result summarizes a completed setup.
type Result struct {
	Added      []identity.Identity
	Identities []identity.Identity
	Default    identity.Identity
	Hook       *hook.InstallResult
}

// Run performs setup. It fails with gitcfg.ErrGitNotInstalled when git is
// missing and identity.ErrNoIdentities when the store is still empty after
// the prompts.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	log := r.Log
	if log == nil {
		log = logger.Discard()
	}
	lookGit := r.LookGit
	if lookGit == nil {
		lookGit = gitcfg.LookGit
	}

	if err := lookGit(); err != nil {
		return nil, err
	}
	if err := r.Store.Init(); err != nil {
		return nil, err
	}
	r.Term.Printf("%s Identity store: %s\n", style.ArrowPrefix, r.Store.Path())

	existing, err := r.Store.Load()
	if err != nil {
		return nil, err
	}

	result := &Result{}
	added, err := r.collect(existing)
	if err != nil {
		return nil, err
	}
	result.Added = added

	ids, err := r.Store.Load()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, identity.ErrNoIdentities
	}
	result.Identities = ids

	result.Default = lowestSeq(ids)
	if err := r.Git.Apply(ctx, result.Default, gitcfg.ScopeGlobal); err != nil {
		return nil, fmt.Errorf("setting global identity: %w", err)
	}
	log.Info("global identity seeded", "seq", result.Default.Seq, "email", result.Default.Email)

	installed, err := hook.Install(ctx, r.Git, r.Policy)
	if err != nil {
		return nil, err
	}
	result.Hook = installed
	log.Info("hook installed", "hooks_dir", r.Policy.HooksDir)

	r.printSummary(result)
	return result, nil
}

// collect shows what is registered and adds identities until the user
// declines another. End of input stops collecting.
func (r *Runner) collect(existing []identity.Identity) ([]identity.Identity, error) {
	var added []identity.Identity

	if len(existing) > 0 {
		r.Term.Println()
		r.Term.Println(style.Bold.Render("Registered identities:"))
		for _, id := range existing {
			r.Term.Printf("  %d) %s <%s> %s\n", id.Seq, id.Name, id.Email, style.Tag(id.Label))
		}
		r.Term.Println()

		more, err := r.Term.AskYesNo("Add another identity?", false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, err
		}
		if !more {
			return nil, nil
		}
	} else {
		r.Term.Println()
		r.Term.Println(style.Bold.Render("Register your git identities"))
		r.Term.Println(style.Dim.Render("The first one becomes your global default."))
	}

	for {
		r.Term.Println()
		id, err := r.Term.AddIdentity(r.Store)
		if err != nil {
			if errors.Is(err, io.EOF) {
				r.Term.Println()
				return added, nil
			}
			return added, err
		}
		added = append(added, id)

		more, err := r.Term.AskYesNo("Add another identity?", false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return added, nil
			}
			return added, err
		}
		if !more {
			return added, nil
		}
	}
}

func (r *Runner) printSummary(res *Result) {
	r.Term.Println()
	r.Term.Printf("%s Global identity: %s\n", style.SuccessPrefix, res.Default)
	r.Term.Printf("%s Pre-commit hook: %s\n", style.SuccessPrefix, res.Hook.ShimPath)
	if res.Hook.PreviousHooksPath != "" {
		r.Term.Printf("%s core.hooksPath was %s; hooks there no longer run globally\n",
			style.WarningPrefix, res.Hook.PreviousHooksPath)
	}
	r.Term.Printf("%s %d identities registered. Every commit will now ask which one to use.\n",
		style.ArrowPrefix, len(res.Identities))
}

func lowestSeq(ids []identity.Identity) identity.Identity {
	low := ids[0]
	for _, id := range ids[1:] {
		if id.Seq < low.Seq {
			low = id
		}
	}
	return low
}
