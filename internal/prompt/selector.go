package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/logger"
	"github.com/ksteinfeldt/gitid/internal/style"
)

// State is a step of the commit-time prompt.
type State int

const (
	// StateMenu shows the identities and waits for a choice.
	StateMenu State = iota
	// StateAdding collects a new identity, then returns to StateMenu.
	StateAdding
	// StateApplied is terminal: an identity was written to local config.
	StateApplied
	// StateKept is terminal: git configuration was left as it was.
	StateKept
)

func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StateAdding:
		return "adding"
	case StateApplied:
		return "applied"
	case StateKept:
		return "kept"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Action is what the user asked for at the menu.
type Action int

const (
	ActionKeep Action = iota
	ActionAdd
	ActionSelect
	ActionInvalid
)

// Choice is one decision read from the menu.
type Choice struct {
	Action Action
	Seq    int
	Input  string
}

// ParseChoice interprets one line of menu input: empty keeps the current
// configuration, "a" adds an identity, a positive number selects one.
func ParseChoice(input string) Choice {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return Choice{Action: ActionKeep}
	case strings.EqualFold(input, "a"):
		return Choice{Action: ActionAdd, Input: input}
	}
	if n, err := strconv.Atoi(input); err == nil && n > 0 {
		return Choice{Action: ActionSelect, Seq: n, Input: input}
	}
	return Choice{Action: ActionInvalid, Input: input}
}

// MenuView is what a Chooser shows.
type MenuView struct {
	Identities   []identity.Identity
	CurrentEmail string
	// Current is the registered identity matching CurrentEmail, if any.
	Current *identity.Identity
}

// Chooser presents the menu and returns the user's decision.
type Chooser interface {
	Choose(ctx context.Context, view MenuView) (Choice, error)
}

// ConfigClient is the part of gitcfg.Git the selector needs.
type ConfigClient interface {
	gitcfg.Applier
	Get(ctx context.Context, scope gitcfg.Scope, key string) (string, error)
}

// Outcome is how a prompt run ended.
type Outcome struct {
	State    State
	Identity *identity.Identity
}

// Selector runs the commit-time identity prompt for one repository.
type Selector struct {
	Term    *Terminal
	Store   *identity.Store
	Git     ConfigClient
	Chooser Chooser
	Log     *logger.Logger
}

// NewSelector creates a Selector using the numbered line menu.
func NewSelector(t *Terminal, store *identity.Store, git ConfigClient, log *logger.Logger) *Selector {
	if log == nil {
		log = logger.Discard()
	}
	return &Selector{
		Term:    t,
		Store:   store,
		Git:     git,
		Chooser: &LineMenu{Term: t},
		Log:     log,
	}
}

// Run drives the prompt until it reaches StateApplied or StateKept. It
// waits on the terminal with no timeout. End of input counts as keeping the
// current configuration.
func (s *Selector) Run(ctx context.Context) (Outcome, error) {
	state := StateMenu
	var chosen identity.Identity

	for {
		switch state {
		case StateMenu:
			view, err := s.view(ctx)
			if err != nil {
				return Outcome{State: state}, err
			}

			choice, err := s.Chooser.Choose(ctx, view)
			if err != nil {
				if errors.Is(err, io.EOF) {
					s.Term.Println()
					state = StateKept
					continue
				}
				return Outcome{State: state}, err
			}

			switch choice.Action {
			case ActionKeep:
				state = StateKept
			case ActionAdd:
				state = StateAdding
			case ActionSelect:
				id, err := identity.FindSeq(view.Identities, choice.Seq)
				if err != nil {
					s.Term.Printf("%s No identity numbered %d\n", style.ErrorPrefix, choice.Seq)
					continue
				}
				chosen = id
				state = StateApplied
			default:
				s.Term.Printf("%s Invalid choice %q\n", style.ErrorPrefix, choice.Input)
			}

		case StateAdding:
			if _, err := s.Term.AddIdentity(s.Store); err != nil {
				if errors.Is(err, io.EOF) {
					s.Term.Println()
					state = StateKept
					continue
				}
				s.Term.Printf("%s %v\n", style.ErrorPrefix, err)
			}
			state = StateMenu

		case StateApplied:
			if err := s.Git.Apply(ctx, chosen, gitcfg.ScopeLocal); err != nil {
				return Outcome{State: StateMenu}, err
			}
			s.Log.Info("identity applied", "seq", chosen.Seq, "email", chosen.Email, "label", chosen.Label)
			s.Term.Printf("%s Committing as %s\n", style.SuccessPrefix, chosen)
			return Outcome{State: StateApplied, Identity: &chosen}, nil

		case StateKept:
			s.Log.Info("identity kept")
			return Outcome{State: StateKept}, nil
		}
	}
}

// view reloads the store and the repository's current email. The store is
// read fresh on every pass so an identity added from the menu shows up.
func (s *Selector) view(ctx context.Context) (MenuView, error) {
	entries, err := s.Store.LoadEntries()
	if err != nil {
		return MenuView{}, err
	}
	for _, skip := range identity.Skips(entries) {
		s.Log.Warn("skipped store line", "path", s.Store.Path(), "line", skip.Line, "reason", skip.Reason)
	}

	email, err := s.Git.Get(ctx, gitcfg.ScopeEffective, gitcfg.KeyUserEmail)
	if err != nil {
		// Display only; the menu still works without it.
		s.Log.Warn("reading current email", "err", err)
		email = ""
	}

	view := MenuView{Identities: identity.Records(entries), CurrentEmail: email}
	if id, ok := identity.MatchEmail(view.Identities, email); ok {
		view.Current = &id
	}
	return view, nil
}

// LineMenu is the numbered text menu.
type LineMenu struct {
	Term *Terminal
}

// Choose renders the menu and reads one line.
func (m *LineMenu) Choose(_ context.Context, view MenuView) (Choice, error) {
	RenderMenu(m.Term, view)
	m.Term.Printf("Choice: ")
	line, err := m.Term.ReadLine()
	if err != nil {
		return Choice{}, err
	}
	return ParseChoice(line), nil
}

// RenderMenu prints the identity menu.
func RenderMenu(t *Terminal, view MenuView) {
	t.Println()
	t.Println(style.Bold.Render("Select git identity for this commit"))

	switch {
	case view.Current != nil:
		t.Printf("  Current: %s <%s> %s\n", view.Current.Name, view.Current.Email, style.Tag(view.Current.Label))
	case view.CurrentEmail != "":
		t.Printf("  Current: %s %s\n", view.CurrentEmail, style.Dim.Render("(not registered)"))
	default:
		t.Printf("  Current: %s\n", style.Dim.Render("(none)"))
	}
	t.Println()

	if len(view.Identities) == 0 {
		t.Println(style.Dim.Render("  No identities registered."))
	}
	for _, id := range view.Identities {
		marker := " "
		if view.Current != nil && view.Current.Seq == id.Seq {
			marker = "*"
		}
		t.Printf(" %s %d) %s <%s> %s\n", marker, id.Seq, id.Name, id.Email, style.Tag(id.Label))
	}
	t.Println("   a) Add a new identity")
	t.Println("   Enter) Keep current configuration")
}
