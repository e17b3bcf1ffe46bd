package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/prompt"
	"github.com/ksteinfeldt/gitid/internal/style"
)

var addCmd = &cobra.Command{
	Use:     "add",
	GroupID: GroupIdentity,
	Short:   "Register a new identity",
	Long: `Append an identity to the store. It gets the next sequence number.

Fields not given as flags are asked for interactively.

Examples:
  gitid add
  gitid add --name "Alice Smith" --email alice@work.com --label Work`,
	Args: cobra.NoArgs,
	RunE: runAdd,
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	GroupID: GroupIdentity,
	Short:   "Show all registered identities",
	Long: `List every identity in the store, in file order.

The identity whose email matches the current repository's user.email is
marked with an asterisk (*).`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var useCmd = &cobra.Command{
	Use:     "use <seq>",
	GroupID: GroupIdentity,
	Short:   "Apply an identity without the menu",
	Long: `Write an identity's name and email to git config.

By default the current repository's local config is changed. With
--global the account-wide default is changed instead.

Examples:
  gitid use 2
  gitid use 1 --global`,
	Args: cobra.ExactArgs(1),
	RunE: runUse,
}

var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	GroupID: GroupIdentity,
	Short:   "Show the identity git will commit as here",
	Args:    cobra.NoArgs,
	RunE:    runWhoami,
}

var (
	addName   string
	addEmail  string
	addLabel  string
	useGlobal bool
)

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(whoamiCmd)

	addCmd.Flags().StringVar(&addName, "name", "", "Full name (user.name)")
	addCmd.Flags().StringVar(&addEmail, "email", "", "Email address (user.email)")
	addCmd.Flags().StringVar(&addLabel, "label", "", "Short tag such as Work or Personal")

	useCmd.Flags().BoolVar(&useGlobal, "global", false, "Set the global default instead of this repository")
}

func runAdd(cmd *cobra.Command, args []string) error {
	store := openStore()
	term := prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout())

	id := identity.Identity{Name: addName, Email: addEmail, Label: addLabel}
	var err error
	if id.Name == "" {
		if id.Name, err = term.AskValidated("Full name", identity.Normalize, identity.CheckName); err != nil {
			return err
		}
	}
	if id.Email == "" {
		if id.Email, err = term.AskValidated("Email", strings.TrimSpace, identity.CheckEmail); err != nil {
			return err
		}
	}
	if id.Label == "" {
		if id.Label, err = term.AskValidated("Label (e.g. Work, Personal)", identity.Normalize, identity.CheckLabel); err != nil {
			return err
		}
	}

	added, err := store.Append(id)
	if err != nil {
		return err
	}
	log.Info("identity added", "seq", added.Seq, "email", added.Email, "label", added.Label)
	fmt.Fprintf(cmd.OutOrStdout(), "%s Added identity %d: %s\n", style.SuccessPrefix, added.Seq, added)
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	store := openStore()

	entries, err := store.LoadEntries()
	if err != nil {
		return err
	}
	for _, s := range identity.Skips(entries) {
		log.Warn("skipped store line", "line", s.Line, "reason", s.Reason)
	}

	ids := identity.Records(entries)
	if len(ids) == 0 {
		fmt.Fprintln(out, "No identities registered. Run 'gitid setup' or 'gitid add' to add one.")
		return nil
	}

	// Outside a repository this still reads the global value.
	current, _ := repoGit().Get(cmd.Context(), gitcfg.ScopeEffective, gitcfg.KeyUserEmail)

	fmt.Fprintf(out, "Identities in %s:\n", store.Path())
	for _, id := range ids {
		marker := "  "
		if current != "" && strings.EqualFold(id.Email, current) {
			marker = "* "
		}
		fmt.Fprintf(out, "  %s%d) %s <%s> %s\n", marker, id.Seq, id.Name, id.Email, style.Tag(id.Label))
	}
	return nil
}

func runUse(cmd *cobra.Command, args []string) error {
	seq, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil || seq < 1 {
		return fmt.Errorf("invalid sequence number %q", args[0])
	}

	id, err := openStore().Find(seq)
	if err != nil {
		if errors.Is(err, identity.ErrNotFound) {
			return fmt.Errorf("%w. Run 'gitid list' to see registered identities", err)
		}
		return err
	}

	scope := gitcfg.ScopeLocal
	if useGlobal {
		scope = gitcfg.ScopeGlobal
	}
	if err := repoGit().Apply(cmd.Context(), id, scope); err != nil {
		return err
	}

	log.Info("identity applied", "seq", id.Seq, "email", id.Email, "scope", string(scope))
	fmt.Fprintf(cmd.OutOrStdout(), "%s Using %s (%s config)\n", style.SuccessPrefix, id, scope)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	name, email, err := repoGit().Current(cmd.Context())
	if err != nil {
		return err
	}
	if name == "" && email == "" {
		fmt.Fprintln(out, style.Dim.Render("No git identity configured."))
		fmt.Fprintln(out, "Run 'gitid setup' to register one.")
		return nil
	}

	fmt.Fprintf(out, "%s %s <%s>\n", style.Bold.Render("Committing as:"), name, email)

	id, ok, err := openStore().FindByEmail(email)
	if err != nil {
		return err
	}
	if ok {
		fmt.Fprintf(out, "  Identity: %d %s\n", id.Seq, style.Tag(id.Label))
	} else {
		fmt.Fprintln(out, style.Dim.Render("  (email not registered with gitid)"))
	}
	return nil
}
