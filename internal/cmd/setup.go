package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/gitid/internal/prompt"
	"github.com/ksteinfeldt/gitid/internal/setup"
)

var setupCmd = &cobra.Command{
	Use:     "setup",
	GroupID: GroupIdentity,
	Short:   "Register identities and install the global hook",
	Long: `Interactive first-run setup.

Setup asks for one or more identities (full name, email, label), writes
the first one to your global git config as the default, and installs the
global pre-commit hook by pointing core.hooksPath at gitid's hooks
directory.

Running setup again lists the identities already registered and offers to
add more.`,
	Args: cobra.NoArgs,
	RunE: runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) error {
	policy, err := hookPolicy()
	if err != nil {
		return err
	}

	r := &setup.Runner{
		Term:   prompt.NewTerminal(cmd.InOrStdin(), cmd.OutOrStdout()),
		Store:  openStore(),
		Git:    repoGit(),
		Policy: policy,
		Log:    log,
	}
	_, err = r.Run(cmd.Context())
	return err
}
