package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/gitid/internal/hook"
	"github.com/ksteinfeldt/gitid/internal/style"
)

var hooksCmd = &cobra.Command{
	Use:     "hooks",
	GroupID: GroupHooks,
	Short:   "Manage the global pre-commit hook",
	RunE:    requireSubcommand,
}

var hooksInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install the global pre-commit hook",
	Long: `Write the pre-commit shim into hooks_dir and point the global
core.hooksPath at it. Every repository for this account then runs gitid
before each commit.

If core.hooksPath already pointed somewhere else, hooks there stop running
globally; gitid prints the old value so you can move them.`,
	Args: cobra.NoArgs,
	RunE: runHooksInstall,
}

var hooksUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Remove the global pre-commit hook",
	Long: `Delete the shim and clear the global core.hooksPath if it still
points at gitid's hooks directory.`,
	Args: cobra.NoArgs,
	RunE: runHooksUninstall,
}

func init() {
	rootCmd.AddCommand(hooksCmd)
	hooksCmd.AddCommand(hooksInstallCmd)
	hooksCmd.AddCommand(hooksUninstallCmd)
}

func runHooksInstall(cmd *cobra.Command, args []string) error {
	policy, err := hookPolicy()
	if err != nil {
		return err
	}

	res, err := hook.Install(cmd.Context(), repoGit(), policy)
	if err != nil {
		return err
	}
	log.Info("hook installed", "hooks_dir", policy.HooksDir, "binary", policy.Binary)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s Installed %s\n", style.SuccessPrefix, res.ShimPath)
	if res.PreviousHooksPath != "" {
		fmt.Fprintf(out, "%s core.hooksPath was %s; hooks there no longer run globally\n",
			style.WarningPrefix, res.PreviousHooksPath)
	}
	return nil
}

func runHooksUninstall(cmd *cobra.Command, args []string) error {
	policy, err := hookPolicy()
	if err != nil {
		return err
	}

	if err := hook.Uninstall(cmd.Context(), repoGit(), policy); err != nil {
		return err
	}
	log.Info("hook uninstalled", "hooks_dir", policy.HooksDir)
	fmt.Fprintf(cmd.OutOrStdout(), "%s Removed the gitid pre-commit hook\n", style.SuccessPrefix)
	return nil
}
