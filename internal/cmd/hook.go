package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/gitid/internal/config"
	"github.com/ksteinfeldt/gitid/internal/hook"
)

var hookCmd = &cobra.Command{
	Use:    "hook <name> [args...]",
	Hidden: true, // Entry point for the installed git hook shim
	Short:  "Run a git hook (called by git)",
	Long: `Run the gitid handler for a git hook.

The shim gitid installs into core.hooksPath executes this command. Hooks
gitid has no handler for succeed immediately. After the handler, the
repository's own .git/hooks/<name> runs if it exists and is executable
(chain_local_hooks = true).

Exit codes:
  0 - Commit may proceed
  1 - Commit aborted (gitid error)
  n - Exit code of the repository's own hook`,
	Args:               cobra.MinimumNArgs(1),
	DisableFlagParsing: true,
	RunE:               runHook,
}

func init() {
	rootCmd.AddCommand(hookCmd)
}

func runHook(cmd *cobra.Command, args []string) error {
	policy, err := hookPolicy()
	if err != nil {
		return err
	}
	git := repoGit()

	d := &hook.Dispatcher{
		Policy: policy,
		Table: hook.Table{
			hook.PreCommit: hook.NewPreCommit(hook.PreCommitOptions{
				Store:     openStore(),
				Git:       git,
				UsePicker: cfg.UI == config.UIPicker,
				Stderr:    os.Stderr,
				Log:       log,
			}),
		},
		Git:        git,
		ChainLocal: cfg.ChainLocalHooks,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Log:        log,
	}

	code, err := d.Dispatch(cmd.Context(), args[0], args[1:])
	if err != nil || code != hook.ExitAllow {
		if code == hook.ExitAllow {
			code = hook.ExitAbort
		}
		return &ExitError{Code: code, Err: err}
	}
	return nil
}
