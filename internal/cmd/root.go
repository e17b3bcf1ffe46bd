// Package cmd implements the gitid command tree.
package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/gitid/internal/config"
	"github.com/ksteinfeldt/gitid/internal/gitcfg"
	"github.com/ksteinfeldt/gitid/internal/hook"
	"github.com/ksteinfeldt/gitid/internal/identity"
	"github.com/ksteinfeldt/gitid/internal/logger"
	"github.com/ksteinfeldt/gitid/internal/style"
)

// Command groups shown in help.
const (
	GroupIdentity = "identity"
	GroupHooks    = "hooks"
)

var rootCmd = &cobra.Command{
	Use:   "gitid",
	Short: "Pick which git identity to commit as",
	Long: `gitid keeps a list of git identities (name, email, label) and asks
which one to use every time you commit, in any repository.

Run 'gitid setup' once to register identities, set a global default and
install the global pre-commit hook. After that, each commit shows a menu;
the chosen identity is written to that repository's local git config.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadRuntime,
}

var configPath string

// Loaded by loadRuntime before any command runs.
var (
	cfg *config.Config
	log *logger.Logger
)

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: GroupIdentity, Title: "Identities:"},
		&cobra.Group{ID: GroupHooks, Title: "Hooks:"},
	)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"config file (default $GITID_CONFIG or ~/.config/gitid/config.toml)")
}

// ExitError carries a non-zero exit code without a message, for hooks that
// must hand git a specific status.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// Execute runs the root command and returns the process exit code.
func Execute() int {
	err := runRoot()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, exitErr.Err)
		}
		return exitErr.Code
	}

	fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
	return 1
}

func loadRuntime(cmd *cobra.Command, args []string) error {
	path := configPath
	if path == "" {
		path = config.DefaultPath()
	}

	var err error
	if cfg, err = config.Load(path); err != nil {
		return err
	}
	if log, err = logger.New(cfg.Log.Enabled, cfg.Log.File, cfg.Log.Level); err != nil {
		return err
	}
	log.Debug("command started", "command", cmd.CommandPath(), "args", args)
	return nil
}

// runRoot executes the command tree and closes the log whether or not the
// command succeeded.
func runRoot() error {
	err := rootCmd.Execute()
	if cerr := closeRuntime(); err == nil {
		err = cerr
	}
	return err
}

func closeRuntime() error {
	if log == nil {
		return nil
	}
	return log.Close()
}

func requireSubcommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("requires a subcommand\n\nRun '%s --help' for usage", cmd.CommandPath())
	}
	return fmt.Errorf("unknown command %q for %q\n\nRun '%s --help' for usage",
		args[0], cmd.CommandPath(), cmd.CommandPath())
}

func openStore() *identity.Store {
	return identity.NewStore(cfg.Store)
}

// repoGit returns a Git bound to the current directory.
func repoGit() *gitcfg.Git {
	return gitcfg.New("")
}

// hookPolicy returns the policy for the running binary.
func hookPolicy() (hook.Policy, error) {
	bin, err := os.Executable()
	if err != nil {
		return hook.Policy{}, fmt.Errorf("locating gitid binary: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(bin); err == nil {
		bin = resolved
	}
	return hook.NewPolicy(cfg.HooksDir, bin), nil
}
