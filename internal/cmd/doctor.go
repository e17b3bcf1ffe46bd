package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ksteinfeldt/gitid/internal/doctor"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	GroupID: GroupHooks,
	Short:   "Check the gitid installation",
	Args:    cobra.NoArgs,
	RunE:    runDoctor,
}

var doctorFix bool

func init() {
	doctorCmd.Long = doctorLong(doctor.NewDoctor())
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "Repair what can be repaired automatically")
	rootCmd.AddCommand(doctorCmd)
}

func doctorLong(d *doctor.Doctor) string {
	var b strings.Builder
	b.WriteString("Run health checks:\n\n")
	for _, c := range d.Checks() {
		fix := ""
		if c.CanFix() {
			fix = " (fixable)"
		}
		fmt.Fprintf(&b, "  %-12s %s%s\n", c.Name(), c.Description(), fix)
	}
	b.WriteString("\nWith --fix, gitid creates a missing store and reinstalls the hook.")
	return b.String()
}

func runDoctor(cmd *cobra.Command, args []string) error {
	policy, err := hookPolicy()
	if err != nil {
		return err
	}

	ctx := &doctor.CheckContext{
		Ctx:    cmd.Context(),
		Store:  openStore(),
		Git:    repoGit(),
		Policy: policy,
	}
	report := doctor.NewDoctor().Run(ctx, doctorFix)
	report.Print(cmd.OutOrStdout())

	if !report.OK() {
		return &ExitError{Code: 1, Err: errors.New("doctor found problems")}
	}
	return nil
}
