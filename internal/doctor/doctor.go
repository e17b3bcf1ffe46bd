package doctor

import (
	"fmt"
	"io"
	"strings"

	"github.com/ksteinfeldt/gitid/internal/style"
)

// Doctor runs registered checks in order.
type Doctor struct {
	checks []Check
}

// NewDoctor returns a Doctor with the standard gitid checks.
func NewDoctor() *Doctor {
	d := &Doctor{}
	d.Register(
		NewGitBinaryCheck(),
		NewStoreCheck(),
		NewStoreLinesCheck(),
		NewHooksPathCheck(),
		NewShimCheck(),
	)
	return d
}

// Register appends checks.
func (d *Doctor) Register(checks ...Check) {
	d.checks = append(d.checks, checks...)
}

// Checks returns the registered checks.
func (d *Doctor) Checks() []Check {
	return d.checks
}

// Report collects the results of one doctor run.
type Report struct {
	Results []*CheckResult
}

// Count returns how many results have status s.
func (r *Report) Count(s CheckStatus) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// OK reports whether no check ended in an error.
func (r *Report) OK() bool {
	return r.Count(StatusError) == 0
}

// Run executes every check. With fix set, failing fixable checks are
// repaired and re-run.
func (d *Doctor) Run(ctx *CheckContext, fix bool) *Report {
	report := &Report{}
	for _, c := range d.checks {
		res := c.Run(ctx)
		if fix && res.Status != StatusOK && c.CanFix() {
			if err := c.Fix(ctx); err != nil {
				res.Details = append(res.Details, "fix failed: "+err.Error())
			} else {
				res = c.Run(ctx)
				res.Fixed = res.Status == StatusOK
			}
		}
		report.Results = append(report.Results, res)
	}
	return report
}

// Print writes the report to w.
func (r *Report) Print(w io.Writer) {
	for _, res := range r.Results {
		prefix := style.SuccessPrefix
		switch res.Status {
		case StatusWarning:
			prefix = style.WarningPrefix
		case StatusError:
			prefix = style.ErrorPrefix
		}

		msg := res.Message
		if res.Fixed {
			msg += style.Dim.Render(" (fixed)")
		}
		_, _ = fmt.Fprintf(w, "%s %-12s %s\n", prefix, res.Name, msg)
		for _, d := range res.Details {
			_, _ = fmt.Fprintf(w, "    %s\n", style.Dim.Render(d))
		}
		if res.Status != StatusOK && res.FixHint != "" {
			_, _ = fmt.Fprintf(w, "    %s %s\n", style.ArrowPrefix, res.FixHint)
		}
	}

	summary := []string{fmt.Sprintf("%d ok", r.Count(StatusOK))}
	if n := r.Count(StatusWarning); n > 0 {
		summary = append(summary, fmt.Sprintf("%d warnings", n))
	}
	if n := r.Count(StatusError); n > 0 {
		summary = append(summary, fmt.Sprintf("%d errors", n))
	}
	_, _ = fmt.Fprintf(w, "\n%s\n", strings.Join(summary, ", "))
}
