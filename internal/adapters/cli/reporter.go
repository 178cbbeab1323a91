package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/odkupload/internal/ports/secondary"
)

// TerminalReporter implements secondary.ResultReporter by printing one results block.
type TerminalReporter struct {
	out io.Writer
}

// NewTerminalReporter creates a new TerminalReporter writing to out.
func NewTerminalReporter(out io.Writer) *TerminalReporter {
	return &TerminalReporter{out: out}
}

// ReportResults prints the title, the summary and one paragraph per instance.
func (r *TerminalReporter) ReportResults(ctx context.Context, report secondary.UploadReport) error {
	summary := color.New(color.FgGreen).Sprint("✓ " + report.Summary)
	if !report.AllSucceeded {
		summary = color.New(color.FgRed).Sprint("✗ " + report.Summary)
	}

	fmt.Fprintf(r.out, "\n%s: %s\n", color.New(color.Bold).Sprint(report.Title), summary)
	fmt.Fprintln(r.out, "────────────────────────────────────────────────────────────────")
	if report.Body != "" {
		fmt.Fprintln(r.out, report.Body)
	}

	if report.AuthRequestingURI != "" {
		fmt.Fprintf(r.out, "\n%s %s\n",
			color.New(color.FgYellow).Sprint("Authentication required by"),
			report.AuthRequestingURI)
		fmt.Fprintln(r.out, "Run 'odkupload credentials set' for this server, then send again.")
	}
	fmt.Fprintln(r.out)

	return nil
}

// Ensure TerminalReporter implements the interface
var _ secondary.ResultReporter = (*TerminalReporter)(nil)
