// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle argument parsing, output formatting,
// but delegate business logic to services.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/odkupload/internal/ports/primary"
)

// SubmissionAdapter translates CLI operations to SubmissionService calls.
// Per-instance results are printed by the ResultReporter; the adapter prints the pass outcome.
type SubmissionAdapter struct {
	service primary.SubmissionService
	out     io.Writer
}

// NewSubmissionAdapter creates a new SubmissionAdapter with the given service.
func NewSubmissionAdapter(service primary.SubmissionService, out io.Writer) *SubmissionAdapter {
	return &SubmissionAdapter{
		service: service,
		out:     out,
	}
}

// Send runs an auto-send pass for the given network type.
func (a *SubmissionAdapter) Send(ctx context.Context, network string) (*primary.RunResponse, error) {
	resp, err := a.service.RunAutoSend(ctx, primary.AutoSendRequest{Network: network})
	if err != nil {
		return nil, err
	}
	a.printOutcome(resp)
	return resp, nil
}

// Submit uploads the given instances now.
func (a *SubmissionAdapter) Submit(ctx context.Context, req primary.SubmitRequest) (*primary.RunResponse, error) {
	if len(req.InstanceIDs) == 0 {
		return nil, fmt.Errorf("at least one instance ID is required")
	}

	resp, err := a.service.SubmitInstances(ctx, req)
	if err != nil {
		return nil, err
	}
	a.printOutcome(resp)
	return resp, nil
}

func (a *SubmissionAdapter) printOutcome(resp *primary.RunResponse) {
	switch {
	case resp.Cancelled:
		fmt.Fprintf(a.out, "%s pass stopped early after %d instance(s); the rest will be sent on the next pass\n",
			color.New(color.FgYellow).Sprint("⏸"), len(resp.Outcomes))
	case resp.Result == primary.RunRetryLater:
		fmt.Fprintf(a.out, "%s Not sending now: %s\n", color.New(color.FgYellow).Sprint("⏸"), resp.Reason)
	case resp.Result == primary.RunFail && resp.AuthRequestingURI == "":
		fmt.Fprintf(a.out, "%s Not sending: %s\n", color.New(color.FgRed).Sprint("✗"), resp.Reason)
	case resp.Result == primary.RunSuccess && len(resp.Outcomes) == 0:
		fmt.Fprintln(a.out, "No instances to send")
	}
}
