package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/odkupload/internal/ports/primary"
)

// InstanceAdapter translates CLI operations to InstanceService calls.
type InstanceAdapter struct {
	service primary.InstanceService
	out     io.Writer
}

// NewInstanceAdapter creates a new InstanceAdapter with the given service.
func NewInstanceAdapter(service primary.InstanceService, out io.Writer) *InstanceAdapter {
	return &InstanceAdapter{
		service: service,
		out:     out,
	}
}

// Add registers an instance file.
func (a *InstanceAdapter) Add(ctx context.Context, req primary.AddInstanceRequest) error {
	inst, err := a.service.AddInstance(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Added instance %d: %s (%s)\n", inst.ID, inst.DisplayName, inst.Status)
	return nil
}

// List lists instances with optional status and form filters.
func (a *InstanceAdapter) List(ctx context.Context, status, formID string) error {
	instances, err := a.service.ListInstances(ctx, primary.InstanceFilters{
		Status: status,
		FormID: formID,
	})
	if err != nil {
		return fmt.Errorf("failed to list instances: %w", err)
	}

	if len(instances) == 0 {
		fmt.Fprintln(a.out, "No instances found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-6s %-18s %-20s %s\n", "ID", "STATUS", "FORM", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, inst := range instances {
		fmt.Fprintf(a.out, "%-6d %-18s %-20s %s\n", inst.ID, inst.Status, inst.FormID, inst.DisplayName)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Show displays details for a single instance.
func (a *InstanceAdapter) Show(ctx context.Context, id int64) error {
	inst, err := a.service.GetInstance(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get instance: %w", err)
	}

	fmt.Fprintf(a.out, "\nInstance: %d\n", inst.ID)
	fmt.Fprintf(a.out, "Name:    %s\n", inst.DisplayName)
	fmt.Fprintf(a.out, "Form:    %s", inst.FormID)
	if inst.FormVersion != "" {
		fmt.Fprintf(a.out, " (version %s)", inst.FormVersion)
	}
	fmt.Fprintln(a.out)
	fmt.Fprintf(a.out, "Status:  %s\n", inst.Status)
	fmt.Fprintf(a.out, "File:    %s\n", inst.InstanceFilePath)
	if inst.SubmissionURI != "" {
		fmt.Fprintf(a.out, "Submit to: %s\n", inst.SubmissionURI)
	}
	if inst.LastStatusChange != "" {
		fmt.Fprintf(a.out, "Changed: %s\n", inst.LastStatusChange)
	}
	fmt.Fprintln(a.out)

	return nil
}

// Finalize marks an instance as complete.
func (a *InstanceAdapter) Finalize(ctx context.Context, id int64) error {
	if err := a.service.FinalizeInstance(ctx, id); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Instance %d finalized\n", id)
	return nil
}
