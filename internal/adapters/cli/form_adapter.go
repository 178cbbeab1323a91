package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/example/odkupload/internal/ports/primary"
)

// FormAdapter translates CLI operations to FormService calls.
type FormAdapter struct {
	service primary.FormService
	out     io.Writer
}

// NewFormAdapter creates a new FormAdapter with the given service.
func NewFormAdapter(service primary.FormService, out io.Writer) *FormAdapter {
	return &FormAdapter{
		service: service,
		out:     out,
	}
}

// Add registers a blank form.
func (a *FormAdapter) Add(ctx context.Context, req primary.AddFormRequest) error {
	form, err := a.service.AddForm(ctx, req)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "✓ Added form %s", form.FormID)
	if form.Version != "" {
		fmt.Fprintf(a.out, " version %s", form.Version)
	}
	fmt.Fprintln(a.out)
	return nil
}

// List lists every registered form with its auto-send and auto-delete settings.
func (a *FormAdapter) List(ctx context.Context) error {
	forms, err := a.service.ListForms(ctx)
	if err != nil {
		return fmt.Errorf("failed to list forms: %w", err)
	}

	if len(forms) == 0 {
		fmt.Fprintln(a.out, "No forms found")
		return nil
	}

	fmt.Fprintf(a.out, "\n%-20s %-10s %-10s %-12s %s\n", "FORM", "VERSION", "AUTOSEND", "AUTODELETE", "NAME")
	fmt.Fprintln(a.out, "────────────────────────────────────────────────────────────────")
	for _, f := range forms {
		fmt.Fprintf(a.out, "%-20s %-10s %-10s %-12s %s\n",
			f.FormID, f.Version, flagLabel(f.AutoSend), flagLabel(f.AutoDelete), f.DisplayName)
	}
	fmt.Fprintln(a.out)

	return nil
}

// flagLabel renders an optional per-form flag. Unset flags defer to the app setting.
func flagLabel(v *bool) string {
	switch {
	case v == nil:
		return "default"
	case *v:
		return "yes"
	default:
		return "no"
	}
}
