package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/wire"
)

// FormCmd returns the form command
func FormCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "form",
		Short: "Manage blank forms",
		Long:  `Register blank forms and their per-form auto-send and auto-delete settings.`,
	}

	cmd.AddCommand(formAddCmd())
	cmd.AddCommand(formListCmd())

	return cmd
}

func formAddCmd() *cobra.Command {
	var version string
	var name string
	var autoSend bool
	var autoDelete bool

	cmd := &cobra.Command{
		Use:   "add <form-id>",
		Short: "Register a blank form",
		Long: `Register a blank form. --auto-send and --auto-delete override the app
settings for this form; leave them out to follow the app settings.

Examples:
  odkupload form add site_visit --version 3
  odkupload form add household --auto-send=true --auto-delete=false`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := primary.AddFormRequest{
				FormID:      args[0],
				Version:     version,
				DisplayName: name,
			}
			req.AutoSend = optionalBool(cmd.Flags().Changed("auto-send"), autoSend)
			req.AutoDelete = optionalBool(cmd.Flags().Changed("auto-delete"), autoDelete)

			return wire.FormAdapter().Add(cmd.Context(), req)
		},
	}

	cmd.Flags().StringVar(&version, "version", "", "Form version")
	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().BoolVar(&autoSend, "auto-send", false, "Send this form's instances automatically")
	cmd.Flags().BoolVar(&autoDelete, "auto-delete", false, "Delete this form's instances after sending")

	return cmd
}

func formListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered forms",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.FormAdapter().List(cmd.Context())
		},
	}
}

// optionalBool returns nil for a flag the user did not pass.
func optionalBool(changed, value bool) *bool {
	if !changed {
		return nil
	}
	return &value
}
