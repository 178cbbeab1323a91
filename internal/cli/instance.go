package cli

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/wire"
)

// InstanceCmd returns the instance command
func InstanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "instance",
		Short: "Manage form instances",
		Long:  `Register, list and finalize filled-in form instances.`,
	}

	cmd.AddCommand(instanceAddCmd())
	cmd.AddCommand(instanceListCmd())
	cmd.AddCommand(instanceShowCmd())
	cmd.AddCommand(instanceFinalizeCmd())

	return cmd
}

func instanceAddCmd() *cobra.Command {
	var formID string
	var formVersion string
	var name string
	var submissionURI string
	var finalized bool

	cmd := &cobra.Command{
		Use:   "add <instance-file>",
		Short: "Register an instance file",
		Long: `Register an instance XML file already written under the instances directory.
Attachments are the other files in the same directory.

Examples:
  odkupload instance add ~/.odkupload/instances/visit_1/visit_1.xml --form site_visit --finalized`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := filepath.Abs(args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve instance path: %w", err)
			}

			return wire.InstanceAdapter().Add(cmd.Context(), primary.AddInstanceRequest{
				FormID:           formID,
				FormVersion:      formVersion,
				DisplayName:      name,
				InstanceFilePath: path,
				SubmissionURI:    submissionURI,
				Finalized:        finalized,
			})
		},
	}

	cmd.Flags().StringVarP(&formID, "form", "f", "", "Form ID (required)")
	cmd.Flags().StringVar(&formVersion, "form-version", "", "Form version")
	cmd.Flags().StringVar(&name, "name", "", "Display name (defaults to the form ID)")
	cmd.Flags().StringVar(&submissionURI, "submission-uri", "", "Form-specific submission URL")
	cmd.Flags().BoolVar(&finalized, "finalized", false, "Mark the instance complete immediately")
	cmd.MarkFlagRequired("form")

	return cmd
}

func instanceListCmd() *cobra.Command {
	var status string
	var formID string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List instances",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.InstanceAdapter().List(cmd.Context(), status, formID)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (incomplete, complete, submitted, submissionFailed)")
	cmd.Flags().StringVarP(&formID, "form", "f", "", "Filter by form ID")

	return cmd
}

func instanceShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <instance-id>",
		Short: "Show instance details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInstanceID(args[0])
			if err != nil {
				return err
			}
			return wire.InstanceAdapter().Show(cmd.Context(), id)
		},
	}
}

func instanceFinalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "finalize <instance-id>",
		Short: "Mark an instance complete and ready to send",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseInstanceID(args[0])
			if err != nil {
				return err
			}
			return wire.InstanceAdapter().Finalize(cmd.Context(), id)
		},
	}
}

func parseInstanceID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid instance ID %q", arg)
	}
	return id, nil
}
