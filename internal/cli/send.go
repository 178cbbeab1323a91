package cli

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/example/odkupload/internal/ports/primary"
	"github.com/example/odkupload/internal/wire"
)

// SendCmd returns the send command
func SendCmd() *cobra.Command {
	var network string
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run an auto-send pass",
		Long: `Upload every finalized instance whose form is set to send automatically,
if the current network allows it.

Exits 0 when every attempted instance was sent, 75 when the pass should be
retried later (wrong network type, cancelled) and 1 otherwise.

Examples:
  odkupload send --network wifi
  odkupload send --network cellular --metrics-textfile /var/lib/node_exporter/odkupload.prom`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := runContext(cmd.Context())
			defer cancel()

			resp, err := wire.SubmissionAdapter().Send(ctx, network)
			if err != nil {
				return err
			}
			if err := writeMetrics(metricsFile); err != nil {
				return err
			}
			return exitErrorFor(resp)
		},
	}

	cmd.Flags().StringVarP(&network, "network", "n", "wifi", "Current network: wifi, cellular or none")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file after the pass")

	return cmd
}

// SubmitCmd returns the submit command
func SubmitCmd() *cobra.Command {
	var destination string
	var username string
	var password string
	var deleteAfter bool
	var keep bool
	var metricsFile string

	cmd := &cobra.Command{
		Use:   "submit <instance-id>...",
		Short: "Upload the given instances now",
		Long: `Upload the given instances regardless of network type and auto-send settings.

--url sends every instance to that URL instead of its form's submission URL.
--username/--password are used for that server during this pass only.

Examples:
  odkupload submit 12 13
  odkupload submit 12 --url https://other.example.net/submission --username alice --password secret --keep`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseInstanceIDs(args)
			if err != nil {
				return err
			}

			req := primary.SubmitRequest{
				InstanceIDs:    ids,
				DestinationURL: destination,
				Username:       username,
				Password:       password,
			}
			req.DeleteAfterSubmission = deleteOverride(
				cmd.Flags().Changed("delete"), deleteAfter,
				cmd.Flags().Changed("keep"), keep,
			)

			ctx, cancel := runContext(cmd.Context())
			defer cancel()

			resp, err := wire.SubmissionAdapter().Submit(ctx, req)
			if err != nil {
				return err
			}
			if err := writeMetrics(metricsFile); err != nil {
				return err
			}
			return exitErrorFor(resp)
		},
	}

	cmd.Flags().StringVar(&destination, "url", "", "Send to this URL instead of each form's submission URL")
	cmd.Flags().StringVarP(&username, "username", "u", "", "Username for the destination server")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password for the destination server")
	cmd.Flags().BoolVar(&deleteAfter, "delete", false, "Delete instances after they are sent")
	cmd.Flags().BoolVar(&keep, "keep", false, "Keep instances after they are sent")
	cmd.Flags().StringVar(&metricsFile, "metrics-textfile", "", "Write Prometheus metrics to this file after the pass")
	cmd.MarkFlagsMutuallyExclusive("delete", "keep")

	return cmd
}

// runContext bounds a pass by the configured run timeout and stops it on interrupt.
func runContext(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt)
	ctx, cancel := context.WithTimeout(ctx, cfg.RunTimeout())
	return ctx, func() {
		cancel()
		stop()
	}
}

func writeMetrics(path string) error {
	if path == "" {
		return nil
	}
	return wire.Metrics().WriteTextfile(path)
}

func parseInstanceIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := parseInstanceID(arg)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// deleteOverride turns --delete/--keep into the request override. Neither flag means
// the form and app settings decide.
func deleteOverride(deleteSet, deleteValue, keepSet, keepValue bool) *bool {
	switch {
	case deleteSet:
		return &deleteValue
	case keepSet:
		v := !keepValue
		return &v
	default:
		return nil
	}
}
