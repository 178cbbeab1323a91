package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/odkupload/internal/wire"
)

// CredentialsCmd returns the credentials command
func CredentialsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage server credentials",
		Long:  `Store or clear the username and password used for a server's host.`,
	}

	cmd.AddCommand(credentialsSetCmd())
	cmd.AddCommand(credentialsClearCmd())

	return cmd
}

func credentialsSetCmd() *cobra.Command {
	var username string
	var password string

	cmd := &cobra.Command{
		Use:   "set [server-url]",
		Short: "Store credentials for a server",
		Long: `Store credentials for the host of server-url. Without an argument the
configured server_url is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CredentialAdapter().Set(cmd.Context(), serverArg(args), username, password)
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Username (required)")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Password")
	cmd.MarkFlagRequired("username")

	return cmd
}

func credentialsClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear [server-url]",
		Short: "Remove stored credentials for a server",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CredentialAdapter().Clear(cmd.Context(), serverArg(args))
		},
	}
}

func serverArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.ServerURL
}
