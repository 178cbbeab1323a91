package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/odkupload/internal/config"
	"github.com/example/odkupload/internal/logging"
	"github.com/example/odkupload/internal/version"
	"github.com/example/odkupload/internal/wire"
)

var (
	configPath string
	cfg        *config.Config
)

// RootCmd returns the odkupload root command with every subcommand attached.
func RootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "odkupload",
		Short:   "Send finalized ODK form instances to an OpenRosa server",
		Version: version.String(),
		Long: `odkupload keeps a local ledger of ODK form instances and uploads finalized
ones to an OpenRosa server, either automatically when the network allows it
or explicitly on request.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadConfig,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: ~/.odkupload/config.json)")

	rootCmd.AddCommand(InitCmd())
	rootCmd.AddCommand(SendCmd())
	rootCmd.AddCommand(SubmitCmd())
	rootCmd.AddCommand(InstanceCmd())
	rootCmd.AddCommand(FormCmd())
	rootCmd.AddCommand(CredentialsCmd())

	return rootCmd
}

// resolveConfigPath returns the --config value or the default location.
func resolveConfigPath() (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DefaultPath()
}

// loadConfig reads the config file and wires services with it. init runs without one.
func loadConfig(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "init" {
		logging.Initialize(config.DefaultLogLevel, config.DefaultLogFormat)
		return nil
	}

	path, err := resolveConfigPath()
	if err != nil {
		return err
	}

	loaded, err := config.LoadConfig(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("no config at %s - run 'odkupload init' first", path)
		}
		return err
	}

	cfg = loaded
	logging.Initialize(cfg.LogLevel, cfg.LogFormat)
	wire.Configure(cfg)
	return nil
}
