package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/odkupload/internal/adapters/filesystem"
	"github.com/example/odkupload/internal/config"
	"github.com/example/odkupload/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var serverURL string
	var autoSend string
	var deleteAfterSend bool
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the odkupload config and database",
		Long: `Create ~/.odkupload/config.json with a generated device id, the instance
storage directory and the database with the required schema.

Examples:
  odkupload init --server-url https://aggregate.example.net
  odkupload init --server-url https://aggregate.example.net --auto-send wifi_only --delete-after-send`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath()
			if err != nil {
				return err
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config already exists at %s (use --force to overwrite)", path)
			}

			newCfg := config.Default()
			newCfg.ServerURL = serverURL
			newCfg.AutoSend = autoSend
			newCfg.DeleteAfterSend = deleteAfterSend
			if err := newCfg.Validate(); err != nil {
				return err
			}

			if err := config.SaveConfig(path, newCfg); err != nil {
				return err
			}
			fmt.Printf("✓ Config written to %s (device id %s)\n", path, newCfg.DeviceID)

			store, err := filesystem.NewInstanceStore(newCfg.InstancesDir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(store.InstancesDir(), 0755); err != nil {
				return fmt.Errorf("failed to create instances directory: %w", err)
			}
			fmt.Printf("✓ Instance storage at %s\n", store.InstancesDir())

			if newCfg.DBPath != "" {
				db.SetPath(newCfg.DBPath)
			}
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}
			if _, err := db.GetDB(); err != nil {
				return err
			}
			defer db.Close()
			fmt.Printf("✓ Database initialized at %s\n", dbPath)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  odkupload form add <form-id>")
			fmt.Println("  odkupload instance add <instance.xml> --form <form-id> --finalized")
			fmt.Println("  odkupload send --network wifi")

			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "", "OpenRosa server base URL")
	cmd.Flags().StringVar(&autoSend, "auto-send", "off", "Auto-send mode: off, wifi_only, cellular_only, wifi_and_cellular")
	cmd.Flags().BoolVar(&deleteAfterSend, "delete-after-send", false, "Delete instances after they are sent")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config")

	return cmd
}
