package server

import (
	"context"
	"fmt"

	"github.com/JadonKrys/file-catalog/internal/agent"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/JadonKrys/file-catalog/internal/config/server"
)

func NewAgentCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agent",
		Short: "Start the file catalog agent",
		Long: `Start the file catalog agent.

The agent opens the configured metadata store, applies pending migrations
and serves the catalog REST API until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			applyStoreFlags(cmd)
			if cmd.Flags().Changed("port") {
				port, _ := cmd.Flags().GetInt("port")
				viper.Set("http.port", port)
			}
			if cmd.Flags().Changed("debug") {
				viper.Set("http.debug", true)
			}

			cfg, err := config.LoadServerConfig()
			if err != nil {
				return fmt.Errorf("failed to load server configuration: %w", err)
			}

			agent := agent.NewAgent(cfg)
			if err := agent.Serve(context.Background()); err != nil {
				return err
			}

			return nil
		},
	}

	cmd.Flags().Int("port", 0, "port to listen on (overrides http.port)")
	cmd.Flags().Bool("debug", false, "enable request debugging")
	addStoreFlags(cmd)

	return cmd
}

func addStoreFlags(cmd *cobra.Command) {
	cmd.Flags().String("db-type", "", "metadata store type (sqlite, badger, memory)")
	cmd.Flags().String("db-host", "", "metadata store location (database file or badger directory)")
}

// applyStoreFlags copies explicitly set store flags into viper. The location
// lands on the path key of the effective store type.
func applyStoreFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("db-type") {
		kind, _ := cmd.Flags().GetString("db-type")
		viper.Set("metadata.type", kind)
	}
	if cmd.Flags().Changed("db-host") {
		host, _ := cmd.Flags().GetString("db-host")
		switch viper.GetString("metadata.type") {
		case "badger":
			viper.Set("metadata.badger.path", host)
		default:
			viper.Set("metadata.sqlite.path", host)
		}
	}
}
