package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/candid-forum/candid/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("host", "", "listen host (overrides config)")
	serveCmd.Flags().Int("port", 0, "listen port (overrides config)")
	serveCmd.Flags().String("db", "", "sqlite database path (overrides config)")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the candid HTTP API daemon",
	Long: `Start the candid daemon: opens the SQLite store, runs migrations,
and serves the forum core API until interrupted.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return err
	}

	if host, _ := cmd.Flags().GetString("host"); host != "" {
		cfg.API.Host = host
	}
	if port, _ := cmd.Flags().GetInt("port"); port != 0 {
		cfg.API.Port = port
	}
	if db, _ := cmd.Flags().GetString("db"); db != "" {
		cfg.Store.Path = db
	}

	return daemon.Run(context.Background(), cfg)
}
