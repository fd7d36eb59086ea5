// Package cli implements the candid command-line interface.
package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "candid",
	Short: "Candid interview-experience forum core",
	Long: `Candid is the token-ledger, content-unlock, and correction-review
core of a community interview-experience forum. Members spend tokens to
unlock interview write-ups and corrections; selected correction authors
are rewarded from the same ledger.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "path to config file")
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "candid.toml"
	}
	return filepath.Join(home, ".candid", "config.toml")
}
