package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/candid-forum/candid/internal/daemon"
	"github.com/candid-forum/candid/internal/infra/sqlite"
)

// ─── Account Administration ─────────────────────────────────────────────────
// Local admin commands operating directly on the store. Intended for
// provisioning and inspection on the daemon host; the running daemon
// shares the database through WAL mode.

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountCreateCmd)
	accountCmd.AddCommand(accountShowCmd)
	accountCmd.AddCommand(accountLedgerCmd)

	accountCreateCmd.Flags().Int64("seed", 0, "initial token balance")
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage token accounts",
}

var accountCreateCmd = &cobra.Command{
	Use:   "create USER_ID",
	Short: "Provision a token account",
	Args:  cobra.ExactArgs(1),
	RunE:  runAccountCreate,
}

func runAccountCreate(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetInt64("seed")
	if seed < 0 {
		return fmt.Errorf("seed balance cannot be negative")
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.CreateAccount(context.Background(), args[0], seed); err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	fmt.Printf("Account %s created with %d tokens\n", args[0], seed)
	return nil
}

var accountShowCmd = &cobra.Command{
	Use:   "show USER_ID",
	Short: "Show an account's balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		account, err := db.GetAccount(context.Background(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("User:     %s\n", account.UserID)
		fmt.Printf("Balance:  %d tokens\n", account.TokenBalance)
		fmt.Printf("Created:  %s\n", account.CreatedAt.Format("2006-01-02 15:04:05"))
		return nil
	},
}

var accountLedgerCmd = &cobra.Command{
	Use:   "ledger USER_ID",
	Short: "Show an account's recent token ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return err
		}
		defer db.Close()

		entries, err := db.LedgerEntries(context.Background(), args[0], 50)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No ledger entries.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "WHEN\tTYPE\tREASON\tAMOUNT\tBALANCE\tPOST")
		for _, e := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\n",
				e.CreatedAt.Format("2006-01-02 15:04"),
				e.EntryType, e.Reason, e.Amount, e.BalanceAfter, e.PostID)
		}
		return w.Flush()
	},
}

func openStore() (*sqlite.DB, error) {
	cfg, err := daemon.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	db, err := sqlite.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", cfg.Store.Path, err)
	}
	return db, nil
}
