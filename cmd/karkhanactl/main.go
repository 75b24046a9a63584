// Command karkhanactl is the operations CLI: wallet reconciliation,
// monthly summaries, and Google Sheets export against the same database
// the API server uses.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"karkhana/internal/config"
	"karkhana/internal/core"
	"karkhana/internal/log"
	"karkhana/internal/services"
	"karkhana/internal/sheets/google"
	"karkhana/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentCLI
	log.SetDefault(log.New(logCfg))

	root := &cobra.Command{
		Use:           "karkhanactl",
		Short:         "Operations CLI for the karkhana backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(reconcileCmd(), summaryCmd(), exportCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func openRepo() (*storage.SQLiteRepository, *config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, nil, err
	}
	return repo, cfg, nil
}

func reconcileCmd() *cobra.Command {
	var walletID int64

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Rebuild wallet balances from the transaction ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, _, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()
			ctx := cmd.Context()

			if walletID > 0 {
				ledger := services.NewLedgerService(repo, nil)
				res, err := ledger.ReconcileWallet(ctx, walletID)
				if err != nil {
					return err
				}
				printReconcile(res)
				return nil
			}

			results, err := repo.ReconcileAllWallets(ctx)
			if err != nil {
				return err
			}
			for _, res := range results {
				printReconcile(res)
			}
			fmt.Printf("%d wallets reconciled\n", len(results))
			return nil
		},
	}
	cmd.Flags().Int64Var(&walletID, "wallet", 0, "reconcile a single wallet by id")
	return cmd
}

func printReconcile(res storage.ReconcileResult) {
	drift := res.Drift()
	if drift.IsZero() {
		fmt.Printf("wallet %d: %s (no drift)\n", res.WalletID, res.After)
		return
	}
	fmt.Printf("wallet %d: %s -> %s (drift %s repaired)\n", res.WalletID, res.Before, res.After, drift)
}

func monthFlag(cmd *cobra.Command) (core.Month, error) {
	v, err := cmd.Flags().GetString("month")
	if err != nil {
		return core.Month{}, err
	}
	if v == "" {
		return core.MonthOf(time.Now()), nil
	}
	return core.ParseMonth(v)
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Print the monthly financial summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			repo, _, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			ledger := services.NewLedgerService(repo, nil)
			s, err := ledger.MonthlySummary(cmd.Context(), month)
			if err != nil {
				return err
			}

			fmt.Printf("Month:        %s\n", s.Month)
			fmt.Printf("Income:       %s\n", s.Income)
			fmt.Printf("Expense:      %s\n", s.Expense)
			fmt.Printf("Balance:      %s\n", s.Balance)
			fmt.Printf("Budget:       %s used of %s (%d%%)\n", s.BudgetUsed, s.BudgetLimit, s.SpendingPct)
			fmt.Printf("Savings rate: %d%%\n", s.SavingsRatePct)
			fmt.Printf("Runway:       %s months\n", s.Runway)
			if s.TopCategory != "" {
				fmt.Printf("Top category: %s\n", s.TopCategory)
			}
			if s.Solvency.IsInsolvent {
				fmt.Printf("INSOLVENT: short by %s\n", s.Solvency.Gap)
			}
			for _, c := range s.Categories {
				fmt.Printf("  %-20s %s / %s (%d%%)\n", c.Name, c.Used, c.Limit, c.Pct)
			}
			return nil
		},
	}
	cmd.Flags().String("month", "", "month to summarize (YYYY-MM, default current)")
	return cmd
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Append the monthly summary to the configured Google Sheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			month, err := monthFlag(cmd)
			if err != nil {
				return err
			}
			repo, cfg, err := openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			if !cfg.SheetsEnabled() {
				return fmt.Errorf("sheets export not configured: set GOOGLE_SPREADSHEET_ID")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			ledger := services.NewLedgerService(repo, nil)
			s, err := ledger.MonthlySummary(ctx, month)
			if err != nil {
				return err
			}

			writer, err := google.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName,
				cfg.GoogleCredentialsFile, cfg.GoogleCredentialsJSON)
			if err != nil {
				return err
			}
			rowRef, err := writer.AppendSummary(ctx, s)
			if err != nil {
				return err
			}
			fmt.Printf("exported %s to %s\n", month, rowRef)
			return nil
		},
	}
	cmd.Flags().String("month", "", "month to export (YYYY-MM, default current)")
	return cmd
}
