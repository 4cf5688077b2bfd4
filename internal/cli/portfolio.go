package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/spf13/cobra"

	"paper-trader/internal/market"
	"paper-trader/internal/models"
)

func newPositionsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "positions",
		Short: "List open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			positions := app.Ledger.Positions()
			if len(positions) == 0 {
				fmt.Println("No open positions.")
				return nil
			}

			fmt.Println()
			fmt.Printf("%-8s %-24s %8s %10s %10s %10s %9s\n",
				"Symbol", "Name", "Shares", "Avg", "Mark", "Value", "P&L%")
			fmt.Println("────────────────────────────────────────────────────────────────────────────────────")
			for _, p := range positions {
				line := fmt.Sprintf("%-8s %-24s %8d %10.2f %10.2f %10.2f %+8.2f%%",
					p.Symbol, truncate(p.Name, 24), p.Shares, p.AvgPrice, p.CurrentPrice, p.MarketValue(), p.PnLPercent())
				if p.PnL() >= 0 {
					color.Green("%s", line)
				} else {
					color.Red("%s", line)
				}
			}
			fmt.Println()
			return nil
		},
	}
}

func newTradesCmd(app *App) *cobra.Command {
	var exportPath string

	cmd := &cobra.Command{
		Use:   "trades",
		Short: "Show the trade log, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			trades := app.Ledger.Trades()
			if len(trades) == 0 {
				fmt.Println("No trades yet.")
				return nil
			}

			if exportPath != "" {
				return exportTrades(trades, exportPath)
			}

			fmt.Println()
			fmt.Printf("%-20s %-8s %-5s %7s %10s %11s %-12s %s\n",
				"Time", "Symbol", "Side", "Shares", "Price", "Total", "Status", "Reason")
			fmt.Println("──────────────────────────────────────────────────────────────────────────────────────")
			for _, t := range trades {
				fmt.Printf("%-20s %-8s %-5s %7d %10.2f %11.2f %-12s %s\n",
					t.Timestamp.Local().Format("2006-01-02 15:04:05"),
					t.Symbol, t.Side, t.Shares, t.Price, t.Total, t.Status, t.Reason)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write the trade log to a CSV file")

	return cmd
}

func exportTrades(trades []*models.Trade, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	defer f.Close()

	if err := gocsv.MarshalFile(&trades, f); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	fmt.Printf("Exported %d trades to %s\n", len(trades), path)
	return nil
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show portfolio summary and market session",
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Ledger.Summarize()

			fmt.Println()
			color.Cyan("Portfolio")
			fmt.Println("─────────────────────────────────────────")
			fmt.Printf("%-18s $%.2f\n", "Cash balance", s.Balance)
			fmt.Printf("%-18s $%.2f\n", "Positions value", s.PortfolioValue)
			fmt.Printf("%-18s $%.2f\n", "Total value", s.TotalValue)
			pnlLine := fmt.Sprintf("%-18s $%+.2f (%+.2f%%)", "Total P&L", s.TotalPnL, s.TotalPnLPercent)
			if s.TotalPnL >= 0 {
				color.Green("%s", pnlLine)
			} else {
				color.Red("%s", pnlLine)
			}
			fmt.Printf("%-18s %d\n", "Open positions", s.OpenPositions)

			state := market.GetStatus()
			fmt.Println()
			color.Cyan("Market")
			fmt.Println("─────────────────────────────────────────")
			fmt.Printf("%-18s %s\n", "Session", state.Status)
			fmt.Printf("%-18s %s\n", "Note", state.Message)
			if !state.IsOpen && !state.NextOpen.IsZero() {
				fmt.Printf("%-18s %s\n", "Opens in", market.FormatTimeUntil(time.Now(), state.NextOpen))
			}
			if state.IsOpen && !state.NextClose.IsZero() {
				fmt.Printf("%-18s %s\n", "Closes in", market.FormatTimeUntil(time.Now(), state.NextClose))
			}
			fmt.Println()
			return nil
		},
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
