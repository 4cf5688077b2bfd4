package cli

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"paper-trader/internal/errors"
	"paper-trader/internal/ledger"
)

func newBuyCmd(app *App) *cobra.Command {
	var stopLoss, takeProfit float64

	cmd := &cobra.Command{
		Use:   "buy SYMBOL SHARES",
		Short: "Buy shares at the current price",
		Long:  "Buy shares of a symbol at the current source price. A repeat buy of a held symbol merges into the existing position at the weighted-average cost.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := args[0]
			shares, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid share count: %s", args[1])
			}

			sl := ledger.KeepThreshold()
			if cmd.Flags().Changed("stop-loss") {
				sl = ledger.SetThreshold(stopLoss)
			}
			tp := ledger.KeepThreshold()
			if cmd.Flags().Changed("take-profit") {
				tp = ledger.SetThreshold(takeProfit)
			}

			trade, err := app.Ledger.Buy(cmdContext(), symbol, shares, sl, tp)
			if err != nil {
				return friendlyTradeError(err)
			}

			color.Green("✓ Bought %d %s @ $%.2f (total $%.2f)", trade.Shares, trade.Symbol, trade.Price, trade.Total)
			fmt.Printf("  Cash balance: $%.2f\n", app.Ledger.Balance())
			return nil
		},
	}

	cmd.Flags().Float64Var(&stopLoss, "stop-loss", 0, "auto-close when the position drops this percent below cost")
	cmd.Flags().Float64Var(&takeProfit, "take-profit", 0, "auto-close when the position gains this percent over cost")

	return cmd
}

func newSellCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "sell SYMBOL SHARES",
		Short: "Sell shares of an open position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			symbol := args[0]
			shares, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid share count: %s", args[1])
			}

			trade, err := app.Ledger.Sell(cmdContext(), symbol, shares)
			if err != nil {
				return friendlyTradeError(err)
			}

			color.Green("✓ Sold %d %s @ $%.2f (total $%.2f)", trade.Shares, trade.Symbol, trade.Price, trade.Total)
			fmt.Printf("  Cash balance: $%.2f\n", app.Ledger.Balance())
			return nil
		},
	}
}

func newResetCmd(app *App) *cobra.Command {
	var balance float64

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the portfolio to a fresh balance",
		Long:  "Clear all positions and trades and set the cash balance. This cannot be undone.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if balance <= 0 {
				return fmt.Errorf("balance must be positive")
			}
			app.Ledger.Reset(balance)
			color.Yellow("Portfolio reset to $%.2f", balance)
			return nil
		},
	}

	cmd.Flags().Float64Var(&balance, "balance", 10000, "starting cash balance")

	return cmd
}

// friendlyTradeError maps ledger failures to user-facing messages.
func friendlyTradeError(err error) error {
	switch {
	case errors.Is(err, errors.ErrInvalidQuantity):
		return fmt.Errorf("share count must be a positive whole number")
	case errors.Is(err, errors.ErrInsufficientFunds):
		return fmt.Errorf("not enough cash for this purchase")
	case errors.Is(err, errors.ErrPositionNotFound):
		return fmt.Errorf("you don't hold this symbol")
	case errors.Is(err, errors.ErrInsufficientShares):
		return fmt.Errorf("you don't hold that many shares")
	case errors.Is(err, errors.ErrPriceUnavailable):
		return fmt.Errorf("no price available for this symbol right now, try again shortly")
	default:
		return err
	}
}
