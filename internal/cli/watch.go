package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"paper-trader/internal/coach"
	"paper-trader/internal/ledger"
)

func newWatchCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Run the auto-close sweep until interrupted",
		Long:  "Keep the session alive: refresh mark prices on the configured interval and auto-close positions crossing their stop-loss or take-profit. Ctrl-C to stop.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithCancel(cmdContext())
			defer cancel()

			sweeper := ledger.NewSweeper(app.Ledger, app.Config.Simulator.SweepInterval, app.Logger)
			sweeper.Start(ctx)

			fmt.Printf("Watching %d position(s), sweep every %s. Ctrl-C to stop.\n",
				app.Ledger.Summarize().OpenPositions, app.Config.Simulator.SweepInterval)

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
			<-sigs

			sweeper.Stop()
			fmt.Println("Stopped.")
			return nil
		},
	}
}

func newAskCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "ask QUESTION...",
		Short: "Ask the coach a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := app.Ledger.Summarize()
			answer := coach.Respond(strings.Join(args, " "), coach.Context{
				Positions: app.Ledger.Positions(),
				Balance:   s.Balance,
				TotalPnL:  s.TotalPnL,
			})
			fmt.Println(answer)
			return nil
		},
	}
}
