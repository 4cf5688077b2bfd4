// Package cli provides the command-line shell over the portfolio ledger.
// It translates ledger failures into user-facing messages; the ledger
// itself stays an embedded library.
package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"paper-trader/internal/config"
	"paper-trader/internal/ledger"
	"paper-trader/internal/pricing"
	"paper-trader/internal/store"
)

// Version information
const Version = "0.1.0"

// App holds the application dependencies.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Ledger *ledger.Ledger
	Source pricing.PriceSource
	Store  store.StateStore
	Saver  *store.AsyncSaver
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	rootCmd := &cobra.Command{
		Use:     "paper-trader",
		Short:   "Paper-trading portfolio simulator",
		Long:    "Simulated equity trading against a virtual cash balance, with stop-loss and take-profit auto-close.",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			app.close()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newBuyCmd(app),
		newSellCmd(app),
		newResetCmd(app),
		newPositionsCmd(app),
		newTradesCmd(app),
		newStatusCmd(app),
		newWatchCmd(app),
		newAskCmd(app),
	)

	return rootCmd
}

// init wires the price source, state store, and ledger, and hydrates the
// ledger from persisted session state.
func (a *App) init() error {
	if a.Config.HasLiveFeed() {
		a.Source = pricing.NewFeedClient(pricing.FeedConfig{
			BaseURL:    a.Config.Feed.BaseURL,
			APIKey:     a.Config.Feed.APIKey,
			QuoteTTL:   a.Config.Feed.QuoteTTL,
			BatchSize:  a.Config.Feed.BatchSize,
			BatchDelay: a.Config.Feed.BatchDelay,
			Timeout:    a.Config.Feed.Timeout,
			Logger:     a.Logger,
		})
		a.Logger.Debug().Str("base_url", a.Config.Feed.BaseURL).Msg("Live feed initialized")
	} else {
		a.Source = pricing.NewCatalogSource()
		a.Logger.Debug().Msg("Catalog price source initialized")
	}

	st, err := store.NewSQLiteStore(a.Config.Store.Path)
	if err != nil {
		return fmt.Errorf("initializing store: %w", err)
	}
	a.Store = st
	a.Saver = store.NewAsyncSaver(st, a.Config.Simulator.Session, a.Logger)

	a.Ledger = ledger.New(ledger.Config{
		InitialBalance:  a.Config.Simulator.InitialBalance,
		Source:          a.Source,
		SellPricePolicy: ledger.SellPricePolicy(a.Config.Simulator.SellPricePolicy),
		TradeRetention:  a.Config.Simulator.TradeRetention,
		Logger:          a.Logger,
		Persist:         a.Saver.Enqueue,
		ResolveName: func(symbol string) string {
			if inst, ok := pricing.LookupInstrument(symbol); ok {
				return inst.Name
			}
			return ""
		},
	})

	snap, found, err := st.Load(cmdContext(), a.Config.Simulator.Session)
	if err != nil {
		a.Logger.Warn().Err(err).Msg("Failed to load session state, starting fresh")
	} else if found {
		a.Ledger.Restore(snap)
		a.Logger.Debug().Str("session", a.Config.Simulator.Session).Msg("Session state restored")
	}

	return nil
}

func cmdContext() context.Context {
	return context.Background()
}

func (a *App) close() {
	if a.Saver != nil {
		a.Saver.Close()
	}
	if a.Store != nil {
		if err := a.Store.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close store")
		}
	}
}
