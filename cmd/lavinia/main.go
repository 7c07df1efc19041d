package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hazyhaar/lavinia/pkg/api"
	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/hazyhaar/lavinia/pkg/importer"
	"github.com/hazyhaar/lavinia/pkg/store"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	cfgPath   string
	overrides config
)

var rootCmd = &cobra.Command{
	Use:           "lavinia",
	Short:         "Read-only API over Norwegian parliamentary election results",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Seed the store and start the HTTP server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := commandConfig(cmd)
		if err != nil {
			return err
		}
		return serve(cmd.Context(), cfg, newLogger(cfg))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config.yaml", "path to config file")
	rootCmd.PersistentFlags().StringVar(&overrides.DataDir, "data-dir", "", "root of the country data directories")
	rootCmd.PersistentFlags().StringVar(&overrides.Country, "country", "", "country code to seed")
	rootCmd.PersistentFlags().StringVar(&overrides.Store, "store", "", "store backend: memory or sqlite")
	rootCmd.PersistentFlags().StringVar(&overrides.DBPath, "db", "", "SQLite database path")
	serveCmd.Flags().StringVar(&overrides.Addr, "addr", "", "listen address")

	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// commandConfig loads the config file and applies the flags set on cmd.
func commandConfig(cmd *cobra.Command) (config, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	for name, pair := range map[string][2]*string{
		"addr":     {&cfg.Addr, &overrides.Addr},
		"data-dir": {&cfg.DataDir, &overrides.DataDir},
		"country":  {&cfg.Country, &overrides.Country},
		"store":    {&cfg.Store, &overrides.Store},
		"db":       {&cfg.DBPath, &overrides.DBPath},
	} {
		if f := flags.Lookup(name); f != nil && f.Changed {
			*pair[0] = *pair[1]
		}
	}
	return cfg, cfg.validate()
}

// backend is a store the initializer can seed and the registry can read.
type backend interface {
	importer.Store
	election.Snapshotter
}

func openStore(cfg config) (backend, func() error, error) {
	if cfg.Store == "sqlite" {
		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	}
	return store.NewMemory(), func() error { return nil }, nil
}

// seedStore opens the configured store and seeds it. A failed seed is
// logged and leaves the store empty.
func seedStore(ctx context.Context, cfg config, logger *slog.Logger) (backend, *importer.Initializer, func() error, error) {
	st, closeStore, err := openStore(cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	adapter, err := importer.ForCountry(cfg.Country)
	if err != nil {
		closeStore()
		return nil, nil, nil, err
	}
	seeder := importer.NewInitializer(st, adapter, cfg.DataDir, logger)
	seeder.Seed(ctx)
	return st, seeder, closeStore, nil
}

func serve(ctx context.Context, cfg config, logger *slog.Logger) error {
	st, seeder, closeStore, err := seedStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	reg := election.NewRegistry(st)
	if err := reg.Load(ctx); err != nil {
		return fmt.Errorf("load registry: %w", err)
	}
	c := reg.Counts()
	logger.Info("dataset loaded", "elections", c.Elections, "party_votes", c.PartyVotes, "parties", c.Parties)

	opts := api.Options{Logger: logger, Seed: seeder}
	if cfg.MCP {
		opts.MCP = api.NewMCPServer(reg, Version, logger)
	}
	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           api.NewRouter(reg, opts),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	// SIGHUP: reload the registry from the store.
	sighup := make(chan os.Signal, 1)
	signal.Notify(sighup, syscall.SIGHUP)
	defer signal.Stop(sighup)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-sighup:
				logger.Info("SIGHUP received, reloading dataset")
				if err := reg.Reload(ctx); err != nil {
					logger.Error("reload failed", "error", err)
					continue
				}
				c := reg.Counts()
				logger.Info("dataset reloaded", "elections", c.Elections, "party_votes", c.PartyVotes)
			}
		}
	})

	g.Go(func() error {
		logger.Info("lavinia listening", "addr", cfg.Addr, "mcp", cfg.MCP)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
