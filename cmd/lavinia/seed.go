package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/hazyhaar/lavinia/pkg/importer"
	"github.com/hazyhaar/lavinia/pkg/store"
	"github.com/spf13/cobra"
)

var checkOnly bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the SQLite store from the country data files",
	Long: `Seed loads CountyData.csv, Elections.csv and every <year>.csv of the
configured country into the SQLite database. A store that already holds votes
is left untouched. With --check the files are only validated.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := commandConfig(cmd)
		if err != nil {
			return err
		}
		adapter, err := importer.ForCountry(cfg.Country)
		if err != nil {
			listAdapters()
			return err
		}

		if checkOnly {
			layout, err := adapter.Layout(cfg.DataDir)
			if err != nil {
				return describe(err)
			}
			ds, err := importer.BuildDataset(cmd.Context(), layout)
			if err != nil {
				return describe(err)
			}
			fmt.Printf("[%s] OK (not committed)\n", adapter.ID())
			printStats(ds)
			return nil
		}

		db, err := store.OpenSQLite(cfg.DBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		seeder := importer.NewInitializer(db, adapter, cfg.DataDir, newLogger(cfg))
		fmt.Printf("[%s] Seeding %s from %s...\n", adapter.ID(), cfg.DBPath, cfg.DataDir)
		if err := seeder.Run(cmd.Context()); err != nil {
			return describe(err)
		}
		if seeder.Skipped() {
			fmt.Printf("[%s] Already seeded, nothing to do\n", adapter.ID())
			return nil
		}
		fmt.Printf("[%s] OK -> %s\n", adapter.ID(), cfg.DBPath)
		printStats(seeder.Dataset())
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&checkOnly, "check", false, "validate the data files without writing")
	rootCmd.AddCommand(seedCmd)
}

func printStats(ds *election.Dataset) {
	fmt.Printf("  country             %s (%s)\n", ds.Country.Code, ds.Country.Name)
	fmt.Printf("  district metrics    %d\n", len(ds.DistrictMetrics))
	fmt.Printf("  elections           %d\n", len(ds.ElectionParameters))
	fmt.Printf("  party votes         %d\n", len(ds.PartyVotes))
	fmt.Printf("  parties             %d\n", len(ds.Parties))
}

func listAdapters() {
	fmt.Fprintln(os.Stderr, "Available countries:")
	for _, a := range importer.All() {
		fmt.Fprintf(os.Stderr, "  %-4s %-15s %s\n", a.Country(), a.ID(), a.Description())
	}
}

// describe prefixes seeding errors with their kind.
func describe(err error) error {
	var e *importer.Error
	if errors.As(err, &e) {
		return fmt.Errorf("seeding failed (%s): %w", e.Kind, err)
	}
	return fmt.Errorf("seeding failed: %w", err)
}
