package main

import (
	"errors"
	"fmt"

	"github.com/hazyhaar/lavinia/pkg/export"
	"github.com/spf13/cobra"
)

var exportPath string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the seeded dataset to an XLSX workbook",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := commandConfig(cmd)
		if err != nil {
			return err
		}
		ctx := cmd.Context()

		st, seeder, closeStore, err := seedStore(ctx, cfg, newLogger(cfg))
		if err != nil {
			return err
		}
		defer closeStore()
		if err := seeder.Err(); err != nil {
			return describe(err)
		}

		ds, err := st.Snapshot(ctx)
		if err != nil {
			return err
		}
		if ds.Empty() {
			return errors.New("store holds no votes")
		}
		if err := export.SaveFile(ds, exportPath); err != nil {
			return err
		}
		fmt.Printf("Exported %d elections, %d party votes -> %s\n",
			len(ds.ElectionParameters), len(ds.PartyVotes), exportPath)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportPath, "output", "o", "lavinia.xlsx", "workbook path")
	rootCmd.AddCommand(exportCmd)
}
