// Package export writes a seeded election dataset as an XLSX workbook.
package export

import (
	"fmt"
	"io"

	"github.com/hazyhaar/lavinia/pkg/election"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetParameters = "Parameters"
	SheetMetrics    = "Metrics"
	SheetVotes      = "Votes"
	SheetParties    = "Parties"
)

type sheet struct {
	name   string
	header []any
	rows   [][]any
}

// Workbook builds the workbook of ds. The caller closes it.
func Workbook(ds *election.Dataset) (*excelize.File, error) {
	f := excelize.NewFile()
	for i, s := range sheets(ds) {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				f.Close()
				return nil, fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeRows(f, s); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Write streams the workbook of ds to w.
func Write(ds *election.Dataset, w io.Writer) error {
	f, err := Workbook(ds)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// SaveFile writes the workbook of ds to path.
func SaveFile(ds *election.Dataset, path string) error {
	f, err := Workbook(ds)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func writeRows(f *excelize.File, s sheet) error {
	rows := append([][]any{s.header}, s.rows...)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", s.name, i+1, err)
		}
	}
	return nil
}

func sheets(ds *election.Dataset) []sheet {
	params := sheet{
		name: SheetParameters,
		header: []any{"Year", "Type", "Algorithm", "First Divisor", "Threshold", "Area Factor",
			"District Seats", "Leveling Seats", "Total Votes"},
	}
	for _, p := range ds.ElectionParameters {
		var divisor any
		if d, ok := p.Algorithm.FirstDivisor(); ok {
			divisor = d
		}
		params.rows = append(params.rows, []any{p.ElectionYear, p.ElectionType, p.Algorithm.Algorithm.String(),
			divisor, p.Threshold, p.AreaFactor, p.DistrictSeats, p.LevelingSeats, p.TotalVotes})
	}

	metrics := sheet{name: SheetMetrics, header: []any{"Year", "District", "Area", "Population", "Seats"}}
	for _, m := range ds.DistrictMetrics {
		metrics.rows = append(metrics.rows, []any{m.ElectionYear, m.District, m.Area, m.Population, m.Seats})
	}

	votes := sheet{name: SheetVotes, header: []any{"Year", "Type", "District", "Party", "Votes", "Share"}}
	for _, v := range ds.PartyVotes {
		votes.rows = append(votes.rows, []any{v.ElectionYear, v.ElectionType, v.District, v.Party, v.Votes, v.Share})
	}

	parties := sheet{name: SheetParties, header: []any{"Code", "Name"}}
	for _, p := range ds.Parties {
		parties.rows = append(parties.rows, []any{p.Code, p.Name})
	}

	return []sheet{params, metrics, votes, parties}
}
