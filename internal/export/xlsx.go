package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/CratePack/internal/model"
)

const (
	placementsSheet = "Placements"
	summarySheet    = "Summary"
)

// ExportExcel writes a workbook with a "Placements" sheet (one row per placed
// box) and a "Summary" sheet (one row per bin plus totals).
func ExportExcel(path string, result model.PackResult, container model.Container) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("no bins to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), placementsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return fmt.Errorf("create summary sheet: %w", err)
	}

	header := []interface{}{"Bin", "Box", "Label", "x", "y", "z", "w", "h", "d", "Weight"}
	if err := f.SetSheetRow(placementsSheet, "A1", &header); err != nil {
		return err
	}
	row := 2
	for _, b := range result.Bins {
		for _, p := range b.Placements {
			values := []interface{}{
				b.Index, p.BoxID, p.Label,
				p.Position.X, p.Position.Y, p.Position.Z,
				p.Size.X, p.Size.Y, p.Size.Z,
				p.Weight,
			}
			cell, err := excelize.CoordinatesToCellName(1, row)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(placementsSheet, cell, &values); err != nil {
				return err
			}
			row++
		}
	}

	if err := writeSummarySheet(f, result, container); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSummarySheet(f *excelize.File, result model.PackResult, container model.Container) error {
	header := []interface{}{"Bin", "Width", "Height", "Depth", "Boxes", "Weight", "Fill %"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return err
	}

	row := 2
	for _, b := range result.Bins {
		values := []interface{}{
			b.Index, b.Size.X, b.Size.Y, b.Size.Z,
			len(b.Placements), b.Weight, round1(b.Fill()),
		}
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
		row++
	}

	row++
	totals := [][]interface{}{
		{"Container", container.Label},
		{"Bins used", len(result.Bins)},
		{"Boxes placed", result.PlacedCount()},
		{"Boxes unplaced", len(result.Unplaced)},
		{"Overall fill %", round1(result.TotalFill())},
	}
	for _, values := range totals {
		cell, err := excelize.CoordinatesToCellName(1, row)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &values); err != nil {
			return err
		}
		row++
	}
	return nil
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
