package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/piwi3910/CratePack/internal/model"
)

// placementHeader is the first row of every placement CSV.
var placementHeader = []string{"Bin", "Box", "x", "y", "z", "w", "h", "d"}

// formatNum writes v with the fewest digits that round-trip.
func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteCSV writes one row per placed box: bin index, box id, position and
// oriented extents. Bins are written in order, placements in packing order.
func WriteCSV(w io.Writer, result model.PackResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(placementHeader); err != nil {
		return err
	}
	for _, b := range result.Bins {
		for _, p := range b.Placements {
			row := []string{
				strconv.Itoa(b.Index),
				strconv.Itoa(p.BoxID),
				formatNum(p.Position.X),
				formatNum(p.Position.Y),
				formatNum(p.Position.Z),
				formatNum(p.Size.X),
				formatNum(p.Size.Y),
				formatNum(p.Size.Z),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes the placement records of result to path.
func ExportCSV(path string, result model.PackResult) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("no bins to export")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteCSV(f, result); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// WriteItemsCSV writes a packing list in the format the importer reads.
func WriteItemsCSV(w io.Writer, items []model.Item) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Label", "Width", "Height", "Depth", "Quantity", "Weight"}); err != nil {
		return err
	}
	for _, it := range items {
		row := []string{
			it.Label,
			formatNum(it.Width),
			formatNum(it.Height),
			formatNum(it.Depth),
			strconv.Itoa(it.Quantity),
			formatNum(it.Weight),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
