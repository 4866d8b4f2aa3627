package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/CratePack/internal/model"
)

// binSpacing is the gap left between bins laid out along x, as a fraction
// of the bin width.
const binSpacing = 0.25

// edge is a segment between two corners of a cuboid.
type edge struct {
	from, to model.Vec3
}

// cuboidEdges returns the 12 edges of the cuboid at origin with extents size.
func cuboidEdges(origin, size model.Vec3) []edge {
	x0, y0, z0 := origin.X, origin.Y, origin.Z
	x1, y1, z1 := x0+size.X, y0+size.Y, z0+size.Z
	c := [8]model.Vec3{
		{X: x0, Y: y0, Z: z0}, {X: x1, Y: y0, Z: z0}, {X: x1, Y: y1, Z: z0}, {X: x0, Y: y1, Z: z0},
		{X: x0, Y: y0, Z: z1}, {X: x1, Y: y0, Z: z1}, {X: x1, Y: y1, Z: z1}, {X: x0, Y: y1, Z: z1},
	}
	return []edge{
		{c[0], c[1]}, {c[1], c[2]}, {c[2], c[3]}, {c[3], c[0]},
		{c[4], c[5]}, {c[5], c[6]}, {c[6], c[7]}, {c[7], c[4]},
		{c[0], c[4]}, {c[1], c[5]}, {c[2], c[6]}, {c[3], c[7]},
	}
}

// binOffsets returns the x offset of each bin so they sit side by side.
func binOffsets(result model.PackResult) []float64 {
	offsets := make([]float64, len(result.Bins))
	x := 0.0
	for i, b := range result.Bins {
		offsets[i] = x
		x += b.Size.X * (1 + binSpacing)
	}
	return offsets
}

// layerName returns the DXF layer holding a bin and its boxes.
func layerName(binIndex int) string {
	return fmt.Sprintf("BIN_%d", binIndex+1)
}

// ExportDXF writes a 3-D wireframe of every bin and its placed boxes.
// Each bin gets its own layer; bins are offset along x so they do not
// overlap in the drawing. DXF y is the bin height and DXF z the bin depth.
func ExportDXF(path string, result model.PackResult) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("no bins to export")
	}

	d := dxf.NewDrawing()
	offsets := binOffsets(result)

	for i, bin := range result.Bins {
		name := layerName(bin.Index)
		// Colors 1-6 are the standard ACI red through magenta
		if _, err := d.AddLayer(name, color.ColorNumber(1+i%6), dxf.DefaultLineType, true); err != nil {
			return fmt.Errorf("add layer %s: %w", name, err)
		}

		shift := model.Vec3{X: offsets[i]}
		if err := drawCuboid(d, shift, bin.Size); err != nil {
			return err
		}
		for _, p := range bin.Placements {
			origin := model.Vec3{X: p.Position.X + shift.X, Y: p.Position.Y, Z: p.Position.Z}
			if err := drawCuboid(d, origin, p.Size); err != nil {
				return err
			}
		}

		textHeight := bin.Size.Y * 0.05
		if _, err := d.Text(fmt.Sprintf("Bin %d", bin.Index+1), shift.X, bin.Size.Y+textHeight, 0, textHeight); err != nil {
			return fmt.Errorf("add bin title: %w", err)
		}
	}

	if err := d.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func drawCuboid(d *drawing.Drawing, origin, size model.Vec3) error {
	for _, e := range cuboidEdges(origin, size) {
		if _, err := d.Line(e.from.X, e.from.Y, e.from.Z, e.to.X, e.to.Y, e.to.Z); err != nil {
			return fmt.Errorf("add edge: %w", err)
		}
	}
	return nil
}
