package export

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"

	"github.com/piwi3910/CratePack/internal/model"
)

// ─── CSV ───────────────────────────────────────────────────

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, buildTestResult()))

	want := strings.Join([]string{
		"Bin,Box,x,y,z,w,h,d",
		"0,1,0,0,0,60,40,40",
		"0,2,60,0,0,60,40,40",
		"0,3,0,40,0,30,20,20",
		"1,4,0,0,0,50,30,40",
	}, "\n") + "\n"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSV_Fractions(t *testing.T) {
	result := model.PackResult{
		Bins: []model.BinResult{{Placements: []model.Placement{place(7, "", 0.5, 1.25, 0, 2.5, 1, 0.1, 0)}}},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, result))
	assert.Contains(t, buf.String(), "0,7,0.5,1.25,0,2.5,1,0.1\n")
}

func TestExportCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placements.csv")
	require.NoError(t, ExportCSV(path, buildTestResult()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(string(data)), "\n"), 5)

	assert.Error(t, ExportCSV(path, model.PackResult{}))
}

func TestWriteItemsCSV(t *testing.T) {
	items := []model.Item{
		{Label: "Crate", Width: 60, Height: 40, Depth: 40, Quantity: 2, Weight: 12.5},
		{Label: "Tote, small", Width: 30, Height: 20, Depth: 20, Quantity: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteItemsCSV(&buf, items))

	want := "Label,Width,Height,Depth,Quantity,Weight\n" +
		"Crate,60,40,40,2,12.5\n" +
		"\"Tote, small\",30,20,20,1,0\n"
	assert.Equal(t, want, buf.String())
}

// ─── Excel ─────────────────────────────────────────────────

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xlsx")
	require.NoError(t, ExportExcel(path, buildTestResult(), buildTestContainer()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Placements", "Summary"}, f.GetSheetList())

	rows, err := f.GetRows("Placements")
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, []string{"Bin", "Box", "Label", "x", "y", "z", "w", "h", "d", "Weight"}, rows[0])
	assert.Equal(t, []string{"0", "3", "Tote", "0", "40", "0", "30", "20", "20", "10"}, rows[3])

	summary, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, "Bin", summary[0][0])
	assert.Equal(t, []string{"1", "120", "180", "80", "1", "5", "3.5"}, summary[2])

	var binsUsed string
	for _, r := range summary {
		if len(r) == 2 && r[0] == "Bins used" {
			binsUsed = r[1]
		}
	}
	assert.Equal(t, "2", binsUsed)

	assert.Error(t, ExportExcel(path, model.PackResult{}, buildTestContainer()))
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 12.3, round1(12.34))
	assert.Equal(t, 12.4, round1(12.36))
	assert.Equal(t, 0.0, round1(0))
}

// ─── DXF ───────────────────────────────────────────────────

func TestCuboidEdges(t *testing.T) {
	edges := cuboidEdges(model.Vec3{X: 1, Y: 2, Z: 3}, model.Vec3{X: 4, Y: 5, Z: 6})
	require.Len(t, edges, 12)

	for _, e := range edges {
		// Every edge runs along exactly one axis
		changed := 0
		var length float64
		if e.from.X != e.to.X {
			changed++
			length = math.Abs(e.to.X - e.from.X)
		}
		if e.from.Y != e.to.Y {
			changed++
			length = math.Abs(e.to.Y - e.from.Y)
		}
		if e.from.Z != e.to.Z {
			changed++
			length = math.Abs(e.to.Z - e.from.Z)
		}
		assert.Equal(t, 1, changed, "edge %+v", e)
		assert.Contains(t, []float64{4, 5, 6}, length)
	}
}

func TestBinOffsets(t *testing.T) {
	result := model.PackResult{Bins: []model.BinResult{
		{Size: model.Vec3{X: 100}}, {Size: model.Vec3{X: 100}}, {Size: model.Vec3{X: 40}},
	}}
	assert.Equal(t, []float64{0, 125, 250}, binOffsets(result))
}

func TestExportDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "load.dxf")
	require.NoError(t, ExportDXF(path, buildTestResult()))

	d, err := dxf.Open(path)
	require.NoError(t, err)

	lines := 0
	for _, e := range d.Entities() {
		if _, ok := e.(*entity.Line); ok {
			lines++
		}
	}
	// 2 bins and 4 boxes, 12 edges each
	assert.Equal(t, 6*12, lines)

	assert.Error(t, ExportDXF(path, model.PackResult{}))
}

// ─── Chart ─────────────────────────────────────────────────

func TestExportFitnessChart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitness.png")
	points := []FitnessPoint{
		{Generation: 0, Best: 0.61, Mean: 0.52},
		{Generation: 1, Best: 0.66, Mean: 0.55},
		{Generation: 2, Best: 0.70, Mean: math.NaN()},
	}
	require.NoError(t, ExportFitnessChart(path, "Optimizer progress", "density", points))
	assertFileWritten(t, path, 100)

	assert.Error(t, ExportFitnessChart(path, "", "", nil))
	assert.Error(t, ExportFitnessChart(path, "", "", []FitnessPoint{{Best: math.Inf(-1)}}))
}

// ─── Dispatch ──────────────────────────────────────────────

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	for _, ext := range Formats {
		path := filepath.Join(dir, "out"+ext)
		require.NoError(t, Write(path, buildTestResult(), buildTestContainer(), model.DefaultSettings()), ext)
		assertFileWritten(t, path, 1)
	}

	err := Write(filepath.Join(dir, "out.txt"), buildTestResult(), buildTestContainer(), model.DefaultSettings())
	assert.ErrorContains(t, err, "unsupported export format")
}
