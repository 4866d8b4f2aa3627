package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

// ─── DetectCSVDelimiter Tests ──────────────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "Label,Width,Height,Depth\nCrate,60,40,40\nTote,30,20,20\n", ','},
		{"semicolon", "Label;Width;Height;Depth\nCrate;60;40;40\nTote;30;20;20\n", ';'},
		{"tab", "Label\tWidth\tHeight\tDepth\nCrate\t60\t40\t40\nTote\t30\t20\t20\n", '\t'},
		{"pipe", "Label|Width|Height|Depth\nCrate|60|40|40\nTote|30|20|20\n", '|'},
	}
	for _, tt := range tests {
		if got := DetectCSVDelimiter([]byte(tt.data)); got != tt.want {
			t.Errorf("%s: expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

// ─── DetectColumns Tests ───────────────────────────────────

func TestDetectColumns_StandardHeaders(t *testing.T) {
	row := []string{"Label", "Width", "Height", "Depth", "Quantity", "Weight"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 0, Width: 1, Height: 2, Depth: 3, Quantity: 4, Weight: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_AliasesAndOrder(t *testing.T) {
	row := []string{"QTY", "z", "SKU", "x", "y", "kg"}
	mapping, isHeader := DetectColumns(row)

	if !isHeader {
		t.Error("expected header to be detected")
	}
	want := ColumnMapping{Label: 2, Width: 3, Height: 4, Depth: 1, Quantity: 0, Weight: 5}
	if mapping != want {
		t.Errorf("expected %+v, got %+v", want, mapping)
	}
}

func TestDetectColumns_NoHeader(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Crate", "60", "40", "40", "2"})

	if isHeader {
		t.Error("expected no header")
	}
	if mapping.Depth != 3 || mapping.Quantity != 4 || mapping.Weight != 5 {
		t.Errorf("unexpected positional mapping %+v", mapping)
	}
}

// ─── ImportCSVFromReader Tests ─────────────────────────────

func TestImportCSVFromReader_WithHeaders(t *testing.T) {
	data := "Label,Width,Height,Depth,Qty,Weight\nCrate,60,40,40,2,12.5\nTote,30,20,20,3,\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) > 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	crate := result.Items[0]
	if crate.Label != "Crate" || crate.Width != 60 || crate.Height != 40 || crate.Depth != 40 {
		t.Errorf("unexpected item %+v", crate)
	}
	if crate.Quantity != 2 || crate.Weight != 12.5 {
		t.Errorf("expected qty 2 weight 12.5, got %d %f", crate.Quantity, crate.Weight)
	}
	if result.Items[1].Weight != 0 {
		t.Errorf("expected empty weight to default to 0, got %f", result.Items[1].Weight)
	}

	boxes := result.Boxes()
	if len(boxes) != 5 {
		t.Fatalf("expected 5 boxes, got %d", len(boxes))
	}
	if boxes[4].ID != 5 || boxes[4].Label != "Tote" {
		t.Errorf("unexpected last box %+v", boxes[4])
	}
}

func TestImportCSVFromReader_WithoutHeaders(t *testing.T) {
	data := "Crate,60,40,40,2\nTote,30,20,20\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Items[1].Quantity != 1 {
		t.Errorf("expected missing quantity to default to 1, got %d", result.Items[1].Quantity)
	}
}

func TestImportCSVFromReader_UnknownHeaderSkipped(t *testing.T) {
	data := "Thing,Across,Up,Back\nCrate,60,40,40\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %v)", len(result.Items), result.Errors)
	}
}

func TestImportCSVFromReader_RowErrors(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"invalid width", "A,abc,1,1,1", "Invalid width"},
		{"missing depth", "A,1,1,,1", "Missing depth"},
		{"negative height", "A,1,-1,1,1", "Height must be positive"},
		{"zero quantity", "A,1,1,1,0", "Quantity must be positive"},
		{"invalid quantity", "A,1,1,1,two", "Invalid quantity"},
		{"negative weight", "A,1,1,1,1,-3", "Weight must not be negative"},
	}
	for _, tt := range tests {
		data := "Label,Width,Height,Depth,Quantity,Weight\n" + tt.row + "\n"
		result := ImportCSVFromReader(strings.NewReader(data), ',')
		if len(result.Items) != 0 {
			t.Errorf("%s: expected no items, got %d", tt.name, len(result.Items))
		}
		if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], tt.want) {
			t.Errorf("%s: expected error containing %q, got %v", tt.name, tt.want, result.Errors)
		}
	}
}

func TestImportCSVFromReader_MixedValidAndInvalid(t *testing.T) {
	data := "Label,Width,Height,Depth\nA,1,1,1\nB,x,1,1\n,,,\n,2,2,2\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Line 3") {
		t.Errorf("expected one error on line 3, got %v", result.Errors)
	}
	if result.Items[1].Label != "Box 2" {
		t.Errorf("expected generated label 'Box 2', got %q", result.Items[1].Label)
	}
	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "Missing label") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a missing label warning, got %v", result.Warnings)
	}
}

func TestImportCSVFromReader_MissingRequiredColumn(t *testing.T) {
	data := "Label,Width,Height,Qty\nA,1,1,1\n"
	result := ImportCSVFromReader(strings.NewReader(data), ',')

	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0], "Depth") {
		t.Errorf("expected missing Depth error, got %v", result.Errors)
	}
}

func TestImportCSVFromReader_Empty(t *testing.T) {
	result := ImportCSVFromReader(strings.NewReader(""), ',')
	if len(result.Errors) == 0 {
		t.Error("expected error for empty input")
	}
}

// ─── ImportCSV File Tests ──────────────────────────────────

func TestImportCSV_SemicolonFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boxes.csv")
	content := "Name;W;H;D;Qty\nCrate;60,5;40;40;1\nTote;30;20;20;4\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	result := Import(path)

	// "60,5" is not a valid float, so that row fails
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d (errors: %v)", len(result.Items), result.Errors)
	}
	if result.Items[0].Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", result.Items[0].Quantity)
	}
	if len(result.Warnings) == 0 || !strings.Contains(result.Warnings[0], "semicolon") {
		t.Errorf("expected semicolon warning, got %v", result.Warnings)
	}
}

func TestImportCSV_Errors(t *testing.T) {
	if result := ImportCSV(filepath.Join(t.TempDir(), "missing.csv")); len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("  \n"), 0644); err != nil {
		t.Fatal(err)
	}
	if result := ImportCSV(path); len(result.Errors) == 0 {
		t.Error("expected error for empty file")
	}
}

// ─── Excel Import Tests ────────────────────────────────────

func createTestExcel(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "boxes.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)

	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("failed to create cell reference: %v", err)
		}
		if err := f.SetSheetRow(sheet, cellRef, &row); err != nil {
			t.Fatalf("failed to set row: %v", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save Excel file: %v", err)
	}
	return path
}

func TestImportExcel_WithHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Item", "Depth", "Width", "Height", "Pieces", "Mass"},
		{"Crate", 40, 60, 50, 2, 9.5},
		{"Tote", 20, 30, 20, 1, 1},
	})

	result := Import(path)

	if len(result.Errors) > 0 {
		t.Errorf("unexpected errors: %v", result.Errors)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(result.Items))
	}
	crate := result.Items[0]
	if crate.Width != 60 || crate.Height != 50 || crate.Depth != 40 {
		t.Errorf("unexpected dimensions %+v", crate)
	}
	if crate.Weight != 9.5 || crate.Quantity != 2 {
		t.Errorf("unexpected weight/quantity %+v", crate)
	}
}

func TestImportExcel_WithoutHeaders(t *testing.T) {
	path := createTestExcel(t, [][]interface{}{
		{"Crate", 60, 40, 40, 2},
		{"Tote", 30, 20, 20, 1},
	})

	result := ImportExcel(path)
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 items, got %d (errors: %v)", len(result.Items), result.Errors)
	}
}

func TestImportExcel_FileNotFound(t *testing.T) {
	result := ImportExcel(filepath.Join(t.TempDir(), "missing.xlsx"))
	if len(result.Errors) == 0 {
		t.Error("expected error for missing file")
	}
}
