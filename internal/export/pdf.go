// Package export writes packing results to files: placement CSV and Excel
// workbooks, a PDF load report, QR box labels, a DXF wireframe and a PNG
// chart of optimizer progress.
package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/CratePack/internal/model"
)

// boxColor represents an RGB color for a placed box.
type boxColor struct {
	R, G, B int
}

var boxColors = []boxColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

func colorFor(boxID int) boxColor {
	return boxColors[boxID%len(boxColors)]
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 20.0
	viewGap      = 12.0
	drawAreaTop  = marginTop + headerHeight + 10.0
)

// projection maps a placement onto a 2-D view of the bin.
type projection struct {
	title     string
	hAxis     model.Axis // horizontal page axis
	vAxis     model.Axis // vertical page axis, drawn bottom-up
	depthAxis model.Axis
	nearFirst bool // draw boxes with a small depth coordinate last
	hLabel    string
	vLabel    string
}

var (
	topView = projection{
		title: "Top view", hAxis: model.AxisX, vAxis: model.AxisZ, depthAxis: model.AxisY,
		hLabel: "width", vLabel: "depth",
	}
	frontView = projection{
		title: "Front view", hAxis: model.AxisX, vAxis: model.AxisY, depthAxis: model.AxisZ,
		nearFirst: true, hLabel: "width", vLabel: "height",
	}
)

// ExportPDF generates a load report. Each bin gets a page with a top and a
// front projection of its boxes, followed by a summary page.
func ExportPDF(path string, result model.PackResult, container model.Container, settings model.Settings) error {
	if len(result.Bins) == 0 {
		return fmt.Errorf("no bins to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	for _, bin := range result.Bins {
		pdf.AddPage()
		renderBinPage(pdf, bin, container)
	}

	pdf.AddPage()
	renderSummaryPage(pdf, result, container, settings)

	return pdf.OutputFileAndClose(path)
}

// renderBinPage draws both projections of a single bin side by side.
func renderBinPage(pdf *fpdf.Fpdf, bin model.BinResult, container model.Container) {
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Bin %d: %s (%.0f x %.0f x %.0f)", bin.Index+1, container.Label, bin.Size.X, bin.Size.Y, bin.Size.Z)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Boxes: %d | Used volume: %.0f | Bin volume: %.0f | Fill: %.1f%% | Weight: %.1f",
		len(bin.Placements), bin.UsedVolume(), bin.Volume(), bin.Fill(), bin.Weight)
	if bin.MaxWeight > 0 {
		stats += fmt.Sprintf(" / %.1f", bin.MaxWeight)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	viewWidth := (pageWidth - marginLeft - marginRight - viewGap) / 2
	viewHeight := pageHeight - drawAreaTop - marginBottom - legendHeight

	drawProjection(pdf, bin, topView, marginLeft, drawAreaTop, viewWidth, viewHeight)
	drawProjection(pdf, bin, frontView, marginLeft+viewWidth+viewGap, drawAreaTop, viewWidth, viewHeight)

	drawBoxLegend(pdf, bin, pageHeight-marginBottom-legendHeight+4)
}

// drawProjection renders one view of a bin scaled into the given area.
func drawProjection(pdf *fpdf.Fpdf, bin model.BinResult, view projection, x, y, w, h float64) {
	binH := bin.Size.Get(view.hAxis)
	binV := bin.Size.Get(view.vAxis)
	if binH <= 0 || binV <= 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y-6)
	pdf.CellFormat(w, 5, view.title, "", 0, "L", false, 0, "")

	scale := math.Min(w/binH, h/binV)
	canvasW := binH * scale
	canvasH := binV * scale
	offsetX := x + (w-canvasW)/2
	offsetY := y

	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	// Painter's order: boxes hidden behind others are drawn first
	placements := append([]model.Placement(nil), bin.Placements...)
	sort.SliceStable(placements, func(i, j int) bool {
		if view.nearFirst {
			return placements[i].Position.Get(view.depthAxis) > placements[j].Position.Get(view.depthAxis)
		}
		return placements[i].Max(view.depthAxis) < placements[j].Max(view.depthAxis)
	})

	for _, p := range placements {
		col := colorFor(p.BoxID)
		pw := p.Size.Get(view.hAxis) * scale
		ph := p.Size.Get(view.vAxis) * scale
		px := offsetX + p.Position.Get(view.hAxis)*scale
		// Page y grows downwards, bin coordinates grow upwards
		py := offsetY + canvasH - (p.Position.Get(view.vAxis)*scale + ph)

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 8 && ph > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := fmt.Sprintf("%d", p.BoxID)
			labelW := pdf.GetStringWidth(label)
			if labelW < pw-1 {
				pdf.SetXY(px+(pw-labelW)/2, py+ph/2-2)
				pdf.CellFormat(labelW, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, view, binH, binV, offsetX, offsetY, canvasW, canvasH)
}

// drawDimensionAnnotations adds extent labels outside the view rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, view projection, binH, binV, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	hLabel := fmt.Sprintf("%s %.0f", view.hLabel, binH)
	hLabelW := pdf.GetStringWidth(hLabel)
	pdf.SetXY(offsetX+(canvasW-hLabelW)/2, offsetY+canvasH+1)
	pdf.CellFormat(hLabelW, 4, hLabel, "", 0, "C", false, 0, "")

	vLabel := fmt.Sprintf("%s %.0f", view.vLabel, binV)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	vLabelW := pdf.GetStringWidth(vLabel)
	pdf.SetXY(offsetX-3-vLabelW/2, offsetY+canvasH/2-2)
	pdf.CellFormat(vLabelW, 4, vLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawBoxLegend renders a compact legend of placed boxes at the bottom of the bin page.
func drawBoxLegend(pdf *fpdf.Fpdf, bin model.BinResult, startY float64) {
	if len(bin.Placements) == 0 {
		return
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, startY)
	pdf.CellFormat(30, 4, "Boxes placed:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	xPos := marginLeft + 32
	maxX := pageWidth - marginRight
	maxY := pageHeight - marginBottom

	for _, p := range bin.Placements {
		col := colorFor(p.BoxID)
		label := fmt.Sprintf("%d %s (%.0fx%.0fx%.0f)", p.BoxID, p.Label, p.Size.X, p.Size.Y, p.Size.Z)
		labelW := pdf.GetStringWidth(label) + 6

		if xPos+labelW > maxX {
			startY += 5
			xPos = marginLeft
		}
		if startY+4 > maxY {
			pdf.SetXY(xPos, startY-5)
			pdf.CellFormat(10, 4, "...", "", 0, "L", false, 0, "")
			return
		}

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.Rect(xPos, startY+0.5, 3, 3, "F")

		pdf.SetXY(xPos+4, startY)
		pdf.CellFormat(labelW-4, 4, label, "", 0, "L", false, 0, "")

		xPos += labelW + 2
	}
}

// renderSummaryPage draws the final summary page with overall statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, result model.PackResult, container model.Container, settings model.Settings) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Load Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Container", fmt.Sprintf("%s (%.0f x %.0f x %.0f)", container.Label, container.Width, container.Height, container.Depth)},
		{"Bins Used", fmt.Sprintf("%d", len(result.Bins))},
		{"Overall Fill", fmt.Sprintf("%.1f%%", result.TotalFill())},
		{"Boxes Placed", fmt.Sprintf("%d", result.PlacedCount())},
		{"Unplaced Boxes", fmt.Sprintf("%d", len(result.Unplaced))},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(60, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(120, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	y += 5

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Bin Breakdown", "", 0, "L", false, 0, "")
	y += 9

	colWidths := []float64{20, 60, 35, 35, 40, 60}
	headers := []string{"Bin", "Dimensions", "Boxes", "Fill", "Weight", "Used / Total Volume"}

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for i, header := range headers {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(colWidths[i], 6, header, "1", 0, "C", true, 0, "")
		xPos += colWidths[i]
	}
	y += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, bin := range result.Bins {
		if y > pageHeight-marginBottom-40 {
			pdf.AddPage()
			y = marginTop
		}
		xPos = marginLeft
		rowData := []string{
			fmt.Sprintf("%d", bin.Index+1),
			fmt.Sprintf("%.0f x %.0f x %.0f", bin.Size.X, bin.Size.Y, bin.Size.Z),
			fmt.Sprintf("%d", len(bin.Placements)),
			fmt.Sprintf("%.1f%%", bin.Fill()),
			fmt.Sprintf("%.1f", bin.Weight),
			fmt.Sprintf("%.0f / %.0f", bin.UsedVolume(), bin.Volume()),
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		for j, cell := range rowData {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(colWidths[j], 6, cell, "1", 0, "C", true, 0, "")
			xPos += colWidths[j]
		}
		y += 6
	}

	if len(result.Unplaced) > 0 {
		y += 8
		pdf.SetFont("Helvetica", "B", 11)
		pdf.SetTextColor(200, 0, 0)
		pdf.SetXY(marginLeft, y)
		pdf.CellFormat(200, 7, "WARNING: Unplaced Boxes", "", 0, "L", false, 0, "")
		y += 8

		pdf.SetFont("Helvetica", "", 9)
		pdf.SetTextColor(0, 0, 0)

		for _, box := range result.Unplaced {
			if y > pageHeight-marginBottom-10 {
				pdf.AddPage()
				y = marginTop
			}
			pdf.SetXY(marginLeft+5, y)
			text := fmt.Sprintf("- #%d %s: %.0f x %.0f x %.0f (weight %.1f)", box.ID, box.Label, box.Size.X, box.Size.Y, box.Size.Z, box.Weight)
			pdf.CellFormat(200, 5, text, "", 0, "L", false, 0, "")
			y += 5
		}
	}

	y += 8
	if y > pageHeight-marginBottom-40 {
		pdf.AddPage()
		y = marginTop
	}
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Packing Settings", "", 0, "L", false, 0, "")
	y += 9

	growing := "off"
	if settings.Growing {
		growing = fmt.Sprintf("along %s", settings.GrowAxis)
	}
	settingsItems := []struct {
		label string
		value string
	}{
		{"Strategy", string(settings.Strategy)},
		{"Rotations", settings.Rotations.String()},
		{"Growing Bin", growing},
		{"Max Weight", maxWeightText(container.MaxWeight)},
	}

	pdf.SetFont("Helvetica", "", 9)
	for _, item := range settingsItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(50, 5, item.label+":", "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 5, item.value, "", 0, "L", false, 0, "")
		y += 5
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by CratePack - 3D Load Planner", "", 0, "C", false, 0, "")
}

func maxWeightText(w float64) string {
	if w <= 0 {
		return "unlimited"
	}
	return fmt.Sprintf("%.1f", w)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
