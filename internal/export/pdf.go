package export

import (
	"fmt"

	"github.com/go-pdf/fpdf"
)

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	rowHeight    = 6.0
)

var reportColumns = []struct {
	header string
	width  float64
	align  string
}{
	{"Material", 62, "L"},
	{"Color", 34, "L"},
	{"Unit", 18, "C"},
	{"Required", 28, "R"},
	{"In Stock", 28, "R"},
	{"To Buy", 28, "R"},
	{"Unit Cost", 29, "R"},
	{"Cost", 40, "R"},
}

// ExportPDF writes a purchase report: one row per (material, color) with the
// requirement, stock on hand and shortfall in display units, followed by the
// total cost and any order lines that could not be resolved.
func ExportPDF(path string, data ReportData) error {
	if len(data.Estimate.Lines) == 0 && len(data.Unresolved) == 0 {
		return fmt.Errorf("no requirements to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	y := renderReportHeader(pdf, data)
	y = renderTableHeader(pdf, y)

	pdf.SetFont("Helvetica", "", 9)
	for i, line := range data.Estimate.Lines {
		if y+rowHeight > pageHeight-marginBottom-10 {
			renderFooter(pdf)
			pdf.AddPage()
			y = renderTableHeader(pdf, marginTop)
			pdf.SetFont("Helvetica", "", 9)
		}

		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		cells := []string{
			line.MaterialName,
			data.ColorName(line.Key.ColorID),
			line.Unit.String(),
			fmt.Sprintf("%.2f", line.Required),
			fmt.Sprintf("%.2f", line.Available),
			fmt.Sprintf("%.2f", line.Shortfall),
			line.UnitCost.StringFixed(2),
			line.Cost.StringFixed(2),
		}
		xPos := marginLeft
		for j, cell := range cells {
			pdf.SetXY(xPos, y)
			pdf.CellFormat(reportColumns[j].width, rowHeight, truncate(pdf, cell, reportColumns[j].width-2), "1", 0, reportColumns[j].align, true, 0, "")
			xPos += reportColumns[j].width
		}
		y += rowHeight
	}

	// Total row
	pdf.SetFont("Helvetica", "B", 10)
	totalLabelW := 0.0
	for _, c := range reportColumns[:len(reportColumns)-1] {
		totalLabelW += c.width
	}
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(totalLabelW, rowHeight+1, "Total purchase cost", "1", 0, "R", false, 0, "")
	pdf.CellFormat(reportColumns[len(reportColumns)-1].width, rowHeight+1, data.Estimate.TotalCost.StringFixed(2), "1", 0, "R", false, 0, "")
	y += rowHeight + 6

	y = renderUnknownKeys(pdf, data, y)
	renderUnresolved(pdf, data, y)
	renderFooter(pdf)

	return pdf.OutputFileAndClose(path)
}

func renderReportHeader(pdf *fpdf.Fpdf, data ReportData) float64 {
	title := data.Title
	if title == "" {
		title = "Material Requirements"
	}
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, title, "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+14)
	stats := fmt.Sprintf("Orders: %d | Materials: %d | Generated: %s",
		data.Orders, len(data.Estimate.Lines), data.GeneratedAt.Format("2006-01-02 15:04 UTC"))
	if data.WastePercent > 0 {
		stats += fmt.Sprintf(" | Waste allowance: %.1f%%", data.WastePercent)
	}
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")
	return marginTop + 24
}

func renderTableHeader(pdf *fpdf.Fpdf, y float64) float64 {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	xPos := marginLeft
	for _, c := range reportColumns {
		pdf.SetXY(xPos, y)
		pdf.CellFormat(c.width, rowHeight, c.header, "1", 0, "C", true, 0, "")
		xPos += c.width
	}
	return y + rowHeight
}

func renderUnknownKeys(pdf *fpdf.Fpdf, data ReportData, y float64) float64 {
	if len(data.Estimate.Unknown) == 0 {
		return y
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(200, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 7, "WARNING: Materials missing from catalog", "", 0, "L", false, 0, "")
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, k := range data.Estimate.Unknown {
		if y > pageHeight-marginBottom-10 {
			break
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(200, 5, fmt.Sprintf("- %s (%s)", k.MaterialID, data.ColorName(k.ColorID)), "", 0, "L", false, 0, "")
		y += 5
	}
	return y + 4
}

func renderUnresolved(pdf *fpdf.Fpdf, data ReportData, y float64) {
	if len(data.Unresolved) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetTextColor(200, 0, 0)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(200, 7, fmt.Sprintf("WARNING: %d unresolved order lines", len(data.Unresolved)), "", 0, "L", false, 0, "")
	y += 8

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(0, 0, 0)
	for _, u := range data.Unresolved {
		if y > pageHeight-marginBottom-10 {
			pdf.SetXY(marginLeft+5, y)
			pdf.CellFormat(200, 5, "...", "", 0, "L", false, 0, "")
			break
		}
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(200, 5, fmt.Sprintf("- order %s, product %s: %s", u.OrderID, u.ProductID, u.Reason), "", 0, "L", false, 0, "")
		y += 5
	}
}

func renderFooter(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4,
		fmt.Sprintf("Generated by MoldCut - page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// truncate shortens s with an ellipsis until it fits width.
func truncate(pdf *fpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
