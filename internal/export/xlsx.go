package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	requirementsSheet = "Requirements"
	unresolvedSheet   = "Unresolved"
)

var xlsxHeaders = []string{"Material ID", "Material", "Color", "Unit", "Required", "In Stock", "To Buy", "Unit Cost", "Cost"}

// ExportXLSX writes the purchase report to an Excel workbook. The first sheet
// lists requirements with a total row; unresolved order lines, if any, go to
// a second sheet.
func ExportXLSX(path string, data ReportData) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", requirementsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, requirementsSheet, 1, toAny(xlsxHeaders)); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(xlsxHeaders))
	if err := f.SetCellStyle(requirementsSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	row := 2
	for _, line := range data.Estimate.Lines {
		unitCost, _ := line.UnitCost.Float64()
		cost, _ := line.Cost.Float64()
		values := []any{
			line.Key.MaterialID,
			line.MaterialName,
			data.ColorName(line.Key.ColorID),
			line.Unit.String(),
			line.Required,
			line.Available,
			line.Shortfall,
			unitCost,
			cost,
		}
		if err := writeRow(f, requirementsSheet, row, values); err != nil {
			return err
		}
		row++
	}

	total, _ := data.Estimate.TotalCost.Float64()
	totalLabel, _ := excelize.CoordinatesToCellName(len(xlsxHeaders)-1, row)
	totalCell, _ := excelize.CoordinatesToCellName(len(xlsxHeaders), row)
	if err := f.SetCellValue(requirementsSheet, totalLabel, "Total"); err != nil {
		return err
	}
	if err := f.SetCellValue(requirementsSheet, totalCell, total); err != nil {
		return err
	}
	if err := f.SetCellStyle(requirementsSheet, totalLabel, totalCell, bold); err != nil {
		return err
	}

	if len(data.Unresolved) > 0 {
		if _, err := f.NewSheet(unresolvedSheet); err != nil {
			return fmt.Errorf("failed to create sheet: %w", err)
		}
		if err := writeRow(f, unresolvedSheet, 1, []any{"Order", "Product", "Reason"}); err != nil {
			return err
		}
		for i, u := range data.Unresolved {
			if err := writeRow(f, unresolvedSheet, i+2, []any{u.OrderID, u.ProductID, u.Reason}); err != nil {
				return err
			}
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d of %s: %w", row, sheet, err)
	}
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
