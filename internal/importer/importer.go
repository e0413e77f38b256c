// Package importer reads pattern files into piece records and material
// catalogs from CSV or Excel sheets. Pattern files are either the binary .mld
// container, legacy plain JSON, or DXF outlines.
package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/MoldCut/internal/model"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// ImportResult holds the results of a catalog or DXF import operation.
type ImportResult struct {
	Materials []model.Material
	Pieces    []model.Piece
	Errors    []string
	Warnings  []string
}

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Name   int
	Unit   int
	Width  int
	Cost   int
	Fabric int
}

// headerRoles maps accepted header spellings (lowercase) to the column they name.
var headerRoles = map[string]string{
	"name": "name", "material": "name", "nome": "name", "description": "name", "desc": "name", "item": "name",
	"unit": "unit", "unidade": "unit", "uom": "unit",
	"width": "width", "largura": "width", "width mm": "width", "largura mm": "width", "w": "width",
	"cost": "cost", "price": "cost", "custo": "cost", "preco": "cost", "preço": "cost", "preco custo": "cost",
	"fabric": "fabric", "tecido": "fabric", "eh tecido": "fabric", "is fabric": "fabric",
}

// positionalColumns is the layout assumed for sheets without a header row.
var positionalColumns = ColumnMapping{Name: 0, Unit: 1, Width: 2, Cost: 3, Fabric: 4}

// slot returns the mapping field for a column role.
func (m *ColumnMapping) slot(role string) *int {
	switch role {
	case "name":
		return &m.Name
	case "unit":
		return &m.Unit
	case "width":
		return &m.Width
	case "cost":
		return &m.Cost
	case "fabric":
		return &m.Fabric
	}
	return nil
}

// DetectCSVDelimiter sniffs the delimiter of a catalog file among comma,
// semicolon, tab and pipe. Candidates that split the first line into fewer
// than two fields are ignored; among the rest, the one giving the most lines
// with the same field count as the first line wins, then the widest.
func DetectCSVDelimiter(data []byte) rune {
	best, bestScore := ',', 0
	for _, delim := range []rune{',', ';', '\t', '|'} {
		records, err := readCSV(bytes.NewReader(data), delim)
		if err != nil || len(records) == 0 || len(records[0]) < 2 {
			continue
		}
		width := len(records[0])
		consistent := 0
		for _, rec := range records {
			if len(rec) == width {
				consistent++
			}
		}
		if score := consistent*10 + width; score > bestScore {
			best, bestScore = delim, score
		}
	}
	return best
}

// readCSV reads every record with a tolerant reader: lazy quotes and a
// variable field count, as spreadsheet exports produce.
func readCSV(r io.Reader, delim rune) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.Comma = delim
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// DetectColumns maps a header row to column indices. When no cell is a known
// header name the row is data, and the positional layout (name, unit, width,
// cost, fabric) is returned with false. The first column claiming a role wins.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Name: -1, Unit: -1, Width: -1, Cost: -1, Fabric: -1}
	found := false
	for i, cell := range row {
		role, ok := headerRoles[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}
		found = true
		if idx := mapping.slot(role); *idx == -1 {
			*idx = i
		}
	}
	if !found {
		return positionalColumns, false
	}
	return mapping, true
}

// parseBool accepts the yes/no spellings found in catalog sheets.
func parseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "y", "sim", "s", "x":
		return true, true
	case "", "0", "false", "no", "n", "nao", "não", "-":
		return false, true
	default:
		return false, false
	}
}

// parseNumber parses a decimal that may use a comma separator.
func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
}

// getCell safely retrieves a cell value from a row by column index.
// Returns empty string if the index is out of range or negative.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// parseRow extracts a Material from a row using the given column mapping.
// Returns the material, any error message, and any warning messages.
func parseRow(row []string, mapping ColumnMapping, rowLabel string) (model.Material, string, []string) {
	var warnings []string

	name := getCell(row, mapping.Name)
	if name == "" {
		return model.Material{}, fmt.Sprintf("%s: Missing material name", rowLabel), nil
	}

	unitStr := getCell(row, mapping.Unit)
	if unitStr == "" {
		return model.Material{}, fmt.Sprintf("%s: Missing unit", rowLabel), nil
	}
	unit, ok := model.ParseUnit(unitStr)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("%s: Unknown unit '%s', quantities will not be converted", rowLabel, unitStr))
	}

	m := model.NewMaterial(name, unit)

	if s := getCell(row, mapping.Fabric); s != "" {
		isFabric, ok := parseBool(s)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("%s: Unknown fabric flag '%s', treated as accessory", rowLabel, s))
		}
		m.IsFabric = isFabric
	}

	if s := getCell(row, mapping.Width); s != "" {
		width, err := parseNumber(s)
		if err != nil || width < 0 {
			return model.Material{}, fmt.Sprintf("%s: Invalid width '%s'", rowLabel, s), nil
		}
		m.WidthMM = width
	}
	if m.IsFabric && m.WidthMM == 0 {
		m.WidthMM = model.DefaultFabricWidthMM
		warnings = append(warnings, fmt.Sprintf("%s: Fabric without width, using %.0f mm", rowLabel, model.DefaultFabricWidthMM))
	}

	if s := getCell(row, mapping.Cost); s != "" {
		cost, err := decimal.NewFromString(strings.ReplaceAll(s, ",", "."))
		if err != nil || cost.IsNegative() {
			return model.Material{}, fmt.Sprintf("%s: Invalid cost '%s'", rowLabel, s), nil
		}
		m.Cost = cost
	}

	return m, "", warnings
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// ImportMaterialsCSV imports a material catalog from a CSV file, sniffing the
// delimiter and mapping columns by header names.
func ImportMaterialsCSV(path string) ImportResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot open file: %v", err)}}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ImportResult{Errors: []string{"File is empty"}}
	}

	var notes []string
	delim := DetectCSVDelimiter(data)
	if name, ok := delimiterNames[delim]; ok {
		notes = append(notes, fmt.Sprintf("Detected %s delimiter", name))
	}

	records, err := readCSV(bytes.NewReader(data), delim)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}, Warnings: notes}
	}
	return importFromRows(records, "Line", notes)
}

var delimiterNames = map[rune]string{';': "semicolon", '\t': "tab", '|': "pipe"}

// ImportMaterialsCSVFromReader imports materials from a CSV stream with a known delimiter.
func ImportMaterialsCSVFromReader(r io.Reader, delimiter rune) ImportResult {
	records, err := readCSV(r, delimiter)
	if err != nil {
		return ImportResult{Errors: []string{fmt.Sprintf("Cannot read CSV: %v", err)}}
	}
	return importFromRows(records, "Line", nil)
}

// ImportMaterialsExcel imports a material catalog from the first sheet of an
// Excel workbook.
func ImportMaterialsExcel(path string) ImportResult {
	result := ImportResult{}

	f, err := excelize.OpenFile(path)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot open Excel file: %v", err))
		return result
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		result.Errors = append(result.Errors, "Excel file has no sheets")
		return result
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot read Excel data: %v", err))
		return result
	}

	return importFromRows(rows, "Row", nil)
}

// importFromRows is the shared import logic for both CSV and Excel data.
func importFromRows(rows [][]string, rowPrefix string, initialWarnings []string) ImportResult {
	result := ImportResult{Warnings: initialWarnings}

	if len(rows) == 0 {
		result.Errors = append(result.Errors, "File is empty")
		return result
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		result.Warnings = append(result.Warnings, "Detected header row, skipping")

		missing := []string{}
		if mapping.Name == -1 {
			missing = append(missing, "Name")
		}
		if mapping.Unit == -1 {
			missing = append(missing, "Unit")
		}
		if len(missing) > 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Required columns not found in header: %s", strings.Join(missing, ", ")))
			return result
		}
	}

	for i := startRow; i < len(rows); i++ {
		row := rows[i]
		if isEmptyRow(row) {
			continue
		}

		rowLabel := fmt.Sprintf("%s %d", rowPrefix, i+1)
		m, errMsg, warnings := parseRow(row, mapping, rowLabel)
		if errMsg != "" {
			result.Errors = append(result.Errors, errMsg)
			continue
		}
		result.Warnings = append(result.Warnings, warnings...)
		result.Materials = append(result.Materials, m)
	}

	return result
}
