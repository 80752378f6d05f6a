package spreadsheet

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// PlanRow is one parsed row of the upload sheet.
type PlanRow struct {
	Name        string
	PartCode    string
	SKU         string
	Description string
	MRP         int64
}

// Header of the sheet, in column order. Parsing is positional; the header
// row itself is skipped when present.
var header = []string{"Name", "Part Code", "SKU", "Description", "MRP"}

// AllowedExtension reports whether filename carries a spreadsheet extension
// the upload endpoint accepts.
func AllowedExtension(filename string) bool {
	lower := strings.ToLower(filename)
	return strings.HasSuffix(lower, ".xls") || strings.HasSuffix(lower, ".xlsx")
}

// ParsePlans reads the first sheet and returns the plan rows. Rows missing
// a name or part code are skipped rather than failing the whole upload.
func ParsePlans(r io.Reader) ([]PlanRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}

	var out []PlanRow
	for i, row := range rows {
		if i == 0 && isHeader(row) {
			continue
		}
		pr := PlanRow{
			Name:        cell(row, 0),
			PartCode:    cell(row, 1),
			SKU:         cell(row, 2),
			Description: cell(row, 3),
		}
		if pr.Name == "" || pr.PartCode == "" {
			continue
		}
		if raw := cell(row, 4); raw != "" {
			mrp, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: bad MRP %q", i+1, raw)
			}
			pr.MRP = int64(mrp)
		}
		out = append(out, pr)
	}
	return out, nil
}

// SampleTemplate builds the downloadable upload template.
func SampleTemplate() ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	cols := make([]interface{}, len(header))
	for i, h := range header {
		cols[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return nil, err
	}
	example := []interface{}{"AppleCare+ for iPhone", "SR182HN/A", "S9999ZM/A", "Standard AppleCare+ Protection", 19900}
	if err := f.SetSheetRow(sheet, "A2", &example); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isHeader(row []string) bool {
	return strings.EqualFold(cell(row, 0), header[0])
}
