package render

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// EmptyNotice is written instead of a bare sheet when there are no rows.
const EmptyNotice = "No data"

var sheetNameReplacer = strings.NewReplacer(":", " ", "\\", " ", "/", " ", "?", " ", "*", " ", "[", "(", "]", ")")

// BuildExcel writes rows under a bold header. columns may be nil, in which
// case the first row's keys are used.
func BuildExcel(title string, columns []string, rows []Row) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := sheetName(title)
	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		if err := f.SetCellValue(sheetName, "A1", EmptyNotice); err != nil {
			return nil, err
		}
		return writeWorkbook(f)
	}

	if len(columns) == 0 {
		columns = rows[0].Keys()
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col); err != nil {
			return nil, err
		}
		if err := f.SetCellStyle(sheetName, cell, cell, headerStyle); err != nil {
			return nil, err
		}
	}

	for rowIdx, row := range rows {
		for colIdx, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			val, _ := row.Get(col)
			if err := f.SetCellValue(sheetName, cell, cellValue(val)); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", cell, err)
			}
		}
	}

	for i := range columns {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheetName, col, col, 18)
	}

	return writeWorkbook(f)
}

func writeWorkbook(f *excelize.File) ([]byte, error) {
	buffer, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

// Numbers stay numeric; everything else is written as text so dates print the same in every locale.
func cellValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int, int32, int64, float32, float64, bool:
		return val
	default:
		return FormatValue(val)
	}
}

func sheetName(title string) string {
	name := strings.TrimSpace(sheetNameReplacer.Replace(title))
	name = strings.Trim(name, "'")
	if name == "" {
		return "Report"
	}
	if r := []rune(name); len(r) > 31 {
		name = string(r[:31])
	}
	return name
}
