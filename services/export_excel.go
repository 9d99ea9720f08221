package services

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	maxSheetName     = 31
	defaultSheetName = "Export"
	// formulaLeaders start a formula (or DDE payload) when typed into a cell.
	formulaLeaders = "=+-@\t\r|"
)

// GenerateExcel writes data.Table to a single sheet: the header row first,
// then one row per table row. Numeric cells are stored as numbers.
func GenerateExcel(data ExportData) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := sheetTitle(data.Title)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}

	table := data.Table
	if len(table.Columns) > 0 {
		if err := writeTable(f, sheet, table); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}
	return buf.Bytes(), nil
}

func sheetTitle(title string) string {
	switch {
	case title == "":
		return defaultSheetName
	case len(title) > maxSheetName:
		return title[:maxSheetName]
	}
	return title
}

// tableStyles returns the header style (bold white on teal, centered) and the
// body style.
func tableStyles(f *excelize.File) (header, body int, err error) {
	header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#0F766E"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorders(),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create header style: %w", err)
	}
	body, err = f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Size: 10},
		Border: thinBorders(),
	})
	if err != nil {
		return 0, 0, fmt.Errorf("create cell style: %w", err)
	}
	return header, body, nil
}

func writeTable(f *excelize.File, sheet string, table FlatTable) error {
	headerStyle, bodyStyle, err := tableStyles(f)
	if err != nil {
		return err
	}

	letters := columnLetters(len(table.Columns))
	last := letters[len(letters)-1]

	for i, h := range table.Columns {
		f.SetCellValue(sheet, letters[i]+"1", sanitizeExcelCell(h))
		width := float64(max(len([]rune(h))+5, 15))
		if err := f.SetColWidth(sheet, letters[i], letters[i], width); err != nil {
			return fmt.Errorf("set col width %s: %w", letters[i], err)
		}
	}
	f.SetCellStyle(sheet, "A1", last+"1", headerStyle)

	for r := range table.Rows {
		row := strconv.Itoa(r + 2)
		for i, v := range table.Values(r) {
			var cell any = sanitizeExcelCell(v)
			if n, ok := numericCell(v); ok {
				cell = n
			}
			f.SetCellValue(sheet, letters[i]+row, cell)
		}
		f.SetCellStyle(sheet, "A"+row, last+row, bodyStyle)
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// numericCell reports whether s is a plain decimal number. Codes with leading
// zeros ("007") and signed-plus values stay text.
func numericCell(s string) (float64, bool) {
	if s == "" || s[0] == '+' {
		return 0, false
	}
	digits := strings.TrimPrefix(s, "-")
	if len(digits) > 1 && digits[0] == '0' && digits[1] != '.' {
		return 0, false
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || strings.ContainsAny(s, "eEnNiI") {
		return 0, false
	}
	return n, true
}

// sanitizeExcelCell quotes text that Excel would evaluate as a formula. The
// lone "-" placeholder is left as is.
func sanitizeExcelCell(s string) string {
	if s == "" || s == ScreenPlaceholder {
		return s
	}
	if strings.IndexByte(formulaLeaders, s[0]) >= 0 {
		return "'" + s
	}
	return s
}

// thinBorders outlines a cell on all four sides.
func thinBorders() []excelize.Border {
	var borders []excelize.Border
	for _, side := range []string{"left", "top", "bottom", "right"} {
		borders = append(borders, excelize.Border{Type: side, Color: "#000000", Style: 1})
	}
	return borders
}
