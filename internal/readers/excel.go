package readers

import (
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

const cellSeparator = "\t"

// ReadExcel renders every sheet of an Excel workbook as tab-separated text,
// each sheet preceded by its name.
func ReadExcel(path string) (string, error) {
	workbook, openError := excelize.OpenFile(path)
	if openError != nil {
		return "", fmt.Errorf("opening workbook %s: %w", path, openError)
	}
	defer func() {
		if closeError := workbook.Close(); closeError != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close workbook %s: %v\n", path, closeError)
		}
	}()

	var builder strings.Builder
	for _, sheetName := range workbook.GetSheetList() {
		rows, rowsError := workbook.GetRows(sheetName)
		if rowsError != nil {
			return "", fmt.Errorf("reading sheet %s of %s: %w", sheetName, path, rowsError)
		}
		builder.WriteString("## ")
		builder.WriteString(sheetName)
		builder.WriteByte('\n')
		for _, row := range rows {
			builder.WriteString(strings.Join(row, cellSeparator))
			builder.WriteByte('\n')
		}
	}
	return builder.String(), nil
}
