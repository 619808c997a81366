// Package export renders conversion history as a downloadable spreadsheet.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"docmorph/internal/domain/models"
)

const sheetName = "Conversions"

// XLSXMIME is the Content-Type for the exported workbook.
const XLSXMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var headers = []string{"ID", "File Name", "Original Format", "Target Format", "File Size (bytes)", "Status", "Created At"}

// HistoryXLSX renders the records into a single-sheet workbook, one row per
// record in the given order.
func HistoryXLSX(records []models.ConversionRecord) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for row, rec := range records {
		values := []any{
			rec.ID,
			rec.FileName,
			rec.OriginalFormat,
			rec.TargetFormat,
			rec.FileSize,
			rec.Status,
			rec.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("write row %d: %w", row+1, err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
