package exporter

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"zeptopulse/internal/analytics"
)

const sheetName = "Orders"

// WriteXLSX streams the subset to w as a single-sheet workbook with
// native number cells and a frozen header row.
func (e *Exporter) WriteXLSX(w io.Writer, subset *analytics.Subset) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	header := make([]interface{}, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = string(col)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	table := subset.Table()
	for i, row := range subset.Rows() {
		order := table.Order(row)
		cells := make([]interface{}, len(exportColumns))
		for j, col := range exportColumns {
			cells[j] = cellValue(col, order)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i, err)
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}

	e.logger.Info("subset exported",
		slog.String("format", "xlsx"),
		slog.Int("rows", subset.Len()))
	return nil
}
