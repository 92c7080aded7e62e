// Package exporter renders the filtered subset as downloadable CSV or
// XLSX files.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"

	"zeptopulse/internal/analytics"
	"zeptopulse/internal/dataset"
	"zeptopulse/pkg/contracts/domain"
)

// exportColumns is the column order of exported files: the raw source
// columns followed by the derived ones.
var exportColumns = []dataset.Column{
	dataset.ColCustomerID,
	dataset.ColProductID,
	dataset.ColCity,
	dataset.ColProductCategory,
	dataset.ColGender,
	dataset.ColAge,
	dataset.ColPrice,
	dataset.ColQuantity,
	dataset.ColDeliveryTimeMins,
	dataset.ColLoyaltyPoints,
	dataset.ColOrderTime,
	dataset.ColSLABreach,
	dataset.ColSLAStatus,
	dataset.ColAgeGroup,
	dataset.ColHour,
	dataset.ColDayOfWeek,
	dataset.ColTotalSpend,
}

// Exporter writes subsets to export formats
type Exporter struct {
	logger *slog.Logger
}

// New creates an exporter
func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger.With(slog.String("component", "exporter"))}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Header returns the export header row.
func Header() []string {
	header := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = string(col)
	}
	return header
}

// WriteCSV streams the subset to w as CSV, header first, rows in
// subset order.
func (e *Exporter) WriteCSV(w io.Writer, subset *analytics.Subset, options WriteOptions) error {
	// BOM helps Excel recognize UTF-8
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(w)

	if err := writer.Write(Header()); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	table := subset.Table()
	for i, row := range subset.Rows() {
		if err := writer.Write(record(table.Order(row))); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	e.logger.Info("subset exported",
		slog.String("format", "csv"),
		slog.Int("rows", subset.Len()))
	return nil
}

// record renders one order in export column order.
func record(o *domain.Order) []string {
	out := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		out[i] = formatCell(col, o)
	}
	return out
}
