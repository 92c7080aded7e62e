package dataset

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"zeptopulse/internal/errors"
	"zeptopulse/pkg/contracts/domain"
)

// orderTimeLayouts are the timestamp formats accepted in the Order_Time
// column, tried in order.
var orderTimeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"02-01-2006 15:04",
	"2006-01-02",
}

// requiredColumns is the fixed header set the source file must carry.
var requiredColumns = []Column{
	ColCustomerID,
	ColProductID,
	ColCity,
	ColProductCategory,
	ColGender,
	ColAge,
	ColPrice,
	ColQuantity,
	ColDeliveryTimeMins,
	ColLoyaltyPoints,
	ColOrderTime,
}

// Loader reads the raw order dataset and produces the canonical table.
//
// Malformed rows (unparseable numerics or timestamps) are rejected
// individually, counted and logged rather than coerced; the load as a whole
// fails only when the file cannot be read, the header is wrong, or no row
// survives. An absent or unreadable file is ErrDataUnavailable and fatal for
// the session.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a dataset loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger.With(slog.String("component", "dataset_loader"))}
}

// Load reads the dataset file at path and builds the canonical table. CSV is
// the primary format; .xlsx workbooks are read from their first sheet.
func (l *Loader) Load(ctx context.Context, path string) (*Table, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewDataUnavailableError(path, err)
	}

	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	var rows [][]string
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		rows, err = readXLSXRows(content)
	default:
		rows, err = readCSVRows(content)
	}
	if err != nil {
		return nil, errors.NewDataUnavailableError(path, err)
	}

	table, err := l.buildTable(ctx, rows, hash)
	if err != nil {
		return nil, err
	}

	l.logger.InfoContext(ctx, "canonical table built",
		slog.String("path", path),
		slog.String("source_hash", hash[:12]),
		slog.Int("rows", table.Len()),
		slog.Int("rejected_rows", table.RejectedRows()))

	return table, nil
}

func readCSVRows(content []byte) ([][]string, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func readXLSXRows(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// buildTable parses the header, converts each surviving row into a derived
// order and assembles the immutable table.
func (l *Loader) buildTable(ctx context.Context, rows [][]string, hash string) (*Table, error) {
	if len(rows) == 0 {
		return nil, errors.NewParsingError("dataset is empty", nil)
	}

	columnIndex, err := mapHeader(rows[0])
	if err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(rows)-1)
	rejected := 0
	for i, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		order, err := parseRow(row, columnIndex)
		if err != nil {
			rejected++
			l.logger.WarnContext(ctx, "rejected malformed row",
				slog.Int("row", i+2), // 1-based, counting the header
				slog.String("error", err.Error()))
			continue
		}
		order.Derive()
		orders = append(orders, order)
	}

	if len(orders) == 0 {
		return nil, errors.NewParsingError(
			fmt.Sprintf("no valid rows in dataset (%d rejected)", rejected), nil)
	}

	return NewTable(orders, hash, rejected), nil
}

// mapHeader locates every required column in the header row.
func mapHeader(header []string) (map[Column]int, error) {
	index := make(map[Column]int, len(header))
	for i, name := range header {
		index[Column(strings.TrimSpace(name))] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, errors.NewParsingError(
				fmt.Sprintf("dataset header is missing column %q", col), nil)
		}
	}
	return index, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string, index map[Column]int) (domain.Order, error) {
	cell := func(col Column) string {
		i := index[col]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var order domain.Order
	var err error

	order.CustomerID = cell(ColCustomerID)
	order.ProductID = cell(ColProductID)
	order.City = cell(ColCity)
	order.ProductCategory = cell(ColProductCategory)
	order.Gender = cell(ColGender)

	if order.Age, err = parseIntCell(cell(ColAge), ColAge); err != nil {
		return domain.Order{}, err
	}
	if order.Price, err = parseFloatCell(cell(ColPrice), ColPrice); err != nil {
		return domain.Order{}, err
	}
	if order.Quantity, err = parseIntCell(cell(ColQuantity), ColQuantity); err != nil {
		return domain.Order{}, err
	}
	if order.DeliveryTimeMins, err = parseFloatCell(cell(ColDeliveryTimeMins), ColDeliveryTimeMins); err != nil {
		return domain.Order{}, err
	}
	if order.LoyaltyPointsEarned, err = parseIntCell(cell(ColLoyaltyPoints), ColLoyaltyPoints); err != nil {
		return domain.Order{}, err
	}
	if order.OrderTime, err = parseTimeCell(cell(ColOrderTime)); err != nil {
		return domain.Order{}, err
	}

	return order, nil
}

func parseFloatCell(value string, col Column) (float64, error) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil {
		return 0, fmt.Errorf("column %s: %q is not numeric", col, value)
	}
	return v, nil
}

func parseIntCell(value string, col Column) (int, error) {
	// Integer columns exported through spreadsheets often carry a decimal
	// point ("34.0"); accept those as long as they are whole.
	f, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", ""), 64)
	if err != nil || f != float64(int(f)) {
		return 0, fmt.Errorf("column %s: %q is not an integer", col, value)
	}
	return int(f), nil
}

func parseTimeCell(value string) (time.Time, error) {
	for _, layout := range orderTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("column %s: %q is not a recognized timestamp", ColOrderTime, value)
}
