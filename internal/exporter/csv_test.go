package exporter

import (
	"bytes"
	"encoding/csv"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"zeptopulse/internal/analytics"
	"zeptopulse/internal/dataset"
	"zeptopulse/pkg/contracts/domain"
)

func exportSubset(t *testing.T) *analytics.Subset {
	t.Helper()

	orders := []domain.Order{
		{
			CustomerID: "C1", ProductID: "P1", City: "Mumbai", ProductCategory: "Snacks",
			Gender: "Female", Age: 61, Price: 100, Quantity: 2, DeliveryTimeMins: 12,
			LoyaltyPointsEarned: 4,
			OrderTime:           time.Date(2025, 1, 5, 9, 30, 0, 0, time.UTC),
		},
		{
			CustomerID: "C2", ProductID: "P2", City: "Delhi", ProductCategory: "Fruits",
			Gender: "Male", Age: 25, Price: 50.5, Quantity: 1, DeliveryTimeMins: 8,
			LoyaltyPointsEarned: 9,
			OrderTime:           time.Date(2025, 1, 5, 14, 10, 0, 0, time.UTC),
		},
	}
	for i := range orders {
		orders[i].Derive()
	}
	return analytics.Apply(dataset.NewTable(orders, "hash", 0), analytics.Filter{})
}

func newTestExporter() *Exporter {
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().WriteCSV(&buf, exportSubset(t), WriteOptions{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Header(), records[0])

	first := records[1]
	assert.Equal(t, "C1", first[0])
	assert.Equal(t, "Mumbai", first[2])
	assert.Equal(t, "100.00", first[6], "price carries two decimals")
	assert.Equal(t, "2025-01-05 09:30:00", first[10])
	assert.Equal(t, "true", first[11], "12 minute delivery breaches the threshold")
	assert.Equal(t, "Breached", first[12])
	assert.Equal(t, "56-65", first[13])
	assert.Equal(t, "Sunday", first[15])
	assert.Equal(t, "200.00", first[16])

	second := records[2]
	assert.Equal(t, "false", second[11])
	assert.Equal(t, "50.50", second[6])
}

func TestWriteCSVWithBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().WriteCSV(&buf, exportSubset(t), WriteOptions{BOMPrefix: true}))

	raw := buf.Bytes()
	require.True(t, bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}))
	assert.True(t, strings.HasPrefix(string(raw[3:]), "Customer_ID,"))
}

func TestWriteCSVEmptySubsetHasHeaderOnly(t *testing.T) {
	subset := analytics.Apply(dataset.NewTable(nil, "hash", 0), analytics.Filter{})

	var buf bytes.Buffer
	require.NoError(t, newTestExporter().WriteCSV(&buf, subset, WriteOptions{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, newTestExporter().WriteXLSX(&buf, exportSubset(t)))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Customer_ID", rows[0][0])
	assert.Equal(t, "Delhi", rows[2][2])
}
