package analytics

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeptopulse/internal/dataset"
	"zeptopulse/pkg/contracts/domain"
)

func correlationTable(t *testing.T, orders []domain.Order) *dataset.Table {
	t.Helper()
	for i := range orders {
		if orders[i].OrderTime.IsZero() {
			orders[i].OrderTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
		}
		orders[i].Derive()
	}
	return dataset.NewTable(orders, "corr-hash", 0)
}

func TestCorrelationPerfectlyLinear(t *testing.T) {
	// Loyalty points exactly track total spend: correlation 1.
	table := correlationTable(t, []domain.Order{
		{Age: 30, Price: 10, Quantity: 1, DeliveryTimeMins: 5, LoyaltyPointsEarned: 10},
		{Age: 40, Price: 20, Quantity: 1, DeliveryTimeMins: 7, LoyaltyPointsEarned: 20},
		{Age: 50, Price: 30, Quantity: 1, DeliveryTimeMins: 9, LoyaltyPointsEarned: 30},
	})
	matrix := Apply(table, Filter{}).Correlation()

	require.Equal(t, []string{
		"Total_Spend", "Quantity", "Delivery_Time_mins", "Loyalty_Points_Earned", "Age",
	}, matrix.Columns)

	spendIdx, pointsIdx := 0, 3
	assert.InDelta(t, 1.0, float64(matrix.Values[spendIdx][pointsIdx]), 1e-9)
	assert.InDelta(t, 1.0, float64(matrix.Values[spendIdx][spendIdx]), 1e-9)
}

func TestCorrelationZeroVarianceIsNaN(t *testing.T) {
	// Quantity is constant, so every cell touching it is undefined.
	table := correlationTable(t, []domain.Order{
		{Age: 30, Price: 10, Quantity: 2, DeliveryTimeMins: 5, LoyaltyPointsEarned: 3},
		{Age: 40, Price: 20, Quantity: 2, DeliveryTimeMins: 7, LoyaltyPointsEarned: 9},
	})
	matrix := Apply(table, Filter{}).Correlation()

	quantityIdx := 1
	for j := range matrix.Columns {
		assert.True(t, matrix.Values[quantityIdx][j].IsNaN(),
			"quantity row cell %d must be NaN, not zero", j)
	}
	// Total spend varies with price here, so spend-vs-age is defined.
	assert.False(t, matrix.Values[0][4].IsNaN())
}

func TestCorrelationSingleRowIsNaN(t *testing.T) {
	table := correlationTable(t, []domain.Order{
		{Age: 30, Price: 10, Quantity: 2, DeliveryTimeMins: 5, LoyaltyPointsEarned: 3},
	})
	matrix := Apply(table, Filter{}).Correlation()

	for i := range matrix.Values {
		for j := range matrix.Values[i] {
			assert.True(t, matrix.Values[i][j].IsNaN())
		}
	}
}

func TestFloatJSONMarshaling(t *testing.T) {
	data, err := json.Marshal([]Float{1.5, Float(math.NaN()), -0.25})
	require.NoError(t, err)
	assert.JSONEq(t, `[1.5, null, -0.25]`, string(data))
}
