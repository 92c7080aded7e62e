package analytics

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zeptopulse/internal/dataset"
	"zeptopulse/internal/errors"
)

func TestBuildDeliveryView(t *testing.T) {
	table := testTable(t)
	view, err := Apply(table, Filter{}).BuildDeliveryView()
	require.NoError(t, err)

	require.Len(t, view.BreachByCity, 2)
	assert.Equal(t, "Delhi", view.BreachByCity[0].Key)
	assert.Equal(t, 0.0, view.BreachByCity[0].Value)
	assert.Equal(t, "Mumbai", view.BreachByCity[1].Key)
	assert.Equal(t, 50.0, view.BreachByCity[1].Value)

	// Quantities 1, 2 and 4 each have one delivery; keys in numeric order.
	require.Len(t, view.TimeByQuantity, 3)
	assert.Equal(t, "1", view.TimeByQuantity[0].Key)
	assert.Equal(t, "2", view.TimeByQuantity[1].Key)
	assert.Equal(t, "4", view.TimeByQuantity[2].Key)
	assert.Equal(t, 8.0, view.TimeByQuantity[0].Median)
	assert.Equal(t, 1, view.TimeByQuantity[0].Count)
}

func TestBoxStatsDistribution(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	boxes, err := subset.boxStatsBy(dataset.ColGender, dataset.ColDeliveryTimeMins)
	require.NoError(t, err)

	require.Len(t, boxes, 2)
	male := boxes[1]
	assert.Equal(t, "Male", male.Key)
	assert.Equal(t, 2, male.Count)
	assert.Equal(t, 8.0, male.Min)
	assert.Equal(t, 10.0, male.Max)
	assert.Equal(t, 9.0, male.Mean)
}

func TestBuildSegmentsView(t *testing.T) {
	table := testTable(t)
	view, err := Apply(table, Filter{}).BuildSegmentsView()
	require.NoError(t, err)

	require.Len(t, view.SpendByAgeGroup, 2)
	assert.Equal(t, "18-25", view.SpendByAgeGroup[0].Key)
	assert.Equal(t, "56-65", view.SpendByAgeGroup[1].Key)
	assert.Equal(t, 200.0, view.SpendByAgeGroup[1].Value)

	require.NotNil(t, view.SpendPivot)
	assert.Equal(t, "Product_Category", view.SpendPivot.RowColumn)
	assert.Equal(t, "Age_Group", view.SpendPivot.ColumnColumn)
}

func TestBuildLoyaltyView(t *testing.T) {
	table := testTable(t)
	view := Apply(table, Filter{}).BuildLoyaltyView()

	require.Len(t, view.Points, 3)
	assert.Equal(t, 200.0, view.Points[0].TotalSpend)
	assert.Equal(t, 4, view.Points[0].LoyaltyPoints)
	assert.Equal(t, "56-65", view.Points[0].AgeGroup)
	assert.Equal(t, "", view.Points[2].AgeGroup, "age 70 has no group")

	require.NotNil(t, view.Correlation)
	assert.Len(t, view.Correlation.Values, 5)
}

func TestParseChartType(t *testing.T) {
	for _, name := range []string{"scatter", "bar", "line", "histogram", "box", "violin"} {
		ct, err := ParseChartType(name)
		require.NoError(t, err)
		assert.Equal(t, ChartType(name), ct)
	}

	_, err := ParseChartType("pie")
	assert.Error(t, err)
}

func TestExploreAggregated(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	result, err := subset.Explore(ExploreSpec{
		X:         dataset.ColCity,
		Y:         dataset.ColTotalSpend,
		Chart:     ChartBar,
		Aggregate: true,
		Method:    AggSum,
	})
	require.NoError(t, err)

	assert.True(t, result.Aggregated)
	assert.Equal(t, "Total_Spend (sum) by City", result.Title)
	require.Len(t, result.Groups, 2)
	assert.Empty(t, result.Points)
}

func TestExploreAggregatedWithColor(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	result, err := subset.Explore(ExploreSpec{
		X:         dataset.ColCity,
		Y:         dataset.ColQuantity,
		Color:     dataset.ColGender,
		Chart:     ChartLine,
		Aggregate: true,
		Method:    AggMean,
	})
	require.NoError(t, err)
	require.Len(t, result.Groups, 3)
	assert.Equal(t, "Male", result.Groups[0].ColorKey)
}

func TestExploreRawScatter(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	result, err := subset.Explore(ExploreSpec{
		X:     dataset.ColAge,
		Y:     dataset.ColTotalSpend,
		Color: dataset.ColCity,
		Chart: ChartScatter,
	})
	require.NoError(t, err)

	assert.False(t, result.Aggregated)
	assert.Equal(t, "Total_Spend vs Age", result.Title)
	require.Len(t, result.Points, 3)
	assert.Equal(t, ExplorePoint{X: "61", Y: "200", Color: "Mumbai"}, result.Points[0])
}

func TestExploreHistogramOmitsY(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	result, err := subset.Explore(ExploreSpec{
		X:     dataset.ColDeliveryTimeMins,
		Y:     dataset.ColTotalSpend,
		Chart: ChartHistogram,
	})
	require.NoError(t, err)

	assert.Equal(t, "Distribution of Delivery_Time_mins", result.Title)
	for _, p := range result.Points {
		assert.Empty(t, p.Y)
	}
}

func TestExploreAggregateOnScatterRejected(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	_, err := subset.Explore(ExploreSpec{
		X:         dataset.ColCity,
		Y:         dataset.ColTotalSpend,
		Chart:     ChartScatter,
		Aggregate: true,
		Method:    AggSum,
	})
	assert.Error(t, err)
}

func TestExploreInvalidAggregationIsLocal(t *testing.T) {
	table := testTable(t)
	subset := Apply(table, Filter{})

	// Summing a text column fails this view only; the error is typed so
	// the transport layer can keep the rest of the dashboard alive.
	_, err := subset.Explore(ExploreSpec{
		X:         dataset.ColCity,
		Y:         dataset.ColGender,
		Chart:     ChartBar,
		Aggregate: true,
		Method:    AggSum,
	})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidAggregation))

	// The same subset still summarizes fine afterwards.
	_, err = subset.Summarize()
	assert.NoError(t, err)
}
