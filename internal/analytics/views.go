package analytics

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"zeptopulse/internal/dataset"
	"zeptopulse/internal/errors"
)

// DeliveryView answers the delivery-crisis tab: where the 10-minute promise
// is failing and whether basket size has anything to do with it.
type DeliveryView struct {
	BreachByCity   []GroupRow `json:"breach_by_city"`
	TimeByQuantity []BoxStats `json:"time_by_quantity"`
}

// BoxStats are the per-group distribution stats behind a box plot.
type BoxStats struct {
	Key    string  `json:"key"`
	Count  int     `json:"count"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// BuildDeliveryView computes SLA breach percentage by city and the delivery
// time distribution per order quantity.
func (s *Subset) BuildDeliveryView() (*DeliveryView, error) {
	breach, err := s.GroupBy(dataset.ColCity, dataset.ColSLABreach, AggMean)
	if err != nil {
		return nil, err
	}
	for i := range breach {
		breach[i].Value *= 100
	}

	boxes, err := s.boxStatsBy(dataset.ColQuantity, dataset.ColDeliveryTimeMins)
	if err != nil {
		return nil, err
	}

	return &DeliveryView{BreachByCity: breach, TimeByQuantity: boxes}, nil
}

func (s *Subset) boxStatsBy(groupCol, valueCol dataset.Column) ([]BoxStats, error) {
	if !valueCol.IsNumeric() {
		return nil, errors.NewInvalidAggregationError("distribution", string(valueCol))
	}

	grouped := make(map[string][]float64)
	for _, idx := range s.rows {
		order := s.table.Order(idx)
		key := groupCol.StringValue(order)
		if key == "" {
			continue
		}
		v, _ := valueCol.NumericValue(order)
		grouped[key] = append(grouped[key], v)
	}

	keys := make([]string, 0, len(grouped))
	for key := range grouped {
		keys = append(keys, key)
	}
	dataset.SortValues(groupCol, keys)

	out := make([]BoxStats, 0, len(keys))
	for _, key := range keys {
		values := grouped[key]
		sort.Float64s(values)
		out = append(out, BoxStats{
			Key:    key,
			Count:  len(values),
			Min:    values[0],
			Q1:     stat.Quantile(0.25, stat.Empirical, values, nil),
			Median: stat.Quantile(0.5, stat.Empirical, values, nil),
			Q3:     stat.Quantile(0.75, stat.Empirical, values, nil),
			Max:    values[len(values)-1],
			Mean:   stat.Mean(values, nil),
		})
	}
	return out, nil
}

// SegmentsView answers the customer-segments tab: which age cohorts spend,
// and on what. The 56-65 cohort ("Silver Economy") is the one to watch.
type SegmentsView struct {
	SpendByAgeGroup []GroupRow `json:"spend_by_age_group"`
	SpendPivot      *Pivot     `json:"spend_pivot"`
}

// BuildSegmentsView computes total spend per age group and the product
// category × age group spend pivot. Orders outside the age bins carry no
// group and do not appear in either aggregate.
func (s *Subset) BuildSegmentsView() (*SegmentsView, error) {
	spend, err := s.GroupBy(dataset.ColAgeGroup, dataset.ColTotalSpend, AggSum)
	if err != nil {
		return nil, err
	}
	pivot, err := s.PivotBy(dataset.ColProductCategory, dataset.ColAgeGroup, dataset.ColTotalSpend, AggSum)
	if err != nil {
		return nil, err
	}
	return &SegmentsView{SpendByAgeGroup: spend, SpendPivot: pivot}, nil
}

// LoyaltyView answers the loyalty tab: spend plotted against points earned,
// plus the correlation matrix that shows whether the reward system tracks
// spend at all.
type LoyaltyView struct {
	Points      []LoyaltyPoint     `json:"points"`
	Correlation *CorrelationMatrix `json:"correlation"`
}

// LoyaltyPoint is one order in the spend-vs-points scatter.
type LoyaltyPoint struct {
	TotalSpend    float64 `json:"total_spend"`
	LoyaltyPoints int     `json:"loyalty_points"`
	AgeGroup      string  `json:"age_group,omitempty"`
}

// BuildLoyaltyView collects the scatter points and the Pearson matrix.
func (s *Subset) BuildLoyaltyView() *LoyaltyView {
	points := make([]LoyaltyPoint, 0, s.Len())
	for _, idx := range s.rows {
		order := s.table.Order(idx)
		points = append(points, LoyaltyPoint{
			TotalSpend:    order.TotalSpend,
			LoyaltyPoints: order.LoyaltyPointsEarned,
			AgeGroup:      string(order.AgeGroup),
		})
	}
	return &LoyaltyView{Points: points, Correlation: s.Correlation()}
}

// ChartType enumerates the explore view's chart shapes. The backend only
// validates the selection and shapes the data; drawing is the frontend's
// problem.
type ChartType string

const (
	ChartScatter   ChartType = "scatter"
	ChartBar       ChartType = "bar"
	ChartLine      ChartType = "line"
	ChartHistogram ChartType = "histogram"
	ChartBox       ChartType = "box"
	ChartViolin    ChartType = "violin"
)

// aggregableCharts are the chart types the explore view may aggregate for.
var aggregableCharts = map[ChartType]bool{ChartBar: true, ChartLine: true}

// ParseChartType validates a chart type name.
func ParseChartType(name string) (ChartType, error) {
	switch ChartType(name) {
	case ChartScatter, ChartBar, ChartLine, ChartHistogram, ChartBox, ChartViolin:
		return ChartType(name), nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown chart type %q", name))
	}
}

// ExploreSpec is a validated free-form chart request: axes and color are
// schema columns, the aggregation method is parsed, unknown names were
// rejected at the boundary.
type ExploreSpec struct {
	X         dataset.Column
	Y         dataset.Column
	Color     dataset.Column // optional, "" for none
	Chart     ChartType
	Aggregate bool
	Method    AggFunc
}

// ExploreResult is the data behind one free-form chart.
type ExploreResult struct {
	Title      string         `json:"title"`
	Chart      ChartType      `json:"chart_type"`
	Aggregated bool           `json:"aggregated"`
	Groups     []GroupRow     `json:"groups,omitempty"`
	Points     []ExplorePoint `json:"points,omitempty"`
}

// ExplorePoint is one raw row of a non-aggregated chart. Values are the
// columns' string renderings; numeric values use their shortest decimal
// form and parse back losslessly.
type ExplorePoint struct {
	X     string `json:"x"`
	Y     string `json:"y,omitempty"`
	Color string `json:"color,omitempty"`
}

// Explore builds the free-form chart data. Aggregation is only applied for
// bar and line charts, mirroring the dashboard controls; sum/mean over a
// non-numeric Y column fails with ErrInvalidAggregation and only this view.
func (s *Subset) Explore(spec ExploreSpec) (*ExploreResult, error) {
	if spec.Aggregate && !aggregableCharts[spec.Chart] {
		return nil, errors.NewValidationError(fmt.Sprintf("chart type %q cannot be aggregated", spec.Chart))
	}

	result := &ExploreResult{Chart: spec.Chart}

	if spec.Aggregate {
		var groups []GroupRow
		var err error
		if spec.Color != "" {
			groups, err = s.GroupByColor(spec.X, spec.Color, spec.Y, spec.Method)
		} else {
			groups, err = s.GroupBy(spec.X, spec.Y, spec.Method)
		}
		if err != nil {
			return nil, err
		}
		result.Aggregated = true
		result.Groups = groups
		result.Title = fmt.Sprintf("%s (%s) by %s", spec.Y, spec.Method, spec.X)
		return result, nil
	}

	points := make([]ExplorePoint, 0, s.Len())
	for _, idx := range s.rows {
		order := s.table.Order(idx)
		p := ExplorePoint{X: spec.X.StringValue(order)}
		if spec.Chart != ChartHistogram {
			p.Y = spec.Y.StringValue(order)
		}
		if spec.Color != "" {
			p.Color = spec.Color.StringValue(order)
		}
		points = append(points, p)
	}
	result.Points = points
	if spec.Chart == ChartHistogram {
		result.Title = fmt.Sprintf("Distribution of %s", spec.X)
	} else {
		result.Title = fmt.Sprintf("%s vs %s", spec.Y, spec.X)
	}
	return result, nil
}
