package analytics

import (
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"zeptopulse/internal/dataset"
)

func strconvFormat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Float marshals NaN as JSON null. Correlation cells are undefined — not
// zero — when a column has no variance in the filtered subset, and the
// wire format has to preserve that distinction.
type Float float64

// MarshalJSON implements json.Marshaler.
func (f Float) MarshalJSON() ([]byte, error) {
	if math.IsNaN(float64(f)) || math.IsInf(float64(f), 0) {
		return []byte("null"), nil
	}
	return []byte(strconvFormat(float64(f))), nil
}

// IsNaN reports whether the value is undefined.
func (f Float) IsNaN() bool {
	return math.IsNaN(float64(f))
}

// CorrelationMatrix is the pairwise Pearson correlation over the loyalty
// view's fixed numeric column set.
type CorrelationMatrix struct {
	Columns []string  `json:"columns"`
	Values  [][]Float `json:"values"`
}

// Correlation computes the Pearson matrix over {Total_Spend, Quantity,
// Delivery_Time_mins, Loyalty_Points_Earned, Age} for the subset. Cells are
// NaN when either column has zero variance or the subset has fewer than two
// rows.
func (s *Subset) Correlation() *CorrelationMatrix {
	cols := dataset.CorrelationColumns
	series := make([][]float64, len(cols))
	for i, col := range cols {
		series[i], _ = s.numericColumn(col)
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = string(col)
	}

	values := make([][]Float, len(cols))
	for i := range cols {
		values[i] = make([]Float, len(cols))
		for j := range cols {
			values[i][j] = Float(pearson(series[i], series[j]))
		}
	}

	return &CorrelationMatrix{Columns: names, Values: values}
}

// pearson wraps stat.Correlation with the undefined cases made explicit.
func pearson(x, y []float64) float64 {
	if len(x) < 2 || len(y) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
