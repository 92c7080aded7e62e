package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"zeptopulse/internal/dataset"
	"zeptopulse/internal/errors"
)

// AggFunc is a grouped aggregation method.
type AggFunc string

const (
	AggSum   AggFunc = "sum"
	AggMean  AggFunc = "mean"
	AggCount AggFunc = "count"
)

// ParseAggFunc validates an aggregation method name against the canonical
// set ("sum"/"mean"/"count") enforced at the request boundary.
func ParseAggFunc(name string) (AggFunc, error) {
	switch AggFunc(name) {
	case AggSum, AggMean, AggCount:
		return AggFunc(name), nil
	default:
		return "", errors.NewValidationError(fmt.Sprintf("unknown aggregation method %q", name))
	}
}

// GroupRow is one emitted group of a grouped aggregate.
type GroupRow struct {
	Key      string  `json:"key"`
	ColorKey string  `json:"color_key,omitempty"`
	Value    float64 `json:"value"`
	Count    int     `json:"count"`
}

// GroupBy aggregates valueCol over the subset grouped by groupCol.
//
// Count is defined for every column kind; sum and mean demand a numeric
// value column and return ErrInvalidAggregation otherwise — never a silently
// coerced number. Rows whose group key is empty (orders outside the age
// bins, for the age-group column) are excluded. Keys are emitted ascending:
// bin order for the ordinal age-group column, natural order elsewhere.
func (s *Subset) GroupBy(groupCol, valueCol dataset.Column, fn AggFunc) ([]GroupRow, error) {
	return s.groupBy(groupCol, "", valueCol, fn)
}

// GroupByColor aggregates like GroupBy but with a secondary grouping key,
// the explore view's color dimension. Groups sort by primary key first.
func (s *Subset) GroupByColor(groupCol, colorCol, valueCol dataset.Column, fn AggFunc) ([]GroupRow, error) {
	return s.groupBy(groupCol, colorCol, valueCol, fn)
}

func (s *Subset) groupBy(groupCol, colorCol, valueCol dataset.Column, fn AggFunc) ([]GroupRow, error) {
	if fn != AggCount && !valueCol.IsNumeric() {
		return nil, errors.NewInvalidAggregationError(string(fn), string(valueCol))
	}

	type bucket struct {
		values []float64
		count  int
	}
	type groupKey struct {
		key   string
		color string
	}
	buckets := make(map[groupKey]*bucket)

	for _, idx := range s.rows {
		order := s.table.Order(idx)
		key := groupCol.StringValue(order)
		if key == "" {
			continue
		}
		gk := groupKey{key: key}
		if colorCol != "" {
			gk.color = colorCol.StringValue(order)
			if gk.color == "" {
				continue
			}
		}
		b := buckets[gk]
		if b == nil {
			b = &bucket{}
			buckets[gk] = b
		}
		b.count++
		if fn != AggCount {
			v, _ := valueCol.NumericValue(order)
			b.values = append(b.values, v)
		}
	}

	keys := make([]string, 0, len(buckets))
	seen := make(map[string]struct{})
	colorsByKey := make(map[string][]string)
	for gk := range buckets {
		if _, ok := seen[gk.key]; !ok {
			seen[gk.key] = struct{}{}
			keys = append(keys, gk.key)
		}
		colorsByKey[gk.key] = append(colorsByKey[gk.key], gk.color)
	}
	dataset.SortValues(groupCol, keys)
	for key := range colorsByKey {
		dataset.SortValues(colorCol, colorsByKey[key])
	}

	out := make([]GroupRow, 0, len(buckets))
	for _, key := range keys {
		for _, color := range colorsByKey[key] {
			b := buckets[groupKey{key: key, color: color}]
			row := GroupRow{Key: key, ColorKey: color, Count: b.count}
			switch fn {
			case AggSum:
				for _, v := range b.values {
					row.Value += v
				}
			case AggMean:
				row.Value = stat.Mean(b.values, nil)
			case AggCount:
				row.Value = float64(b.count)
			}
			out = append(out, row)
		}
	}
	return out, nil
}

// Pivot is a two-dimensional grouped aggregate: rows × columns of aggregated
// values, nil where the combination has no data.
type Pivot struct {
	RowColumn    string       `json:"row_column"`
	ColumnColumn string       `json:"column_column"`
	Rows         []string     `json:"rows"`
	Columns      []string     `json:"columns"`
	Values       [][]*float64 `json:"values"`
}

// PivotBy builds a pivot of valueCol aggregated by rowCol × colCol, the
// segments view's category × age-group spend heatmap. Same aggregation and
// key-ordering rules as GroupBy.
func (s *Subset) PivotBy(rowCol, colCol, valueCol dataset.Column, fn AggFunc) (*Pivot, error) {
	groups, err := s.groupBy(rowCol, colCol, valueCol, fn)
	if err != nil {
		return nil, err
	}

	rowIdx := make(map[string]int)
	colIdx := make(map[string]int)
	var rowKeys, colKeys []string
	for _, g := range groups {
		if _, ok := rowIdx[g.Key]; !ok {
			rowIdx[g.Key] = 0
			rowKeys = append(rowKeys, g.Key)
		}
		if _, ok := colIdx[g.ColorKey]; !ok {
			colIdx[g.ColorKey] = 0
			colKeys = append(colKeys, g.ColorKey)
		}
	}
	dataset.SortValues(rowCol, rowKeys)
	dataset.SortValues(colCol, colKeys)
	for i, k := range rowKeys {
		rowIdx[k] = i
	}
	for i, k := range colKeys {
		colIdx[k] = i
	}

	values := make([][]*float64, len(rowKeys))
	for i := range values {
		values[i] = make([]*float64, len(colKeys))
	}
	for _, g := range groups {
		v := g.Value
		values[rowIdx[g.Key]][colIdx[g.ColorKey]] = &v
	}

	return &Pivot{
		RowColumn:    string(rowCol),
		ColumnColumn: string(colCol),
		Rows:         rowKeys,
		Columns:      colKeys,
		Values:       values,
	}, nil
}
