// Package analytics implements the filter/aggregator over the canonical
// order table: predicate filtering, KPI summaries, grouped aggregates,
// pivots and the loyalty correlation matrix. Every operation is a pure read
// of an immutable table snapshot; each dashboard interaction recomputes from
// scratch.
package analytics

import (
	"zeptopulse/internal/dataset"
)

// Filter holds per-attribute allowed-value sets for the four filterable
// attributes. A nil set means "no constraint" (all values currently
// present); an empty non-nil set excludes every row. Attributes combine by
// conjunction.
type Filter struct {
	City            []string `json:"city,omitempty"`
	ProductCategory []string `json:"product_category,omitempty"`
	AgeGroup        []string `json:"age_group,omitempty"`
	Gender          []string `json:"gender,omitempty"`
}

// attributeSets pairs each filterable column with its allowed set.
func (f Filter) attributeSets() map[dataset.Column][]string {
	return map[dataset.Column][]string{
		dataset.ColCity:            f.City,
		dataset.ColProductCategory: f.ProductCategory,
		dataset.ColAgeGroup:        f.AgeGroup,
		dataset.ColGender:          f.Gender,
	}
}

// Subset is a filtered view over a canonical table: the table pointer plus
// the indices of the rows that passed the predicates. It never copies rows
// and never mutates the table.
type Subset struct {
	table *dataset.Table
	rows  []int
}

// Apply filters the whole canonical table.
func Apply(table *dataset.Table, f Filter) *Subset {
	all := make([]int, table.Len())
	for i := range all {
		all[i] = i
	}
	return filterRows(table, all, f)
}

// Filter applies further predicates to an existing subset. Applying the same
// filter twice is idempotent.
func (s *Subset) Filter(f Filter) *Subset {
	return filterRows(s.table, s.rows, f)
}

func filterRows(table *dataset.Table, rows []int, f Filter) *Subset {
	preds := make([]predicate, 0, len(dataset.FilterableColumns))
	for _, col := range dataset.FilterableColumns {
		if p, active := newPredicate(table, col, f.attributeSets()[col]); active {
			preds = append(preds, p)
		}
	}

	kept := make([]int, 0, len(rows))
	for _, idx := range rows {
		order := table.Order(idx)
		match := true
		for _, p := range preds {
			if !p.matches(p.col.StringValue(order)) {
				match = false
				break
			}
		}
		if match {
			kept = append(kept, idx)
		}
	}
	return &Subset{table: table, rows: kept}
}

type predicate struct {
	col     dataset.Column
	allowed map[string]struct{}
}

// newPredicate builds the membership test for one attribute. A nil allowed
// set is inactive. A set that covers every value observed in the canonical
// table is also inactive: "select all" must yield the table row-for-row,
// including rows whose attribute has no value (orders outside the age bins).
func newPredicate(table *dataset.Table, col dataset.Column, allowed []string) (predicate, bool) {
	if allowed == nil {
		return predicate{}, false
	}
	set := make(map[string]struct{}, len(allowed))
	for _, v := range allowed {
		set[v] = struct{}{}
	}

	observed := table.ObservedValues(col)
	coversAll := true
	for _, v := range observed {
		if _, ok := set[v]; !ok {
			coversAll = false
			break
		}
	}
	if coversAll && len(observed) > 0 {
		return predicate{}, false
	}
	return predicate{col: col, allowed: set}, true
}

func (p predicate) matches(value string) bool {
	_, ok := p.allowed[value]
	return ok
}

// Len returns the number of rows in the subset.
func (s *Subset) Len() int {
	return len(s.rows)
}

// Table returns the canonical table the subset was drawn from.
func (s *Subset) Table() *dataset.Table {
	return s.table
}

// Rows returns the subset's row indices into the canonical table, in table
// order. Read-only.
func (s *Subset) Rows() []int {
	return s.rows
}

// numericColumn collects the column's values across the subset. The bool is
// false when the column is not numeric.
func (s *Subset) numericColumn(col dataset.Column) ([]float64, bool) {
	if !col.IsNumeric() {
		return nil, false
	}
	values := make([]float64, 0, len(s.rows))
	for _, idx := range s.rows {
		v, ok := col.NumericValue(s.table.Order(idx))
		if !ok {
			return nil, false
		}
		values = append(values, v)
	}
	return values, true
}
