package dataset

import (
	"sort"
	"strconv"
	"time"

	"zeptopulse/pkg/contracts/domain"
)

// Table is the canonical in-memory dataset: every order with its derived
// fields, built once per load. It is immutable after construction; filter
// and aggregation operations are pure reads producing derived views, so one
// Table may be shared across any number of recomputations.
type Table struct {
	orders       []domain.Order
	sourceHash   string
	loadedAt     time.Time
	rejectedRows int
}

// NewTable builds a canonical table from fully derived orders. The slice is
// owned by the table afterwards and must not be mutated by the caller.
func NewTable(orders []domain.Order, sourceHash string, rejectedRows int) *Table {
	return &Table{
		orders:       orders,
		sourceHash:   sourceHash,
		loadedAt:     time.Now(),
		rejectedRows: rejectedRows,
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.orders)
}

// Order returns the row at index i. The pointer is valid for reading only.
func (t *Table) Order(i int) *domain.Order {
	return &t.orders[i]
}

// Orders returns the backing rows for read-only iteration.
func (t *Table) Orders() []domain.Order {
	return t.orders
}

// SourceHash is the sha256 of the source file content. A rebuilt table from
// a changed file gets a different hash, which is the cache invalidation key
// for anything holding on to derived results.
func (t *Table) SourceHash() string {
	return t.sourceHash
}

// LoadedAt reports when this snapshot was built.
func (t *Table) LoadedAt() time.Time {
	return t.loadedAt
}

// RejectedRows reports how many malformed source rows were dropped at load.
func (t *Table) RejectedRows() int {
	return t.rejectedRows
}

// ObservedValues returns the distinct non-empty values of a column across
// the whole table, in the same order grouped aggregates emit their keys.
// This is what the sidebar multiselects are populated from.
func (t *Table) ObservedValues(col Column) []string {
	seen := make(map[string]struct{})
	values := make([]string, 0)
	for i := range t.orders {
		v := col.StringValue(&t.orders[i])
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	SortValues(col, values)
	return values
}

// SortValues orders grouping keys ascending: bin order for the ordinal
// age-group column, numeric order for numeric columns, lexical order
// otherwise.
func SortValues(col Column, values []string) {
	switch {
	case col == ColAgeGroup:
		sort.Slice(values, func(i, j int) bool {
			return domain.AgeGroup(values[i]).Ordinal() < domain.AgeGroup(values[j]).Ordinal()
		})
	case col.IsNumeric():
		sort.Slice(values, func(i, j int) bool {
			a, errA := strconv.ParseFloat(values[i], 64)
			b, errB := strconv.ParseFloat(values[j], 64)
			if errA != nil || errB != nil {
				return values[i] < values[j]
			}
			return a < b
		})
	default:
		sort.Strings(values)
	}
}
