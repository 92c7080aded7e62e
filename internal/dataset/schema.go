// Package dataset builds and holds the canonical order table: it reads the
// raw delivery dataset once, derives the computed columns, and exposes an
// immutable snapshot that every dashboard view recomputes from.
package dataset

import (
	"strconv"

	"zeptopulse/internal/errors"
	"zeptopulse/pkg/contracts/domain"
)

// Kind classifies a schema column for filtering and aggregation rules.
type Kind int

const (
	KindIdentifier Kind = iota
	KindCategorical
	KindOrdinal
	KindNumeric
	KindBoolean
	KindTemporal
)

// Column is a validated reference to a known dataset column. External input
// (filter attributes, explore-view axis selections) is parsed into a Column
// at the boundary; unknown names never reach the aggregation code.
type Column string

// Raw columns, named after the source file header.
const (
	ColCustomerID       Column = "Customer_ID"
	ColProductID        Column = "Product_ID"
	ColCity             Column = "City"
	ColProductCategory  Column = "Product_Category"
	ColGender           Column = "Gender"
	ColAge              Column = "Age"
	ColPrice            Column = "Price"
	ColQuantity         Column = "Quantity"
	ColDeliveryTimeMins Column = "Delivery_Time_mins"
	ColLoyaltyPoints    Column = "Loyalty_Points_Earned"
	ColOrderTime        Column = "Order_Time"
)

// Derived columns, computed once at load.
const (
	ColSLABreach  Column = "SLA_Breach"
	ColSLAStatus  Column = "SLA_Status"
	ColAgeGroup   Column = "Age_Group"
	ColHour       Column = "Hour"
	ColDayOfWeek  Column = "Day_of_Week"
	ColTotalSpend Column = "Total_Spend"
)

// schema is the static column registry. Order matters: it is the column
// order reported to the explore view.
var schema = []struct {
	col  Column
	kind Kind
}{
	{ColCustomerID, KindIdentifier},
	{ColProductID, KindIdentifier},
	{ColCity, KindCategorical},
	{ColProductCategory, KindCategorical},
	{ColGender, KindCategorical},
	{ColAge, KindNumeric},
	{ColPrice, KindNumeric},
	{ColQuantity, KindNumeric},
	{ColDeliveryTimeMins, KindNumeric},
	{ColLoyaltyPoints, KindNumeric},
	{ColOrderTime, KindTemporal},
	{ColSLABreach, KindBoolean},
	{ColSLAStatus, KindCategorical},
	{ColAgeGroup, KindOrdinal},
	{ColHour, KindNumeric},
	{ColDayOfWeek, KindCategorical},
	{ColTotalSpend, KindNumeric},
}

var kindByColumn = func() map[Column]Kind {
	m := make(map[Column]Kind, len(schema))
	for _, entry := range schema {
		m[entry.col] = entry.kind
	}
	return m
}()

// FilterableColumns are the attributes the sidebar filters operate on.
var FilterableColumns = []Column{ColCity, ColProductCategory, ColAgeGroup, ColGender}

// CorrelationColumns is the fixed numeric set of the loyalty view's Pearson
// matrix.
var CorrelationColumns = []Column{ColTotalSpend, ColQuantity, ColDeliveryTimeMins, ColLoyaltyPoints, ColAge}

// ParseColumn validates a column name against the schema.
func ParseColumn(name string) (Column, error) {
	col := Column(name)
	if _, ok := kindByColumn[col]; !ok {
		return "", errors.NewUnknownColumnError(name)
	}
	return col, nil
}

// Columns returns every schema column in registry order.
func Columns() []Column {
	out := make([]Column, len(schema))
	for i, entry := range schema {
		out[i] = entry.col
	}
	return out
}

// PlottableColumns returns the columns offered to the explore view:
// identifiers and the raw timestamp are too high-cardinality to chart.
func PlottableColumns() []Column {
	out := make([]Column, 0, len(schema))
	for _, entry := range schema {
		if entry.kind == KindIdentifier || entry.kind == KindTemporal {
			continue
		}
		out = append(out, entry.col)
	}
	return out
}

// Kind returns the registered kind of the column. Unknown columns report
// KindIdentifier; they cannot occur past ParseColumn.
func (c Column) Kind() Kind {
	return kindByColumn[c]
}

// IsNumeric reports whether sum/mean aggregation is defined for the column.
// Booleans count as numeric: the breach-rate views take the mean of
// SLA_Breach as a percentage.
func (c Column) IsNumeric() bool {
	k := kindByColumn[c]
	return k == KindNumeric || k == KindBoolean
}

// NumericValue extracts the column's value from an order as a float64. The
// second return is false when the column does not hold numbers.
func (c Column) NumericValue(o *domain.Order) (float64, bool) {
	switch c {
	case ColAge:
		return float64(o.Age), true
	case ColPrice:
		return o.Price, true
	case ColQuantity:
		return float64(o.Quantity), true
	case ColDeliveryTimeMins:
		return o.DeliveryTimeMins, true
	case ColLoyaltyPoints:
		return float64(o.LoyaltyPointsEarned), true
	case ColHour:
		return float64(o.Hour), true
	case ColTotalSpend:
		return o.TotalSpend, true
	case ColSLABreach:
		if o.SLABreach {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// StringValue renders the column's value as a grouping key. Numeric values
// use their shortest decimal form so keys round-trip through the explore
// view unchanged.
func (c Column) StringValue(o *domain.Order) string {
	switch c {
	case ColCustomerID:
		return o.CustomerID
	case ColProductID:
		return o.ProductID
	case ColCity:
		return o.City
	case ColProductCategory:
		return o.ProductCategory
	case ColGender:
		return o.Gender
	case ColAge:
		return strconv.Itoa(o.Age)
	case ColPrice:
		return strconv.FormatFloat(o.Price, 'f', -1, 64)
	case ColQuantity:
		return strconv.Itoa(o.Quantity)
	case ColDeliveryTimeMins:
		return strconv.FormatFloat(o.DeliveryTimeMins, 'f', -1, 64)
	case ColLoyaltyPoints:
		return strconv.Itoa(o.LoyaltyPointsEarned)
	case ColOrderTime:
		return o.OrderTime.Format("2006-01-02 15:04:05")
	case ColSLABreach:
		return strconv.FormatBool(o.SLABreach)
	case ColSLAStatus:
		return string(o.SLAStatus)
	case ColAgeGroup:
		return string(o.AgeGroup)
	case ColHour:
		return strconv.Itoa(o.Hour)
	case ColDayOfWeek:
		return o.DayOfWeek.String()
	case ColTotalSpend:
		return strconv.FormatFloat(o.TotalSpend, 'f', -1, 64)
	default:
		return ""
	}
}
