package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAgeGroupFor(t *testing.T) {
	tests := []struct {
		name string
		age  int
		want AgeGroup
	}{
		{name: "below first bin", age: 17, want: AgeGroupNone},
		{name: "open left edge", age: 18, want: AgeGroupNone},
		{name: "inside first bin", age: 19, want: AgeGroup18To25},
		{name: "right edge of first bin", age: 25, want: AgeGroup18To25},
		{name: "left edge of second bin", age: 26, want: AgeGroup26To35},
		{name: "middle bin", age: 40, want: AgeGroup36To45},
		{name: "boundary 45", age: 45, want: AgeGroup36To45},
		{name: "boundary 55", age: 55, want: AgeGroup46To55},
		{name: "last bin right edge", age: 65, want: AgeGroup56To65},
		{name: "above last bin", age: 66, want: AgeGroupNone},
		{name: "zero age", age: 0, want: AgeGroupNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeGroupFor(tt.age))
		})
	}
}

func TestAgeGroupOrdinal(t *testing.T) {
	assert.Equal(t, 0, AgeGroup18To25.Ordinal())
	assert.Equal(t, 4, AgeGroup56To65.Ordinal())
	assert.Equal(t, -1, AgeGroupNone.Ordinal())
	assert.Equal(t, -1, AgeGroup("99-100").Ordinal())

	// Groups come back in bin order, not lexical order.
	groups := AgeGroups()
	for i, g := range groups {
		assert.Equal(t, i, g.Ordinal())
	}
}

func TestIsSLABreach(t *testing.T) {
	assert.False(t, IsSLABreach(9.5))
	assert.False(t, IsSLABreach(10.0), "exactly on the promise is on time")
	assert.True(t, IsSLABreach(10.01))
	assert.True(t, IsSLABreach(25))
}

func TestOrderDerive(t *testing.T) {
	o := Order{
		CustomerID:          "C-1001",
		ProductID:           "P-2002",
		City:                "Mumbai",
		ProductCategory:     "Snacks",
		Gender:              "Female",
		Age:                 61,
		Price:               150,
		Quantity:            3,
		DeliveryTimeMins:    12.5,
		LoyaltyPointsEarned: 14,
		OrderTime:           time.Date(2024, 6, 14, 21, 15, 0, 0, time.UTC),
	}
	o.Derive()

	assert.True(t, o.SLABreach)
	assert.Equal(t, SLABreached, o.SLAStatus)
	assert.Equal(t, AgeGroup56To65, o.AgeGroup)
	assert.Equal(t, 21, o.Hour)
	assert.Equal(t, time.Friday, o.DayOfWeek)
	assert.Equal(t, 450.0, o.TotalSpend)

	// Deriving again from the same raw fields is a no-op.
	before := o
	o.Derive()
	assert.Equal(t, before, o)
}

func TestOrderDeriveOnTime(t *testing.T) {
	o := Order{Age: 22, Price: 49.5, Quantity: 2, DeliveryTimeMins: 10.0}
	o.Derive()

	assert.False(t, o.SLABreach)
	assert.Equal(t, SLAOnTime, o.SLAStatus)
	assert.Equal(t, AgeGroup18To25, o.AgeGroup)
	assert.Equal(t, 99.0, o.TotalSpend)
}
