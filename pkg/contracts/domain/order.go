package domain

import (
	"time"
)

// SLAThresholdMins is the delivery promise in minutes. A delivery strictly
// longer than this is a breach; exactly on the threshold is on time.
const SLAThresholdMins = 10.0

// SLAStatus mirrors the SLABreach flag as a display label.
type SLAStatus string

const (
	SLAOnTime   SLAStatus = "On Time"
	SLABreached SLAStatus = "Breached"
)

// AgeGroup is the fixed ordinal customer age segmentation. Bins are
// right-inclusive: (18,25], (25,35], (35,45], (45,55], (55,65]. Ages outside
// [18,65] carry no group and are excluded from age-group-keyed aggregates.
type AgeGroup string

const (
	AgeGroupNone   AgeGroup = ""
	AgeGroup18To25 AgeGroup = "18-25"
	AgeGroup26To35 AgeGroup = "26-35"
	AgeGroup36To45 AgeGroup = "36-45"
	AgeGroup46To55 AgeGroup = "46-55"
	AgeGroup56To65 AgeGroup = "56-65"
)

// ageGroupEdges are the fixed bin edges shared by all views.
var ageGroupEdges = []int{18, 25, 35, 45, 55, 65}

// ageGroupLabels index-aligns with the bins formed by ageGroupEdges.
var ageGroupLabels = []AgeGroup{
	AgeGroup18To25,
	AgeGroup26To35,
	AgeGroup36To45,
	AgeGroup46To55,
	AgeGroup56To65,
}

// AgeGroups returns all defined groups in bin order. The returned slice is a
// copy and safe to mutate.
func AgeGroups() []AgeGroup {
	out := make([]AgeGroup, len(ageGroupLabels))
	copy(out, ageGroupLabels)
	return out
}

// Ordinal returns the bin position of the group, or -1 for AgeGroupNone and
// unknown values. Used to sort age-group keys in bin order rather than
// lexically.
func (g AgeGroup) Ordinal() int {
	for i, label := range ageGroupLabels {
		if g == label {
			return i
		}
	}
	return -1
}

// AgeGroupFor assigns an age to its bin. Edges are left-exclusive and
// right-inclusive, so age 25 falls in "18-25" and age 26 in "26-35".
func AgeGroupFor(age int) AgeGroup {
	for i := 0; i < len(ageGroupEdges)-1; i++ {
		if age > ageGroupEdges[i] && age <= ageGroupEdges[i+1] {
			return ageGroupLabels[i]
		}
	}
	// Age 18 sits on the open left edge of the first bin and carries no
	// group, same as ages below 18 or above 65.
	return AgeGroupNone
}

// IsSLABreach reports whether a delivery time violates the promise.
// The comparison is strict: exactly SLAThresholdMins is NOT a breach.
func IsSLABreach(deliveryTimeMins float64) bool {
	return deliveryTimeMins > SLAThresholdMins
}

// Order is one row of the delivery dataset: the raw fields read from the
// source file plus the derived fields computed once at load time. Orders are
// treated as immutable once the canonical table is built.
type Order struct {
	// Raw fields
	CustomerID          string    `json:"customer_id" csv:"Customer_ID"`
	ProductID           string    `json:"product_id" csv:"Product_ID"`
	City                string    `json:"city" csv:"City" validate:"required"`
	ProductCategory     string    `json:"product_category" csv:"Product_Category" validate:"required"`
	Gender              string    `json:"gender" csv:"Gender"`
	Age                 int       `json:"age" csv:"Age"`
	Price               float64   `json:"price" csv:"Price" validate:"min=0"`
	Quantity            int       `json:"quantity" csv:"Quantity" validate:"min=0"`
	DeliveryTimeMins    float64   `json:"delivery_time_mins" csv:"Delivery_Time_mins" validate:"min=0"`
	LoyaltyPointsEarned int       `json:"loyalty_points_earned" csv:"Loyalty_Points_Earned"`
	OrderTime           time.Time `json:"order_time" csv:"Order_Time"`

	// Derived fields, pure functions of the raw fields above
	SLABreach  bool         `json:"sla_breach"`
	SLAStatus  SLAStatus    `json:"sla_status"`
	AgeGroup   AgeGroup     `json:"age_group,omitempty"`
	Hour       int          `json:"hour"`
	DayOfWeek  time.Weekday `json:"day_of_week"`
	TotalSpend float64      `json:"total_spend"`
}

// Derive recomputes every derived field from the raw fields. Calling it twice
// on the same raw values always yields the same result.
func (o *Order) Derive() {
	o.SLABreach = IsSLABreach(o.DeliveryTimeMins)
	if o.SLABreach {
		o.SLAStatus = SLABreached
	} else {
		o.SLAStatus = SLAOnTime
	}
	o.AgeGroup = AgeGroupFor(o.Age)
	o.Hour = o.OrderTime.Hour()
	o.DayOfWeek = o.OrderTime.Weekday()
	o.TotalSpend = o.Price * float64(o.Quantity)
}
