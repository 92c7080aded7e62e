package analytics

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"zeptopulse/internal/dataset"
	"zeptopulse/internal/errors"
)

// Summary is the KPI row shown above every dashboard view, computed over the
// filtered subset.
type Summary struct {
	Rows            int     `json:"rows"`
	TotalRevenue    float64 `json:"total_revenue"`
	BreachRatePct   float64 `json:"breach_rate_pct"`
	AvgDeliveryMins float64 `json:"avg_delivery_mins"`
	AvgBasketSize   float64 `json:"avg_basket_size"`
}

// Summarize computes the KPIs. An empty subset has no defined statistics and
// returns ErrNoData: the dashboard must show its "no data for current
// filters" state, which is not the same thing as zero revenue.
func (s *Subset) Summarize() (*Summary, error) {
	if s.Len() == 0 {
		return nil, fmt.Errorf("summarize: %w", errors.ErrNoData)
	}

	spend, _ := s.numericColumn(dataset.ColTotalSpend)
	breach, _ := s.numericColumn(dataset.ColSLABreach)
	delivery, _ := s.numericColumn(dataset.ColDeliveryTimeMins)
	quantity, _ := s.numericColumn(dataset.ColQuantity)

	total := 0.0
	for _, v := range spend {
		total += v
	}

	return &Summary{
		Rows:            s.Len(),
		TotalRevenue:    total,
		BreachRatePct:   stat.Mean(breach, nil) * 100,
		AvgDeliveryMins: stat.Mean(delivery, nil),
		AvgBasketSize:   stat.Mean(quantity, nil),
	}, nil
}
