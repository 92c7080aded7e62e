// Package services holds the application services sitting between the
// HTTP transport and the analytics engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"zeptopulse/internal/analytics"
	"zeptopulse/internal/dataset"
	apperrors "zeptopulse/internal/errors"
	apiv1 "zeptopulse/pkg/contracts/api/v1"
)

// DashboardService answers dashboard queries against the current
// dataset snapshot. All methods are safe for concurrent use; each call
// reads one consistent snapshot from the store.
type DashboardService struct {
	store    *dataset.Store
	logger   *slog.Logger
	validate *validator.Validate
}

// NewDashboardService creates a dashboard service over the given store.
func NewDashboardService(store *dataset.Store, logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}

	v := validator.New()
	// Use JSON tag names in validation error messages
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return &DashboardService{
		store:    store,
		logger:   logger.With(slog.String("service", "dashboard")),
		validate: v,
	}
}

// FilterOptions lists the distinct values for every filterable
// attribute in the active snapshot, in display order.
func (s *DashboardService) FilterOptions(ctx context.Context) *apiv1.FilterOptionsResponse {
	table := s.store.Table()

	options := make(map[string][]string, len(dataset.FilterableColumns))
	for _, col := range dataset.FilterableColumns {
		options[string(col)] = table.ObservedValues(col)
	}

	return &apiv1.FilterOptionsResponse{
		Options:  options,
		Rows:     table.Len(),
		LoadedAt: table.LoadedAt(),
	}
}

// Subset applies the request filter to the current snapshot.
func (s *DashboardService) Subset(req apiv1.FilterRequest) *analytics.Subset {
	return analytics.Apply(s.store.Table(), analytics.Filter{
		City:            req.City,
		ProductCategory: req.ProductCategory,
		AgeGroup:        req.AgeGroup,
		Gender:          req.Gender,
	})
}

// Summary computes headline KPIs over the filtered subset.
func (s *DashboardService) Summary(ctx context.Context, req apiv1.SummaryRequest) (*analytics.Summary, error) {
	subset := s.Subset(req.Filter)

	summary, err := subset.Summarize()
	if err != nil {
		return nil, err
	}

	s.logger.DebugContext(ctx, "summary computed",
		slog.Int("rows", summary.Rows))
	return summary, nil
}

// DeliveryView builds the delivery performance view over the filtered
// subset.
func (s *DashboardService) DeliveryView(ctx context.Context, req apiv1.ViewRequest) (*analytics.DeliveryView, error) {
	subset := s.Subset(req.Filter)
	if subset.Len() == 0 {
		return nil, fmt.Errorf("delivery view: %w", apperrors.ErrNoData)
	}
	return subset.BuildDeliveryView()
}

// SegmentsView builds the customer segments view over the filtered
// subset.
func (s *DashboardService) SegmentsView(ctx context.Context, req apiv1.ViewRequest) (*analytics.SegmentsView, error) {
	subset := s.Subset(req.Filter)
	if subset.Len() == 0 {
		return nil, fmt.Errorf("segments view: %w", apperrors.ErrNoData)
	}
	return subset.BuildSegmentsView()
}

// LoyaltyView builds the loyalty view over the filtered subset.
func (s *DashboardService) LoyaltyView(ctx context.Context, req apiv1.ViewRequest) (*analytics.LoyaltyView, error) {
	subset := s.Subset(req.Filter)
	if subset.Len() == 0 {
		return nil, fmt.Errorf("loyalty view: %w", apperrors.ErrNoData)
	}
	return subset.BuildLoyaltyView(), nil
}

// Explore runs a free-form chart query over the filtered subset.
func (s *DashboardService) Explore(ctx context.Context, req apiv1.ExploreRequest) (*analytics.ExploreResult, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, apperrors.NewValidationError(validationMessage(err))
	}

	spec, err := s.exploreSpec(req)
	if err != nil {
		return nil, err
	}

	subset := s.Subset(req.Filter)
	if subset.Len() == 0 {
		return nil, fmt.Errorf("explore: %w", apperrors.ErrNoData)
	}
	return subset.Explore(*spec)
}

// exploreSpec resolves request strings against the dataset schema.
func (s *DashboardService) exploreSpec(req apiv1.ExploreRequest) (*analytics.ExploreSpec, error) {
	chart, err := analytics.ParseChartType(req.Chart)
	if err != nil {
		return nil, err
	}

	spec := analytics.ExploreSpec{Chart: chart}

	spec.X, err = parsePlottable(req.X)
	if err != nil {
		return nil, err
	}

	if req.Y != "" {
		spec.Y, err = parsePlottable(req.Y)
		if err != nil {
			return nil, err
		}
	}

	if req.Color != "" {
		spec.Color, err = parsePlottable(req.Color)
		if err != nil {
			return nil, err
		}
	}

	if req.Aggregate != "" {
		spec.Method, err = analytics.ParseAggFunc(req.Aggregate)
		if err != nil {
			return nil, err
		}
		spec.Aggregate = true
	}

	return &spec, nil
}

// parsePlottable resolves a column name and rejects columns that are
// not meaningful on a chart axis, such as identifiers.
func parsePlottable(name string) (dataset.Column, error) {
	col, err := dataset.ParseColumn(name)
	if err != nil {
		return "", err
	}
	for _, allowed := range dataset.PlottableColumns() {
		if col == allowed {
			return col, nil
		}
	}
	return "", apperrors.NewValidationError(fmt.Sprintf("column %q cannot be plotted", name))
}

// Health reports service and dataset status.
func (s *DashboardService) Health(ctx context.Context, version string) *apiv1.HealthResponse {
	table := s.store.Table()

	return &apiv1.HealthResponse{
		Status:    "healthy",
		Version:   version,
		Timestamp: time.Now().UTC(),
		Dataset: apiv1.DatasetHealth{
			Rows:         table.Len(),
			RejectedRows: table.RejectedRows(),
			SourceHash:   table.SourceHash(),
			LoadedAt:     table.LoadedAt(),
		},
	}
}

// validationMessage flattens validator errors into a single message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}
