// Package api contains API contract definitions for the delivery
// analytics dashboard. Version v1 represents the current stable API
// version.
package api

// FilterRequest narrows the working subset. Each field lists the
// allowed values for one attribute; a nil field leaves that attribute
// unconstrained, an empty list matches nothing. Active fields combine
// with AND.
type FilterRequest struct {
	City            []string `json:"city,omitempty"`
	ProductCategory []string `json:"product_category,omitempty"`
	AgeGroup        []string `json:"age_group,omitempty"`
	Gender          []string `json:"gender,omitempty"`
}

// SummaryRequest asks for headline KPIs over the filtered subset.
type SummaryRequest struct {
	Filter FilterRequest `json:"filter"`
}

// ViewRequest asks for one of the prebuilt dashboard views over the
// filtered subset.
type ViewRequest struct {
	Filter FilterRequest `json:"filter"`
}

// ExploreRequest describes a free-form chart over the filtered subset.
// Chart and column names are validated against the dataset schema.
type ExploreRequest struct {
	Filter    FilterRequest `json:"filter"`
	X         string        `json:"x" validate:"required"`
	Y         string        `json:"y,omitempty"`
	Color     string        `json:"color,omitempty"`
	Chart     string        `json:"chart" validate:"required,oneof=scatter bar line histogram box violin"`
	Aggregate string        `json:"aggregate,omitempty" validate:"omitempty,oneof=sum mean count"`
}

// ExportRequest asks for the filtered subset as a downloadable file.
type ExportRequest struct {
	Filter FilterRequest `json:"filter"`
	Format string        `json:"format" validate:"omitempty,oneof=csv xlsx"`
}
