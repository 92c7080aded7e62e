package http

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "zeptopulse/internal/errors"
	"zeptopulse/internal/exporter"
	"zeptopulse/internal/services"
	apiv1 "zeptopulse/pkg/contracts/api/v1"
)

// DashboardHandler exposes the analytics endpoints.
type DashboardHandler struct {
	service      *services.DashboardService
	exporter     *exporter.Exporter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service *services.DashboardService, exp *exporter.Exporter, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:      service,
		exporter:     exp,
		logger:       logger.With(slog.String("component", "dashboard_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the dashboard routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/filters", h.GetFilters)
	r.Post("/summary", h.PostSummary)
	r.Route("/views", func(r chi.Router) {
		r.Post("/delivery", h.PostDeliveryView)
		r.Post("/segments", h.PostSegmentsView)
		r.Post("/loyalty", h.PostLoyaltyView)
	})
	r.Post("/explore", h.PostExplore)
	r.Post("/export", h.PostExport)

	return r
}

// decode reads an optional JSON body into v. An empty body is treated
// as the zero request so POSTs without filters are valid.
func decode(r *http.Request, v interface{}) error {
	err := render.DecodeJSON(r.Body, v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return apierrors.NewValidationError(fmt.Sprintf("invalid request body: %v", err))
}

// GetFilters handles GET /api/filters
func (h *DashboardHandler) GetFilters(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.FilterOptions(r.Context()))
}

// PostSummary handles POST /api/summary
func (h *DashboardHandler) PostSummary(w http.ResponseWriter, r *http.Request) {
	var req apiv1.SummaryRequest
	if err := decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, summary)
}

// PostDeliveryView handles POST /api/views/delivery
func (h *DashboardHandler) PostDeliveryView(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ViewRequest
	if err := decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.DeliveryView(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// PostSegmentsView handles POST /api/views/segments
func (h *DashboardHandler) PostSegmentsView(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ViewRequest
	if err := decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.SegmentsView(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// PostLoyaltyView handles POST /api/views/loyalty
func (h *DashboardHandler) PostLoyaltyView(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ViewRequest
	if err := decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.LoyaltyView(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, view)
}

// PostExplore handles POST /api/explore
func (h *DashboardHandler) PostExplore(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ExploreRequest
	if err := decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.Explore(r.Context(), req)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, result)
}

// PostExport handles POST /api/export and streams the filtered subset
// as a file download.
func (h *DashboardHandler) PostExport(w http.ResponseWriter, r *http.Request) {
	var req apiv1.ExportRequest
	if err := decode(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	subset := h.service.Subset(req.Filter)
	stamp := time.Now().Format("20060102-150405")

	switch req.Format {
	case "", "csv":
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="orders-%s.csv"`, stamp))
		if err := h.exporter.WriteCSV(w, subset, exporter.WriteOptions{BOMPrefix: true}); err != nil {
			h.logger.ErrorContext(r.Context(), "csv export failed",
				slog.String("error", err.Error()))
		}
	case "xlsx":
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition",
			fmt.Sprintf(`attachment; filename="orders-%s.xlsx"`, stamp))
		if err := h.exporter.WriteXLSX(w, subset); err != nil {
			h.logger.ErrorContext(r.Context(), "xlsx export failed",
				slog.String("error", err.Error()))
		}
	default:
		h.errorHandler.HandleError(w, r,
			apierrors.NewValidationError(fmt.Sprintf("unsupported export format %q", req.Format)))
	}
}
