// Command summarize loads an orders dataset, applies optional filters
// and prints the headline KPIs. With -out it also writes the filtered
// subset as CSV.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"zeptopulse/internal/analytics"
	"zeptopulse/internal/dataset"
	"zeptopulse/internal/exporter"
)

func main() {
	path := flag.String("dataset", "data/orders.csv", "path to the orders dataset (csv or xlsx)")
	city := flag.String("city", "", "comma-separated list of cities to keep")
	category := flag.String("category", "", "comma-separated list of product categories to keep")
	ageGroup := flag.String("age-group", "", "comma-separated list of age groups to keep, e.g. 18-25,26-35")
	gender := flag.String("gender", "", "comma-separated list of genders to keep")
	out := flag.String("out", "", "optional path for a CSV export of the filtered subset")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	ctx := context.Background()

	table, err := dataset.NewLoader(logger).Load(ctx, *path)
	if err != nil {
		slog.Error("Failed to load dataset", slog.String("error", err.Error()))
		os.Exit(1)
	}

	subset := analytics.Apply(table, analytics.Filter{
		City:            splitList(*city),
		ProductCategory: splitList(*category),
		AgeGroup:        splitList(*ageGroup),
		Gender:          splitList(*gender),
	})

	summary, err := subset.Summarize()
	if err != nil {
		fmt.Println("No rows match the given filters.")
		os.Exit(2)
	}

	fmt.Printf("Rows:               %d (of %d, %d rejected while loading)\n",
		summary.Rows, table.Len(), table.RejectedRows())
	fmt.Printf("Total revenue:      %.2f\n", summary.TotalRevenue)
	fmt.Printf("SLA breach rate:    %.1f%%\n", summary.BreachRatePct)
	fmt.Printf("Avg delivery time:  %.1f min\n", summary.AvgDeliveryMins)
	fmt.Printf("Avg basket size:    %.2f\n", summary.AvgBasketSize)

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			slog.Error("Failed to create export file", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer f.Close()

		if err := exporter.New(logger).WriteCSV(f, subset, exporter.WriteOptions{BOMPrefix: true}); err != nil {
			slog.Error("Failed to export subset", slog.String("error", err.Error()))
			os.Exit(1)
		}
		fmt.Printf("Exported %d rows to %s\n", subset.Len(), *out)
	}
}

// splitList turns a comma-separated flag into a filter value list,
// keeping nil for "no constraint".
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
