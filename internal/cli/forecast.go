package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdForecast(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("forecast", flag.ContinueOnError)
	horizon := fs.Int("horizon", 30, "forecast horizon in days")
	batch := fs.Bool("batch", false, "regenerate forecasts for the whole catalog")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	if *batch {
		result, err := a.client.Forecasting.GenerateBatchForecast(ctx)
		if err != nil {
			return err
		}
		a.cache.Invalidate("forecasting/")
		fmt.Fprintf(a.stdout, "%s (%d medicines)\n", result.Message, result.Processed)
		return nil
	}

	id, err := intArg(fs.Args(), "medicine id")
	if err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyForecast(id, *horizon), func(ctx context.Context) (*api.Forecast, error) {
		return a.client.Forecasting.Forecast(ctx, id, *horizon)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	f := result.Data
	fmt.Fprintf(a.stdout, "%s (%s), next %d days:\n", f.MedicineName, f.SKU, *horizon)
	renderTable(a.stdout, []string{"FIELD", "VALUE"}, [][]string{
		{"Forecasted demand", fmt.Sprintf("%.0f units", f.ForecastedDemand)},
		{"Reorder point", fmt.Sprintf("%.0f units", f.ReorderPoint)},
		{"Recommended order", fmt.Sprintf("%.0f units", f.RecommendedQuantity)},
		{"Confidence", fmt.Sprintf("%.0f%%", f.ConfidenceScore*100)},
	})
	if f.Reasoning != "" {
		fmt.Fprintln(a.stdout, f.Reasoning)
	}
	return nil
}

func (a *App) cmdReorder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("reorder", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category (see `inventory categories`)")
	criticalOnly := fs.Bool("critical", false, "critical priority only")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyReorderSuggestions(*category, *criticalOnly), func(ctx context.Context) ([]api.ReorderSuggestion, error) {
		return a.client.Forecasting.ReorderSuggestions(ctx, *category, *criticalOnly)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	if len(result.Data) == 0 {
		fmt.Fprintln(a.stdout, "No reorder suggestions.")
		return nil
	}
	rows := make([][]string, 0, len(result.Data))
	for _, s := range result.Data {
		rows = append(rows, []string{
			s.Priority, s.SKU, s.MedicineName,
			strconv.Itoa(s.CurrentStock), strconv.Itoa(s.ExpiredStock),
			fmt.Sprintf("%.0f", s.RecommendedQuantity),
		})
	}
	renderTable(a.stdout, []string{"PRIORITY", "SKU", "NAME", "SELLABLE", "EXPIRED", "ORDER"}, rows)
	return nil
}
