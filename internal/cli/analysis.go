package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdAnalysis(ctx context.Context, args []string) error {
	if err := a.requireAuth(); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyAnalysisReport(), func(ctx context.Context) (*api.AnalysisReport, error) {
		return a.client.Inventory.AnalysisReport(ctx)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	report := result.Data
	fmt.Fprintf(a.stdout, "== Inventory Analysis == (generated %s)\n", report.GeneratedAt.Format("2006-01-02 15:04"))
	renderTable(a.stdout, []string{"METRIC", "VALUE"}, [][]string{
		{"Total SKUs", strconv.Itoa(report.InventorySummary.TotalSKUs)},
		{"Active batches", strconv.Itoa(report.InventorySummary.ActiveBatches)},
		{"Inventory value", money(report.InventorySummary.TotalValue)},
	})

	fmt.Fprintf(a.stdout, "\nSales: %d units, %s revenue\n",
		report.SalesPerformance.TotalTransactions, money(report.SalesPerformance.TotalRevenue))
	if len(report.SalesPerformance.TopSelling) > 0 {
		rows := make([][]string, 0, len(report.SalesPerformance.TopSelling))
		for _, item := range report.SalesPerformance.TopSelling {
			rows = append(rows, []string{item.Name, strconv.Itoa(item.Qty), money(item.Revenue)})
		}
		renderTable(a.stdout, []string{"TOP SELLING", "QTY", "REVENUE"}, rows)
	}

	fmt.Fprintln(a.stdout, "\nRisks:")
	renderTable(a.stdout, []string{"RISK", "COUNT"}, [][]string{
		{"Expired batches", strconv.Itoa(report.Risks.ExpiredBatches)},
		{"Expiring soon (90 days)", strconv.Itoa(report.Risks.ExpiringSoon)},
		{"Low stock SKUs", strconv.Itoa(report.Risks.LowStockSKUs)},
	})

	if len(report.Forecasts) > 0 {
		fmt.Fprintln(a.stdout, "\nDemand forecasts (30 days):")
		rows := make([][]string, 0, len(report.Forecasts))
		for _, item := range report.Forecasts {
			rows = append(rows, []string{
				item.Name,
				fmt.Sprintf("%.0f", item.Forecast.ForecastedDemand),
				fmt.Sprintf("%.0f", item.Forecast.RecommendedQuantity),
				fmt.Sprintf("%.0f%%", item.Forecast.ConfidenceScore*100),
			})
		}
		renderTable(a.stdout, []string{"NAME", "DEMAND", "ORDER", "CONFIDENCE"}, rows)
	}
	return nil
}
