package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdDashboard(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dashboard", flag.ContinueOnError)
	trendDays := fs.Int("trend-days", 30, "sales trend window in days")
	topLimit := fs.Int("top", 5, "number of top medicines to show")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := a.requireAuth(); err != nil {
		return err
	}

	stats := query.Fetch(ctx, a.cache, query.KeyDashboardStats(), func(ctx context.Context) (*api.DashboardStats, error) {
		return a.client.Dashboard.Stats(ctx)
	})
	if stats.Err != nil && stats.Data == nil {
		return stats.Err
	}
	sourceBanner(a.stdout, stats)

	fmt.Fprintln(a.stdout, "== Pharmacy Dashboard ==")
	renderTable(a.stdout, []string{"METRIC", "VALUE"}, [][]string{
		{"Total stock value", money(stats.Data.TotalStockValue)},
		{"SKUs", strconv.Itoa(stats.Data.TotalSKUs)},
		{"Low stock", strconv.Itoa(stats.Data.LowStockCount)},
		{"Expiring soon", strconv.Itoa(stats.Data.ExpiringSoonCount)},
		{"Open alerts", strconv.Itoa(stats.Data.TotalAlerts)},
		{"Wastage value", money(stats.Data.WastageValue)},
	})

	timeline := query.Fetch(ctx, a.cache, query.KeyExpiryTimeline(), func(ctx context.Context) ([]api.ExpiryBucket, error) {
		return a.client.Dashboard.ExpiryTimeline(ctx)
	})
	if timeline.Err == nil || timeline.Data != nil {
		sourceBanner(a.stdout, timeline)
		fmt.Fprintln(a.stdout, "\nExpiry timeline:")
		rows := make([][]string, 0, len(timeline.Data))
		for _, b := range timeline.Data {
			rows = append(rows, []string{b.Period, strconv.Itoa(b.Quantity), money(b.Value)})
		}
		renderTable(a.stdout, []string{"PERIOD", "QUANTITY", "VALUE"}, rows)
	}

	categories := query.Fetch(ctx, a.cache, query.KeyInventoryByCategory(), func(ctx context.Context) ([]api.CategorySlice, error) {
		return a.client.Dashboard.InventoryByCategory(ctx)
	})
	if categories.Err == nil || categories.Data != nil {
		sourceBanner(a.stdout, categories)
		fmt.Fprintln(a.stdout, "\nInventory by category:")
		rows := make([][]string, 0, len(categories.Data))
		for _, c := range categories.Data {
			rows = append(rows, []string{c.Category, strconv.Itoa(c.Quantity), money(c.Value)})
		}
		renderTable(a.stdout, []string{"CATEGORY", "QUANTITY", "VALUE"}, rows)
	}

	trends := query.Fetch(ctx, a.cache, query.KeySalesTrends(*trendDays), func(ctx context.Context) ([]api.SalesTrendPoint, error) {
		return a.client.Dashboard.SalesTrends(ctx, *trendDays)
	})
	if trends.Err == nil || trends.Data != nil {
		sourceBanner(a.stdout, trends)
		var qty int
		var revenue float64
		for _, p := range trends.Data {
			qty += p.Quantity
			revenue += p.Revenue
		}
		fmt.Fprintf(a.stdout, "\nSales last %d days: %d units, %s revenue\n", *trendDays, qty, money(revenue))
	}

	top := query.Fetch(ctx, a.cache, query.KeyTopMedicines(*topLimit, "quantity"), func(ctx context.Context) ([]api.TopMedicine, error) {
		return a.client.Dashboard.TopMedicines(ctx, *topLimit, "quantity")
	})
	if top.Err == nil || top.Data != nil {
		sourceBanner(a.stdout, top)
		fmt.Fprintln(a.stdout, "\nTop medicines:")
		rows := make([][]string, 0, len(top.Data))
		for _, m := range top.Data {
			rows = append(rows, []string{m.SKU, m.Name, strconv.Itoa(m.Quantity), money(m.Value)})
		}
		renderTable(a.stdout, []string{"SKU", "NAME", "QUANTITY", "VALUE"}, rows)
	}

	return nil
}
