package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"time"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdWaste(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"analytics"}
	}
	sub, rest := args[0], args[1:]

	if err := a.requireAuth(); err != nil {
		return err
	}

	switch sub {
	case "analytics":
		return a.wasteAnalytics(ctx, rest)
	case "top":
		return a.wasteTop(ctx, rest)
	case "categories":
		return a.wasteCategories(ctx)
	case "mark-expired":
		return a.wasteMark(ctx, rest, "expired")
	case "mark-damaged":
		return a.wasteMark(ctx, rest, "damaged")
	default:
		return fmt.Errorf("unknown waste subcommand %q (analytics, top, categories, mark-expired, mark-damaged)", sub)
	}
}

func (a *App) wasteAnalytics(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("waste analytics", flag.ContinueOnError)
	startFlag := fs.String("start", "", "window start (YYYY-MM-DD, default 90 days ago)")
	endFlag := fs.String("end", "", "window end (YYYY-MM-DD, default today)")
	category := fs.String("category", "", "filter by category")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var start, end time.Time
	var err error
	if *startFlag != "" {
		if start, err = time.Parse("2006-01-02", *startFlag); err != nil {
			return fmt.Errorf("invalid -start date %q", *startFlag)
		}
	}
	if *endFlag != "" {
		if end, err = time.Parse("2006-01-02", *endFlag); err != nil {
			return fmt.Errorf("invalid -end date %q", *endFlag)
		}
	}

	key := query.KeyWasteAnalytics(*startFlag, *endFlag, *category)
	result := query.Fetch(ctx, a.cache, key, func(ctx context.Context) (*api.WasteAnalytics, error) {
		return a.client.Waste.Analytics(ctx, start, end, *category)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	analytics := result.Data
	fmt.Fprintf(a.stdout, "Waste %s to %s: %s across %d units\n",
		analytics.StartDate, analytics.EndDate, money(analytics.TotalValue), analytics.TotalQuantity)
	rows := make([][]string, 0, len(analytics.Breakdown))
	for cause, b := range analytics.Breakdown {
		rows = append(rows, []string{cause, strconv.Itoa(b.Quantity), money(b.Value)})
	}
	renderTable(a.stdout, []string{"CAUSE", "QUANTITY", "VALUE"}, rows)
	return nil
}

func (a *App) wasteTop(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("waste top", flag.ContinueOnError)
	limit := fs.Int("limit", 10, "number of items to show")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyWasteTopItems(*limit), func(ctx context.Context) ([]api.WasteItem, error) {
		return a.client.Waste.TopWasteItems(ctx, *limit)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	if len(result.Data) == 0 {
		fmt.Fprintln(a.stdout, "No waste recorded.")
		return nil
	}
	rows := make([][]string, 0, len(result.Data))
	for _, item := range result.Data {
		rows = append(rows, []string{
			item.SKU, item.Name, item.Category, strconv.Itoa(item.Quantity), money(item.Value),
		})
	}
	renderTable(a.stdout, []string{"SKU", "NAME", "CATEGORY", "QUANTITY", "VALUE"}, rows)
	return nil
}

func (a *App) wasteCategories(ctx context.Context) error {
	result := query.Fetch(ctx, a.cache, query.KeyWasteByCategory(), func(ctx context.Context) ([]api.WasteCategory, error) {
		return a.client.Waste.ByCategory(ctx)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	rows := make([][]string, 0, len(result.Data))
	for _, c := range result.Data {
		rows = append(rows, []string{c.Category, strconv.Itoa(c.Quantity), money(c.Value)})
	}
	renderTable(a.stdout, []string{"CATEGORY", "QUANTITY", "VALUE"}, rows)
	return nil
}

func (a *App) wasteMark(ctx context.Context, args []string, status string) error {
	id, err := intArg(args, "batch id")
	if err != nil {
		return err
	}

	var result *api.BatchStatusResult
	switch status {
	case "expired":
		result, err = a.client.Waste.MarkExpired(ctx, id)
	case "damaged":
		result, err = a.client.Waste.MarkDamaged(ctx, id)
	}
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterBatchStatusChange()...)

	fmt.Fprintln(a.stdout, result.Message)
	return nil
}
