package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdPrices(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("search term argument is required")
	}
	term := strings.Join(args, " ")

	if err := a.requireAuth(); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyPriceComparison(term), func(ctx context.Context) ([]api.PriceQuote, error) {
		return a.client.Inventory.ComparePrices(ctx, term)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	if len(result.Data) == 0 {
		fmt.Fprintf(a.stdout, "No price listings for %q.\n", term)
		return nil
	}

	rows := make([][]string, 0, len(result.Data))
	for _, quote := range result.Data {
		lowest := ""
		if quote.IsLowest {
			lowest = "lowest"
		}
		rows = append(rows, []string{
			quote.Competitor, quote.Form, quote.Quantity,
			money(quote.OriginalPrice), money(quote.Price),
			fmt.Sprintf("%.0f%%", quote.DiscountPercent), lowest,
		})
	}
	renderTable(a.stdout, []string{"VENDOR", "FORM", "QUANTITY", "MRP", "PRICE", "DISCOUNT", ""}, rows)
	return nil
}
