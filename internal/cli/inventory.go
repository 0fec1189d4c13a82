package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdInventory(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	if err := a.requireAuth(); err != nil {
		return err
	}

	switch sub {
	case "list":
		return a.inventoryList(ctx, rest)
	case "show":
		return a.inventoryShow(ctx, rest)
	case "batches":
		return a.inventoryBatches(ctx, rest)
	case "stock":
		return a.inventoryStock(ctx, rest)
	case "categories":
		return a.inventoryCategories(ctx)
	default:
		return fmt.Errorf("unknown inventory subcommand %q (list, show, batches, stock, categories)", sub)
	}
}

func (a *App) inventoryList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inventory list", flag.ContinueOnError)
	category := fs.String("category", "", "filter by category")
	search := fs.String("search", "", "search name or SKU")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyMedicines(*category, *search), func(ctx context.Context) ([]api.Medicine, error) {
		return a.client.Inventory.Medicines(ctx, api.MedicineFilter{Category: *category, Search: *search})
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	rows := make([][]string, 0, len(result.Data))
	for _, m := range result.Data {
		rows = append(rows, []string{
			strconv.Itoa(m.ID), m.SKU, m.Name, m.Category, money(m.MRP), yesNo(m.IsActive),
		})
	}
	renderTable(a.stdout, []string{"ID", "SKU", "NAME", "CATEGORY", "MRP", "ACTIVE"}, rows)
	return nil
}

func (a *App) inventoryShow(ctx context.Context, args []string) error {
	id, err := intArg(args, "medicine id")
	if err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyMedicine(id), func(ctx context.Context) (*api.Medicine, error) {
		return a.client.Inventory.Medicine(ctx, id)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	m := result.Data
	renderTable(a.stdout, []string{"FIELD", "VALUE"}, [][]string{
		{"ID", strconv.Itoa(m.ID)},
		{"SKU", m.SKU},
		{"Name", m.Name},
		{"Category", m.Category},
		{"Manufacturer", m.Manufacturer},
		{"Brand", m.Brand},
		{"MRP", money(m.MRP)},
		{"Cost", money(m.Cost)},
		{"Schedule", m.Schedule},
		{"Storage", m.StorageRequirements},
		{"Active", yesNo(m.IsActive)},
	})
	return nil
}

func (a *App) inventoryBatches(ctx context.Context, args []string) error {
	id, err := intArg(args, "medicine id")
	if err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyBatches(id), func(ctx context.Context) ([]api.Batch, error) {
		return a.client.Inventory.Batches(ctx, id)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	rows := make([][]string, 0, len(result.Data))
	for _, b := range result.Data {
		rows = append(rows, []string{
			strconv.Itoa(b.ID), b.BatchNumber, strconv.Itoa(b.Quantity),
			b.ExpiryDate.Format("2006-01-02"), yesNo(b.IsExpired), yesNo(b.IsDamaged),
		})
	}
	renderTable(a.stdout, []string{"ID", "BATCH", "QUANTITY", "EXPIRY", "EXPIRED", "DAMAGED"}, rows)
	return nil
}

func (a *App) inventoryStock(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("inventory stock", flag.ContinueOnError)
	lowOnly := fs.Bool("low", false, "only medicines below the low-stock threshold")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyStockLevels(*lowOnly), func(ctx context.Context) ([]api.StockLevel, error) {
		return a.client.Inventory.StockLevels(ctx, *lowOnly)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	rows := make([][]string, 0, len(result.Data))
	for _, level := range result.Data {
		rows = append(rows, []string{
			level.SKU, level.Name, strconv.Itoa(level.TotalQuantity), level.NearestExpiry,
		})
	}
	renderTable(a.stdout, []string{"SKU", "NAME", "SELLABLE", "NEAREST EXPIRY"}, rows)
	return nil
}

// inventoryCategories lists the catalog categories, which are also the valid
// values for the -category filters on list and reorder.
func (a *App) inventoryCategories(ctx context.Context) error {
	result := query.Fetch(ctx, a.cache, query.KeyInventoryCategories(), func(ctx context.Context) ([]string, error) {
		return a.client.Inventory.Categories(ctx)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	for _, category := range result.Data {
		fmt.Fprintln(a.stdout, category)
	}
	return nil
}

func intArg(args []string, what string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("%s argument is required", what)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", what, args[0])
	}
	return id, nil
}
