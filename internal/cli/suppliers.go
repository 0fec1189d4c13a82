package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdSuppliers(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	if err := a.requireAuth(); err != nil {
		return err
	}

	switch sub {
	case "list":
		return a.suppliersList(ctx, rest)
	case "add":
		return a.suppliersAdd(ctx, rest)
	case "update":
		return a.suppliersUpdate(ctx, rest)
	case "remove":
		return a.suppliersRemove(ctx, rest)
	case "order":
		return a.suppliersOrder(ctx, rest)
	case "orders":
		return a.suppliersOrders(ctx, rest)
	case "analysis":
		return a.suppliersAnalysis(ctx)
	default:
		return fmt.Errorf("unknown suppliers subcommand %q (list, add, update, remove, order, orders, analysis)", sub)
	}
}

func (a *App) suppliersList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suppliers list", flag.ContinueOnError)
	all := fs.Bool("all", false, "include inactive suppliers")
	if err := fs.Parse(args); err != nil {
		return err
	}
	activeOnly := !*all

	result := query.Fetch(ctx, a.cache, query.KeySuppliers(activeOnly), func(ctx context.Context) ([]api.Supplier, error) {
		return a.client.Suppliers.List(ctx, activeOnly)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	rows := make([][]string, 0, len(result.Data))
	for _, s := range result.Data {
		rows = append(rows, []string{
			strconv.Itoa(s.ID), s.Name, s.ContactPerson, s.Email,
			strconv.Itoa(s.LeadTimeDays) + "d", yesNo(s.IsActive),
		})
	}
	renderTable(a.stdout, []string{"ID", "NAME", "CONTACT", "EMAIL", "LEAD TIME", "ACTIVE"}, rows)
	return nil
}

func supplierFlags(fs *flag.FlagSet) *api.SupplierCreate {
	req := &api.SupplierCreate{}
	fs.StringVar(&req.Name, "name", "", "supplier name")
	fs.StringVar(&req.ContactPerson, "contact", "", "contact person")
	fs.StringVar(&req.Email, "email", "", "contact email")
	fs.StringVar(&req.Phone, "phone", "", "contact phone")
	fs.StringVar(&req.Address, "address", "", "postal address")
	fs.IntVar(&req.LeadTimeDays, "lead-time", 0, "delivery lead time in days")
	return req
}

func (a *App) suppliersAdd(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suppliers add", flag.ContinueOnError)
	req := supplierFlags(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	supplier, err := a.client.Suppliers.Create(ctx, *req)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterSupplierChange()...)

	fmt.Fprintf(a.stdout, "Created supplier %d: %s\n", supplier.ID, supplier.Name)
	return nil
}

func (a *App) suppliersUpdate(ctx context.Context, args []string) error {
	id, err := intArg(args, "supplier id")
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("suppliers update", flag.ContinueOnError)
	req := supplierFlags(fs)
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}

	supplier, err := a.client.Suppliers.Update(ctx, id, *req)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterSupplierChange()...)

	fmt.Fprintf(a.stdout, "Updated supplier %d: %s\n", supplier.ID, supplier.Name)
	return nil
}

func (a *App) suppliersRemove(ctx context.Context, args []string) error {
	id, err := intArg(args, "supplier id")
	if err != nil {
		return err
	}

	if err := a.client.Suppliers.Delete(ctx, id); err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterSupplierChange()...)

	fmt.Fprintf(a.stdout, "Removed supplier %d\n", id)
	return nil
}

// suppliersOrder places a purchase order. Items are passed as
// medicineID:quantity[:unitCost], comma-separated.
func (a *App) suppliersOrder(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suppliers order", flag.ContinueOnError)
	supplierID := fs.Int("supplier", 0, "supplier id")
	items := fs.String("items", "", "items as medicineID:quantity[:unitCost], comma-separated")
	notes := fs.String("notes", "", "order notes")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := api.PurchaseOrderCreate{SupplierID: *supplierID, Notes: *notes}
	for _, spec := range strings.Split(*items, ",") {
		if spec = strings.TrimSpace(spec); spec == "" {
			continue
		}
		item, err := parseOrderItem(spec)
		if err != nil {
			return err
		}
		req.Items = append(req.Items, item)
	}

	po, err := a.client.Suppliers.CreatePurchaseOrder(ctx, req)
	if err != nil {
		// No automatic retry: the server may have placed the order even
		// when the response was lost.
		return err
	}
	a.cache.Invalidate(query.AfterPurchaseOrder()...)

	fmt.Fprintf(a.stdout, "Purchase order %d placed (%s, %s)\n", po.ID, po.Status, money(po.TotalCost))
	return nil
}

func parseOrderItem(spec string) (api.PurchaseOrderItem, error) {
	parts := strings.Split(spec, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return api.PurchaseOrderItem{}, fmt.Errorf("invalid item %q, want medicineID:quantity[:unitCost]", spec)
	}
	var item api.PurchaseOrderItem
	var err error
	if item.MedicineID, err = strconv.Atoi(parts[0]); err != nil {
		return item, fmt.Errorf("invalid medicine id in %q", spec)
	}
	if item.Quantity, err = strconv.Atoi(parts[1]); err != nil {
		return item, fmt.Errorf("invalid quantity in %q", spec)
	}
	if len(parts) == 3 {
		if item.UnitCost, err = strconv.ParseFloat(parts[2], 64); err != nil {
			return item, fmt.Errorf("invalid unit cost in %q", spec)
		}
	}
	return item, nil
}

func (a *App) suppliersOrders(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("suppliers orders", flag.ContinueOnError)
	supplierID := fs.Int("supplier", 0, "filter by supplier id")
	status := fs.String("status", "", "filter by status")
	if err := fs.Parse(args); err != nil {
		return err
	}

	result := query.Fetch(ctx, a.cache, query.KeyPurchaseOrders(*supplierID, *status), func(ctx context.Context) ([]api.PurchaseOrder, error) {
		return a.client.Suppliers.PurchaseOrders(ctx, api.PurchaseOrderFilter{
			SupplierID: *supplierID, Status: *status,
		})
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	if len(result.Data) == 0 {
		fmt.Fprintln(a.stdout, "No purchase orders.")
		return nil
	}
	rows := make([][]string, 0, len(result.Data))
	for _, po := range result.Data {
		rows = append(rows, []string{
			strconv.Itoa(po.ID), strconv.Itoa(po.SupplierID), po.Status,
			money(po.TotalCost), po.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	renderTable(a.stdout, []string{"ID", "SUPPLIER", "STATUS", "TOTAL", "PLACED"}, rows)
	return nil
}

func (a *App) suppliersAnalysis(ctx context.Context) error {
	analysis, err := a.client.Suppliers.AIAnalysis(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, analysis.Analysis)
	return nil
}
