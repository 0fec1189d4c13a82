package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdOrders(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	if err := a.requireAuth(); err != nil {
		return err
	}

	switch sub {
	case "list":
		return a.ordersList(ctx)
	case "create":
		return a.ordersCreate(ctx, rest)
	default:
		return fmt.Errorf("unknown orders subcommand %q (list, create)", sub)
	}
}

func (a *App) ordersList(ctx context.Context) error {
	result := query.Fetch(ctx, a.cache, query.KeyOrders(), func(ctx context.Context) ([]api.PrescriptionOrder, error) {
		return a.client.Orders.List(ctx)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	if len(result.Data) == 0 {
		fmt.Fprintln(a.stdout, "No orders.")
		return nil
	}
	rows := make([][]string, 0, len(result.Data))
	for _, o := range result.Data {
		rows = append(rows, []string{
			strconv.Itoa(o.ID), o.CustomerName, o.NotificationMethod,
			o.Status, o.CreatedAt.Format("2006-01-02 15:04"),
		})
	}
	renderTable(a.stdout, []string{"ID", "CUSTOMER", "NOTIFY VIA", "STATUS", "PLACED"}, rows)
	return nil
}

// ordersCreate places a prescription order, uploading the prescription image
// first when one is given.
func (a *App) ordersCreate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("orders create", flag.ContinueOnError)
	customer := fs.String("customer", "", "customer name")
	contact := fs.String("contact", "", "phone number or email")
	notify := fs.String("notify", "whatsapp", "notification method: whatsapp, sms or email")
	notes := fs.String("notes", "", "order notes")
	prescription := fs.String("prescription", "", "path to a prescription image (jpg, png, pdf)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	req := api.PrescriptionOrderCreate{
		CustomerName:       *customer,
		ContactInfo:        *contact,
		NotificationMethod: *notify,
		Notes:              *notes,
	}

	if *prescription != "" {
		upload, err := a.client.Orders.UploadPrescription(ctx, *prescription, nil)
		if err != nil {
			return fmt.Errorf("prescription upload: %w", err)
		}
		req.PrescriptionImagePath = upload.Filepath
	}

	order, err := a.client.Orders.Create(ctx, req)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterOrderCreate()...)

	fmt.Fprintf(a.stdout, "Order %d placed for %s; %s\n", order.ID, order.CustomerName, order.Message)
	return nil
}
