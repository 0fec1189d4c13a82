package cli

import (
	"context"
	"flag"
	"fmt"
	"strconv"

	"github.com/pharmadash/pharmadash/internal/api"
	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdAlerts(ctx context.Context, args []string) error {
	if len(args) == 0 {
		args = []string{"list"}
	}
	sub, rest := args[0], args[1:]

	if err := a.requireAuth(); err != nil {
		return err
	}

	switch sub {
	case "list":
		return a.alertsList(ctx, rest)
	case "ack":
		return a.alertsAck(ctx, rest)
	case "stats":
		return a.alertsStats(ctx)
	case "scan":
		return a.alertsScan(ctx)
	default:
		return fmt.Errorf("unknown alerts subcommand %q (list, ack, stats, scan)", sub)
	}
}

func (a *App) alertsList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("alerts list", flag.ContinueOnError)
	alertType := fs.String("type", "", "filter by alert type")
	severity := fs.String("severity", "", "filter by severity")
	all := fs.Bool("all", false, "include acknowledged alerts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var acknowledged *bool
	if !*all {
		unacked := false
		acknowledged = &unacked
	}

	result := query.Fetch(ctx, a.cache, query.KeyAlerts(*alertType, *severity, acknowledged), func(ctx context.Context) ([]api.Alert, error) {
		return a.client.Alerts.List(ctx, api.AlertFilter{
			AlertType: *alertType, Severity: *severity, Acknowledged: acknowledged,
		})
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	if len(result.Data) == 0 {
		fmt.Fprintln(a.stdout, "No alerts.")
		return nil
	}
	rows := make([][]string, 0, len(result.Data))
	for _, alert := range result.Data {
		rows = append(rows, []string{
			strconv.Itoa(alert.ID), alert.Severity, alert.AlertType,
			alert.Message, yesNo(alert.IsAcknowledged),
		})
	}
	renderTable(a.stdout, []string{"ID", "SEVERITY", "TYPE", "MESSAGE", "ACKED"}, rows)
	return nil
}

func (a *App) alertsAck(ctx context.Context, args []string) error {
	id, err := intArg(args, "alert id")
	if err != nil {
		return err
	}

	alert, err := a.client.Alerts.Acknowledge(ctx, id)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterAlertAcknowledge()...)

	fmt.Fprintf(a.stdout, "Acknowledged alert %d: %s\n", alert.ID, alert.Message)
	return nil
}

func (a *App) alertsStats(ctx context.Context) error {
	result := query.Fetch(ctx, a.cache, query.KeyAlertStats(), func(ctx context.Context) (*api.AlertStats, error) {
		return a.client.Alerts.Stats(ctx)
	})
	if result.Err != nil && result.Data == nil {
		return result.Err
	}
	sourceBanner(a.stdout, result)

	stats := result.Data
	fmt.Fprintf(a.stdout, "%d alerts, %d unacknowledged\n", stats.TotalAlerts, stats.Unacknowledged)
	for alertType, count := range stats.ByType {
		fmt.Fprintf(a.stdout, "  %s: %d\n", alertType, count)
	}
	for severity, count := range stats.BySeverity {
		fmt.Fprintf(a.stdout, "  %s: %d\n", severity, count)
	}
	return nil
}

func (a *App) alertsScan(ctx context.Context) error {
	result, err := a.client.Alerts.RunScan(ctx)
	if err != nil {
		return err
	}
	a.cache.Invalidate(query.AfterAlertAcknowledge()...)

	fmt.Fprintln(a.stdout, result.Message)
	return nil
}
