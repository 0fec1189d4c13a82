package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/pharmadash/pharmadash/internal/query"
)

func (a *App) cmdUpload(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("upload", flag.ContinueOnError)
	quiet := fs.Bool("quiet", false, "suppress the progress line")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("file path argument is required")
	}
	if err := a.requireAuth(); err != nil {
		return err
	}
	path := fs.Arg(0)

	progress := func(sent, total int64) {
		if *quiet || total <= 0 {
			return
		}
		fmt.Fprintf(a.stdout, "\ruploading %3d%% (%d/%d bytes)", sent*100/total, sent, total)
		if sent == total {
			fmt.Fprintln(a.stdout)
		}
	}

	result, err := a.client.Inventory.UploadFile(ctx, path, progress)
	if err != nil {
		return err
	}

	// One upload, one invalidation sweep: medicines, stock, dashboard
	// aggregates and alerts are all refetched on next read.
	a.cache.Invalidate(query.AfterInventoryUpload()...)

	fmt.Fprintf(a.stdout, "Processed %d rows: %d imported, %d failed, %d warnings\n",
		result.TotalRows, result.SuccessCount, result.ErrorCount, result.WarningCount)
	for _, msg := range result.Errors {
		fmt.Fprintln(a.stdout, "  error:", msg)
	}
	for _, msg := range result.Warnings {
		fmt.Fprintln(a.stdout, "  warning:", msg)
	}
	if result.ErrorCount > 0 {
		return fmt.Errorf("%d rows failed to import", result.ErrorCount)
	}
	return nil
}
