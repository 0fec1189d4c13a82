package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pharmadash/pharmadash/internal/query"
	"github.com/pharmadash/pharmadash/pkg/errors"
)

// renderTable writes rows under a header with aligned columns.
func renderTable(w io.Writer, header []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	tw.Flush()
}

// sourceBanner prints a warning line when a result did not come from the
// server, so degraded data is never mistaken for live data.
func sourceBanner[T any](w io.Writer, r query.Result[T]) {
	switch r.Source {
	case query.SourceCached:
		fmt.Fprintf(w, "(cached %s ago)\n", ago(r.FetchedAt))
	case query.SourceSnapshot:
		fmt.Fprintf(w, "!! OFFLINE DATA from %s — server unreachable: %s\n",
			r.FetchedAt.Format("2006-01-02 15:04"), errorMessage(r.Err))
	}
}

func ago(t time.Time) string {
	d := time.Since(t).Round(time.Second)
	if d < time.Second {
		return "0s"
	}
	return d.String()
}

// errorMessage favors the server's own detail text over wrapper prose.
func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return errors.Detail(err, err.Error())
}

func money(v float64) string {
	return fmt.Sprintf("₹%.2f", v)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
