package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/rustyeddy/pnl/merge"
	"github.com/rustyeddy/pnl/pnl"
)

type reporter struct {
	w         io.Writer
	precision int32
}

func newReporter(w io.Writer, precision int32) *reporter {
	return &reporter{w: w, precision: precision}
}

// mark prints one line per price: timestamp, ticker, PnL.
func (r *reporter) mark(m merge.Mark) error {
	_, err := fmt.Fprintf(r.w, "%s %s %s\n",
		strconv.FormatFloat(m.Time, 'f', -1, 64), m.Ticker, m.PnL.StringFixed(r.precision))
	return err
}

func (r *reporter) summary(runID string, stats merge.Stats, snap pnl.Snapshot) error {
	fmt.Fprintf(r.w, "\nRun %s complete\n", runID)
	fmt.Fprintf(r.w, "  Fills:  %d\n", stats.Fills)
	fmt.Fprintf(r.w, "  Prices: %d\n\n", stats.Prices)

	tw := tabwriter.NewWriter(r.w, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "TICKER\tPOSITION\tPRICE\tVALUE\t")
	for _, h := range snap.Holdings {
		px := "-"
		if h.Priced {
			px = h.Price.StringFixed(r.precision)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", h.Ticker, h.Position.String(), px, h.Value.StringFixed(r.precision))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(r.w, "\n  Cash (%s): %s\n", snap.Currency, snap.Cash.StringFixed(r.precision))
	fmt.Fprintf(r.w, "  Market value: %s\n", snap.MarketValue.StringFixed(r.precision))
	_, err := fmt.Fprintf(r.w, "  PnL: %s\n", snap.PnL.StringFixed(r.precision))
	return err
}
