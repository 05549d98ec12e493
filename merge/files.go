package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/pnl/message"
	"github.com/rustyeddy/pnl/pnl"
	"github.com/rustyeddy/pnl/stream"
	"github.com/yanun0323/logs"
)

// RunFiles opens the fill and price inputs, merges them into state and closes
// both inputs on every return path.
func RunFiles(ctx context.Context, fillsPath, pricesPath string, state *pnl.State, opts Options) (Stats, error) {
	fills := stream.Open(message.KindFill, fillsPath)
	prices := stream.Open(message.KindPrice, pricesPath)
	return runStreams(ctx, fills, prices, state, opts)
}

// runStreams owns both streams and closes them before returning.
func runStreams(ctx context.Context, fills, prices *stream.Stream, state *pnl.State, opts Options) (stats Stats, err error) {
	defer func() {
		err = errors.Join(err, fills.Close(), prices.Close())
	}()

	for _, s := range []*stream.Stream{fills, prices} {
		if s.Available() {
			continue
		}
		if opts.RequireInputs {
			return Stats{}, fmt.Errorf("%s input %q: %w", s.Kind(), s.Name(), ErrSourceUnavailable)
		}
		logs.Errorf("%s input %s unavailable, it will contribute no events", s.Kind(), s.Name())
	}

	d := NewDriver(fills, prices, state, opts)
	stats, err = d.Run(ctx)
	if err != nil {
		return stats, err
	}
	logs.Infof("merged %d fills and %d prices", stats.Fills, stats.Prices)
	return stats, nil
}
