package merge

import (
	"context"
	"errors"
	"fmt"

	"github.com/rustyeddy/pnl/message"
	"github.com/rustyeddy/pnl/pnl"
	"github.com/shopspring/decimal"
)

// ErrSourceUnavailable is returned by RunFiles when Options.RequireInputs is
// set and an input could not be opened.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source is anything that yields messages until it reports ok=false.
type Source interface {
	Next() (message.Message, bool, error)
}

// Mark is the PnL reading produced by one price message.
type Mark struct {
	Time   float64
	Ticker string
	PnL    decimal.Decimal
}

// Options controls a run.
type Options struct {
	// OnMark, if set, is called for every price applied. An error aborts the run.
	OnMark func(Mark) error

	// RequireInputs makes RunFiles fail instead of treating a missing input
	// as an empty one.
	RequireInputs bool
}

// Stats counts what a run consumed.
type Stats struct {
	Fills  int
	Prices int
	Marks  int
}

// Driver merges a fill source and a price source in timestamp order and
// feeds the result into a State.
type Driver struct {
	fills  side
	prices side
	state  *pnl.State
	opts   Options
	stats  Stats
}

type side struct {
	src     Source
	pending message.Message
	done    bool
}

// fill pulls the next message if nothing is pending.
func (s *side) fill() error {
	if s.pending != nil || s.done {
		return nil
	}
	m, ok, err := s.src.Next()
	if err != nil {
		return err
	}
	if !ok {
		s.done = true
		return nil
	}
	s.pending = m
	return nil
}

func (s *side) take() message.Message {
	m := s.pending
	s.pending = nil
	return m
}

// NewDriver merges fills and prices into state. A nil source is treated as
// empty.
func NewDriver(fills, prices Source, state *pnl.State, opts Options) *Driver {
	return &Driver{
		fills:  side{src: fills, done: fills == nil},
		prices: side{src: prices, done: prices == nil},
		state:  state,
		opts:   opts,
	}
}

// Run consumes both sources to exhaustion. On equal timestamps the fill is
// applied first so the price's PnL includes it. The context is checked once
// per message.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	for {
		if err := ctx.Err(); err != nil {
			return d.stats, err
		}
		if err := d.fills.fill(); err != nil {
			return d.stats, fmt.Errorf("fills: %w", err)
		}
		if err := d.prices.fill(); err != nil {
			return d.stats, fmt.Errorf("prices: %w", err)
		}

		var next message.Message
		switch f, p := d.fills.pending, d.prices.pending; {
		case f != nil && p != nil:
			if f.Timestamp() <= p.Timestamp() {
				next = d.fills.take()
			} else {
				next = d.prices.take()
			}
		case f != nil:
			next = d.fills.take()
		case p != nil:
			next = d.prices.take()
		default:
			return d.stats, nil
		}

		if err := d.apply(next); err != nil {
			return d.stats, err
		}
	}
}

func (d *Driver) apply(m message.Message) error {
	value, reported, err := d.state.Apply(m)
	if err != nil {
		return err
	}
	switch m.Kind() {
	case message.KindFill:
		d.stats.Fills++
	case message.KindPrice:
		d.stats.Prices++
	}
	if !reported {
		return nil
	}
	d.stats.Marks++
	if d.opts.OnMark == nil {
		return nil
	}
	return d.opts.OnMark(Mark{Time: m.Timestamp(), Ticker: m.Symbol(), PnL: value})
}

// Stats reports progress so far.
func (d *Driver) Stats() Stats { return d.stats }
