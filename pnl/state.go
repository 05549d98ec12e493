package pnl

import (
	"fmt"
	"sort"
	"sync"

	"github.com/rustyeddy/pnl/message"
	"github.com/shopspring/decimal"
)

// DefaultCurrency is the only cash bucket fills settle into unless the State
// is built with another one.
const DefaultCurrency = "USD"

// State is the running aggregate for one run: positions, cash and the last
// seen price for every ticker. Only fills move positions and cash; only
// prices move the latest price table.
type State struct {
	mu sync.RWMutex

	currency string
	position map[string]decimal.Decimal
	cash     map[string]decimal.Decimal
	latest   map[string]decimal.Decimal
}

func NewState(currency string) *State {
	if currency == "" {
		currency = DefaultCurrency
	}
	return &State{
		currency: currency,
		position: make(map[string]decimal.Decimal),
		cash:     make(map[string]decimal.Decimal),
		latest:   make(map[string]decimal.Decimal),
	}
}

func (s *State) Currency() string { return s.currency }

// Apply folds one message into the state. A price returns the PnL after the
// update with reported=true; a fill returns reported=false. Pointers to a
// Price or Fill are accepted as well.
func (s *State) Apply(m message.Message) (pnl decimal.Decimal, reported bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg := m.(type) {
	case *message.Fill:
		if msg != nil {
			m = *msg
		}
	case *message.Price:
		if msg != nil {
			m = *msg
		}
	}

	switch msg := m.(type) {
	case message.Fill:
		delta := msg.Delta()
		s.position[msg.Ticker] = s.position[msg.Ticker].Add(delta)
		s.cash[s.currency] = s.cash[s.currency].Sub(delta.Mul(msg.ExecPrice))
		return decimal.Zero, false, nil
	case message.Price:
		s.latest[msg.Ticker] = msg.Price
		return s.pnlLocked(), true, nil
	default:
		return decimal.Zero, false, fmt.Errorf("pnl: unsupported message %T", m)
	}
}

// PnL is cash plus every position marked at its latest price. A ticker with
// no price yet contributes zero.
func (s *State) PnL() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pnlLocked()
}

func (s *State) pnlLocked() decimal.Decimal {
	total := s.cash[s.currency]
	for ticker, qty := range s.position {
		if px, ok := s.latest[ticker]; ok {
			total = total.Add(qty.Mul(px))
		}
	}
	return total
}

// Position is zero for a ticker that never filled.
func (s *State) Position(ticker string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.position[ticker]
}

func (s *State) Cash(currency string) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cash[currency]
}

func (s *State) LatestPrice(ticker string) (decimal.Decimal, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	px, ok := s.latest[ticker]
	return px, ok
}

// Tickers lists every ticker seen in a fill or a price, sorted.
func (s *State) Tickers() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tickersLocked()
}

func (s *State) tickersLocked() []string {
	seen := make(map[string]struct{}, len(s.position)+len(s.latest))
	for t := range s.position {
		seen[t] = struct{}{}
	}
	for t := range s.latest {
		seen[t] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
