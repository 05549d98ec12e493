package pnl

import "github.com/shopspring/decimal"

// Holding is one ticker's line in a Snapshot.
type Holding struct {
	Ticker   string
	Position decimal.Decimal
	Price    decimal.Decimal
	Priced   bool
	// Value is Position * Price, zero while unpriced.
	Value decimal.Decimal
}

// Snapshot is a point-in-time copy of a State.
type Snapshot struct {
	Currency    string
	Cash        decimal.Decimal
	MarketValue decimal.Decimal
	PnL         decimal.Decimal
	Holdings    []Holding
}

func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Currency:    s.currency,
		Cash:        s.cash[s.currency],
		MarketValue: decimal.Zero,
	}
	for _, t := range s.tickersLocked() {
		h := Holding{Ticker: t, Position: s.position[t], Value: decimal.Zero}
		if px, ok := s.latest[t]; ok {
			h.Price = px
			h.Priced = true
			h.Value = h.Position.Mul(px)
		}
		snap.MarketValue = snap.MarketValue.Add(h.Value)
		snap.Holdings = append(snap.Holdings, h)
	}
	snap.PnL = snap.Cash.Add(snap.MarketValue)
	return snap
}
