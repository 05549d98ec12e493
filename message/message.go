package message

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrInvalidFormat is wrapped by every parse failure.
var ErrInvalidFormat = errors.New("invalid format")

// TickerLen is the fixed width of a ticker symbol.
const TickerLen = 4

// Kind is the type tag that leads every line.
type Kind byte

const (
	KindPrice Kind = 'P'
	KindFill  Kind = 'F'
)

func (k Kind) String() string {
	switch k {
	case KindPrice:
		return "price"
	case KindFill:
		return "fill"
	default:
		return fmt.Sprintf("kind(%q)", byte(k))
	}
}

// Side is the direction of a fill.
type Side byte

const (
	Buy  Side = 'B'
	Sell Side = 'S'
)

func (s Side) String() string { return string(s) }

// Message is one parsed line. Only Price and Fill implement it; pnl.State also
// accepts pointers to either.
type Message interface {
	Kind() Kind
	Timestamp() float64
	Symbol() string
	// Line renders the message back into its wire form.
	Line() string

	sealed()
}

// Price is an observed market price for a ticker.
//
//	P <timestamp> <ticker> <price>
type Price struct {
	Time   float64
	Ticker string
	Price  decimal.Decimal
}

func (Price) Kind() Kind           { return KindPrice }
func (p Price) Timestamp() float64 { return p.Time }
func (p Price) Symbol() string     { return p.Ticker }
func (Price) sealed()              {}

func (p Price) Line() string {
	return strings.Join([]string{
		string(KindPrice),
		formatTime(p.Time),
		p.Ticker,
		p.Price.String(),
	}, " ")
}

func (p Price) String() string {
	return fmt.Sprintf("[PriceMessage] <msgType - %c ; msgTime - %s ; ticker - %s ; price - %s>",
		KindPrice, formatTime(p.Time), p.Ticker, p.Price)
}

// Fill is a trade execution.
//
//	F <timestamp> <ticker> <execPrice> <fillQuantity> <B|S>
type Fill struct {
	Time      float64
	Ticker    string
	ExecPrice decimal.Decimal
	Quantity  decimal.Decimal
	Side      Side
}

func (Fill) Kind() Kind           { return KindFill }
func (f Fill) Timestamp() float64 { return f.Time }
func (f Fill) Symbol() string     { return f.Ticker }
func (Fill) sealed()              {}

// Delta is the quantity signed by side: positive for a buy, negative for a sell.
func (f Fill) Delta() decimal.Decimal {
	if f.Side == Sell {
		return f.Quantity.Neg()
	}
	return f.Quantity
}

func (f Fill) Line() string {
	return strings.Join([]string{
		string(KindFill),
		formatTime(f.Time),
		f.Ticker,
		f.ExecPrice.String(),
		f.Quantity.String(),
		f.Side.String(),
	}, " ")
}

func (f Fill) String() string {
	return fmt.Sprintf("[FillMessage] <msgType - %c ; msgTime - %s ; ticker - %s ; execPrice - %s ; fillQuantity - %s ; direction - %s>",
		KindFill, formatTime(f.Time), f.Ticker, f.ExecPrice, f.Quantity, f.Side)
}

func formatTime(t float64) string {
	return strconv.FormatFloat(t, 'f', -1, 64)
}

// fields strips the line terminator and splits on the single-space separator.
func fields(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil
	}
	return strings.Split(line, " ")
}

// cursor hands out positional fields and reports the first one that is missing.
type cursor struct {
	fields []string
	pos    int
}

func (c *cursor) next(name string) (string, error) {
	if c.pos >= len(c.fields) {
		return "", invalid(name, "", "missing")
	}
	v := c.fields[c.pos]
	c.pos++
	return v, nil
}

func (c *cursor) done() error {
	if c.pos < len(c.fields) {
		return fmt.Errorf("%w: unexpected trailing field %q", ErrInvalidFormat, c.fields[c.pos])
	}
	return nil
}

func invalid(field, value, reason string) error {
	return fmt.Errorf("%w: %s %q: %s", ErrInvalidFormat, field, value, reason)
}

func parseKind(c *cursor, want Kind) error {
	v, err := c.next("type")
	if err != nil {
		return err
	}
	if v != string(want) {
		return invalid("type", v, fmt.Sprintf("want %q", string(want)))
	}
	return nil
}

func parseTime(c *cursor) (float64, error) {
	v, err := c.next("timestamp")
	if err != nil {
		return 0, err
	}
	t, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(t) || math.IsInf(t, 0) {
		return 0, invalid("timestamp", v, "not a number")
	}
	return t, nil
}

func parseTicker(c *cursor) (string, error) {
	v, err := c.next("ticker")
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", invalid("ticker", v, "empty")
	}
	if len(v) != TickerLen {
		return "", invalid("ticker", v, fmt.Sprintf("want %d characters", TickerLen))
	}
	return v, nil
}

// parseAmount strips thousands separators before parsing.
func parseAmount(c *cursor, name string) (decimal.Decimal, error) {
	v, err := c.next(name)
	if err != nil {
		return decimal.Zero, err
	}
	s := strings.ReplaceAll(v, ",", "")
	if s == "" {
		return decimal.Zero, invalid(name, v, "empty")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, invalid(name, v, "not a number")
	}
	return d, nil
}

func parseSide(c *cursor) (Side, error) {
	v, err := c.next("direction")
	if err != nil {
		return 0, err
	}
	switch v {
	case string(Buy):
		return Buy, nil
	case string(Sell):
		return Sell, nil
	}
	return 0, invalid("direction", v, "want B or S")
}

// ParsePrice validates a price line. An empty line is an error here; use
// Parse to treat it as "no message".
func ParsePrice(line string) (Price, error) {
	c := &cursor{fields: fields(line)}
	var p Price
	var err error

	if err = parseKind(c, KindPrice); err != nil {
		return Price{}, err
	}
	if p.Time, err = parseTime(c); err != nil {
		return Price{}, err
	}
	if p.Ticker, err = parseTicker(c); err != nil {
		return Price{}, err
	}
	if p.Price, err = parseAmount(c, "price"); err != nil {
		return Price{}, err
	}
	if err = c.done(); err != nil {
		return Price{}, err
	}
	return p, nil
}

// ParseFill validates a fill line.
func ParseFill(line string) (Fill, error) {
	c := &cursor{fields: fields(line)}
	var f Fill
	var err error

	if err = parseKind(c, KindFill); err != nil {
		return Fill{}, err
	}
	if f.Time, err = parseTime(c); err != nil {
		return Fill{}, err
	}
	if f.Ticker, err = parseTicker(c); err != nil {
		return Fill{}, err
	}
	if f.ExecPrice, err = parseAmount(c, "exec_price"); err != nil {
		return Fill{}, err
	}
	if f.Quantity, err = parseAmount(c, "fill_quantity"); err != nil {
		return Fill{}, err
	}
	if f.Side, err = parseSide(c); err != nil {
		return Fill{}, err
	}
	if err = c.done(); err != nil {
		return Fill{}, err
	}
	return f, nil
}

// Parse parses line as the given kind. An empty line yields ok=false and no
// error, which is distinct from a malformed line.
func Parse(kind Kind, line string) (Message, bool, error) {
	if strings.TrimRight(line, "\r\n") == "" {
		return nil, false, nil
	}
	switch kind {
	case KindPrice:
		p, err := ParsePrice(line)
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	case KindFill:
		f, err := ParseFill(line)
		if err != nil {
			return nil, false, err
		}
		return f, true, nil
	default:
		return nil, false, fmt.Errorf("%w: unknown kind %s", ErrInvalidFormat, kind)
	}
}
