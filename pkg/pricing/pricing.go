// Package pricing values token amounts in USD for risk limits.
package pricing

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnknownToken is returned when no USD price is known for a symbol
var ErrUnknownToken = errors.New("no usd price for token")

// Oracle converts token amounts to USD
type Oracle interface {
	USDValue(ctx context.Context, symbol string, amount decimal.Decimal) (decimal.Decimal, error)
}

// Static prices tokens from a fixed table
type Static struct {
	prices map[string]decimal.Decimal
}

// NewStatic builds a Static oracle from symbol -> decimal string prices.
// Dollar stablecoins are priced at 1 unless overridden.
func NewStatic(prices map[string]string) (*Static, error) {
	table := map[string]decimal.Decimal{
		"USDC": decimal.NewFromInt(1),
		"USDT": decimal.NewFromInt(1),
		"DAI":  decimal.NewFromInt(1),
	}
	for symbol, raw := range prices {
		p, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid price for %s: %w", symbol, err)
		}
		if p.IsNegative() {
			return nil, fmt.Errorf("negative price for %s", symbol)
		}
		table[strings.ToUpper(symbol)] = p
	}
	return &Static{prices: table}, nil
}

func (s *Static) USDValue(_ context.Context, symbol string, amount decimal.Decimal) (decimal.Decimal, error) {
	p, ok := s.prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownToken, symbol)
	}
	return amount.Mul(p).Round(2), nil
}
