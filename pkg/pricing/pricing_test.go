package pricing

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestStatic_USDValue(t *testing.T) {
	o, err := NewStatic(map[string]string{"eth": "2000", "usdc": "0.999"})
	if err != nil {
		t.Fatalf("NewStatic failed: %v", err)
	}
	ctx := context.Background()

	got, err := o.USDValue(ctx, "ETH", decimal.RequireFromString("0.025"))
	if err != nil {
		t.Fatalf("USDValue failed: %v", err)
	}
	if !got.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected 50, got %s", got)
	}

	got, err = o.USDValue(ctx, "usdc", decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("USDValue failed: %v", err)
	}
	if !got.Equal(decimal.RequireFromString("99.9")) {
		t.Fatalf("expected override price, got %s", got)
	}

	got, err = o.USDValue(ctx, "DAI", decimal.NewFromInt(7))
	if err != nil || !got.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("expected stablecoin default, got %s (%v)", got, err)
	}

	if _, err := o.USDValue(ctx, "DOGE", decimal.NewFromInt(1)); !errors.Is(err, ErrUnknownToken) {
		t.Fatalf("expected ErrUnknownToken, got %v", err)
	}
}

func TestNewStatic_RejectsBadPrices(t *testing.T) {
	if _, err := NewStatic(map[string]string{"ETH": "abc"}); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := NewStatic(map[string]string{"ETH": "-1"}); err == nil {
		t.Fatalf("expected negative price error")
	}
}
