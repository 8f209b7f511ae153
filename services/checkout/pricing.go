package checkout

import (
	"fmt"
)

const (
	DeliveryFeeCents = 300
	TaxRatePercent   = 8
)

// Upper bounds keep every intermediate product well inside int64.
const (
	MaxCartItems      = 100
	MaxQuantity       = 1000
	MaxUnitPriceCents = 1_000_000
	MaxTipPercent     = 100
	MaxTipCents       = 1_000_000
)

// roundDiv returns n/d rounded half-up, for non-negative n and positive d.
func roundDiv(n, d int64) int64 {
	return (2*n + d) / (2 * d)
}

func NewTipPolicy(tipType string, percent *int, fixedCents int64) (TipPolicy, error) {
	switch TipType(tipType) {
	case "", TipTypePercentage:
		p := DefaultTipPercent
		if percent != nil {
			p = *percent
		}
		policy := TipPolicy{Type: TipTypePercentage, Percent: p}
		return policy, policy.validate()
	case TipTypeFixed:
		policy := TipPolicy{Type: TipTypeFixed, FixedCents: fixedCents}
		return policy, policy.validate()
	default:
		return TipPolicy{}, fmt.Errorf("unsupported tip type '%s'", tipType)
	}
}

func (p TipPolicy) validate() error {
	if p.Percent < 0 || p.Percent > MaxTipPercent {
		return fmt.Errorf("tip percent %d outside 0..%d", p.Percent, MaxTipPercent)
	}
	if p.FixedCents < 0 || p.FixedCents > MaxTipCents {
		return fmt.Errorf("tip %d outside 0..%d", p.FixedCents, MaxTipCents)
	}
	return nil
}

func (p TipPolicy) amountCents(subtotalCents int64) int64 {
	if p.Type == TipTypeFixed {
		return p.FixedCents
	}
	return roundDiv(subtotalCents*int64(p.Percent), 100)
}

func validateItems(items []CartItem) error {
	if len(items) > MaxCartItems {
		return fmt.Errorf("cart holds %d items, at most %d allowed", len(items), MaxCartItems)
	}
	for i, item := range items {
		if item.UnitPriceCents < 0 || item.UnitPriceCents > MaxUnitPriceCents {
			return fmt.Errorf("item %d (%s) has price %d outside 0..%d", i, item.UID, item.UnitPriceCents, MaxUnitPriceCents)
		}
		if item.Quantity <= 0 || item.Quantity > MaxQuantity {
			return fmt.Errorf("item %d (%s) has quantity %d outside 1..%d", i, item.UID, item.Quantity, MaxQuantity)
		}
	}
	return nil
}

// CalculateTotals prices a cart: a flat delivery fee, tax over subtotal plus fee and a tip
// over the subtotal only.
func CalculateTotals(items []CartItem, tip TipPolicy) (Totals, error) {
	err := validateItems(items)
	if err != nil {
		return Totals{}, err
	}
	err = tip.validate()
	if err != nil {
		return Totals{}, err
	}

	var subtotal int64
	for _, item := range items {
		subtotal += item.UnitPriceCents * int64(item.Quantity)
	}

	totals := Totals{
		SubtotalCents:    subtotal,
		DeliveryFeeCents: DeliveryFeeCents,
		TaxCents:         roundDiv((subtotal+DeliveryFeeCents)*TaxRatePercent, 100),
		TipCents:         tip.amountCents(subtotal),
	}
	totals.TotalCents = totals.SubtotalCents + totals.DeliveryFeeCents + totals.TaxCents + totals.TipCents

	return totals, nil
}

func composeAddress(req CheckoutRequest) string {
	return fmt.Sprintf("%s, %s, %s %s", req.Address, req.City, req.State, req.Zip)
}
