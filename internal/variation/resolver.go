// Package variation resolves effective price and the binding stock ceiling
// for a product option selection. Every function is pure: no I/O, no shared
// state, O(number of axes) per call.
package variation

import (
	"errors"
	"fmt"

	"catalog-service/internal/models"
)

// Ceiling is the binding stock constraint for a selection: either unlimited
// or a finite limit. A limit of 0 is a real constraint (nothing available)
// and is distinct from unlimited.
type Ceiling struct {
	Unlimited bool
	Limit     int
}

// Unlimited returns the unconstrained ceiling.
func UnlimitedCeiling() Ceiling {
	return Ceiling{Unlimited: true}
}

// FiniteCeiling returns a ceiling bounded at n.
func FiniteCeiling(n int) Ceiling {
	return Ceiling{Limit: n}
}

// AvailabilityResult is the outcome of an availability check. It is a normal
// result value: an unavailable selection is not an error.
type AvailabilityResult struct {
	Available bool   `json:"available"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message,omitempty"`
}

// Caller contract violations. These indicate a programming error in the
// caller, not a stock condition.
var (
	ErrInvalidQuantity = errors.New("requested quantity must be a positive integer")
	ErrInvalidReserved = errors.New("reserved quantity must not be negative")
)

// ResolveStock computes the binding stock ceiling for the given selection.
//
// A product without variation axes resolves from BaseStock alone. Otherwise
// each axis with a selected option contributes at most one candidate
// constraint: none for stock mode "none" or an unconstrained option, the
// axis shared pool when present, or the selected option's own count. The
// tightest candidate wins; if no axis contributes one, the selection is
// unconstrained. Axes without a selected option are skipped entirely.
func ResolveStock(p *models.Product, sel models.Selection) Ceiling {
	if !p.HasVariations() {
		if p.BaseStock == nil {
			return UnlimitedCeiling()
		}
		return FiniteCeiling(*p.BaseStock)
	}

	ceiling := UnlimitedCeiling()
	for i := range p.Axes {
		axis := &p.Axes[i]
		optionID, ok := sel[axis.ID]
		if !ok {
			continue
		}
		if axis.StockMode == models.StockModeNone {
			continue
		}

		var candidate int
		if axis.SharedPool != nil {
			candidate = *axis.SharedPool
		} else {
			opt := findOption(axis, optionID)
			if opt == nil || opt.StockCount == nil {
				continue
			}
			candidate = *opt.StockCount
		}

		if ceiling.Unlimited || candidate < ceiling.Limit {
			ceiling = FiniteCeiling(candidate)
		}
	}
	return ceiling
}

// ResolvePrice computes the effective unit price: base price plus the price
// adjustment of every selected option. Axes without a selection contribute
// nothing. The result is not clamped; a negative price is a data problem for
// the caller to validate.
func ResolvePrice(p *models.Product, sel models.Selection) int64 {
	price := p.Price
	for i := range p.Axes {
		axis := &p.Axes[i]
		optionID, ok := sel[axis.ID]
		if !ok {
			continue
		}
		if opt := findOption(axis, optionID); opt != nil {
			price += opt.PriceAdjustment
		}
	}
	return price
}

// CheckAvailability validates a requested quantity against the resolved
// ceiling, counting quantity already reserved elsewhere for the same
// product and selection.
//
// The check is not authoritative: it is not atomic with any stock decrement,
// so callers must re-validate when committing an order.
func CheckAvailability(p *models.Product, sel models.Selection, requestedQty, reservedQty int) (AvailabilityResult, error) {
	if requestedQty <= 0 {
		return AvailabilityResult{}, fmt.Errorf("%w: got %d", ErrInvalidQuantity, requestedQty)
	}
	if reservedQty < 0 {
		return AvailabilityResult{}, fmt.Errorf("%w: got %d", ErrInvalidReserved, reservedQty)
	}

	ceiling := ResolveStock(p, sel)
	if ceiling.Unlimited {
		return AvailabilityResult{Available: true}, nil
	}

	if reservedQty+requestedQty <= ceiling.Limit {
		remaining := ceiling.Limit - reservedQty
		return AvailabilityResult{Available: true, Remaining: remaining}, nil
	}

	remaining := ceiling.Limit - reservedQty
	if remaining < 0 {
		remaining = 0
	}

	var msg string
	if remaining == 0 {
		msg = "この商品は在庫切れです。"
	} else {
		msg = fmt.Sprintf("残り%d点までご購入いただけます。", remaining)
	}

	return AvailabilityResult{Available: false, Remaining: remaining, Message: msg}, nil
}

// UncoveredConstrainedAxes lists the names of axes that carry a stock
// constraint but have no selected option. Such axes are silently skipped by
// ResolveStock; callers may want to log or reject those selections.
func UncoveredConstrainedAxes(p *models.Product, sel models.Selection) []string {
	var names []string
	for i := range p.Axes {
		axis := &p.Axes[i]
		if _, ok := sel[axis.ID]; ok {
			continue
		}
		if axis.StockMode == models.StockModeNone {
			continue
		}
		if axis.SharedPool == nil && !anyOptionConstrained(axis) {
			continue
		}
		names = append(names, axis.Name)
	}
	return names
}

func findOption(axis *models.VariationAxis, optionID int64) *models.Option {
	for i := range axis.Options {
		if axis.Options[i].ID == optionID {
			return &axis.Options[i]
		}
	}
	return nil
}

func anyOptionConstrained(axis *models.VariationAxis) bool {
	for i := range axis.Options {
		if axis.Options[i].StockCount != nil {
			return true
		}
	}
	return false
}
