package ledger

import (
	"math"

	"catatkas/backend/internal/apperr"
	"catatkas/backend/internal/domain"
)

func addInt(a, b int) (int, bool) {
	if (b > 0 && a > math.MaxInt-b) || (b < 0 && a < math.MinInt-b) {
		return 0, false
	}
	return a + b, true
}

func addAmount(a, b int64) (int64, bool) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, false
	}
	return a + b, true
}

// lineAmount multiplies a non-negative quantity by a non-negative price.
func lineAmount(quantity int, price int64) (int64, bool) {
	if quantity == 0 || price == 0 {
		return 0, true
	}
	q := int64(quantity)
	if price > math.MaxInt64/q {
		return 0, false
	}
	return q * price, true
}

// ItemsTotal sums quantity × unit price over items. Quantities below 1,
// negative prices and totals that do not fit in int64 are validation errors.
func ItemsTotal(items []domain.TransactionItem) (int64, error) {
	var total int64
	for _, item := range items {
		if item.Quantity < 1 {
			return 0, apperr.Validation("quantity for product %q must be at least 1", item.ProductID)
		}
		if item.UnitPrice < 0 {
			return 0, apperr.Validation("unit price for product %q must not be negative", item.ProductID)
		}
		subtotal, ok := lineAmount(item.Quantity, item.UnitPrice)
		if !ok {
			return 0, apperr.Validation("amount for product %q is too large", item.ProductID)
		}
		if total, ok = addAmount(total, subtotal); !ok {
			return 0, apperr.Validation("sale total is too large")
		}
	}
	return total, nil
}

// PaymentsTotal sums payment amounts, each of which must be positive.
func PaymentsTotal(payments []domain.Payment) (int64, error) {
	var paid int64
	for i, p := range payments {
		if p.Amount <= 0 {
			return 0, apperr.Validation("payment %d must be greater than zero", i)
		}
		var ok bool
		if paid, ok = addAmount(paid, p.Amount); !ok {
			return 0, apperr.Validation("payments total is too large")
		}
	}
	return paid, nil
}
