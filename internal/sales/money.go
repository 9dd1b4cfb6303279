package sales

import "fmt"

// LineItemsTotal sums quantity x unit price over items. Negative quantities or
// prices fail with ErrInvalidItem.
func LineItemsTotal(items []LineItem) (float64, error) {
	var total float64
	for _, item := range items {
		if item.Quantity < 0 || item.UnitPrice < 0 {
			return 0, fmt.Errorf("%w: %q quantity=%v unit_price=%v", ErrInvalidItem, item.Description, item.Quantity, item.UnitPrice)
		}
		total += item.Quantity * item.UnitPrice
	}
	return total, nil
}

// PaymentsTotal sums payment amounts. A zero or negative amount fails with
// ErrInvalidPayment.
func PaymentsTotal(payments []Payment) (float64, error) {
	var total float64
	for _, p := range payments {
		if p.Amount <= 0 {
			return 0, fmt.Errorf("%w: amount=%v", ErrInvalidPayment, p.Amount)
		}
		total += p.Amount
	}
	return total, nil
}
