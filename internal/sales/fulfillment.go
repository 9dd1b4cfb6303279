package sales

// FulfillmentStatus classifies how far a sale's items satisfy an order's
// requested quantities.
type FulfillmentStatus string

const (
	FulfillmentUnfulfilled FulfillmentStatus = "UNFULFILLED"
	FulfillmentPartial     FulfillmentStatus = "PARTIAL"
	FulfillmentComplete    FulfillmentStatus = "COMPLETE"
)

// EvaluateFulfillment compares an order's requested items against a sale's
// billed items. The result is COMPLETE only when every order item finds a sale
// item referencing the same product with at least the requested quantity.
//
// Matching is by product reference only, never by description. Each order item
// searches the full sale item set independently, so one sale item may satisfy
// several order items referencing the same product. An order with no items is
// vacuously COMPLETE.
func EvaluateFulfillment(orderItems, saleItems []LineItem) FulfillmentStatus {
	for _, requested := range orderItems {
		if !itemSatisfied(requested, saleItems) {
			return FulfillmentPartial
		}
	}
	return FulfillmentComplete
}

func itemSatisfied(requested LineItem, saleItems []LineItem) bool {
	if requested.ProductID == nil {
		return false
	}
	for _, billed := range saleItems {
		if billed.ProductID == nil {
			continue
		}
		if *billed.ProductID == *requested.ProductID && billed.Quantity >= requested.Quantity {
			return true
		}
	}
	return false
}
