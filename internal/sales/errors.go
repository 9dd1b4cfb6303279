package sales

import "errors"

var (
	// ErrNotFound indicates the referenced order, sale or payment is absent.
	ErrNotFound = errors.New("sales: record not found")
	// ErrInvalidItem indicates a line item with a negative quantity or price.
	ErrInvalidItem = errors.New("sales: invalid line item")
	// ErrInvalidPayment indicates a payment with a non-positive amount.
	ErrInvalidPayment = errors.New("sales: invalid payment")
	// ErrOverpayment indicates a payment that would push the amount paid past
	// the sale total.
	ErrOverpayment = errors.New("sales: payment exceeds amount owed")
	// ErrAlreadyLinked indicates the order already has a sale attached.
	ErrAlreadyLinked = errors.New("sales: order already has a sale")
	// ErrDuplicateNumber indicates the sale number is already taken.
	ErrDuplicateNumber = errors.New("sales: sale number already exists")
	// ErrPartialLink indicates the order-sale link sequence failed after the
	// sale write. The enclosing transaction rolls both writes back; callers
	// should treat this as fatal and alert rather than retry, since a retry
	// can double-create sales.
	ErrPartialLink = errors.New("sales: order-sale link failed mid-sequence")
)
