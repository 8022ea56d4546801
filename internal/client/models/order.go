package models

// OrderItem is the canonical checkout unit. An OrderItem only exists with
// a resolved product snapshot and a strictly positive quantity; the
// resolver filters out anything else before it reaches this type's users.
type OrderItem struct {
	ProductID int64    `json:"product_id"`
	Quantity  int      `json:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// OrderTotals carries the checkout money breakdown, all non-negative
// integers in the minor currency unit, with
// Total = Subtotal - Discount + Shipping.
type OrderTotals struct {
	Subtotal int64 `json:"subtotal"`
	Discount int64 `json:"discount"`
	Shipping int64 `json:"shipping"`
	Total    int64 `json:"total"`
}

// OrderSubmission is the POST /order payload.
type OrderSubmission struct {
	Items    []OrderItem  `json:"items"`
	Shipping ShippingInfo `json:"shipping"`
	Totals   OrderTotals  `json:"totals"`
}
