package models

import "errors"

// Cart quantity bounds. Mutations outside this range are rejected locally,
// before any request reaches the server.
const (
	MinQuantity = 1
	MaxQuantity = 99
)

var ErrQuantityOutOfRange = errors.New("quantity must be between 1 and 99")

// CartEntry is the server-shaped cart row returned by GET /cart.
type CartEntry struct {
	ID       int64    `json:"id"`
	Quantity int      `json:"quantity"`
	Product  *Product `json:"product"`
}

// CartItem is the client-side cart view row. UnitPrice is an integer
// amount in the minor currency unit.
type CartItem struct {
	ID          int64
	ProductID   int64
	Name        string
	Category    string
	UnitPrice   int64
	Image       string
	OptionLabel string
	Quantity    int
	Checked     bool
}

// CartItemFromEntry maps a server cart row into the display model.
// Items arrive checked, matching the storefront's select-all default.
func CartItemFromEntry(e CartEntry) CartItem {
	item := CartItem{
		ID:       e.ID,
		Quantity: e.Quantity,
		Checked:  true,
	}
	if p := e.Product; p != nil {
		item.ProductID = p.ID
		item.Name = p.Name
		item.UnitPrice = p.Price
		item.Image = p.Image
		item.Category = p.Brand()
		item.OptionLabel = optionLabel(p)
	}
	return item
}

func optionLabel(p *Product) string {
	method := "Direct delivery"
	if p.ShippingMethod == "PARCEL" {
		method = "Parcel delivery"
	}
	fee := "Paid shipping"
	if p.ShippingFee == 0 {
		fee = "Free shipping"
	}
	return method + " / " + fee
}

// CartSummary aggregates the checked subset of the cart. Count is the
// summed quantity over checked items; ShippingFee stays zero (the
// storefront does not charge shipping at cart level).
type CartSummary struct {
	Count       int
	Subtotal    int64
	ShippingFee int64
	Total       int64
}
