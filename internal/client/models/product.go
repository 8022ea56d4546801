// Package models defines the client-side data model: products, cart
// entries, canonical order items and shipping details.
package models

// Seller is the merchant record embedded in a product.
type Seller struct {
	StoreName string `json:"store_name"`
}

// Product is the catalog record as served by GET /products/{id}.
// Price and ShippingFee are integer amounts in the minor currency unit.
type Product struct {
	ID             int64   `json:"id"`
	Name           string  `json:"name"`
	Info           string  `json:"info"`
	Price          int64   `json:"price"`
	Image          string  `json:"image"`
	ShippingMethod string  `json:"shipping_method"`
	ShippingFee    int64   `json:"shipping_fee"`
	Stock          int64   `json:"stock"`
	Seller         *Seller `json:"seller,omitempty"`
}

// Brand returns the display brand line: the product info text, falling
// back to the seller's store name.
func (p *Product) Brand() string {
	if p.Info != "" {
		return p.Info
	}
	if p.Seller != nil {
		return p.Seller.StoreName
	}
	return ""
}
