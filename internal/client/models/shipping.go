package models

import "strings"

// ShippingInfo is built fresh per checkout attempt and never persisted.
//
// Field order matters: checkout validation reports the first missing
// field in declaration order (buyer before receiver before address),
// which is the order the storefront form presents them in.
type ShippingInfo struct {
	Buyer     Buyer   `json:"buyer"`
	Receiver  Receiver `json:"receiver"`
	Address   Address `json:"address"`
	Message   string  `json:"message"`
	PayMethod string  `json:"pay_method"`
}

type Buyer struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Email string `json:"email" validate:"required"`
}

type Receiver struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone" validate:"required"`
}

type Address struct {
	Postcode string `json:"postcode" validate:"required"`
	Line1    string `json:"line1" validate:"required"`
	Line2    string `json:"line2" validate:"required"`
	Extra    string `json:"extra"`
}

// Normalize trims surrounding whitespace on every field and defaults the
// payment method, so "   " never passes a required check.
func (s *ShippingInfo) Normalize() {
	s.Buyer.Name = strings.TrimSpace(s.Buyer.Name)
	s.Buyer.Phone = strings.TrimSpace(s.Buyer.Phone)
	s.Buyer.Email = strings.TrimSpace(s.Buyer.Email)
	s.Receiver.Name = strings.TrimSpace(s.Receiver.Name)
	s.Receiver.Phone = strings.TrimSpace(s.Receiver.Phone)
	s.Address.Postcode = strings.TrimSpace(s.Address.Postcode)
	s.Address.Line1 = strings.TrimSpace(s.Address.Line1)
	s.Address.Line2 = strings.TrimSpace(s.Address.Line2)
	s.Address.Extra = strings.TrimSpace(s.Address.Extra)
	s.Message = strings.TrimSpace(s.Message)
	s.PayMethod = strings.TrimSpace(s.PayMethod)
	if s.PayMethod == "" {
		s.PayMethod = "card"
	}
}
