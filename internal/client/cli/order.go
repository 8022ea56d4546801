package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/services"
	"github.com/jadupage/storefront/internal/common"
)

// order runs the checkout flow: shipping prompts, agreement, submission.
func (a *App) order(ctx context.Context) {
	shipping, err := a.promptShipping()
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	agreed, err := GetYesNo(a.reader, "Agree to place the order?", a.out)
	if err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}

	sub, err := a.checkout.Run(ctx, services.CheckoutInput{Shipping: *shipping, Agreed: agreed})
	if err != nil {
		a.reportCheckoutError(err)
		return
	}

	fmt.Fprintf(a.out, "Order placed: %d item(s), total %d\n", len(sub.Items), sub.Totals.Total)
}

func (a *App) promptShipping() (*models.ShippingInfo, error) {
	s := &models.ShippingInfo{}

	fields := []struct {
		prompt string
		target *string
	}{
		{"Buyer name", &s.Buyer.Name},
		{"Buyer phone", &s.Buyer.Phone},
		{"Buyer email", &s.Buyer.Email},
		{"Receiver name", &s.Receiver.Name},
		{"Receiver phone", &s.Receiver.Phone},
		{"Postcode", &s.Address.Postcode},
		{"Address", &s.Address.Line1},
		{"Detailed address", &s.Address.Line2},
		{"Address note (optional)", &s.Address.Extra},
		{"Delivery message (optional)", &s.Message},
		{"Payment method [card]", &s.PayMethod},
	}

	for _, f := range fields {
		value, err := GetSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return nil, err
		}
		*f.target = value
	}
	return s, nil
}

func (a *App) reportCheckoutError(err error) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		fmt.Fprintln(a.out, verr.Message)
	case errors.Is(err, common.ErrDataIncomplete):
		fmt.Fprintln(a.out, "No order data found. Please order again.")
	case errors.Is(err, common.ErrAuthExpired):
		fmt.Fprintln(a.out, "Please log in and try again.")
	case errors.Is(err, common.ErrRemoteUnavailable):
		fmt.Fprintln(a.out, "Payment could not be processed. Please try again.")
	default:
		fmt.Fprintf(a.out, "Payment could not be processed: %v\n", err)
	}
}
