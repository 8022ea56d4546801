package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/jadupage/storefront/internal/client/api"
	"github.com/jadupage/storefront/internal/client/credentials"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/storage"
	"github.com/jadupage/storefront/internal/common"
	"github.com/jadupage/storefront/internal/logging"
)

// CheckoutState is the phase of a single checkout attempt.
type CheckoutState int

const (
	StateIdle CheckoutState = iota
	StateValidating
	StateSubmitting
	StateClearing
	StateDone
	StateFailed
)

func (s CheckoutState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateClearing:
		return "clearing"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CheckoutInput is what one checkout attempt starts from. Shipping is
// built fresh per attempt and never persisted.
type CheckoutInput struct {
	Shipping models.ShippingInfo
	Agreed   bool
}

// fieldMessages maps ShippingInfo validation namespaces to user-facing
// messages. Validation reports the first failing field in struct
// declaration order, which encodes the form's fixed check order.
var fieldMessages = map[string]string{
	"ShippingInfo.Buyer.Name":       "Enter the buyer's name.",
	"ShippingInfo.Buyer.Phone":      "Enter the buyer's phone number.",
	"ShippingInfo.Buyer.Email":      "Enter the buyer's email.",
	"ShippingInfo.Receiver.Name":    "Enter the receiver's name.",
	"ShippingInfo.Receiver.Phone":   "Enter the receiver's phone number.",
	"ShippingInfo.Address.Postcode": "Look up the postcode.",
	"ShippingInfo.Address.Line1":    "Enter the address.",
	"ShippingInfo.Address.Line2":    "Enter the detailed address.",
}

// Checkout runs the order submission state machine:
//
//	Idle -> Validating -> Submitting -> Clearing -> Done
//
// with Failed reachable from Validating and Submitting. Items are
// resolved once per attempt. Any failure before Done leaves prior state
// untouched; once the order posts, a failed cleanup is logged but the
// outcome stays "order placed".
type Checkout struct {
	resolver   OrderResolver
	client     api.Client
	creds      *credentials.Store
	ephemeral  storage.Repository
	persistent storage.Repository
	log        logging.Logger
	validate   *validator.Validate

	mu    sync.RWMutex
	state CheckoutState
}

func NewCheckout(resolver OrderResolver, client api.Client, creds *credentials.Store, ephemeral, persistent storage.Repository, log logging.Logger) *Checkout {
	return &Checkout{
		resolver:   resolver,
		client:     client,
		creds:      creds,
		ephemeral:  ephemeral,
		persistent: persistent,
		log:        log,
		validate:   validator.New(),
		state:      StateIdle,
	}
}

// State returns the current phase, for the UI layer.
func (c *Checkout) State() CheckoutState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Checkout) setState(s CheckoutState) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

// Run executes one checkout attempt and returns the submission that was
// placed.
func (c *Checkout) Run(ctx context.Context, in CheckoutInput) (*models.OrderSubmission, error) {
	c.setState(StateValidating)

	in.Shipping.Normalize()
	if err := c.validateInput(in); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	items, err := c.resolver.Resolve(ctx)
	if err != nil {
		c.setState(StateFailed)
		return nil, err
	}
	if len(items) == 0 {
		c.setState(StateFailed)
		return nil, common.ErrDataIncomplete
	}

	if c.creds.AccessToken() == "" {
		c.setState(StateFailed)
		return nil, fmt.Errorf("sign in to place an order: %w", common.ErrAuthExpired)
	}

	sub := buildSubmission(items, in.Shipping)

	c.setState(StateSubmitting)
	if err := c.client.SubmitOrder(ctx, *sub); err != nil {
		c.setState(StateFailed)
		return nil, err
	}

	// The order exists server-side from here on. Cleanup failures are
	// logged, never surfaced as a checkout failure.
	c.setState(StateClearing)
	if err := c.client.ClearCart(ctx); err != nil {
		c.log.Error(ctx, "clearing remote cart after order", "err", err)
	}
	c.purgeOrderData(ctx)

	c.setState(StateDone)
	return sub, nil
}

// validateInput enforces the required shipping fields in fixed order,
// then the agreement flag.
func (c *Checkout) validateInput(in CheckoutInput) error {
	if err := c.validate.Struct(in.Shipping); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			first := verrs[0]
			msg, ok := fieldMessages[first.Namespace()]
			if !ok {
				msg = fmt.Sprintf("Enter %s.", first.Field())
			}
			return &common.ValidationError{Field: first.Namespace(), Message: msg}
		}
		return err
	}

	if !in.Agreed {
		return &common.ValidationError{Field: "agree", Message: "Check the order agreement."}
	}
	return nil
}

// buildSubmission computes the totals over the resolved items. Discount
// and shipping stay zero; product shipping fees are deliberately not
// accumulated, matching the storefront's observed pricing.
func buildSubmission(items []models.OrderItem, shipping models.ShippingInfo) *models.OrderSubmission {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Product.Price * int64(it.Quantity)
	}

	totals := models.OrderTotals{Subtotal: subtotal}
	totals.Total = totals.Subtotal - totals.Discount + totals.Shipping

	return &models.OrderSubmission{Items: items, Shipping: shipping, Totals: totals}
}

// purgeOrderData removes the order-data key from both storages so a
// stale source cannot resurrect a completed order on the next visit.
func (c *Checkout) purgeOrderData(ctx context.Context) {
	if err := c.ephemeral.Delete(ctx, storage.KeyOrderData); err != nil {
		c.log.Error(ctx, "purging ephemeral order data", "err", err)
	}
	if err := c.persistent.Delete(ctx, storage.KeyOrderData); err != nil {
		c.log.Error(ctx, "purging persistent order data", "err", err)
	}
}
