// Package api implements the remote commerce API client. Every
// authenticated call goes through a single request path that attaches the
// bearer token, detects expiry, and runs the bounded refresh-and-retry
// protocol.
package api

import (
	"context"

	"github.com/jadupage/storefront/internal/client/models"
)

// Client is the outbound surface of the commerce API.
type Client interface {
	// SignIn authenticates and persists the issued session.
	SignIn(ctx context.Context, username, password string) (*models.User, error)

	// Cart returns the server cart entries.
	Cart(ctx context.Context) ([]models.CartEntry, error)

	// UpdateCartQuantity sends the new absolute quantity for one entry.
	UpdateCartQuantity(ctx context.Context, id int64, quantity int) error

	// RemoveCartItem deletes one cart entry.
	RemoveCartItem(ctx context.Context, id int64) error

	// ClearCart deletes every cart entry.
	ClearCart(ctx context.Context) error

	// Product fetches one catalog record.
	Product(ctx context.Context, id int64) (*models.Product, error)

	// SearchProducts lists catalog records matching query (all when empty).
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)

	// SubmitOrder posts a checkout submission.
	SubmitOrder(ctx context.Context, sub models.OrderSubmission) error
}
