package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/storage"
)

// StashBuyNow records a direct-purchase hand-off in the given store, in
// the wrapped order-data shape the resolver consumes first. The product
// detail flow writes it to the ephemeral store so the very next checkout
// picks it up ahead of any persisted or remote cart data.
func StashBuyNow(ctx context.Context, repo storage.Repository, productID int64, quantity int) error {
	if quantity < models.MinQuantity || quantity > models.MaxQuantity {
		return models.ErrQuantityOutOfRange
	}

	payload, err := json.Marshal(map[string]any{
		"items": []map[string]any{
			{"product_id": productID, "quantity": quantity},
		},
	})
	if err != nil {
		return fmt.Errorf("encoding order data: %w", err)
	}
	return repo.Set(ctx, storage.KeyOrderData, payload)
}
