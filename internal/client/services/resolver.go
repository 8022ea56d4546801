// Package services contains the application services of the storefront
// client: order-source resolution, cart state, and checkout.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jadupage/storefront/internal/client/api"
	"github.com/jadupage/storefront/internal/client/credentials"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/storage"
	"github.com/jadupage/storefront/internal/common"
	"github.com/jadupage/storefront/internal/logging"
)

// OrderResolver determines the authoritative item list for checkout.
//
// Candidate sources are consulted in strict priority order and the first
// one holding a non-empty raw list wins outright. Sources are never
// merged, and a winning source that normalizes down to nothing does NOT
// fall through to the next one:
//
//  1. ephemeral storage (this run's buy-now hand-off);
//  2. persistent storage (a previous session's order data);
//  3. the remote cart, when a session token is held.
type OrderResolver interface {
	Resolve(ctx context.Context) ([]models.OrderItem, error)
}

type orderResolver struct {
	client     api.Client
	ephemeral  storage.Repository
	persistent storage.Repository
	creds      *credentials.Store
	log        logging.Logger
}

func NewOrderResolver(client api.Client, ephemeral, persistent storage.Repository, creds *credentials.Store, log logging.Logger) OrderResolver {
	return &orderResolver{
		client:     client,
		ephemeral:  ephemeral,
		persistent: persistent,
		creds:      creds,
		log:        log,
	}
}

// rawOrderItem accepts the heterogeneous shapes order data arrives in.
// ID and quantity fields are typed loosely and resolved through the
// precedence tables below; nothing of the raw shape leaves this package.
type rawOrderItem struct {
	ProductID      any             `json:"product_id"`
	ProductIDCamel any             `json:"productId"`
	ID             any             `json:"id"`
	Quantity       any             `json:"quantity"`
	Qty            any             `json:"qty"`
	Product        *models.Product `json:"product"`
}

func (r *orderResolver) Resolve(ctx context.Context) ([]models.OrderItem, error) {
	for _, repo := range []storage.Repository{r.ephemeral, r.persistent} {
		raw, err := repo.Get(ctx, storage.KeyOrderData)
		if err != nil {
			return nil, err
		}
		candidates := parseOrderData(raw)
		if len(candidates) > 0 {
			return r.normalize(ctx, candidates)
		}
	}

	// Fallback: the remote cart. Failures here are not fatal; the
	// checkout layer reports the empty result as missing order data.
	if r.creds.AccessToken() != "" {
		entries, err := r.client.Cart(ctx)
		if err != nil {
			if errors.Is(err, common.ErrAuthExpired) {
				return nil, err
			}
			r.log.Warn(ctx, "cart fallback failed", "err", err)
			return []models.OrderItem{}, nil
		}

		candidates := make([]rawOrderItem, 0, len(entries))
		for _, e := range entries {
			candidates = append(candidates, rawOrderItem{
				Quantity: e.Quantity,
				Product:  e.Product,
			})
		}
		if len(candidates) > 0 {
			return r.normalize(ctx, candidates)
		}
	}

	return []models.OrderItem{}, nil
}

// parseOrderData decodes a stored order-data payload, which is either a
// bare item list or an object with an "items" list. Malformed payloads
// count as empty.
func parseOrderData(raw []byte) []rawOrderItem {
	if len(raw) == 0 {
		return nil
	}

	var list []rawOrderItem
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}

	var wrapped struct {
		Items []rawOrderItem `json:"items"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		return wrapped.Items
	}
	return nil
}

// normalize turns raw candidates into canonical order items. A candidate
// survives only with BOTH a resolved product snapshot and a strictly
// positive quantity; everything else is dropped here so downstream code
// never sees a dangling or non-positive order line.
func (r *orderResolver) normalize(ctx context.Context, candidates []rawOrderItem) ([]models.OrderItem, error) {
	items := make([]models.OrderItem, 0, len(candidates))

	for _, c := range candidates {
		quantity := resolveQuantity(c)
		if quantity <= 0 {
			continue
		}

		pid, ok := resolveProductID(c)
		product := c.Product
		if product == nil {
			if !ok {
				continue
			}
			p, err := r.client.Product(ctx, pid)
			if err != nil {
				if errors.Is(err, common.ErrAuthExpired) {
					return nil, err
				}
				r.log.Warn(ctx, "skipping unresolvable order item", "product_id", pid, "err", err)
				continue
			}
			product = p
		}
		if !ok {
			pid = product.ID
		}

		items = append(items, models.OrderItem{ProductID: pid, Quantity: quantity, Product: product})
	}

	return items, nil
}

// resolveProductID applies the id precedence table:
// product_id, productId, id, then the embedded product's id.
func resolveProductID(c rawOrderItem) (int64, bool) {
	for _, v := range []any{c.ProductID, c.ProductIDCamel, c.ID} {
		if id, ok := coerceID(v); ok {
			return id, true
		}
	}
	if c.Product != nil && c.Product.ID != 0 {
		return c.Product.ID, true
	}
	return 0, false
}

// resolveQuantity applies the quantity precedence table:
// quantity, qty, then the default of 1.
func resolveQuantity(c rawOrderItem) int {
	for _, v := range []any{c.Quantity, c.Qty} {
		if q, ok := coerceInt(v); ok {
			return q
		}
	}
	return 1
}

func coerceID(v any) (int64, bool) {
	switch x := v.(type) {
	case float64:
		return int64(x), true
	case string:
		id, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return 0, false
		}
		return id, true
	case int64:
		return x, true
	case int:
		return int64(x), true
	}
	return 0, false
}

func coerceInt(v any) (int, bool) {
	switch x := v.(type) {
	case float64:
		return int(x), true
	case string:
		n, err := strconv.Atoi(x)
		if err != nil {
			return 0, false
		}
		return n, true
	case int:
		return x, true
	case int64:
		return int(x), true
	}
	return 0, false
}
