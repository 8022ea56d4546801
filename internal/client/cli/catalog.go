package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/jadupage/storefront/internal/client/services"
)

func (a *App) search(ctx context.Context, query string) {
	products, err := a.client.SearchProducts(ctx, query)
	if err != nil {
		fmt.Fprintf(a.out, "Search failed: %v\n", err)
		return
	}
	if len(products) == 0 {
		fmt.Fprintln(a.out, "No products found.")
		return
	}
	for _, p := range products {
		fmt.Fprintf(a.out, "#%d %s — %d (%s)\n", p.ID, p.Name, p.Price, p.Brand())
	}
}

func (a *App) product(ctx context.Context, args []string) {
	id, ok := parseID(a.out, args, "Usage: product <id>")
	if !ok {
		return
	}
	p, err := a.client.Product(ctx, id)
	if err != nil {
		fmt.Fprintf(a.out, "Could not load the product: %v\n", err)
		return
	}
	fmt.Fprintf(a.out, "#%d %s\n", p.ID, p.Name)
	fmt.Fprintf(a.out, "  brand: %s\n", p.Brand())
	fmt.Fprintf(a.out, "  price: %d\n", p.Price)
	fmt.Fprintf(a.out, "  shipping: %s (%d)\n", p.ShippingMethod, p.ShippingFee)
}

// buyNow stashes a direct purchase so the next 'order' picks it up ahead
// of persisted or remote cart data.
func (a *App) buyNow(ctx context.Context, args []string) {
	id, ok := parseID(a.out, args, "Usage: buy <product-id> [quantity]")
	if !ok {
		return
	}

	quantity := 1
	if len(args) > 1 {
		q, err := strconv.Atoi(args[1])
		if err != nil {
			fmt.Fprintln(a.out, "Usage: buy <product-id> [quantity]")
			return
		}
		quantity = q
	}

	if err := services.StashBuyNow(ctx, a.ephemeral, id, quantity); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	fmt.Fprintln(a.out, "Saved. Run 'order' to check out.")
}
