package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/jadupage/storefront/internal/common"
)

func (a *App) showCart(ctx context.Context) {
	if err := a.cart.Load(ctx); err != nil {
		fmt.Fprintf(a.out, "Could not load the cart: %v\n", err)
		return
	}
	a.printCart()
}

func (a *App) printCart() {
	items := a.cart.Items()
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Your cart is empty.")
		return
	}

	for _, it := range items {
		mark := " "
		if it.Checked {
			mark = "x"
		}
		fmt.Fprintf(a.out, "[%s] #%d %s — %d x %d (%s)\n", mark, it.ID, it.Name, it.UnitPrice, it.Quantity, it.OptionLabel)
	}

	s := a.cart.Summary()
	fmt.Fprintf(a.out, "Selected: %d item(s), subtotal %d, shipping %d, total %d\n", s.Count, s.Subtotal, s.ShippingFee, s.Total)
}

func (a *App) check(ctx context.Context, args []string, checked bool) {
	id, ok := parseID(a.out, args, "Usage: check|uncheck <id>")
	if !ok {
		return
	}
	if err := a.cart.SetChecked(id, checked); err != nil {
		fmt.Fprintf(a.out, "error: %v\n", err)
		return
	}
	a.printCart()
}

func (a *App) checkAll(ctx context.Context, args []string) {
	checked := len(args) == 0 || args[0] != "off"
	a.cart.SetAllChecked(checked)
	a.printCart()
}

func (a *App) setQuantity(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(a.out, "Usage: qty <id> <quantity>")
		return
	}
	id, ok := parseID(a.out, args[:1], "Usage: qty <id> <quantity>")
	if !ok {
		return
	}
	value, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Fprintln(a.out, "Usage: qty <id> <quantity>")
		return
	}
	if err := a.cart.SetQuantity(ctx, id, value); err != nil {
		fmt.Fprintf(a.out, "Could not update quantity: %v\n", err)
		return
	}
	a.printCart()
}

func (a *App) changeQuantity(ctx context.Context, args []string, delta int) {
	id, ok := parseID(a.out, args, "Usage: inc|dec <id>")
	if !ok {
		return
	}
	if err := a.cart.ChangeQuantity(ctx, id, delta); err != nil {
		fmt.Fprintf(a.out, "Could not update quantity: %v\n", err)
		return
	}
	a.printCart()
}

func (a *App) removeItem(ctx context.Context, args []string) {
	id, ok := parseID(a.out, args, "Usage: rm <id>")
	if !ok {
		return
	}
	if err := a.cart.Remove(ctx, id); err != nil {
		fmt.Fprintf(a.out, "Could not remove the item: %v\n", err)
		return
	}
	a.printCart()
}

func (a *App) removeChecked(ctx context.Context) {
	err := a.cart.RemoveChecked(ctx)
	if errors.Is(err, common.ErrPartialMutation) {
		// Some deletes landed before the failure; reload from the server
		// rather than guessing at the remaining state.
		fmt.Fprintf(a.out, "Some items could not be removed: %v\n", err)
		a.showCart(ctx)
		return
	}
	if err != nil {
		fmt.Fprintf(a.out, "Could not remove the selected items: %v\n", err)
		return
	}
	a.printCart()
}

func parseID(out io.Writer, args []string, usage string) (int64, bool) {
	if len(args) == 0 {
		fmt.Fprintln(out, usage)
		return 0, false
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintln(out, usage)
		return 0, false
	}
	return id, true
}
