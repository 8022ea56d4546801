package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
)

func (a *App) Root(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to the storefront CLI (type 'help' for commands)")
	scanner := bufio.NewScanner(os.Stdin)

	for {
		if a.sessionEnded.Swap(false) {
			fmt.Fprintln(a.out, "Session expired. Please log in again.")
		}

		fmt.Fprintf(a.out, "store %s> ", a.sessionLabel())
		if !scanner.Scan() {
			break
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(a.out, "Available commands: search, product, cart, check, checkall, qty, inc, dec, rm, rmchecked, buy, order, whoami, logout, exit")
			} else {
				fmt.Fprintln(a.out, "Available commands: login, search, product, buy, order, exit")
			}
		case "login":
			a.Login(ctx)
		case "logout":
			a.Logout(ctx)
		case "whoami":
			a.whoami()
		case "search":
			a.search(ctx, strings.Join(args, " "))
		case "product":
			a.product(ctx, args)
		case "cart":
			a.showCart(ctx)
		case "check":
			a.check(ctx, args, true)
		case "uncheck":
			a.check(ctx, args, false)
		case "checkall":
			a.checkAll(ctx, args)
		case "qty":
			a.setQuantity(ctx, args)
		case "inc":
			a.changeQuantity(ctx, args, 1)
		case "dec":
			a.changeQuantity(ctx, args, -1)
		case "rm":
			a.removeItem(ctx, args)
		case "rmchecked":
			a.removeChecked(ctx)
		case "buy":
			a.buyNow(ctx, args)
		case "order":
			a.order(ctx)
		case "exit", "quit":
			fmt.Fprintln(a.out, "Bye!")
			return
		default:
			fmt.Fprintln(a.out, "Unknown command:", cmd)
		}
	}
}
