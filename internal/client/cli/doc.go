// Package cli implements the interactive storefront REPL.
//
// Commands:
//   - login / logout / whoami
//   - search, product — catalog browsing
//   - cart, check, checkall, qty, inc, dec, rm, rmchecked — cart view and
//     mutation
//   - buy — direct-purchase hand-off for the next order
//   - order — checkout flow (shipping prompts, agreement, submission)
//
// When the session ends irrecoverably (refresh failure), the REPL drops
// back to the signed-out prompt, the CLI analogue of the storefront's
// redirect to the login page.
package cli
