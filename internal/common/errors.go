// Package common defines shared constants and sentinel errors used across
// the storefront client layers. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Session lifecycle. Fatal to the current flow: the refresh token was
	// rejected or absent, all credentials have been cleared and the user
	// must sign in again.
	ErrAuthExpired = errors.New("session expired")

	// Transport-level failure (network error or 5xx). The same action can
	// be retried by the user.
	ErrRemoteUnavailable = errors.New("service unavailable")

	// No source produced a usable order line. The user restarts the order
	// flow; prior state is intact.
	ErrDataIncomplete = errors.New("no order data")

	// A bulk mutation stopped partway. Already-applied deletions stand;
	// the cart must be reloaded from the server to reconcile.
	ErrPartialMutation = errors.New("bulk operation partially applied")
)

// ValidationError reports a single rejected input field with a
// user-facing message. Recoverable: the user corrects the field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}
