// Package storage provides the client's key-value stores. Two lifetimes
// exist side by side: a sqlite-backed repository that survives restarts
// (the cross-session store) and an in-memory repository that lives for a
// single run (the single-navigation store).
package storage

import "context"

// Well-known keys.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
	KeyOrderData    = "order_data"
)

// Repository is a flat key-value store. Get returns (nil, nil) for a
// missing key so callers can treat absence as "no data" without error
// plumbing.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error

	// SetMany writes all pairs atomically: either every key is updated
	// or none is.
	SetMany(ctx context.Context, values map[string][]byte) error

	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
