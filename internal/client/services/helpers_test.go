package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/jadupage/storefront/internal/client/credentials"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/storage"
	"github.com/jadupage/storefront/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeClient implements api.Client for service tests. Behavior is
// configured through fields; calls are recorded for assertions.
type fakeClient struct {
	CartRet   []models.CartEntry
	CartErr   error
	CartCalls int

	UpdateErr   error
	UpdateCalls []quantityUpdate

	RemoveErrs  map[int64]error
	RemoveCalls []int64

	ClearErr   error
	ClearCalls int

	Products    map[int64]*models.Product
	ProductErr  error
	ProductReqs []int64

	SearchRet []models.Product
	SearchErr error

	SubmitErr error
	Submitted []models.OrderSubmission
}

type quantityUpdate struct {
	ID       int64
	Quantity int
}

func (f *fakeClient) SignIn(ctx context.Context, username, password string) (*models.User, error) {
	return nil, nil
}

func (f *fakeClient) Cart(ctx context.Context) ([]models.CartEntry, error) {
	f.CartCalls++
	return f.CartRet, f.CartErr
}

func (f *fakeClient) UpdateCartQuantity(ctx context.Context, id int64, quantity int) error {
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	f.UpdateCalls = append(f.UpdateCalls, quantityUpdate{ID: id, Quantity: quantity})
	return nil
}

func (f *fakeClient) RemoveCartItem(ctx context.Context, id int64) error {
	if err := f.RemoveErrs[id]; err != nil {
		return err
	}
	f.RemoveCalls = append(f.RemoveCalls, id)
	return nil
}

func (f *fakeClient) ClearCart(ctx context.Context) error {
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.ClearCalls++
	return nil
}

func (f *fakeClient) Product(ctx context.Context, id int64) (*models.Product, error) {
	f.ProductReqs = append(f.ProductReqs, id)
	if f.ProductErr != nil {
		return nil, f.ProductErr
	}
	p, ok := f.Products[id]
	if !ok {
		return nil, fmt.Errorf("product %d not configured", id)
	}
	return p, nil
}

func (f *fakeClient) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	return f.SearchRet, f.SearchErr
}

func (f *fakeClient) SubmitOrder(ctx context.Context, sub models.OrderSubmission) error {
	if f.SubmitErr != nil {
		return f.SubmitErr
	}
	f.Submitted = append(f.Submitted, sub)
	return nil
}

func testLogger() logging.Logger {
	return logging.NewDefault()
}

// newCreds returns a credential store over an in-memory repository,
// optionally holding a live session.
func newCreds(t *testing.T, signedIn bool) *credentials.Store {
	t.Helper()
	creds, err := credentials.Open(context.Background(), storage.NewMemoryRepository())
	require.NoError(t, err)
	if signedIn {
		require.NoError(t, creds.SetSession(context.Background(), "access-token", "refresh-token", nil))
	}
	return creds
}
