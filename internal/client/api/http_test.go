package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jadupage/storefront/internal/client/credentials"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/client/storage"
	"github.com/jadupage/storefront/internal/common"
	"github.com/jadupage/storefront/internal/logging"
	"github.com/stretchr/testify/require"
)

func newTestCreds(t *testing.T) *credentials.Store {
	t.Helper()
	creds, err := credentials.Open(context.Background(), storage.NewMemoryRepository())
	require.NoError(t, err)
	return creds
}

func signIn(t *testing.T, creds *credentials.Store, access, refresh string) {
	t.Helper()
	require.NoError(t, creds.SetSession(context.Background(), access, refresh, nil))
}

func newClient(t *testing.T, url string, creds *credentials.Store) *HTTPClient {
	t.Helper()
	return NewHTTPClient(url, creds, logging.NewDefault())
}

func writeJSON(t *testing.T, w http.ResponseWriter, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestBearerTokenAttached(t *testing.T) {
	var gotAuth string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		writeJSON(t, w, map[string]any{"results": []any{}})
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")

	_, err := newClient(t, ts.URL, creds).Cart(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer tok-1", gotAuth)
}

func TestNoAuthorizationHeaderWhenSignedOut(t *testing.T) {
	var sawHeader bool
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawHeader = r.Header["Authorization"]
		writeJSON(t, w, models.Product{ID: 5})
	}))
	defer ts.Close()

	_, err := newClient(t, ts.URL, newTestCreds(t)).Product(context.Background(), 5)
	require.NoError(t, err)
	require.False(t, sawHeader)
}

func TestRefreshAndRetryOnce(t *testing.T) {
	var refreshCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/token/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			require.Empty(t, r.Header.Get("Authorization"))

			var body struct {
				Refresh string `json:"refresh"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Equal(t, "ref-1", body.Refresh)

			writeJSON(t, w, map[string]string{"access": "tok-2"})
		case "/cart":
			if r.Header.Get("Authorization") != "Bearer tok-2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(t, w, map[string]any{"results": []models.CartEntry{{ID: 1, Quantity: 2}}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")

	entries, err := newClient(t, ts.URL, creds).Cart(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	require.Equal(t, "tok-2", creds.AccessToken())
}

func TestRetriedResponseReturnedVerbatim(t *testing.T) {
	var refreshCalls, cartCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/token/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			writeJSON(t, w, map[string]string{"access": "tok-2"})
		case "/cart":
			// Still 401 even with the fresh token.
			atomic.AddInt32(&cartCalls, 1)
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")

	_, err := newClient(t, ts.URL, creds).Cart(context.Background())
	require.Error(t, err)

	// Exactly one refresh-and-retry cycle: two cart attempts, one
	// refresh, and the second 401 surfaces without ending the session.
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
	require.Equal(t, int32(2), atomic.LoadInt32(&cartCalls))
	require.NotErrorIs(t, err, common.ErrAuthExpired)
	require.Equal(t, "tok-2", creds.AccessToken())
}

func TestRefreshFailureEndsSession(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/token/refresh":
			w.WriteHeader(http.StatusUnauthorized)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")

	var ended bool
	client := newClient(t, ts.URL, creds)
	client.OnSessionEnded(func() { ended = true })

	_, err := client.Cart(context.Background())
	require.ErrorIs(t, err, common.ErrAuthExpired)
	require.True(t, ended)

	// All credential keys are gone.
	require.Empty(t, creds.AccessToken())
	require.Empty(t, creds.RefreshToken())
	require.Nil(t, creds.User())
}

func TestNoStaleAuthorizationAfterSessionEnd(t *testing.T) {
	var headers []string
	var mu sync.Mutex
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/accounts/token/refresh" {
			mu.Lock()
			headers = append(headers, r.Header.Get("Authorization"))
			mu.Unlock()
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")
	client := newClient(t, ts.URL, creds)

	_, err := client.Cart(context.Background())
	require.ErrorIs(t, err, common.ErrAuthExpired)

	// A later request must not carry the old token.
	_, err = client.Cart(context.Background())
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"Bearer tok-1", ""}, headers)
}

func TestMissingRefreshTokenEndsSessionWithoutRefreshCall(t *testing.T) {
	var refreshCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/accounts/token/refresh" {
			atomic.AddInt32(&refreshCalls, 1)
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	require.NoError(t, creds.SetSession(context.Background(), "tok-1", "", nil))

	_, err := newClient(t, ts.URL, creds).Cart(context.Background())
	require.ErrorIs(t, err, common.ErrAuthExpired)
	require.Zero(t, atomic.LoadInt32(&refreshCalls))
}

func TestConcurrentRefreshIsCoalesced(t *testing.T) {
	const workers = 8

	var refreshCalls, unauthorized int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/token/refresh":
			atomic.AddInt32(&refreshCalls, 1)
			// Hold the refresh until every worker has seen its 401, so
			// all of them join this flight.
			for atomic.LoadInt32(&unauthorized) < workers {
				time.Sleep(time.Millisecond)
			}
			time.Sleep(50 * time.Millisecond)
			writeJSON(t, w, map[string]string{"access": "tok-2"})
		case "/cart":
			if r.Header.Get("Authorization") != "Bearer tok-2" {
				atomic.AddInt32(&unauthorized, 1)
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(t, w, map[string]any{"results": []any{}})
		}
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")
	client := newClient(t, ts.URL, creds)

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = client.Cart(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "worker %d", i)
	}
	require.Equal(t, int32(1), atomic.LoadInt32(&refreshCalls))
}

func TestSignInPersistsSessionAndSkipsRefresh(t *testing.T) {
	var refreshCalls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/accounts/signin":
			var body struct {
				Username string `json:"username"`
				Password string `json:"password"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body.Password != "hunter2" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(t, w, map[string]any{
				"access":  "tok-1",
				"refresh": "ref-1",
				"user":    models.User{ID: 7, Username: body.Username},
			})
		case "/accounts/token/refresh":
			atomic.AddInt32(&refreshCalls, 1)
		}
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	client := newClient(t, ts.URL, creds)

	// Wrong password: a plain failure, never a refresh attempt.
	_, err := client.SignIn(context.Background(), "kim", "wrong")
	require.Error(t, err)
	require.Zero(t, atomic.LoadInt32(&refreshCalls))

	user, err := client.SignIn(context.Background(), "kim", "hunter2")
	require.NoError(t, err)
	require.Equal(t, "kim", user.Username)
	require.Equal(t, "tok-1", creds.AccessToken())
	require.Equal(t, "ref-1", creds.RefreshToken())
}

func TestStatusMapping(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/products/404":
			w.WriteHeader(http.StatusNotFound)
		case "/products/500":
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer ts.Close()

	client := newClient(t, ts.URL, newTestCreds(t))

	_, err := client.Product(context.Background(), 404)
	require.ErrorIs(t, err, common.ErrNotFound)

	_, err = client.Product(context.Background(), 500)
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
}

func TestNetworkErrorMapsToRemoteUnavailable(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close()

	_, err := newClient(t, ts.URL, newTestCreds(t)).Cart(context.Background())
	require.ErrorIs(t, err, common.ErrRemoteUnavailable)
}

func TestSubmitOrderPayload(t *testing.T) {
	var gotKey string
	var gotBody models.OrderSubmission
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/order", r.URL.Path)
		gotKey = r.Header.Get("Idempotency-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.WriteHeader(http.StatusCreated)
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")

	sub := models.OrderSubmission{
		Items:  []models.OrderItem{{ProductID: 5, Quantity: 2, Product: &models.Product{ID: 5, Price: 1000}}},
		Totals: models.OrderTotals{Subtotal: 2000, Total: 2000},
	}
	require.NoError(t, newClient(t, ts.URL, creds).SubmitOrder(context.Background(), sub))

	require.NotEmpty(t, gotKey)
	require.Len(t, gotBody.Items, 1)
	require.Equal(t, int64(2000), gotBody.Totals.Total)
}

func TestCartMutationRequests(t *testing.T) {
	type call struct {
		method string
		path   string
		body   string
	}
	var calls []call
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body string
		if r.Body != nil {
			var buf [64]byte
			n, _ := r.Body.Read(buf[:])
			body = string(buf[:n])
		}
		calls = append(calls, call{method: r.Method, path: r.URL.Path, body: body})
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "{}")
	}))
	defer ts.Close()

	creds := newTestCreds(t)
	signIn(t, creds, "tok-1", "ref-1")
	client := newClient(t, ts.URL, creds)

	ctx := context.Background()
	require.NoError(t, client.UpdateCartQuantity(ctx, 3, 7))
	require.NoError(t, client.RemoveCartItem(ctx, 3))
	require.NoError(t, client.ClearCart(ctx))

	require.Equal(t, http.MethodPut, calls[0].method)
	require.Equal(t, "/cart/3", calls[0].path)
	require.JSONEq(t, `{"quantity":7}`, calls[0].body)
	require.Equal(t, http.MethodDelete, calls[1].method)
	require.Equal(t, "/cart/3", calls[1].path)
	require.Equal(t, http.MethodDelete, calls[2].method)
	require.Equal(t, "/cart", calls[2].path)
}
