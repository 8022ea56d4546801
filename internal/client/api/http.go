package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jadupage/storefront/internal/client/credentials"
	"github.com/jadupage/storefront/internal/client/models"
	"github.com/jadupage/storefront/internal/common"
	"github.com/jadupage/storefront/internal/logging"
	"golang.org/x/sync/singleflight"
)

const refreshPath = "/accounts/token/refresh"

// HTTPClient implements Client over plain HTTP/JSON.
type HTTPClient struct {
	baseURL string
	hc      *http.Client
	creds   *credentials.Store
	log     logging.Logger

	// refreshGroup coalesces concurrent refresh attempts: requests that
	// hit 401 at the same moment share one refresh call and its outcome,
	// so a single-use refresh token is never consumed twice.
	refreshGroup singleflight.Group

	// sessionEnded fires once per irrecoverable refresh failure, after
	// credentials are cleared. The UI layer reacts by returning the user
	// to sign-in.
	sessionEnded func()
}

func NewHTTPClient(baseURL string, creds *credentials.Store, log logging.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL:      baseURL,
		hc:           &http.Client{},
		creds:        creds,
		log:          log,
		sessionEnded: func() {},
	}
}

// OnSessionEnded registers the session-ended side effect. Must be set
// before the client is shared across goroutines.
func (c *HTTPClient) OnSessionEnded(fn func()) {
	if fn != nil {
		c.sessionEnded = fn
	}
}

type response struct {
	status int
	body   []byte
}

// send performs one HTTP round trip. The token is attached as a bearer
// Authorization header when non-empty; payload may be nil.
func (c *HTTPClient) send(ctx context.Context, method, path string, payload []byte, token string, header map[string]string) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRemoteUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", common.ErrRemoteUnavailable, err)
	}
	return &response{status: resp.StatusCode, body: data}, nil
}

// do runs the bounded refresh-and-retry protocol around send:
//
//  1. issue the request with the current access token;
//  2. on 401 (never for the refresh endpoint itself) run one coalesced
//     refresh;
//  3. on refresh success retry the original request exactly once and
//     return that response verbatim, even if it is another 401;
//  4. on refresh failure clear all credentials, fire the session-ended
//     hook and return ErrAuthExpired.
func (c *HTTPClient) do(ctx context.Context, method, path string, payload []byte, header map[string]string) (*response, error) {
	resp, err := c.send(ctx, method, path, payload, c.creds.AccessToken(), header)
	if err != nil {
		return nil, err
	}

	if resp.status != http.StatusUnauthorized || path == refreshPath {
		return resp, nil
	}

	if err := c.refreshAccessToken(ctx); err != nil {
		c.log.Warn(ctx, "token refresh failed, ending session", "err", err)
		if clearErr := c.creds.Clear(ctx); clearErr != nil {
			c.log.Error(ctx, "clearing credentials", "err", clearErr)
		}
		c.sessionEnded()
		return nil, fmt.Errorf("%w: %v", common.ErrAuthExpired, err)
	}

	return c.send(ctx, method, path, payload, c.creds.AccessToken(), header)
}

// refreshAccessToken exchanges the stored refresh token for a new access
// token. Concurrent callers share a single in-flight exchange.
func (c *HTTPClient) refreshAccessToken(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refresh := c.creds.RefreshToken()
		if refresh == "" {
			return nil, errors.New("no refresh token")
		}

		payload, err := json.Marshal(map[string]string{"refresh": refresh})
		if err != nil {
			return nil, err
		}

		// No Authorization header: the refresh call must never attempt
		// to refresh itself.
		resp, err := c.send(ctx, http.MethodPost, refreshPath, payload, "", nil)
		if err != nil {
			return nil, err
		}
		if resp.status < 200 || resp.status >= 300 {
			return nil, fmt.Errorf("refresh rejected with status %d", resp.status)
		}

		var out struct {
			Access string `json:"access"`
		}
		if err := json.Unmarshal(resp.body, &out); err != nil {
			return nil, fmt.Errorf("decoding refresh response: %w", err)
		}
		if out.Access == "" {
			return nil, errors.New("refresh response missing access token")
		}
		return nil, c.creds.SetAccessToken(ctx, out.Access)
	})
	return err
}

// check maps a non-2xx response to the error taxonomy.
func check(resp *response) error {
	switch {
	case resp.status >= 200 && resp.status < 300:
		return nil
	case resp.status == http.StatusNotFound:
		return common.ErrNotFound
	case resp.status >= 500:
		return fmt.Errorf("%w: status %d", common.ErrRemoteUnavailable, resp.status)
	default:
		return fmt.Errorf("unexpected status %d: %s", resp.status, resp.body)
	}
}

func (c *HTTPClient) SignIn(ctx context.Context, username, password string) (*models.User, error) {
	payload, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return nil, err
	}

	// Straight send: a 401 here means wrong credentials, not an expired
	// session, so the refresh protocol must not engage.
	resp, err := c.send(ctx, http.MethodPost, "/accounts/signin", payload, "", nil)
	if err != nil {
		return nil, err
	}
	if resp.status < 200 || resp.status >= 300 {
		return nil, fmt.Errorf("sign-in rejected with status %d", resp.status)
	}

	var out struct {
		Access  string       `json:"access"`
		Refresh string       `json:"refresh"`
		User    *models.User `json:"user"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decoding sign-in response: %w", err)
	}

	if err := c.creds.SetSession(ctx, out.Access, out.Refresh, out.User); err != nil {
		return nil, err
	}
	return out.User, nil
}

func (c *HTTPClient) Cart(ctx context.Context) ([]models.CartEntry, error) {
	resp, err := c.do(ctx, http.MethodGet, "/cart", nil, nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp); err != nil {
		return nil, fmt.Errorf("loading cart: %w", err)
	}

	var out struct {
		Results []models.CartEntry `json:"results"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decoding cart: %w", err)
	}
	return out.Results, nil
}

func (c *HTTPClient) UpdateCartQuantity(ctx context.Context, id int64, quantity int) error {
	payload, err := json.Marshal(map[string]int{"quantity": quantity})
	if err != nil {
		return err
	}
	resp, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/cart/%d", id), payload, nil)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return fmt.Errorf("updating quantity: %w", err)
	}
	return nil
}

func (c *HTTPClient) RemoveCartItem(ctx context.Context, id int64) error {
	resp, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", id), nil, nil)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return fmt.Errorf("removing cart item: %w", err)
	}
	return nil
}

func (c *HTTPClient) ClearCart(ctx context.Context) error {
	resp, err := c.do(ctx, http.MethodDelete, "/cart", nil, nil)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return fmt.Errorf("clearing cart: %w", err)
	}
	return nil
}

func (c *HTTPClient) Product(ctx context.Context, id int64) (*models.Product, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/products/%d", id), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp); err != nil {
		return nil, fmt.Errorf("loading product %d: %w", id, err)
	}

	var p models.Product
	if err := json.Unmarshal(resp.body, &p); err != nil {
		return nil, fmt.Errorf("decoding product: %w", err)
	}
	return &p, nil
}

func (c *HTTPClient) SearchProducts(ctx context.Context, query string) ([]models.Product, error) {
	path := "/products"
	if query != "" {
		path += "?search=" + url.QueryEscape(query)
	}
	resp, err := c.do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := check(resp); err != nil {
		return nil, fmt.Errorf("searching products: %w", err)
	}

	var out struct {
		Results []models.Product `json:"results"`
	}
	if err := json.Unmarshal(resp.body, &out); err != nil {
		return nil, fmt.Errorf("decoding product list: %w", err)
	}
	return out.Results, nil
}

func (c *HTTPClient) SubmitOrder(ctx context.Context, sub models.OrderSubmission) error {
	payload, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	// Idempotency key guards against the order being created twice if the
	// response is lost and the user retries.
	header := map[string]string{"Idempotency-Key": uuid.NewString()}

	resp, err := c.do(ctx, http.MethodPost, "/order", payload, header)
	if err != nil {
		return err
	}
	if err := check(resp); err != nil {
		return fmt.Errorf("submitting order: %w", err)
	}
	return nil
}
